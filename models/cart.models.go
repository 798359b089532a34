package models

// CartItem is one line of the client's cart sent to checkout.
type CartItem struct {
	Name     string  `json:"name" validate:"required"`
	Image    string  `json:"image"`
	Price    float64 `json:"price" validate:"gt=0"`
	Quantity int64   `json:"quantity" validate:"gte=1"`
}
