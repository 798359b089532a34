package models

// MonthlyEarning is the raw sum of order amounts created in one calendar month.
type MonthlyEarning struct {
	Year  int     `bson:"year"`
	Month int     `bson:"month"`
	Total float64 `bson:"total"`
}

// UserStats summarises one customer's activity.
type UserStats struct {
	TotalPayments          string `json:"totalPayments"`
	TotalReviews           int64  `json:"totalReviews"`
	TotalPurchasedProducts int    `json:"totalPurchasedProducts"`
}

// MonthlyEarningsEntry is one formatted bucket of the admin earnings series.
type MonthlyEarningsEntry struct {
	Month    int    `json:"month"`
	Year     int    `json:"year"`
	Earnings string `json:"earnings"`
}

// AdminStats summarises the whole store.
type AdminStats struct {
	TotalOrders     int64                  `json:"totalOrders"`
	TotalProducts   int64                  `json:"totalProducts"`
	TotalReviews    int64                  `json:"totalReviews"`
	TotalUsers      int64                  `json:"totalUsers"`
	TotalEarnings   float64                `json:"totalEarnings"`
	MonthlyEarnings []MonthlyEarningsEntry `json:"monthlyEarnings"`
}
