package services

import (
	"context"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/apperrors"
	"go-storefront/events"
	"go-storefront/models"
	"go-storefront/utils"
)

const (
	defaultPageSize = 10
	relatedLimit    = 10
)

// CreateProductInput is a new catalog entry. Author defaults to the caller.
type CreateProductInput struct {
	Name        string  `json:"name" validate:"required"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	OldPrice    float64 `json:"oldPrice" validate:"gte=0"`
	Price       float64 `json:"price" validate:"gt=0"`
	Image       string  `json:"image"`
	Color       string  `json:"color"`
	Author      string  `json:"author"`
}

// UpdateProductInput holds the client-writable product fields.
type UpdateProductInput struct {
	Name        *string  `json:"name" validate:"omitempty,min=1"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	OldPrice    *float64 `json:"oldPrice" validate:"omitempty,gte=0"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Image       *string  `json:"image"`
	Color       *string  `json:"color"`
}

// ListProductsInput selects a page of the catalog.
type ListProductsInput struct {
	Category string
	MinPrice *float64
	MaxPrice *float64
	Page     int
	Limit    int
}

// ProductPage is one page of the catalog.
type ProductPage struct {
	Products      []models.ProductView `json:"products"`
	TotalPages    int                  `json:"totalPages"`
	TotalProducts int64                `json:"totalProducts"`
}

// ProductDetail is a product with its reviews.
type ProductDetail struct {
	Product *models.ProductView `json:"product"`
	Reviews []models.ReviewView `json:"reviews"`
}

// ProductService manages the catalog.
type ProductService struct {
	products  ProductStore
	reviews   ReviewStore
	users     UserStore
	tx        TxRunner
	publisher Publisher
	topic     string
	logger    *slog.Logger
	now       func() time.Time
}

// NewProductService creates a ProductService. publisher may be nil.
func NewProductService(products ProductStore, reviews ReviewStore, users UserStore, tx TxRunner, publisher Publisher, topic string, logger *slog.Logger) *ProductService {
	return &ProductService{
		products:  products,
		reviews:   reviews,
		users:     users,
		tx:        tx,
		publisher: publisher,
		topic:     topic,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create adds a product with a zero rating.
func (s *ProductService) Create(ctx context.Context, callerID string, input CreateProductInput) (*models.Product, error) {
	if err := utils.Validate(input); err != nil {
		return nil, err
	}

	authorHex := input.Author
	if authorHex == "" {
		authorHex = callerID
	}
	authorID, err := parseID(authorHex, "author")
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, authorID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Validation("author does not exist")
		}
		return nil, err
	}

	product := &models.Product{
		Name:        input.Name,
		Category:    input.Category,
		Description: input.Description,
		OldPrice:    input.OldPrice,
		Price:       input.Price,
		Image:       input.Image,
		Color:       input.Color,
		Rating:      0,
		Author:      authorID,
		CreatedAt:   s.now(),
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// List returns one page of products with the author's email resolved.
func (s *ProductService) List(ctx context.Context, input ListProductsInput) (*ProductPage, error) {
	filter := models.ProductFilter{
		Page:  input.Page,
		Limit: input.Limit,
	}
	if input.Category != "" && input.Category != "all" {
		filter.Category = input.Category
	}
	if input.MinPrice != nil && input.MaxPrice != nil {
		filter.MinPrice, filter.MaxPrice = input.MinPrice, input.MaxPrice
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageSize
	}

	products, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	authors, err := s.userIndex(ctx, authorIDs(products))
	if err != nil {
		return nil, err
	}
	views := make([]models.ProductView, 0, len(products))
	for _, p := range products {
		view := models.ProductView{Product: p}
		if a, ok := authors[p.Author]; ok {
			view.Author = &models.UserSummary{ID: a.ID, Email: a.Email}
		}
		views = append(views, view)
	}

	return &ProductPage{
		Products:      views,
		TotalPages:    int(math.Ceil(float64(total) / float64(filter.Limit))),
		TotalProducts: total,
	}, nil
}

func authorIDs(products []models.Product) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.Author)
	}
	return ids
}

func (s *ProductService) userIndex(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.UserSummary, error) {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	unique := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id.IsZero() {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	users, err := s.users.FindByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	index := make(map[primitive.ObjectID]*models.UserSummary, len(users))
	for i := range users {
		index[users[i].ID] = users[i].Summary()
	}
	return index, nil
}

// Get returns a product and its reviews, each with its author resolved.
func (s *ProductService) Get(ctx context.Context, idHex string) (*ProductDetail, error) {
	id, err := parseID(idHex, "product")
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := []primitive.ObjectID{product.Author}
	for _, r := range reviews {
		ids = append(ids, r.UserID)
	}
	users, err := s.userIndex(ctx, ids)
	if err != nil {
		return nil, err
	}

	detail := &ProductDetail{
		Product: &models.ProductView{Product: *product, Author: users[product.Author]},
		Reviews: make([]models.ReviewView, 0, len(reviews)),
	}
	for _, r := range reviews {
		detail.Reviews = append(detail.Reviews, models.ReviewView{Review: r, User: users[r.UserID]})
	}
	return detail, nil
}

// Update applies the provided fields. Rating cannot be set this way.
func (s *ProductService) Update(ctx context.Context, idHex string, input UpdateProductInput) (*models.Product, error) {
	if err := utils.Validate(input); err != nil {
		return nil, err
	}
	id, err := parseID(idHex, "product")
	if err != nil {
		return nil, err
	}

	upd := models.ProductUpdate{
		Name:        input.Name,
		Category:    input.Category,
		Description: input.Description,
		OldPrice:    input.OldPrice,
		Price:       input.Price,
		Image:       input.Image,
		Color:       input.Color,
	}
	if upd.Empty() {
		return nil, apperrors.Validation("no product fields provided")
	}
	return s.products.Update(ctx, id, upd)
}

// Delete removes a product and then every review of it. Without
// transactions a failure after the first step leaves orphaned reviews that
// no longer affect any rating.
func (s *ProductService) Delete(ctx context.Context, idHex string) error {
	id, err := parseID(idHex, "product")
	if err != nil {
		return err
	}

	var removed int64
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.products.Delete(ctx, id); err != nil {
			return err
		}
		n, err := s.reviews.DeleteByProduct(ctx, id)
		removed = n
		return err
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id.Hex()),
		slog.Int64("reviews_deleted", removed),
	)
	publish(ctx, s.publisher, s.logger, s.topic, events.ProductDeleted, id.Hex(), "product", map[string]int64{
		"reviewsDeleted": removed,
	})
	return nil
}

// Related returns up to ten other products sharing a name word or the
// category of the given product.
func (s *ProductService) Related(ctx context.Context, idHex string) ([]models.Product, error) {
	id, err := parseID(idHex, "product")
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.products.Related(ctx, models.RelatedQuery{
		ExcludeID:   id,
		NamePattern: namePattern(product.Name),
		Category:    product.Category,
		Limit:       relatedLimit,
	})
}

// namePattern builds an alternation of the name's words longer than one
// character, escaped for literal matching.
func namePattern(name string) string {
	var words []string
	for _, w := range strings.Fields(name) {
		if len([]rune(w)) > 1 {
			words = append(words, regexp.QuoteMeta(w))
		}
	}
	return strings.Join(words, "|")
}
