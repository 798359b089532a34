// Package services holds the storefront business logic: the rating
// aggregator, the order reconciler, the stats aggregator and the user and
// catalog operations around them.
package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/events"
	"go-storefront/models"
)

// UserStore persists users.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateRole(ctx context.Context, id primitive.ObjectID, role string) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, upd models.ProfileUpdate) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// ProductStore persists catalog entries.
type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	List(ctx context.Context, f models.ProductFilter) ([]models.Product, int64, error)
	Related(ctx context.Context, q models.RelatedQuery) ([]models.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, upd models.ProductUpdate) (*models.Product, error)
	SetRating(ctx context.Context, id primitive.ObjectID, rating float64) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// ReviewStore persists reviews. Create must reject a second review for the
// same (product, user) pair with a conflict.
type ReviewStore interface {
	FindByProductAndUser(ctx context.Context, productID, userID primitive.ObjectID) (*models.Review, error)
	Create(ctx context.Context, review *models.Review) error
	UpdateContent(ctx context.Context, id primitive.ObjectID, comment string, rating float64) error
	ListByProduct(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Review, error)
	DeleteByProduct(ctx context.Context, productID primitive.ObjectID) (int64, error)
	CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// OrderStore persists orders. Create must reject a second order with the
// same transaction id with a conflict.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*models.Order, error)
	ListByEmail(ctx context.Context, email string) ([]models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	Count(ctx context.Context) (int64, error)
	SumAmount(ctx context.Context, email string) (float64, error)
	DistinctProductIDs(ctx context.Context, email string) ([]string, error)
	MonthlyEarnings(ctx context.Context) ([]models.MonthlyEarning, error)
}

// TxRunner runs fn as one unit when the backend supports it.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Publisher emits domain events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *events.Event) error
}

// OrderMailer notifies customers about new orders.
type OrderMailer interface {
	SendOrderConfirmationEmail(ctx context.Context, order *models.Order) error
}

// SessionRevoker invalidates session tokens before they expire.
type SessionRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

