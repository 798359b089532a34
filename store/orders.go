package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-storefront/models"
)

// OrderRepository stores reconciled orders.
type OrderRepository struct {
	coll *mongo.Collection
}

// NewOrderRepository creates an OrderRepository over db.
func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{coll: db.Collection(OrdersCollection)}
}

// Create inserts order and sets its ID. An order with the same OrderID
// already stored is reported as a conflict by the unique index.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	res, err := r.coll.InsertOne(ctx, order)
	if err != nil {
		return classify("create order", err, "order")
	}
	order.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID returns the order with the given id.
func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByTransactionID returns the order recorded for a payment intent.
func (r *OrderRepository) FindByTransactionID(ctx context.Context, transactionID string) (*models.Order, error) {
	return r.findOne(ctx, bson.M{"orderId": transactionID})
}

func (r *OrderRepository) findOne(ctx context.Context, filter bson.M) (*models.Order, error) {
	var order models.Order
	if err := r.coll.FindOne(ctx, filter).Decode(&order); err != nil {
		return nil, classify("find order", err, "order")
	}
	return &order, nil
}

// ListByEmail returns the orders placed with email.
func (r *OrderRepository) ListByEmail(ctx context.Context, email string) ([]models.Order, error) {
	return r.find(ctx, bson.M{"email": email})
}

// List returns every order, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, classify("list orders", err, "order")
	}
	orders, err := decodeAll[models.Order](ctx, cur)
	if err != nil {
		return nil, classify("decode orders", err, "order")
	}
	return orders, nil
}

// UpdateStatus sets the status of an order and returns the updated document.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Order, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}
	var order models.Order
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&order); err != nil {
		return nil, classify("update order status", err, "order")
	}
	return &order, nil
}

// Delete removes an order and returns it.
func (r *OrderRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		return nil, classify("delete order", err, "order")
	}
	return &order, nil
}

// Count returns the number of orders.
func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, classify("count orders", err, "order")
	}
	return n, nil
}

type amountTotal struct {
	Total float64 `bson:"total"`
}

// SumAmount returns the total amount of the orders placed with email, or of
// all orders when email is empty.
func (r *OrderRepository) SumAmount(ctx context.Context, email string) (float64, error) {
	pipeline := mongo.Pipeline{}
	if email != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"email": email}}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$group", Value: bson.M{
		"_id":   nil,
		"total": bson.M{"$sum": "$amount"},
	}}})

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, classify("sum order amounts", err, "order")
	}
	rows, err := decodeAll[amountTotal](ctx, cur)
	if err != nil {
		return 0, classify("decode order totals", err, "order")
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// DistinctProductIDs returns the distinct product ids across the line items
// of the orders placed with email.
func (r *OrderRepository) DistinctProductIDs(ctx context.Context, email string) ([]string, error) {
	values, err := r.coll.Distinct(ctx, "products.productId", bson.M{"email": email})
	if err != nil {
		return nil, classify("distinct purchased products", err, "order")
	}
	ids := make([]string, 0, len(values))
	for _, v := range values {
		ids = append(ids, fmt.Sprint(v))
	}
	return ids, nil
}

// MonthlyEarnings sums order amounts per calendar (year, month) of creation,
// oldest first.
func (r *OrderRepository) MonthlyEarnings(ctx context.Context) ([]models.MonthlyEarning, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"year":  bson.M{"$year": "$createdAt"},
				"month": bson.M{"$month": "$createdAt"},
			},
			"total": bson.M{"$sum": "$amount"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: 1}, {Key: "_id.month", Value: 1}}}},
		{{Key: "$project", Value: bson.M{
			"_id":   0,
			"year":  "$_id.year",
			"month": "$_id.month",
			"total": 1,
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, classify("aggregate monthly earnings", err, "order")
	}
	rows, err := decodeAll[models.MonthlyEarning](ctx, cur)
	if err != nil {
		return nil, classify("decode monthly earnings", err, "order")
	}
	return rows, nil
}
