package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-storefront/apperrors"
	"go-storefront/models"
)

// ProductRepository stores catalog entries.
type ProductRepository struct {
	coll *mongo.Collection
}

// NewProductRepository creates a ProductRepository over db.
func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(ProductsCollection)}
}

// Create inserts product and sets its ID.
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	res, err := r.coll.InsertOne(ctx, product)
	if err != nil {
		return classify("create product", err, "product")
	}
	product.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID returns the product with the given id.
func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, classify("find product", err, "product")
	}
	return &product, nil
}

func listFilter(f models.ProductFilter) bson.M {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.MinPrice != nil && f.MaxPrice != nil {
		filter["price"] = bson.M{"$gte": *f.MinPrice, "$lte": *f.MaxPrice}
	}
	return filter
}

// List returns one page of products matching f, newest first, along with
// the total number of matches.
func (r *ProductRepository) List(ctx context.Context, f models.ProductFilter) ([]models.Product, int64, error) {
	filter := listFilter(f)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, classify("count products", err, "product")
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(f.Skip()).
		SetLimit(int64(f.Limit))
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, classify("list products", err, "product")
	}
	products, err := decodeAll[models.Product](ctx, cur)
	if err != nil {
		return nil, 0, classify("decode products", err, "product")
	}
	return products, total, nil
}

// Related returns products other than q.ExcludeID whose name matches
// q.NamePattern (case-insensitive) or whose category equals q.Category.
func (r *ProductRepository) Related(ctx context.Context, q models.RelatedQuery) ([]models.Product, error) {
	or := bson.A{bson.M{"category": q.Category}}
	if q.NamePattern != "" {
		or = append(or, bson.M{"name": bson.M{"$regex": primitive.Regex{Pattern: q.NamePattern, Options: "i"}}})
	}
	filter := bson.M{
		"_id": bson.M{"$ne": q.ExcludeID},
		"$or": or,
	}

	cur, err := r.coll.Find(ctx, filter, options.Find().SetLimit(int64(q.Limit)))
	if err != nil {
		return nil, classify("find related products", err, "product")
	}
	products, err := decodeAll[models.Product](ctx, cur)
	if err != nil {
		return nil, classify("decode products", err, "product")
	}
	return products, nil
}

// Update applies the set fields of upd and returns the updated product.
func (r *ProductRepository) Update(ctx context.Context, id primitive.ObjectID, upd models.ProductUpdate) (*models.Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var product models.Product
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": upd}, opts).Decode(&product)
	if err != nil {
		return nil, classify("update product", err, "product")
	}
	return &product, nil
}

// SetRating overwrites the derived rating field only.
func (r *ProductRepository) SetRating(ctx context.Context, id primitive.ObjectID, rating float64) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"rating": rating}})
	if err != nil {
		return classify("update product rating", err, "product")
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("product not found")
	}
	return nil
}

// Delete removes a product.
func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return classify("delete product", err, "product")
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("product not found")
	}
	return nil
}

// Count returns the number of products.
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, classify("count products", err, "product")
	}
	return n, nil
}
