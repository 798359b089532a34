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

// UserRepository stores users.
type UserRepository struct {
	coll *mongo.Collection
}

// NewUserRepository creates a UserRepository over db.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(UsersCollection)}
}

// Create inserts user and sets its ID. A duplicate email is a conflict.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("email is already registered")
		}
		return classify("create user", err, "user")
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindByID returns the user with the given id.
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, classify("find user", err, "user")
	}
	return &user, nil
}

// FindByEmail returns the user registered with email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, classify("find user", err, "user")
	}
	return &user, nil
}

// FindByIDs returns the users matching ids; unknown ids are skipped.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	opts := options.Find().SetProjection(bson.M{"password": 0})
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, classify("find users", err, "user")
	}
	users, err := decodeAll[models.User](ctx, cur)
	if err != nil {
		return nil, classify("decode users", err, "user")
	}
	return users, nil
}

// List returns every user, newest first, with only id, email and role set.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().
		SetProjection(bson.M{"email": 1, "role": 1}).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, classify("list users", err, "user")
	}
	users, err := decodeAll[models.User](ctx, cur)
	if err != nil {
		return nil, classify("decode users", err, "user")
	}
	return users, nil
}

// UpdateRole sets the role of a user and returns the updated document.
func (r *UserRepository) UpdateRole(ctx context.Context, id primitive.ObjectID, role string) (*models.User, error) {
	return r.findOneAndSet(ctx, id, bson.M{"role": role})
}

// UpdateProfile applies the set fields of upd.
func (r *UserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd models.ProfileUpdate) (*models.User, error) {
	return r.findOneAndSet(ctx, id, upd)
}

func (r *UserRepository) findOneAndSet(ctx context.Context, id primitive.ObjectID, set any) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		return nil, classify("update user", err, "user")
	}
	return &user, nil
}

// Delete removes a user. Orders and reviews referencing it are kept.
func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return classify("delete user", err, "user")
	}
	if res.DeletedCount == 0 {
		return apperrors.NotFound("user not found")
	}
	return nil
}

// Count returns the number of users.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, classify("count users", err, "user")
	}
	return n, nil
}
