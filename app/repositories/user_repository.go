package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/motomart/app/models"
	"github.com/shashiranjanraj/motomart/pkg/metrics"
)

// UserRepository handles database operations for User.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection("users")}
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	defer metrics.ObserveStoreOp("users", "findByEmail", time.Now())
	var user models.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	return user, err
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	defer metrics.ObserveStoreOp("users", "findByID", time.Now())
	var user models.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	return user, err
}

// Create persists a new user record. The inserted ID is written back so the
// caller can derive the referral code without a second round trip.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	defer metrics.ObserveStoreOp("users", "create", time.Now())
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, user)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

// Update applies a partial $set to an existing user.
func (r *UserRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	defer metrics.ObserveStoreOp("users", "update", time.Now())
	set["updatedAt"] = time.Now().UTC()
	_, err := r.col.UpdateByID(ctx, id, bson.M{"$set": set})
	return err
}

// Delete removes a user record.
func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer metrics.ObserveStoreOp("users", "delete", time.Now())
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// CountReferred counts users whose referredBy points at the given user.
func (r *UserRepository) CountReferred(ctx context.Context, id primitive.ObjectID) (int64, error) {
	defer metrics.ObserveStoreOp("users", "countReferred", time.Now())
	return r.col.CountDocuments(ctx, bson.M{"referredBy": id})
}
