package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/motomart/app/models"
	"github.com/shashiranjanraj/motomart/pkg/metrics"
)

// ProductRepository handles database operations for Product.
type ProductRepository struct {
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{col: db.Collection("products")}
}

// All returns every product, newest first.
func (r *ProductRepository) All(ctx context.Context) ([]models.Product, error) {
	defer metrics.ObserveStoreOp("products", "all", time.Now())
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// FindByID looks up a product by primary key.
func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	defer metrics.ObserveStoreOp("products", "findByID", time.Now())
	var product models.Product
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	return product, err
}

// FindByIDs fetches the products named by ids in a single query.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	defer metrics.ObserveStoreOp("products", "findByIDs", time.Now())
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	products := []models.Product{}
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Create persists a new product record.
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	defer metrics.ObserveStoreOp("products", "create", time.Now())
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, product)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		product.ID = oid
	}
	return nil
}

// Update applies a partial $set to an existing product and reports whether
// a matching document existed.
func (r *ProductRepository) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (bool, error) {
	defer metrics.ObserveStoreOp("products", "update", time.Now())
	set["updatedAt"] = time.Now().UTC()
	res, err := r.col.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// Delete removes a product and reports whether it existed.
func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	defer metrics.ObserveStoreOp("products", "delete", time.Now())
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
