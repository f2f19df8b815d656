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

// OrderRepository handles database operations for Order.
type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection("orders")}
}

// FindByID looks up an order by primary key.
func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	defer metrics.ObserveStoreOp("orders", "findByID", time.Now())
	var order models.Order
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	return order, err
}

// FindByUser returns all orders belonging to a user, newest first.
func (r *OrderRepository) FindByUser(ctx context.Context, user primitive.ObjectID) ([]models.Order, error) {
	defer metrics.ObserveStoreOp("orders", "findByUser", time.Now())
	cur, err := r.col.Find(ctx, bson.M{"user": user},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// Create persists a new order record.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	defer metrics.ObserveStoreOp("orders", "create", time.Now())
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, order)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		order.ID = oid
	}
	return nil
}

// MarkPaid sets isPaid and stamps paidAt on an order.
func (r *OrderRepository) MarkPaid(ctx context.Context, id primitive.ObjectID, paidAt time.Time) error {
	defer metrics.ObserveStoreOp("orders", "markPaid", time.Now())
	_, err := r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"isPaid":    true,
		"paidAt":    paidAt,
		"updatedAt": time.Now().UTC(),
	}})
	return err
}

// Delete removes an order record.
func (r *OrderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	defer metrics.ObserveStoreOp("orders", "delete", time.Now())
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
