package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mysteryvault/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoOrderRepository struct {
	collection *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) OrderRepository {
	return &mongoOrderRepository{
		collection: db.Collection("orders"),
	}
}

func (m *mongoOrderRepository) InsertOrder(ctx context.Context, order *domain.Order) error {
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	_, err := m.collection.InsertOne(ctx, order)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

func (m *mongoOrderRepository) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order

	err := m.collection.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &order, nil
}

func (m *mongoOrderRepository) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := m.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []domain.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	return orders, nil
}

func (m *mongoOrderRepository) ApplyTransition(ctx context.Context, orderID string, t StatusTransition) error {
	// Filtering on the current status makes the write a compare-and-swap:
	// a concurrent transition leaves MatchedCount at zero.
	filter := bson.M{"_id": orderID, "status": t.From}

	set := bson.M{
		"status":     t.To,
		"updated_at": time.Now(),
	}
	if t.Shipment != nil {
		set["tracking.tracking_number"] = t.Shipment.TrackingNumber
		set["tracking.carrier"] = t.Shipment.Carrier
		set["tracking.estimated_delivery"] = t.Shipment.EstimatedDelivery
	}
	if t.Cancellation != nil {
		set["cancellation"] = t.Cancellation
	}

	update := bson.M{
		"$set":  set,
		"$push": bson.M{"tracking.updates": t.Update},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrStatusConflict
	}

	return nil
}
