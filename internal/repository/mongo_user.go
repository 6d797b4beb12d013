package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mysteryvault/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoUserRepository struct {
	collection *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{
		collection: db.Collection("users"),
	}
}

func (m *mongoUserRepository) InsertUser(ctx context.Context, user *domain.User) error {
	user.Email = strings.ToLower(user.Email)
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	_, err := m.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func (m *mongoUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User

	err := m.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (m *mongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User

	err := m.collection.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

func (m *mongoUserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	user.Email = strings.ToLower(user.Email)

	filter := bson.M{"_id": user.ID}
	update := bson.M{
		"$set": bson.M{
			"name":          user.Name,
			"email":         user.Email,
			"phone_no":      user.PhoneNo,
			"photo":         user.Photo,
			"password_hash": user.PasswordHash,
		},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (m *mongoUserRepository) DeleteUser(ctx context.Context, id string) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (m *mongoUserRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

type mongoAddressRepository struct {
	collection *mongo.Collection
}

func NewMongoAddressRepository(db *mongo.Database) AddressRepository {
	return &mongoAddressRepository{
		collection: db.Collection("addresses"),
	}
}

func (m *mongoAddressRepository) GetAddress(ctx context.Context, userID string) (*domain.Address, error) {
	var address domain.Address

	err := m.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&address)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to get address: %w", err)
	}

	return &address, nil
}

func (m *mongoAddressRepository) UpsertAddress(ctx context.Context, address *domain.Address) error {
	now := time.Now()
	if address.CreatedAt.IsZero() {
		address.CreatedAt = now
	}
	address.UpdatedAt = now

	filter := bson.M{"user_id": address.UserID}
	update := bson.M{
		"$set": bson.M{
			"address":    address.Address,
			"pincode":    address.Pincode,
			"city":       address.City,
			"state":      address.State,
			"landmark":   address.Landmark,
			"updated_at": address.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"user_id":    address.UserID,
			"created_at": address.CreatedAt,
		},
	}
	opts := options.Update().SetUpsert(true)

	_, err := m.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert address: %w", err)
	}

	return nil
}

func (m *mongoAddressRepository) DeleteAddress(ctx context.Context, userID string) error {
	_, err := m.collection.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}

	return nil
}
