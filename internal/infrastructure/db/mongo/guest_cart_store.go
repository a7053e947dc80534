package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/afripulse/storefront-session/internal/core/domain"
	"github.com/afripulse/storefront-session/internal/core/ports"
)

const (
	collectionGuestCarts = "guest_carts"
	guestCartIdleTTL     = 30 * 24 * time.Hour
)

type guestCartDoc struct {
	Device    string            `bson:"_id"`
	Items     []domain.CartItem `bson:"items"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

type GuestCartStore struct {
	col *mongo.Collection
}

func NewGuestCartStore(db *mongo.Database) *GuestCartStore {
	return &GuestCartStore{col: db.Collection(collectionGuestCarts)}
}

var _ ports.GuestCartStore = (*GuestCartStore)(nil)

func (s *GuestCartStore) Load(ctx context.Context, device string) ([]domain.CartItem, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc guestCartDoc
	err := s.col.FindOne(ctx, bson.M{"_id": device}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []domain.CartItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load guest cart: %w", err)
	}
	return doc.Items, nil
}

func (s *GuestCartStore) Save(ctx context.Context, device string, items []domain.CartItem) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := guestCartDoc{Device: device, Items: items, UpdatedAt: time.Now().UTC()}
	if _, err := s.col.ReplaceOne(ctx, bson.M{"_id": device}, doc, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("save guest cart: %w", err)
	}
	return nil
}

func (s *GuestCartStore) Clear(ctx context.Context, device string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": device}); err != nil {
		return fmt.Errorf("clear guest cart: %w", err)
	}
	return nil
}

// EnsureIndexes expires abandoned guest carts.
func (s *GuestCartStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "updated_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(guestCartIdleTTL.Seconds())),
	})
	return err
}
