package mongo

import (
	"context"
	"encoding/json"
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
	collectionCredentials = "credentials"
	credentialIdleTTL     = 30 * 24 * time.Hour
)

// TokenSealer encrypts tokens at rest and fingerprints them for lookups.
type TokenSealer interface {
	Seal(plaintext string) ([]byte, error)
	Open(sealed []byte) (string, error)
	Fingerprint(token string) string
}

// credentialDoc is one device's session. The user is kept as the backend's
// JSON so it round-trips byte-for-byte.
type credentialDoc struct {
	Device      string    `bson:"_id"`
	SealedToken []byte    `bson:"sealed_token"`
	Fingerprint string    `bson:"fingerprint"`
	User        string    `bson:"user,omitempty"`
	UpdatedAt   time.Time `bson:"updated_at"`
}

type CredentialStore struct {
	col    *mongo.Collection
	sealer TokenSealer
}

func NewCredentialStore(db *mongo.Database, sealer TokenSealer) *CredentialStore {
	return &CredentialStore{col: db.Collection(collectionCredentials), sealer: sealer}
}

var _ ports.CredentialStore = (*CredentialStore)(nil)

// Load returns the device's session. A token that no longer opens, for
// instance after a key rotation, is dropped and only the user is returned.
func (s *CredentialStore) Load(ctx context.Context, device string) (domain.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc credentialDoc
	err := s.col.FindOne(ctx, bson.M{"_id": device}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Session{}, nil
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("load credentials: %w", err)
	}

	var session domain.Session
	if doc.User != "" {
		var u domain.User
		if err := json.Unmarshal([]byte(doc.User), &u); err != nil {
			return domain.Session{}, fmt.Errorf("decode cached user: %w", err)
		}
		session.User = &u
	}
	if token, err := s.sealer.Open(doc.SealedToken); err == nil {
		session.Token = token
	}
	return session, nil
}

func (s *CredentialStore) Save(ctx context.Context, device string, session domain.Session) error {
	if session.Token == "" {
		return errors.New("save credentials: empty token")
	}
	sealed, err := s.sealer.Seal(session.Token)
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	user, err := encodeUser(session.User)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := credentialDoc{
		Device:      device,
		SealedToken: sealed,
		Fingerprint: s.sealer.Fingerprint(session.Token),
		User:        user,
		UpdatedAt:   time.Now().UTC(),
	}
	_, err = s.col.ReplaceOne(ctx, bson.M{"_id": device}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// RefreshUser matches on the token fingerprint, so a session cleared or
// replaced since the caller read it is left alone.
func (s *CredentialStore) RefreshUser(ctx context.Context, device, token string, user *domain.User) (bool, error) {
	encoded, err := encodeUser(user)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": device, "fingerprint": s.sealer.Fingerprint(token)},
		bson.M{"$set": bson.M{"user": encoded, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return false, fmt.Errorf("refresh cached user: %w", err)
	}
	return res.MatchedCount == 1, nil
}

func (s *CredentialStore) Clear(ctx context.Context, device string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": device}); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// ClearToken matches on the token fingerprint like RefreshUser.
func (s *CredentialStore) ClearToken(ctx context.Context, device, token string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": device, "fingerprint": s.sealer.Fingerprint(token)})
	if err != nil {
		return false, fmt.Errorf("clear credentials: %w", err)
	}
	return res.DeletedCount == 1, nil
}

// EnsureIndexes expires sessions that have not been touched for a month.
func (s *CredentialStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "fingerprint", Value: 1}}},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(credentialIdleTTL.Seconds())),
		},
	})
	return err
}

func encodeUser(u *domain.User) (string, error) {
	if u == nil {
		return "", nil
	}
	b, err := json.Marshal(u)
	if err != nil {
		return "", fmt.Errorf("encode user: %w", err)
	}
	return string(b), nil
}
