package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/atriumhq/atrium/domain"
)

// UserMirrorRepository implements domain.UserMirrorRepository.
type UserMirrorRepository struct {
	db    *mongo.Database
	users *mongo.Collection
}

// NewUserMirrorRepository creates the repository and ensures its indexes.
func NewUserMirrorRepository(ctx context.Context, db *mongo.Database) (domain.UserMirrorRepository, error) {
	repo := &UserMirrorRepository{
		db:    db,
		users: db.Collection(UsersCollection),
	}
	if err := repo.createIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to create user mirror indexes (may already exist)")
	}
	return repo, nil
}

func (r *UserMirrorRepository) createIndexes(ctx context.Context) error {
	indexModels := []mongo.IndexModel{
		{
			// The upsert key. One mirror record per identity-provider user.
			Keys:    bson.D{{Key: "provider_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}},
			Options: options.Index().SetUnique(false),
		},
	}
	if _, err := r.users.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes for users collection: %w", err)
	}
	return nil
}

// SyncFromProvider upserts the mirror record keyed by the provider user id.
// First sight inserts with the default role "member"; later syncs patch the
// mutable fields and bump updated_at. The unique provider_id index enforces
// idempotency; concurrent syncs are last-write-wins, which is safe because
// updates carry the provider's current field values.
func (r *UserMirrorRepository) SyncFromProvider(ctx context.Context, user *domain.IdentityUser, organizationID string) (*domain.MirrorUser, error) {
	if user == nil || user.ID == "" {
		return nil, errors.New("identity user with provider id is required")
	}

	now := time.Now().UTC()
	set := bson.M{
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"image_url":  user.ProfilePictureURL,
		"updated_at": now,
	}
	if organizationID != "" {
		set["organization_id"] = organizationID
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"_id":         uuid.NewString(),
			"provider_id": user.ID,
			"role":        domain.RoleMember,
			"created_at":  now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var mirror domain.MirrorUser
	err := r.users.FindOneAndUpdate(ctx, bson.M{"provider_id": user.ID}, update, opts).Decode(&mirror)
	if err != nil {
		log.Error().Err(err).Str("provider_id", user.ID).Msg("Error upserting mirror user")
		return nil, err
	}
	return &mirror, nil
}

// GetByProviderID retrieves a mirror user by identity-provider id.
func (r *UserMirrorRepository) GetByProviderID(ctx context.Context, providerID string) (*domain.MirrorUser, error) {
	var mirror domain.MirrorUser
	err := r.users.FindOne(ctx, bson.M{"provider_id": providerID}).Decode(&mirror)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.New("user not found")
		}
		log.Error().Err(err).Str("provider_id", providerID).Msg("Error getting mirror user")
		return nil, err
	}
	return &mirror, nil
}

// ListByOrganization returns all mirror users scoped to an organization.
func (r *UserMirrorRepository) ListByOrganization(ctx context.Context, organizationID string) ([]*domain.MirrorUser, error) {
	cursor, err := r.users.Find(ctx, bson.M{"organization_id": organizationID})
	if err != nil {
		log.Error().Err(err).Str("organization_id", organizationID).Msg("Error listing mirror users")
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*domain.MirrorUser
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SetRole updates the cached role and organization of a mirror user. The
// provider stays authoritative; this only keeps dashboard queries in step.
func (r *UserMirrorRepository) SetRole(ctx context.Context, providerID, organizationID, role string) error {
	result, err := r.users.UpdateOne(ctx, bson.M{"provider_id": providerID}, bson.M{
		"$set": bson.M{
			"role":            role,
			"organization_id": organizationID,
			"updated_at":      time.Now().UTC(),
		},
	})
	if err != nil {
		log.Error().Err(err).Str("provider_id", providerID).Msg("Error setting mirror user role")
		return err
	}
	if result.MatchedCount == 0 {
		return errors.New("user not found for role update")
	}
	return nil
}

var _ domain.UserMirrorRepository = (*UserMirrorRepository)(nil)
