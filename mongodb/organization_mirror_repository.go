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

// OrganizationMirrorRepository implements domain.OrganizationMirrorRepository.
type OrganizationMirrorRepository struct {
	db   *mongo.Database
	orgs *mongo.Collection
}

// NewOrganizationMirrorRepository creates the repository and ensures indexes.
func NewOrganizationMirrorRepository(ctx context.Context, db *mongo.Database) (domain.OrganizationMirrorRepository, error) {
	repo := &OrganizationMirrorRepository{
		db:   db,
		orgs: db.Collection(OrganizationsCollection),
	}
	if err := repo.createIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to create organization mirror indexes (may already exist)")
	}
	return repo, nil
}

func (r *OrganizationMirrorRepository) createIndexes(ctx context.Context) error {
	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "provider_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := r.orgs.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes for organizations collection: %w", err)
	}
	return nil
}

// SyncFromProvider upserts the mirror record keyed by the provider org id.
// App-specific fields (logo_ref) are never touched by a sync.
func (r *OrganizationMirrorRepository) SyncFromProvider(ctx context.Context, org *domain.Organization) (*domain.MirrorOrganization, error) {
	if org == nil || org.ID == "" {
		return nil, errors.New("organization with provider id is required")
	}

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":       org.Name,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":         uuid.NewString(),
			"provider_id": org.ID,
			"created_at":  now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var mirror domain.MirrorOrganization
	err := r.orgs.FindOneAndUpdate(ctx, bson.M{"provider_id": org.ID}, update, opts).Decode(&mirror)
	if err != nil {
		log.Error().Err(err).Str("provider_id", org.ID).Msg("Error upserting mirror organization")
		return nil, err
	}
	return &mirror, nil
}

// GetByProviderID retrieves a mirror organization by provider id.
func (r *OrganizationMirrorRepository) GetByProviderID(ctx context.Context, providerID string) (*domain.MirrorOrganization, error) {
	var mirror domain.MirrorOrganization
	err := r.orgs.FindOne(ctx, bson.M{"provider_id": providerID}).Decode(&mirror)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errors.New("organization not found")
		}
		log.Error().Err(err).Str("provider_id", providerID).Msg("Error getting mirror organization")
		return nil, err
	}
	return &mirror, nil
}

// SaveLogo stores the file storage reference for the organization logo.
func (r *OrganizationMirrorRepository) SaveLogo(ctx context.Context, providerID, logoRef string) error {
	result, err := r.orgs.UpdateOne(ctx, bson.M{"provider_id": providerID}, bson.M{
		"$set": bson.M{"logo_ref": logoRef, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return errors.New("organization not found for logo update")
	}
	return nil
}

// DeleteLogo clears the logo storage reference.
func (r *OrganizationMirrorRepository) DeleteLogo(ctx context.Context, providerID string) error {
	_, err := r.orgs.UpdateOne(ctx, bson.M{"provider_id": providerID}, bson.M{
		"$unset": bson.M{"logo_ref": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	})
	return err
}

// Delete removes the mirror record of a deleted organization.
func (r *OrganizationMirrorRepository) Delete(ctx context.Context, providerID string) error {
	_, err := r.orgs.DeleteOne(ctx, bson.M{"provider_id": providerID})
	return err
}

var _ domain.OrganizationMirrorRepository = (*OrganizationMirrorRepository)(nil)
