package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/atriumhq/atrium/domain"
	"github.com/atriumhq/atrium/mongodb/testutil"
)

func TestSyncFromProviderIsIdempotent(t *testing.T) {
	db, cleanup := testutil.SetupTestMongoDB(t, "atrium_test")
	defer cleanup()

	ctx := context.Background()
	repo, err := NewUserMirrorRepository(ctx, db)
	require.NoError(t, err)

	user := &domain.IdentityUser{
		ID:        "user_01H",
		Email:     "a@b.com",
		FirstName: "Ada",
	}

	first, err := repo.SyncFromProvider(ctx, user, "org_1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, first.Role)
	assert.Equal(t, "a@b.com", first.Email)

	// A second sync with identical input must not create a duplicate and
	// must leave the stored fields unchanged (besides updated_at).
	second, err := repo.SyncFromProvider(ctx, user, "org_1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Role, second.Role)
	assert.Equal(t, first.CreatedAt.Unix(), second.CreatedAt.Unix())

	count, err := db.Collection(UsersCollection).CountDocuments(ctx, bson.M{"provider_id": user.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestSyncFromProviderPatchesMutableFields(t *testing.T) {
	db, cleanup := testutil.SetupTestMongoDB(t, "atrium_test")
	defer cleanup()

	ctx := context.Background()
	repo, err := NewUserMirrorRepository(ctx, db)
	require.NoError(t, err)

	user := &domain.IdentityUser{ID: "user_02H", Email: "old@b.com"}
	_, err = repo.SyncFromProvider(ctx, user, "")
	require.NoError(t, err)

	user.Email = "new@b.com"
	user.FirstName = "Grace"
	updated, err := repo.SyncFromProvider(ctx, user, "org_9")
	require.NoError(t, err)

	assert.Equal(t, "new@b.com", updated.Email)
	assert.Equal(t, "Grace", updated.FirstName)
	assert.Equal(t, "org_9", updated.OrganizationID)
	// Role is never promoted by a sync.
	assert.Equal(t, domain.RoleMember, updated.Role)
}

func TestListByOrganization(t *testing.T) {
	db, cleanup := testutil.SetupTestMongoDB(t, "atrium_test")
	defer cleanup()

	ctx := context.Background()
	repo, err := NewUserMirrorRepository(ctx, db)
	require.NoError(t, err)

	_, err = repo.SyncFromProvider(ctx, &domain.IdentityUser{ID: "user_a", Email: "a@x.com"}, "org_1")
	require.NoError(t, err)
	_, err = repo.SyncFromProvider(ctx, &domain.IdentityUser{ID: "user_b", Email: "b@x.com"}, "org_1")
	require.NoError(t, err)
	_, err = repo.SyncFromProvider(ctx, &domain.IdentityUser{ID: "user_c", Email: "c@x.com"}, "org_2")
	require.NoError(t, err)

	users, err := repo.ListByOrganization(ctx, "org_1")
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestSetRole(t *testing.T) {
	db, cleanup := testutil.SetupTestMongoDB(t, "atrium_test")
	defer cleanup()

	ctx := context.Background()
	repo, err := NewUserMirrorRepository(ctx, db)
	require.NoError(t, err)

	user := &domain.IdentityUser{ID: "user_03H", Email: "c@d.com"}
	_, err = repo.SyncFromProvider(ctx, user, "")
	require.NoError(t, err)

	require.NoError(t, repo.SetRole(ctx, user.ID, "org_1", domain.RoleAdmin))

	mirror, err := repo.GetByProviderID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, mirror.Role)
	assert.Equal(t, "org_1", mirror.OrganizationID)

	assert.Error(t, repo.SetRole(ctx, "missing", "org_1", domain.RoleAdmin))
}
