package subscriptions

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neighborhood-library/api-service/internal/database"
	"github.com/neighborhood-library/api-service/internal/entities"
)

// setupTestDB creates a fresh test database
func setupTestDB(t *testing.T) (*database.Database, func()) {
	t.Helper()
	dbPath := "./test_" + t.Name() + ".db"
	db, err := database.NewSQLite(dbPath)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db, cleanup
}

func TestCreate(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	t.Run("anonymous subscription", func(t *testing.T) {
		sub, err := repo.Create("news@example.com", nil)
		require.NoError(t, err)
		assert.True(t, sub.IsActive)
		assert.Nil(t, sub.MemberID)
		assert.False(t, sub.SubscribedAt.IsZero())
	})

	t.Run("duplicate active subscription is rejected", func(t *testing.T) {
		_, err := repo.Create("news@example.com", nil)
		assert.ErrorIs(t, err, ErrAlreadySubscribed)
	})

	t.Run("matching member is linked automatically", func(t *testing.T) {
		member := entities.Member{Name: "Ada", Email: "ada@example.com"}
		require.NoError(t, db.Write.Create(&member).Error)

		sub, err := repo.Create("ada@example.com", nil)
		require.NoError(t, err)
		require.NotNil(t, sub.MemberID)
		assert.Equal(t, member.ID, *sub.MemberID)
	})

	t.Run("inactive subscription can be re-created", func(t *testing.T) {
		require.NoError(t, db.Write.Model(&entities.Subscription{}).
			Where("email = ?", "news@example.com").
			Update("is_active", false).Error)

		_, err := repo.Create("news@example.com", nil)
		assert.NoError(t, err)
	})
}

func TestListActive(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	_, err := repo.Create("one@example.com", nil)
	require.NoError(t, err)
	_, err = repo.Create("two@example.com", nil)
	require.NoError(t, err)
	require.NoError(t, db.Write.Model(&entities.Subscription{}).
		Where("email = ?", "two@example.com").
		Update("is_active", false).Error)

	subs, total, err := repo.ListActive(0, 10, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, subs, 1)
	assert.Equal(t, "one@example.com", subs[0].Email)

	subs, _, err = repo.ListActive(0, 10, "ONE")
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}
