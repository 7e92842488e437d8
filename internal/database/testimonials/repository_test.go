package testimonials

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

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

func seedBook(t *testing.T, db *database.Database) *entities.Book {
	t.Helper()
	book := &entities.Book{Title: "Invisible Cities", Author: "Italo Calvino", TotalCopies: 1, AvailableCopies: 1}
	require.NoError(t, db.Write.Create(book).Error)
	return book
}

func TestCreate(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)
	book := seedBook(t, db)

	t.Run("approval is forced off on submission", func(t *testing.T) {
		testimonial := &entities.Testimonial{
			BookID:     book.ID,
			ReaderName: "Marco",
			Rating:     5,
			Comment:    "Wonderful",
			IsApproved: true,
		}
		require.NoError(t, repo.Create(testimonial))
		assert.False(t, testimonial.IsApproved)
	})

	t.Run("unknown book is rejected", func(t *testing.T) {
		testimonial := &entities.Testimonial{BookID: 9999, ReaderName: "Marco", Rating: 4}
		assert.ErrorIs(t, repo.Create(testimonial), gorm.ErrRecordNotFound)
	})
}

func TestListAndModeration(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)
	book := seedBook(t, db)

	pending := &entities.Testimonial{BookID: book.ID, ReaderName: "Marco", Rating: 5, Comment: "Loved it"}
	require.NoError(t, repo.Create(pending))
	hidden := &entities.Testimonial{BookID: book.ID, ReaderName: "Kublai", Rating: 2, Comment: "Not for me"}
	require.NoError(t, repo.Create(hidden))

	t.Run("approved-only filter hides pending reviews", func(t *testing.T) {
		listed, err := repo.List(0, 10, Filter{ApprovedOnly: true})
		require.NoError(t, err)
		assert.Empty(t, listed)
	})

	t.Run("approval makes a review visible", func(t *testing.T) {
		approved := true
		_, err := repo.Update(pending.ID, Update{IsApproved: &approved})
		require.NoError(t, err)

		listed, err := repo.List(0, 10, Filter{ApprovedOnly: true})
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, pending.ID, listed[0].ID)

		recent, err := repo.RecentApproved(5)
		require.NoError(t, err)
		require.Len(t, recent, 1)
		assert.Equal(t, "Invisible Cities", recent[0].Book.Title)
	})

	t.Run("search matches reader name", func(t *testing.T) {
		listed, err := repo.List(0, 10, Filter{Search: "kublai"})
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, hidden.ID, listed[0].ID)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(hidden.ID))
		_, err := repo.GetByID(hidden.ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}
