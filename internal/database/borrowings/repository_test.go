package borrowings

import (
	"os"
	"testing"
	"time"

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

func seedBook(t *testing.T, db *database.Database, total, available int) *entities.Book {
	t.Helper()
	book := &entities.Book{
		Title:           "The Dispossessed",
		Author:          "Ursula K. Le Guin",
		TotalCopies:     total,
		AvailableCopies: available,
	}
	require.NoError(t, db.Write.Create(book).Error)
	return book
}

func seedMember(t *testing.T, db *database.Database, email string) *entities.Member {
	t.Helper()
	member := &entities.Member{Name: "Reader", Email: email}
	require.NoError(t, db.Write.Create(member).Error)
	return member
}

func bookByID(t *testing.T, db *database.Database, id uint) *entities.Book {
	t.Helper()
	var book entities.Book
	require.NoError(t, db.Read.First(&book, id).Error)
	return &book
}

func TestCreate(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	book := seedBook(t, db, 3, 3)
	member := seedMember(t, db, "reader@example.com")
	due := time.Now().AddDate(0, 0, 14)

	t.Run("decrements availability exactly once", func(t *testing.T) {
		borrowing, err := repo.Create(book.ID, member.ID, due)
		require.NoError(t, err)
		assert.Equal(t, entities.StatusBorrowed, borrowing.Status)
		assert.Nil(t, borrowing.ReturnDate)
		assert.Equal(t, 2, bookByID(t, db, book.ID).AvailableCopies)
	})

	t.Run("rejects a second active loan for the same pair", func(t *testing.T) {
		_, err := repo.Create(book.ID, member.ID, due)
		assert.ErrorIs(t, err, ErrAlreadyBorrowed)
		assert.Equal(t, 2, bookByID(t, db, book.ID).AvailableCopies)
	})

	t.Run("unknown book or member", func(t *testing.T) {
		_, err := repo.Create(9999, member.ID, due)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		_, err = repo.Create(book.ID, 9999, due)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestCreateUnavailableBook(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	book := seedBook(t, db, 1, 0)
	member := seedMember(t, db, "reader@example.com")

	_, err := repo.Create(book.ID, member.ID, time.Now().AddDate(0, 0, 7))
	assert.ErrorIs(t, err, ErrBookUnavailable)

	// no borrowing row, no counter change
	var count int64
	require.NoError(t, db.Read.Model(&entities.Borrowing{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Equal(t, 0, bookByID(t, db, book.ID).AvailableCopies)
}

func TestCreateSingleCopyContention(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	book := seedBook(t, db, 1, 1)
	first := seedMember(t, db, "first@example.com")
	second := seedMember(t, db, "second@example.com")
	due := time.Now().AddDate(0, 0, 7)

	_, err := repo.Create(book.ID, first.ID, due)
	require.NoError(t, err)

	_, err = repo.Create(book.ID, second.ID, due)
	assert.ErrorIs(t, err, ErrBookUnavailable)
	assert.Equal(t, 0, bookByID(t, db, book.ID).AvailableCopies)
}

func TestReturn(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	book := seedBook(t, db, 2, 2)
	member := seedMember(t, db, "reader@example.com")

	t.Run("on-time return carries no fine", func(t *testing.T) {
		borrowing, err := repo.Create(book.ID, member.ID, time.Now().AddDate(0, 0, 7))
		require.NoError(t, err)

		returned, err := repo.Return(borrowing.ID, nil, 1.0)
		require.NoError(t, err)
		assert.Equal(t, entities.StatusReturned, returned.Status)
		require.NotNil(t, returned.ReturnDate)
		assert.Zero(t, returned.FineAmount)
		assert.Equal(t, 2, bookByID(t, db, book.ID).AvailableCopies)
	})

	t.Run("overdue return accrues the daily fine", func(t *testing.T) {
		borrowing, err := repo.Create(book.ID, member.ID, time.Now().AddDate(0, 0, -3))
		require.NoError(t, err)

		returned, err := repo.Return(borrowing.ID, nil, 1.5)
		require.NoError(t, err)
		assert.InDelta(t, 4.5, returned.FineAmount, 0.001)
	})

	t.Run("fine override wins over the computed amount", func(t *testing.T) {
		borrowing, err := repo.Create(book.ID, member.ID, time.Now().AddDate(0, 0, -10))
		require.NoError(t, err)

		override := 2.0
		returned, err := repo.Return(borrowing.ID, &override, 1.0)
		require.NoError(t, err)
		assert.InDelta(t, 2.0, returned.FineAmount, 0.001)
	})

	t.Run("double return is rejected without a second increment", func(t *testing.T) {
		borrowing, err := repo.Create(book.ID, member.ID, time.Now().AddDate(0, 0, 7))
		require.NoError(t, err)
		before := bookByID(t, db, book.ID).AvailableCopies

		_, err = repo.Return(borrowing.ID, nil, 1.0)
		require.NoError(t, err)
		assert.Equal(t, before+1, bookByID(t, db, book.ID).AvailableCopies)

		_, err = repo.Return(borrowing.ID, nil, 1.0)
		assert.ErrorIs(t, err, ErrAlreadyReturned)
		assert.Equal(t, before+1, bookByID(t, db, book.ID).AvailableCopies)
	})
}

func TestReturnClampsAtTotalCopies(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	book := seedBook(t, db, 1, 1)
	member := seedMember(t, db, "reader@example.com")

	borrowing, err := repo.Create(book.ID, member.ID, time.Now().AddDate(0, 0, 7))
	require.NoError(t, err)

	// availability drifted upward out of band; the return must not push it
	// past total_copies
	require.NoError(t, db.Write.Model(&entities.Book{}).
		Where("id = ?", book.ID).
		Update("available_copies", 1).Error)

	_, err = repo.Return(borrowing.ID, nil, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 1, bookByID(t, db, book.ID).AvailableCopies)
}

func TestUpdate(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	book := seedBook(t, db, 2, 2)
	member := seedMember(t, db, "reader@example.com")

	t.Run("setting return date closes the loan", func(t *testing.T) {
		borrowing, err := repo.Create(book.ID, member.ID, time.Now().AddDate(0, 0, 7))
		require.NoError(t, err)

		returnDate := time.Now()
		updated, err := repo.Update(borrowing.ID, Update{ReturnDate: &returnDate})
		require.NoError(t, err)
		assert.Equal(t, entities.StatusReturned, updated.Status)
		assert.Equal(t, 2, bookByID(t, db, book.ID).AvailableCopies)

		_, err = repo.Update(borrowing.ID, Update{ReturnDate: &returnDate})
		assert.ErrorIs(t, err, ErrAlreadyReturned)
	})

	t.Run("explicit status wins over the implied returned status", func(t *testing.T) {
		borrowing, err := repo.Create(book.ID, member.ID, time.Now().AddDate(0, 0, -3))
		require.NoError(t, err)
		before := bookByID(t, db, book.ID).AvailableCopies

		returnDate := time.Now()
		overdue := entities.StatusOverdue
		updated, err := repo.Update(borrowing.ID, Update{ReturnDate: &returnDate, Status: &overdue})
		require.NoError(t, err)
		assert.Equal(t, entities.StatusOverdue, updated.Status)
		require.NotNil(t, updated.ReturnDate)
		assert.Equal(t, before+1, bookByID(t, db, book.ID).AvailableCopies)
	})

	t.Run("status and fine update without touching availability", func(t *testing.T) {
		borrowing, err := repo.Create(book.ID, member.ID, time.Now().AddDate(0, 0, -1))
		require.NoError(t, err)
		before := bookByID(t, db, book.ID).AvailableCopies

		overdue := entities.StatusOverdue
		fine := 3.0
		updated, err := repo.Update(borrowing.ID, Update{Status: &overdue, FineAmount: &fine})
		require.NoError(t, err)
		assert.Equal(t, entities.StatusOverdue, updated.Status)
		assert.InDelta(t, 3.0, updated.FineAmount, 0.001)
		assert.Equal(t, before, bookByID(t, db, book.ID).AvailableCopies)
	})
}

func TestDelete(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	book := seedBook(t, db, 1, 1)
	member := seedMember(t, db, "reader@example.com")

	t.Run("deleting an open loan restores availability", func(t *testing.T) {
		borrowing, err := repo.Create(book.ID, member.ID, time.Now().AddDate(0, 0, 7))
		require.NoError(t, err)
		require.Equal(t, 0, bookByID(t, db, book.ID).AvailableCopies)

		require.NoError(t, repo.Delete(borrowing.ID))
		assert.Equal(t, 1, bookByID(t, db, book.ID).AvailableCopies)
	})

	t.Run("deleting a closed loan leaves the counter alone", func(t *testing.T) {
		borrowing, err := repo.Create(book.ID, member.ID, time.Now().AddDate(0, 0, 7))
		require.NoError(t, err)
		_, err = repo.Return(borrowing.ID, nil, 1.0)
		require.NoError(t, err)
		before := bookByID(t, db, book.ID).AvailableCopies

		require.NoError(t, repo.Delete(borrowing.ID))
		assert.Equal(t, before, bookByID(t, db, book.ID).AvailableCopies)
	})
}

func TestDueSoonAndOverdue(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	dueTomorrow := seedBook(t, db, 1, 1)
	dueNextWeek := seedBook2(t, db, "0-111", 1, 1)
	pastDue := seedBook2(t, db, "0-222", 1, 1)
	member := seedMember(t, db, "reader@example.com")

	_, err := repo.Create(dueTomorrow.ID, member.ID, time.Now().AddDate(0, 0, 1))
	require.NoError(t, err)
	_, err = repo.Create(dueNextWeek.ID, member.ID, time.Now().AddDate(0, 0, 7))
	require.NoError(t, err)
	_, err = repo.Create(pastDue.ID, member.ID, time.Now().AddDate(0, 0, -2))
	require.NoError(t, err)

	dueSoon, err := repo.DueSoon(1)
	require.NoError(t, err)
	require.Len(t, dueSoon, 1)
	assert.Equal(t, dueTomorrow.ID, dueSoon[0].BookID)
	require.NotNil(t, dueSoon[0].Member)
	assert.Equal(t, member.Email, dueSoon[0].Member.Email)

	overdue, err := repo.Overdue()
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, pastDue.ID, overdue[0].BookID)
}

func seedBook2(t *testing.T, db *database.Database, isbn string, total, available int) *entities.Book {
	t.Helper()
	book := &entities.Book{
		Title:           "Another Book",
		Author:          "Another Author",
		ISBN:            isbn,
		TotalCopies:     total,
		AvailableCopies: available,
	}
	require.NoError(t, db.Write.Create(book).Error)
	return book
}

func TestActiveForMember(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	later := seedBook(t, db, 1, 1)
	sooner := seedBook2(t, db, "0-333", 1, 1)
	member := seedMember(t, db, "reader@example.com")

	_, err := repo.Create(later.ID, member.ID, time.Now().AddDate(0, 0, 14))
	require.NoError(t, err)
	_, err = repo.Create(sooner.ID, member.ID, time.Now().AddDate(0, 0, 2))
	require.NoError(t, err)

	active, err := repo.ActiveForMember(member.ID)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, sooner.ID, active[0].BookID)
	assert.Equal(t, later.ID, active[1].BookID)
}

func TestDaysBetween(t *testing.T) {
	t.Run("whole days in a fixed zone", func(t *testing.T) {
		a := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
		b := time.Date(2026, 3, 4, 1, 0, 0, 0, time.UTC)
		assert.Equal(t, 3, daysBetween(a, b))
		assert.Equal(t, -3, daysBetween(b, a))
	})

	t.Run("spring-forward day still counts", func(t *testing.T) {
		loc, err := time.LoadLocation("America/New_York")
		require.NoError(t, err)

		// March 8 2026 is 23 hours long in this zone; the span must still
		// come out as two calendar days.
		a := time.Date(2026, 3, 7, 12, 0, 0, 0, loc)
		b := time.Date(2026, 3, 9, 12, 0, 0, 0, loc)
		assert.Equal(t, 2, daysBetween(a, b))
	})
}
