package service

import (
	"context"
	"testing"

	"shelftalk/internal/models"
	"shelftalk/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestBookService_Shelves(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewBookService(repository.NewBookRepository(db))
	ctx := context.Background()

	alice := createServiceUser(t, db, "alice")

	t.Run("Missing title", func(t *testing.T) {
		_, err := svc.AddBook(ctx, AddBookInput{UserID: alice.ID})
		assert.True(t, models.HasCode(err, models.CodeValidation))
	})

	t.Run("Unknown shelf", func(t *testing.T) {
		_, err := svc.AddBook(ctx, AddBookInput{UserID: alice.ID, Title: "Dune", Shelf: "favorites"})
		assert.True(t, models.HasCode(err, models.CodeValidation))
	})

	book, err := svc.AddBook(ctx, AddBookInput{UserID: alice.ID, Title: "Dune", Author: "Frank Herbert"})
	require.NoError(t, err)
	assert.Equal(t, models.ShelfWantToRead, book.Shelf)

	t.Run("Move between shelves", func(t *testing.T) {
		moved, err := svc.MoveBook(ctx, alice.ID, book.ID, models.ShelfReading)
		require.NoError(t, err)
		assert.Equal(t, models.ShelfReading, moved.Shelf)

		reading, err := svc.GetShelf(ctx, alice.ID, models.ShelfReading)
		require.NoError(t, err)
		assert.Len(t, reading, 1)

		wanted, err := svc.GetShelf(ctx, alice.ID, models.ShelfWantToRead)
		require.NoError(t, err)
		assert.Empty(t, wanted)
	})

	t.Run("Only owner can move", func(t *testing.T) {
		bob := createServiceUser(t, db, "bob")
		_, err := svc.MoveBook(ctx, bob.ID, book.ID, models.ShelfRead)
		assert.True(t, models.HasCode(err, models.CodePermission))

		err = svc.RemoveBook(ctx, bob.ID, book.ID)
		assert.True(t, models.HasCode(err, models.CodePermission))
	})

	t.Run("Owner removes", func(t *testing.T) {
		require.NoError(t, svc.RemoveBook(ctx, alice.ID, book.ID))
		books, err := svc.GetShelf(ctx, alice.ID, "")
		require.NoError(t, err)
		assert.Empty(t, books)
	})
}

func TestBookService_Reviews(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewBookService(repository.NewBookRepository(db))
	ctx := context.Background()

	alice := createServiceUser(t, db, "alice")
	book, err := svc.AddBook(ctx, AddBookInput{UserID: alice.ID, Title: "Dune"})
	require.NoError(t, err)

	t.Run("Validation", func(t *testing.T) {
		_, err := svc.AddReview(ctx, AddReviewInput{UserID: alice.ID, BookID: book.ID})
		assert.True(t, models.HasCode(err, models.CodeValidation))

		_, err = svc.AddReview(ctx, AddReviewInput{UserID: alice.ID, BookID: book.ID, Rating: intPtr(6)})
		assert.True(t, models.HasCode(err, models.CodeValidation))

		_, err = svc.AddReview(ctx, AddReviewInput{UserID: alice.ID, BookID: 9999, Body: "great"})
		assert.True(t, models.HasCode(err, models.CodeNotFound))
	})

	_, err = svc.AddReview(ctx, AddReviewInput{UserID: alice.ID, BookID: book.ID, Body: "a classic", Rating: intPtr(5)})
	require.NoError(t, err)

	// Legacy rows predate numeric ratings and carry only the verdict text.
	require.NoError(t, db.Create(&models.Review{BookID: book.ID, UserID: alice.ID, Body: models.LegacyVerdictGood}).Error)
	require.NoError(t, db.Create(&models.Review{BookID: book.ID, UserID: alice.ID, Body: models.LegacyVerdictBad}).Error)
	require.NoError(t, db.Create(&models.Review{BookID: book.ID, UserID: alice.ID, Body: "meh, unsure"}).Error)

	reviews, err := svc.GetReviews(ctx, book.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, reviews, 4)

	byBody := make(map[string]*models.Review, len(reviews))
	for _, review := range reviews {
		byBody[review.Body] = review
	}

	require.NotNil(t, byBody["a classic"].Rating)
	assert.Equal(t, 5, *byBody["a classic"].Rating)

	require.NotNil(t, byBody[models.LegacyVerdictGood].Rating)
	assert.Equal(t, models.LegacyGoodRating, *byBody[models.LegacyVerdictGood].Rating)

	require.NotNil(t, byBody[models.LegacyVerdictBad].Rating)
	assert.Equal(t, models.LegacyBadRating, *byBody[models.LegacyVerdictBad].Rating)

	// Free text that is not a legacy verdict stays unrated.
	assert.Nil(t, byBody["meh, unsure"].Rating)
}
