package service

import (
	"context"

	"shelftalk/internal/cache"
	"shelftalk/internal/models"
	"shelftalk/internal/repository"
)

// BookService provides bookshelf and review business logic.
type BookService struct {
	bookRepo repository.BookRepository
}

// AddBookInput is the input for adding a book to a shelf.
type AddBookInput struct {
	UserID   string
	Title    string
	Author   string
	CoverURL string
	Shelf    string
}

// AddReviewInput is the input for reviewing a book.
type AddReviewInput struct {
	UserID string
	BookID uint
	Body   string
	Rating *int
}

// NewBookService returns a new BookService.
func NewBookService(bookRepo repository.BookRepository) *BookService {
	return &BookService{bookRepo: bookRepo}
}

func validShelf(shelf string) bool {
	switch shelf {
	case models.ShelfRead, models.ShelfReading, models.ShelfWantToRead:
		return true
	}
	return false
}

// AddBook places a book on the user's shelf.
func (s *BookService) AddBook(ctx context.Context, in AddBookInput) (*models.Book, error) {
	if in.Title == "" {
		return nil, models.NewValidationError("Book title is required")
	}
	if in.Shelf == "" {
		in.Shelf = models.ShelfWantToRead
	}
	if !validShelf(in.Shelf) {
		return nil, models.NewValidationError("Unknown shelf: " + in.Shelf)
	}

	book := &models.Book{
		UserID:   in.UserID,
		Title:    in.Title,
		Author:   in.Author,
		CoverURL: in.CoverURL,
		Shelf:    in.Shelf,
	}
	if err := s.bookRepo.CreateBook(ctx, book); err != nil {
		return nil, classifyStoreError(err)
	}
	return book, nil
}

// GetShelf lists the user's books, optionally filtered to one shelf.
func (s *BookService) GetShelf(ctx context.Context, userID, shelf string) ([]*models.Book, error) {
	if shelf != "" && !validShelf(shelf) {
		return nil, models.NewValidationError("Unknown shelf: " + shelf)
	}
	books, err := s.bookRepo.GetUserBooks(ctx, userID, shelf)
	if err != nil {
		return nil, classifyStoreError(err)
	}
	return books, nil
}

// MoveBook changes which shelf a book sits on. Only the owner may move it.
func (s *BookService) MoveBook(ctx context.Context, userID string, bookID uint, shelf string) (*models.Book, error) {
	if !validShelf(shelf) {
		return nil, models.NewValidationError("Unknown shelf: " + shelf)
	}
	book, err := s.bookRepo.GetBook(ctx, bookID)
	if err != nil {
		return nil, classifyStoreError(err)
	}
	if book == nil {
		return nil, models.NewNotFoundError("Book", bookID)
	}
	if book.UserID != userID {
		return nil, models.NewPermissionError("You can only move books on your own shelf")
	}

	book.Shelf = shelf
	if err := s.bookRepo.UpdateBook(ctx, book); err != nil {
		return nil, classifyStoreError(err)
	}
	cache.InvalidateBook(ctx, book.ID)
	return book, nil
}

// RemoveBook deletes a book from the user's shelf.
func (s *BookService) RemoveBook(ctx context.Context, userID string, bookID uint) error {
	book, err := s.bookRepo.GetBook(ctx, bookID)
	if err != nil {
		return classifyStoreError(err)
	}
	if book == nil {
		return models.NewNotFoundError("Book", bookID)
	}
	if book.UserID != userID {
		return models.NewPermissionError("You can only remove books from your own shelf")
	}
	if err := s.bookRepo.DeleteBook(ctx, bookID); err != nil {
		return classifyStoreError(err)
	}
	cache.InvalidateBook(ctx, bookID)
	return nil
}

// AddReview records a review. A numeric rating must be 1 to 5; a review may
// also carry only body text.
func (s *BookService) AddReview(ctx context.Context, in AddReviewInput) (*models.Review, error) {
	if in.Body == "" && in.Rating == nil {
		return nil, models.NewValidationError("Review text or rating is required")
	}
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		return nil, models.NewValidationError("Rating must be between 1 and 5")
	}

	book, err := s.bookRepo.GetBook(ctx, in.BookID)
	if err != nil {
		return nil, classifyStoreError(err)
	}
	if book == nil {
		return nil, models.NewNotFoundError("Book", in.BookID)
	}

	review := &models.Review{
		BookID: in.BookID,
		UserID: in.UserID,
		Body:   in.Body,
		Rating: in.Rating,
	}
	if err := s.bookRepo.CreateReview(ctx, review); err != nil {
		return nil, classifyStoreError(err)
	}
	return review, nil
}

// GetReviews lists a book's reviews, newest first. Legacy rows that predate
// numeric ratings are normalized before they leave the service.
func (s *BookService) GetReviews(ctx context.Context, bookID uint, limit, offset int) ([]*models.Review, error) {
	limit, offset = clampPagination(limit, offset)
	reviews, err := s.bookRepo.GetBookReviews(ctx, bookID, limit, offset)
	if err != nil {
		return nil, classifyStoreError(err)
	}
	for _, review := range reviews {
		review.NormalizeRating()
	}
	return reviews, nil
}
