package repository

import (
	"context"
	"errors"

	"shelftalk/internal/models"

	"gorm.io/gorm"
)

// BookRepository defines the interface for shelf and review data operations
type BookRepository interface {
	CreateBook(ctx context.Context, book *models.Book) error
	GetBook(ctx context.Context, id uint) (*models.Book, error)
	GetUserBooks(ctx context.Context, userID string, shelf string) ([]*models.Book, error)
	UpdateBook(ctx context.Context, book *models.Book) error
	DeleteBook(ctx context.Context, id uint) error
	CreateReview(ctx context.Context, review *models.Review) error
	GetBookReviews(ctx context.Context, bookID uint, limit, offset int) ([]*models.Review, error)
}

type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) CreateBook(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *bookRepository) GetBook(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	err := r.db.WithContext(ctx).First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) GetUserBooks(ctx context.Context, userID string, shelf string) ([]*models.Book, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if shelf != "" {
		query = query.Where("shelf = ?", shelf)
	}
	var books []*models.Book
	err := query.Order("updated_at DESC").Find(&books).Error
	return books, err
}

func (r *bookRepository) UpdateBook(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).Save(book).Error
}

func (r *bookRepository) DeleteBook(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Book{}, id).Error
}

func (r *bookRepository) CreateReview(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *bookRepository) GetBookReviews(ctx context.Context, bookID uint, limit, offset int) ([]*models.Review, error) {
	var reviews []*models.Review
	err := r.db.WithContext(ctx).
		Where("book_id = ?", bookID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reviews).Error
	return reviews, err
}
