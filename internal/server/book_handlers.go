package server

import (
	"shelftalk/internal/models"
	"shelftalk/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AddBook handles POST /api/books
// @Summary Add a book to the caller's shelf
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{title=string,author=string,cover_url=string,shelf=string} true "Book"
// @Success 201 {object} models.Book
// @Failure 400 {object} models.ErrorResponse
// @Router /books [post]
func (s *Server) AddBook(c *fiber.Ctx) error {
	var req struct {
		Title    string `json:"title"`
		Author   string `json:"author"`
		CoverURL string `json:"cover_url"`
		Shelf    string `json:"shelf"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	book, err := s.bookService.AddBook(c.Context(), service.AddBookInput{
		UserID:   currentUserID(c),
		Title:    req.Title,
		Author:   req.Author,
		CoverURL: req.CoverURL,
		Shelf:    req.Shelf,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(book)
}

// GetMyShelf handles GET /api/books
// @Summary List the caller's shelf
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param shelf query string false "Filter: read, reading or want_to_read"
// @Success 200 {array} models.Book
// @Router /books [get]
func (s *Server) GetMyShelf(c *fiber.Ctx) error {
	books, err := s.bookService.GetShelf(c.Context(), currentUserID(c), c.Query("shelf"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(books)
}

// GetUserShelf handles GET /api/users/:id/books
// @Summary List another user's shelf
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param shelf query string false "Filter: read, reading or want_to_read"
// @Success 200 {array} models.Book
// @Router /users/{id}/books [get]
func (s *Server) GetUserShelf(c *fiber.Ctx) error {
	books, err := s.bookService.GetShelf(c.Context(), c.Params("id"), c.Query("shelf"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(books)
}

// MoveBook handles PUT /api/books/:id/shelf
// @Summary Move a book between shelves
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param request body object{shelf=string} true "Target shelf"
// @Success 200 {object} models.Book
// @Failure 403 {object} models.ErrorResponse
// @Router /books/{id}/shelf [put]
func (s *Server) MoveBook(c *fiber.Ctx) error {
	bookID, err := s.parseNumericID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Shelf string `json:"shelf"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	book, err := s.bookService.MoveBook(c.Context(), currentUserID(c), bookID, req.Shelf)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(book)
}

// RemoveBook handles DELETE /api/books/:id
// @Summary Remove a book from the caller's shelf
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Router /books/{id} [delete]
func (s *Server) RemoveBook(c *fiber.Ctx) error {
	bookID, err := s.parseNumericID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.bookService.RemoveBook(c.Context(), currentUserID(c), bookID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddReview handles POST /api/books/:id/reviews
// @Summary Review a book
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param request body object{body=string,rating=int} true "Review"
// @Success 201 {object} models.Review
// @Failure 400 {object} models.ErrorResponse
// @Router /books/{id}/reviews [post]
func (s *Server) AddReview(c *fiber.Ctx) error {
	bookID, err := s.parseNumericID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Body   string `json:"body"`
		Rating *int   `json:"rating"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	review, err := s.bookService.AddReview(c.Context(), service.AddReviewInput{
		UserID: currentUserID(c),
		BookID: bookID,
		Body:   req.Body,
		Rating: req.Rating,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

// GetReviews handles GET /api/books/:id/reviews
// @Summary List a book's reviews
// @Description Reviews newest first. Legacy free-text verdicts carry their normalized numeric rating.
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {array} models.Review
// @Router /books/{id}/reviews [get]
func (s *Server) GetReviews(c *fiber.Ctx) error {
	bookID, err := s.parseNumericID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 50)
	reviews, err := s.bookService.GetReviews(c.Context(), bookID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(reviews)
}
