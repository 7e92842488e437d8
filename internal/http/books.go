package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/neighborhood-library/api-service/internal/database/books"
	"github.com/neighborhood-library/api-service/internal/entities"
)

// BooksController serves the book catalog endpoints.
type BooksController struct {
	repo    *books.Repository
	perPage int
}

func NewBooksController(repo *books.Repository, perPage int) *BooksController {
	return &BooksController{repo: repo, perPage: perPage}
}

type bookCreateRequest struct {
	Title           string `json:"title" binding:"required,max=255"`
	Author          string `json:"author" binding:"required,max=255"`
	ISBN            string `json:"isbn" binding:"omitempty,max=20"`
	PublishedYear   int    `json:"published_year" binding:"omitempty,gte=1000,lte=2100"`
	TotalCopies     *int   `json:"total_copies" binding:"omitempty,gte=1"`
	AvailableCopies *int   `json:"available_copies" binding:"omitempty,gte=0"`
}

type bookUpdateRequest struct {
	Title           *string `json:"title" binding:"omitempty,min=1,max=255"`
	Author          *string `json:"author" binding:"omitempty,min=1,max=255"`
	ISBN            *string `json:"isbn" binding:"omitempty,max=20"`
	PublishedYear   *int    `json:"published_year" binding:"omitempty,gte=1000,lte=2100"`
	TotalCopies     *int    `json:"total_copies" binding:"omitempty,gte=1"`
	AvailableCopies *int    `json:"available_copies" binding:"omitempty,gte=0"`
}

// List handles GET /api/books with pagination and search.
func (ctrl *BooksController) List(c *gin.Context) {
	skip, limit := parsePagination(c, ctrl.perPage)

	items, total, err := ctrl.repo.List(skip, limit, c.Query("search"))
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, PaginatedResponse{Items: items, Total: total, Skip: skip, Limit: limit})
}

// Get handles GET /api/books/:id.
func (ctrl *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := ctrl.repo.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "Book")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// Create handles POST /api/books (admin only).
func (ctrl *BooksController) Create(c *gin.Context) {
	var req bookCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	total := 1
	if req.TotalCopies != nil {
		total = *req.TotalCopies
	}
	available := total
	if req.AvailableCopies != nil {
		available = *req.AvailableCopies
	}

	book := entities.Book{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		PublishedYear:   req.PublishedYear,
		TotalCopies:     total,
		AvailableCopies: available,
	}

	switch err := ctrl.repo.Create(&book); {
	case errors.Is(err, books.ErrDuplicateISBN):
		respondConflict(c, err.Error())
	case errors.Is(err, books.ErrAvailableExceedsTotal):
		respondBadRequest(c, err.Error())
	case err != nil:
		respondInternalError(c, err, "create book")
	default:
		c.JSON(http.StatusCreated, book)
	}
}

// Update handles PUT /api/books/:id (admin only, partial semantics).
func (ctrl *BooksController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req bookUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	book, err := ctrl.repo.Update(id, books.Update{
		Title:           req.Title,
		Author:          req.Author,
		ISBN:            req.ISBN,
		PublishedYear:   req.PublishedYear,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.AvailableCopies,
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondNotFound(c, "Book")
	case errors.Is(err, books.ErrDuplicateISBN):
		respondConflict(c, err.Error())
	case err != nil:
		respondInternalError(c, err, "update book")
	default:
		c.JSON(http.StatusOK, book)
	}
}

// Delete handles DELETE /api/books/:id (admin only).
func (ctrl *BooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	switch err := ctrl.repo.Delete(id); {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondNotFound(c, "Book")
	case err != nil:
		respondInternalError(c, err, "delete book")
	default:
		c.Status(http.StatusNoContent)
	}
}
