package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/neighborhood-library/api-service/internal/auth"
	"github.com/neighborhood-library/api-service/internal/database/testimonials"
	"github.com/neighborhood-library/api-service/internal/entities"
)

// TestimonialsController serves the book review endpoints.
type TestimonialsController struct {
	repo         *testimonials.Repository
	defaultLimit int
}

func NewTestimonialsController(repo *testimonials.Repository, defaultLimit int) *TestimonialsController {
	return &TestimonialsController{repo: repo, defaultLimit: defaultLimit}
}

type testimonialCreateRequest struct {
	BookID     uint   `json:"book_id" binding:"required"`
	ReaderName string `json:"reader_name" binding:"required,max=255"`
	Rating     int    `json:"rating" binding:"required,gte=1,lte=5"`
	Comment    string `json:"comment" binding:"required"`
	MemberID   *uint  `json:"member_id"`
}

type testimonialUpdateRequest struct {
	Rating     *int    `json:"rating" binding:"omitempty,gte=1,lte=5"`
	Comment    *string `json:"comment" binding:"omitempty,min=1"`
	IsApproved *bool   `json:"is_approved"`
}

// List handles GET /api/testimonials. Unapproved reviews are hidden unless
// approved_only=false is passed.
func (ctrl *TestimonialsController) List(c *gin.Context) {
	skip, limit := parsePagination(c, ctrl.defaultLimit)

	filter := testimonials.Filter{
		ApprovedOnly: c.DefaultQuery("approved_only", "true") != "false",
		Search:       c.Query("search"),
	}
	if raw := c.Query("book_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondBadRequest(c, "invalid book_id")
			return
		}
		filter.BookID = uint(id)
	}

	items, err := ctrl.repo.List(skip, limit, filter)
	if err != nil {
		respondInternalError(c, err, "list testimonials")
		return
	}
	c.JSON(http.StatusOK, items)
}

// Get handles GET /api/testimonials/:id.
func (ctrl *TestimonialsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	testimonial, err := ctrl.repo.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "Testimonial")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get testimonial")
		return
	}
	c.JSON(http.StatusOK, testimonial)
}

// Create handles POST /api/testimonials (authenticated). New reviews always
// await admin approval.
func (ctrl *TestimonialsController) Create(c *gin.Context) {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		respondUnauthorized(c, "authentication required")
		return
	}

	var req testimonialCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	memberID := req.MemberID
	if memberID == nil {
		memberID = principal.MemberID
	}

	testimonial := entities.Testimonial{
		BookID:     req.BookID,
		MemberID:   memberID,
		ReaderName: req.ReaderName,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}

	switch err := ctrl.repo.Create(&testimonial); {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondNotFound(c, "Book")
	case err != nil:
		respondInternalError(c, err, "create testimonial")
	default:
		c.JSON(http.StatusCreated, testimonial)
	}
}

// Update handles PUT /api/testimonials/:id (admin only).
func (ctrl *TestimonialsController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req testimonialUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	testimonial, err := ctrl.repo.Update(id, testimonials.Update{
		Rating:     req.Rating,
		Comment:    req.Comment,
		IsApproved: req.IsApproved,
	})
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondNotFound(c, "Testimonial")
	case err != nil:
		respondInternalError(c, err, "update testimonial")
	default:
		c.JSON(http.StatusOK, testimonial)
	}
}

// Delete handles DELETE /api/testimonials/:id (admin only).
func (ctrl *TestimonialsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	switch err := ctrl.repo.Delete(id); {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondNotFound(c, "Testimonial")
	case err != nil:
		respondInternalError(c, err, "delete testimonial")
	default:
		c.Status(http.StatusNoContent)
	}
}
