package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/neighborhood-library/api-service/internal/auth"
	"github.com/neighborhood-library/api-service/internal/database/borrowings"
	"github.com/neighborhood-library/api-service/internal/entities"
)

// BorrowingsController serves the lending workflow endpoints.
type BorrowingsController struct {
	repo          *borrowings.Repository
	defaultLimit  int
	dailyFineRate float64
}

func NewBorrowingsController(repo *borrowings.Repository, defaultLimit int, dailyFineRate float64) *BorrowingsController {
	return &BorrowingsController{repo: repo, defaultLimit: defaultLimit, dailyFineRate: dailyFineRate}
}

type borrowingCreateRequest struct {
	BookID   uint       `json:"book_id" binding:"required"`
	MemberID *uint      `json:"member_id"`
	DueDate  *time.Time `json:"due_date" binding:"required"`
}

type borrowingUpdateRequest struct {
	ReturnDate *time.Time `json:"return_date"`
	Status     *string    `json:"status" binding:"omitempty,oneof=borrowed returned overdue"`
	FineAmount *float64   `json:"fine_amount" binding:"omitempty,gte=0"`
}

// List handles GET /api/borrowings with optional status/member_id/book_id
// filters.
func (ctrl *BorrowingsController) List(c *gin.Context) {
	skip, limit := parsePagination(c, ctrl.defaultLimit)

	filter := borrowings.Filter{}
	if raw := c.Query("status"); raw != "" {
		status := entities.BorrowStatus(raw)
		if !validStatus(status) {
			respondBadRequest(c, "invalid status filter, must be one of: borrowed, returned, overdue")
			return
		}
		filter.Status = status
	}
	if raw := c.Query("member_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondBadRequest(c, "invalid member_id")
			return
		}
		filter.MemberID = uint(id)
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
		respondInternalError(c, err, "list borrowings")
		return
	}
	c.JSON(http.StatusOK, items)
}

// Get handles GET /api/borrowings/:id.
func (ctrl *BorrowingsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	borrowing, err := ctrl.repo.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "Borrowing")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get borrowing")
		return
	}
	c.JSON(http.StatusOK, borrowing)
}

// Create handles POST /api/borrowings. Members always borrow for
// themselves; admins must name a member.
func (ctrl *BorrowingsController) Create(c *gin.Context) {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		respondUnauthorized(c, "authentication required")
		return
	}

	var req borrowingCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	var memberID uint
	if principal.IsAdmin() {
		if req.MemberID == nil {
			respondBadRequest(c, "member_id is required for admin users")
			return
		}
		memberID = *req.MemberID
	} else {
		if principal.MemberID == nil {
			respondBadRequest(c, "member profile not found, please contact an administrator")
			return
		}
		memberID = *principal.MemberID
	}

	borrowing, err := ctrl.repo.Create(req.BookID, memberID, *req.DueDate)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondNotFound(c, "Book or member")
	case errors.Is(err, borrowings.ErrBookUnavailable):
		respondBadRequest(c, err.Error())
	case errors.Is(err, borrowings.ErrAlreadyBorrowed):
		respondBadRequest(c, err.Error())
	case err != nil:
		respondInternalError(c, err, "create borrowing")
	default:
		c.JSON(http.StatusCreated, borrowing)
	}
}

// Return handles PUT /api/borrowings/:id/return. Members may only return
// their own loans; an optional fine_amount query parameter overrides the
// computed fine.
func (ctrl *BorrowingsController) Return(c *gin.Context) {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		respondUnauthorized(c, "authentication required")
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	borrowing, err := ctrl.repo.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "Borrowing")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get borrowing")
		return
	}

	if !principal.IsAdmin() {
		if principal.MemberID == nil || borrowing.MemberID == nil || *principal.MemberID != *borrowing.MemberID {
			respondForbidden(c, "you can only return your own books")
			return
		}
	}

	var fineOverride *float64
	if raw := c.Query("fine_amount"); raw != "" {
		fine, err := strconv.ParseFloat(raw, 64)
		if err != nil || fine < 0 {
			respondBadRequest(c, "invalid fine_amount")
			return
		}
		fineOverride = &fine
	}

	returned, err := ctrl.repo.Return(id, fineOverride, ctrl.dailyFineRate)
	switch {
	case errors.Is(err, borrowings.ErrAlreadyReturned):
		respondBadRequest(c, err.Error())
	case err != nil:
		respondInternalError(c, err, "return borrowing")
	default:
		c.JSON(http.StatusOK, returned)
	}
}

// Update handles PUT /api/borrowings/:id (admin only). Setting return_date
// closes the loan like a return; other fields mutate directly.
func (ctrl *BorrowingsController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req borrowingUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	update := borrowings.Update{
		ReturnDate: req.ReturnDate,
		FineAmount: req.FineAmount,
	}
	if req.Status != nil {
		status := entities.BorrowStatus(*req.Status)
		update.Status = &status
	}

	borrowing, err := ctrl.repo.Update(id, update)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondNotFound(c, "Borrowing")
	case errors.Is(err, borrowings.ErrAlreadyReturned):
		respondBadRequest(c, err.Error())
	case err != nil:
		respondInternalError(c, err, "update borrowing")
	default:
		c.JSON(http.StatusOK, borrowing)
	}
}

// Delete handles DELETE /api/borrowings/:id (admin only).
func (ctrl *BorrowingsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	switch err := ctrl.repo.Delete(id); {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondNotFound(c, "Borrowing")
	case err != nil:
		respondInternalError(c, err, "delete borrowing")
	default:
		c.Status(http.StatusNoContent)
	}
}
