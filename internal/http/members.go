package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/neighborhood-library/api-service/internal/auth"
	"github.com/neighborhood-library/api-service/internal/database/members"
	"github.com/neighborhood-library/api-service/internal/entities"
)

// MembersController serves the member management endpoints.
type MembersController struct {
	repo       *members.Repository
	perPage    int
	bcryptCost int
}

func NewMembersController(repo *members.Repository, perPage, bcryptCost int) *MembersController {
	return &MembersController{repo: repo, perPage: perPage, bcryptCost: bcryptCost}
}

type memberCreateRequest struct {
	Name           string `json:"name" binding:"required,max=255"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone" binding:"omitempty,max=20"`
	Address        string `json:"address"`
	ProfilePicture string `json:"profile_picture"`

	// Optional user account creation
	CreateUserAccount bool   `json:"create_user_account"`
	Role              string `json:"role" binding:"omitempty,oneof=admin member"`
	Password          string `json:"password" binding:"omitempty,min=6"`
}

type memberUpdateRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1,max=255"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Phone          *string `json:"phone" binding:"omitempty,max=20"`
	Address        *string `json:"address"`
	ProfilePicture *string `json:"profile_picture"`

	UpdateUserAccount bool   `json:"update_user_account"`
	Role              string `json:"role" binding:"omitempty,oneof=admin member"`
	Password          string `json:"password" binding:"omitempty,min=6"`
}

// List handles GET /api/members with pagination and search.
func (ctrl *MembersController) List(c *gin.Context) {
	skip, limit := parsePagination(c, ctrl.perPage)

	items, total, err := ctrl.repo.List(skip, limit, c.Query("search"))
	if err != nil {
		respondInternalError(c, err, "list members")
		return
	}
	c.JSON(http.StatusOK, PaginatedResponse{Items: items, Total: total, Skip: skip, Limit: limit})
}

// Get handles GET /api/members/:id.
func (ctrl *MembersController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	member, err := ctrl.repo.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "Member")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get member")
		return
	}
	c.JSON(http.StatusOK, member)
}

// GetAccountInfo handles GET /api/members/:id/user.
func (ctrl *MembersController) GetAccountInfo(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	info, err := ctrl.repo.GetAccountInfo(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "Member")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get member account info")
		return
	}
	c.JSON(http.StatusOK, info)
}

// Create handles POST /api/members (admin only).
func (ctrl *MembersController) Create(c *gin.Context) {
	var req memberCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	account, ok := ctrl.buildAccount(c, req.CreateUserAccount, req.Role, req.Password, true)
	if !ok {
		return
	}

	member := entities.Member{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		ProfilePicture: req.ProfilePicture,
	}

	switch err := ctrl.repo.Create(&member, account); {
	case errors.Is(err, members.ErrDuplicateEmail), errors.Is(err, members.ErrDuplicateUserEmail):
		respondConflict(c, err.Error())
	case err != nil:
		respondInternalError(c, err, "create member")
	default:
		c.JSON(http.StatusCreated, member)
	}
}

// Update handles PUT /api/members/:id (admin only, partial semantics).
func (ctrl *MembersController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req memberUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	account, ok := ctrl.buildAccount(c, req.UpdateUserAccount, req.Role, req.Password, false)
	if !ok {
		return
	}

	member, err := ctrl.repo.Update(id, members.Update{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		ProfilePicture: req.ProfilePicture,
	}, account)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondNotFound(c, "Member")
	case errors.Is(err, members.ErrDuplicateEmail):
		respondConflict(c, err.Error())
	case errors.Is(err, members.ErrPasswordRequired):
		respondBadRequest(c, err.Error())
	case err != nil:
		respondInternalError(c, err, "update member")
	default:
		c.JSON(http.StatusOK, member)
	}
}

// Delete handles DELETE /api/members/:id (admin only). Members with active
// borrowings cannot be deleted; historical borrowings are retained with the
// member reference nulled out.
func (ctrl *MembersController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	switch err := ctrl.repo.Delete(id); {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondNotFound(c, "Member")
	case errors.Is(err, members.ErrActiveBorrowings):
		respondBadRequest(c, "cannot delete member with active borrowings, return all books first")
	case err != nil:
		respondInternalError(c, err, "delete member")
	default:
		c.Status(http.StatusNoContent)
	}
}

// Borrowings handles GET /api/members/:id/borrowings.
func (ctrl *MembersController) Borrowings(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	status := entities.BorrowStatus(c.Query("status"))
	if status != "" && !validStatus(status) {
		respondBadRequest(c, "invalid status filter")
		return
	}

	borrowings, err := ctrl.repo.Borrowings(id, status)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "Member")
		return
	}
	if err != nil {
		respondInternalError(c, err, "list member borrowings")
		return
	}
	c.JSON(http.StatusOK, borrowings)
}

// buildAccount hashes the password and assembles the optional account
// options. The password is mandatory when creating a member with an account;
// on update an empty password leaves the existing one in place (the
// repository rejects brand-new accounts without one).
func (ctrl *MembersController) buildAccount(c *gin.Context, requested bool, role, password string, passwordRequired bool) (*members.Account, bool) {
	if !requested {
		return nil, true
	}
	if role == "" {
		role = string(entities.RoleMember)
	}
	if password == "" {
		if passwordRequired {
			respondBadRequest(c, members.ErrPasswordRequired.Error())
			return nil, false
		}
		return &members.Account{Role: entities.Role(role)}, true
	}

	hash, err := auth.HashPassword(password, ctrl.bcryptCost)
	if err != nil {
		respondBadRequest(c, err.Error())
		return nil, false
	}
	return &members.Account{Role: entities.Role(role), PasswordHash: hash}, true
}

func validStatus(status entities.BorrowStatus) bool {
	switch status {
	case entities.StatusBorrowed, entities.StatusReturned, entities.StatusOverdue:
		return true
	}
	return false
}
