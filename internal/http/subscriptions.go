package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neighborhood-library/api-service/internal/database/subscriptions"
)

// SubscriptionsController serves the mailing-list endpoints.
type SubscriptionsController struct {
	repo         *subscriptions.Repository
	defaultLimit int
}

func NewSubscriptionsController(repo *subscriptions.Repository, defaultLimit int) *SubscriptionsController {
	return &SubscriptionsController{repo: repo, defaultLimit: defaultLimit}
}

type subscriptionCreateRequest struct {
	Email    string `json:"email" binding:"required,email"`
	MemberID *uint  `json:"member_id"`
}

// Create handles POST /api/subscriptions. Open to anonymous callers.
func (ctrl *SubscriptionsController) Create(c *gin.Context) {
	var req subscriptionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	subscription, err := ctrl.repo.Create(req.Email, req.MemberID)
	switch {
	case errors.Is(err, subscriptions.ErrAlreadySubscribed):
		respondConflict(c, err.Error())
	case err != nil:
		respondInternalError(c, err, "create subscription")
	default:
		c.JSON(http.StatusCreated, subscription)
	}
}

// List handles GET /api/subscriptions (admin only).
func (ctrl *SubscriptionsController) List(c *gin.Context) {
	skip, limit := parsePagination(c, ctrl.defaultLimit)

	items, total, err := ctrl.repo.ListActive(skip, limit, c.Query("search"))
	if err != nil {
		respondInternalError(c, err, "list subscriptions")
		return
	}
	c.JSON(http.StatusOK, PaginatedResponse{Items: items, Total: total, Skip: skip, Limit: limit})
}
