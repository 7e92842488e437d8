package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/neighborhood-library/api-service/internal/auth"
	"github.com/neighborhood-library/api-service/internal/database/books"
	"github.com/neighborhood-library/api-service/internal/database/borrowings"
	"github.com/neighborhood-library/api-service/internal/database/stats"
	"github.com/neighborhood-library/api-service/internal/database/testimonials"
	"github.com/neighborhood-library/api-service/internal/entities"
)

const (
	dashboardNewBooks     = 10
	dashboardTestimonials = 5
)

// DashboardController aggregates library-wide and per-member overviews.
type DashboardController struct {
	stats        *stats.Repository
	books        *books.Repository
	testimonials *testimonials.Repository
	borrowings   *borrowings.Repository
}

func NewDashboardController(
	statsRepo *stats.Repository,
	booksRepo *books.Repository,
	testimonialsRepo *testimonials.Repository,
	borrowingsRepo *borrowings.Repository,
) *DashboardController {
	return &DashboardController{
		stats:        statsRepo,
		books:        booksRepo,
		testimonials: testimonialsRepo,
		borrowings:   borrowingsRepo,
	}
}

type dashboardResponse struct {
	Stats        *stats.LibraryStats    `json:"stats"`
	NewBooks     []entities.Book        `json:"new_books"`
	Testimonials []entities.Testimonial `json:"testimonials"`
}

type userDashboardResponse struct {
	ActiveBorrowings []entities.Borrowing `json:"active_borrowings"`
}

// Stats handles GET /api/stats.
func (ctrl *DashboardController) Stats(c *gin.Context) {
	snapshot, err := ctrl.stats.Collect()
	if err != nil {
		respondInternalError(c, err, "collect stats")
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// Overview handles GET /api/dashboard: stats, the newest books and the most
// recent approved testimonials in a single payload for the landing page.
func (ctrl *DashboardController) Overview(c *gin.Context) {
	snapshot, err := ctrl.stats.Collect()
	if err != nil {
		respondInternalError(c, err, "collect stats")
		return
	}

	newBooks, err := ctrl.books.Newest(dashboardNewBooks)
	if err != nil {
		respondInternalError(c, err, "list newest books")
		return
	}

	recent, err := ctrl.testimonials.RecentApproved(dashboardTestimonials)
	if err != nil {
		respondInternalError(c, err, "list recent testimonials")
		return
	}

	c.JSON(http.StatusOK, dashboardResponse{
		Stats:        snapshot,
		NewBooks:     newBooks,
		Testimonials: recent,
	})
}

// UserOverview handles GET /api/user/dashboard: the caller's active loans,
// soonest due first. Users without a member profile get an empty list.
func (ctrl *DashboardController) UserOverview(c *gin.Context) {
	principal, ok := auth.GetPrincipal(c)
	if !ok {
		respondUnauthorized(c, "authentication required")
		return
	}

	if principal.MemberID == nil {
		c.JSON(http.StatusOK, userDashboardResponse{ActiveBorrowings: []entities.Borrowing{}})
		return
	}

	active, err := ctrl.borrowings.ActiveForMember(*principal.MemberID)
	if err != nil {
		respondInternalError(c, err, "list active borrowings")
		return
	}
	c.JSON(http.StatusOK, userDashboardResponse{ActiveBorrowings: active})
}
