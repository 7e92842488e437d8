package http

import (
	"github.com/gin-gonic/gin"

	"github.com/neighborhood-library/api-service/internal/auth"
	"github.com/neighborhood-library/api-service/internal/config"
	"github.com/neighborhood-library/api-service/internal/database"
	"github.com/neighborhood-library/api-service/internal/database/books"
	"github.com/neighborhood-library/api-service/internal/database/borrowings"
	"github.com/neighborhood-library/api-service/internal/database/members"
	"github.com/neighborhood-library/api-service/internal/database/stats"
	"github.com/neighborhood-library/api-service/internal/database/subscriptions"
	"github.com/neighborhood-library/api-service/internal/database/testimonials"
	"github.com/neighborhood-library/api-service/internal/database/users"
)

// RouterConfig carries everything the HTTP layer needs.
type RouterConfig struct {
	Config  *config.Config
	DB      *database.Database
	Version string

	Books         *books.Repository
	Members       *members.Repository
	Borrowings    *borrowings.Repository
	Users         *users.Repository
	Testimonials  *testimonials.Repository
	Subscriptions *subscriptions.Repository
	Stats         *stats.Repository
}

// NewRouter wires all controllers onto a gin engine. Authentication is
// attached per route group rather than globally so public catalogue
// endpoints stay anonymous.
func NewRouter(rc RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(CORSMiddleware(rc.Config.CORS.AllowedOrigins))

	authRequired := auth.RequireAuth(rc.Config.Auth.JWTSecret, rc.Users)
	adminOnly := auth.RequireAdmin()

	healthCtrl := NewHealthController(rc.DB, rc.Version)
	authCtrl := NewAuthController(rc.Users, rc.Members, rc.Config.Auth)
	booksCtrl := NewBooksController(rc.Books, rc.Config.Pagination.BooksPerPage)
	membersCtrl := NewMembersController(rc.Members, rc.Config.Pagination.MembersPerPage, rc.Config.Auth.BcryptCost)
	borrowingsCtrl := NewBorrowingsController(rc.Borrowings, rc.Config.Pagination.DefaultLimit, rc.Config.Lending.DailyFineRate)
	testimonialsCtrl := NewTestimonialsController(rc.Testimonials, rc.Config.Pagination.DefaultLimit)
	subscriptionsCtrl := NewSubscriptionsController(rc.Subscriptions, rc.Config.Pagination.DefaultLimit)
	dashboardCtrl := NewDashboardController(rc.Stats, rc.Books, rc.Testimonials, rc.Borrowings)

	router.GET("/", healthCtrl.Root)

	api := router.Group("/api")
	{
		api.GET("/health", healthCtrl.Health)
		api.GET("/stats", dashboardCtrl.Stats)
		api.GET("/dashboard", dashboardCtrl.Overview)
		api.GET("/user/dashboard", authRequired, dashboardCtrl.UserOverview)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/signup", authCtrl.Signup)
			authGroup.POST("/login", authCtrl.Login)
			authGroup.POST("/signin", authCtrl.Login)
			authGroup.GET("/me", authRequired, authCtrl.Me)
			authGroup.GET("/profile", authRequired, authCtrl.GetProfile)
			authGroup.PUT("/profile", authRequired, authCtrl.UpdateProfile)
		}
		api.GET("/profile", authRequired, authCtrl.GetProfile)
		api.PUT("/profile", authRequired, authCtrl.UpdateProfile)

		booksGroup := api.Group("/books")
		{
			booksGroup.GET("", booksCtrl.List)
			booksGroup.GET("/:id", booksCtrl.Get)
			booksGroup.POST("", authRequired, adminOnly, booksCtrl.Create)
			booksGroup.PUT("/:id", authRequired, adminOnly, booksCtrl.Update)
			booksGroup.DELETE("/:id", authRequired, adminOnly, booksCtrl.Delete)
		}

		membersGroup := api.Group("/members", authRequired, adminOnly)
		{
			membersGroup.GET("", membersCtrl.List)
			membersGroup.GET("/:id", membersCtrl.Get)
			membersGroup.GET("/:id/user", membersCtrl.GetAccountInfo)
			membersGroup.GET("/:id/borrowings", membersCtrl.Borrowings)
			membersGroup.POST("", membersCtrl.Create)
			membersGroup.PUT("/:id", membersCtrl.Update)
			membersGroup.DELETE("/:id", membersCtrl.Delete)
		}

		borrowingsGroup := api.Group("/borrowings", authRequired)
		{
			borrowingsGroup.GET("", adminOnly, borrowingsCtrl.List)
			borrowingsGroup.GET("/:id", adminOnly, borrowingsCtrl.Get)
			borrowingsGroup.POST("", borrowingsCtrl.Create)
			borrowingsGroup.PUT("/:id/return", borrowingsCtrl.Return)
			borrowingsGroup.PUT("/:id", adminOnly, borrowingsCtrl.Update)
			borrowingsGroup.DELETE("/:id", adminOnly, borrowingsCtrl.Delete)
		}

		testimonialsGroup := api.Group("/testimonials")
		{
			testimonialsGroup.GET("", testimonialsCtrl.List)
			testimonialsGroup.GET("/:id", testimonialsCtrl.Get)
			testimonialsGroup.POST("", authRequired, testimonialsCtrl.Create)
			testimonialsGroup.PUT("/:id", authRequired, adminOnly, testimonialsCtrl.Update)
			testimonialsGroup.DELETE("/:id", authRequired, adminOnly, testimonialsCtrl.Delete)
		}

		subscriptionsGroup := api.Group("/subscriptions")
		{
			subscriptionsGroup.POST("", subscriptionsCtrl.Create)
			subscriptionsGroup.GET("", authRequired, adminOnly, subscriptionsCtrl.List)
		}
	}

	return router
}
