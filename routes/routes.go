package routes

import (
	"net/http"

	"food-rescue-api/handlers"
	"food-rescue-api/metrics"
	"food-rescue-api/middleware"
	"food-rescue-api/models"
	"food-rescue-api/statemachine"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the engine with the shared middleware stack and every
// route registered.
func NewRouter(h *handlers.Handler, jwtSecret []byte) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		metrics.Middleware(),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})),
		cors(),
	)

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	SetupRoutes(r, h, jwtSecret)
	return r
}

// CORS middleware for frontend integration
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func SetupRoutes(r *gin.Engine, h *handlers.Handler, jwtSecret []byte) {
	authRequired := middleware.AuthRequired(jwtSecret)
	activeAccount := middleware.ActiveAccount(h.Accounts())
	only := middleware.RoleRequired

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/auth/register", h.Register)
		public.POST("/auth/login", h.Login)

		// State machine info (great for docs/Postman)
		public.GET("/state-machine", h.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(authRequired, activeAccount)
	{
		auth.GET("/profile", h.GetProfile)
		auth.GET("/stats/dashboard", h.DashboardStats)
		auth.GET("/stats/impact", h.ImpactStats)
	}

	// ── Donations ──────────────────────────────────────────────────
	donations := r.Group("/api/donations")
	donations.Use(authRequired, activeAccount)
	{
		donations.GET("", h.ListDonations)
		donations.GET("/available", h.AvailableDonations)
		donations.GET("/status/:status", h.DonationsByStatus)
		donations.GET("/donor/:donorId", h.DonationsByDonor)
		donations.GET("/ngo/:ngoId", h.DonationsByNgo)
		donations.GET("/volunteer/:volunteerId", h.DonationsByVolunteer)
		donations.GET("/:id", h.GetDonation)
		donations.GET("/:id/history", h.GetDonationHistory)

		donations.POST("", only(models.RoleDonor), h.CreateDonation)
		donations.PUT("/:id/assign-ngo/:ngoId",
			only(statemachine.Donations.ActorsFor(models.DonationAccepted)...), h.AssignDonationToNgo)
		donations.PUT("/:id/assign-volunteer/:volunteerId",
			only(models.RoleNGO, models.RoleVolunteer, models.RoleAdmin), h.AssignDonationToVolunteer)
		donations.PUT("/:id/pickup",
			only(statemachine.Donations.ActorsFor(models.DonationPickedUp)...), h.PickupDonation)
		donations.PUT("/:id/deliver",
			only(statemachine.Donations.ActorsFor(models.DonationDelivered)...), h.DeliverDonation)
		donations.DELETE("/:id", only(models.RoleDonor, models.RoleAdmin), h.DeleteDonation)
	}

	// ── NGO food requests ──────────────────────────────────────────
	requests := r.Group("/api/requests")
	requests.Use(authRequired, activeAccount)
	{
		requests.GET("", h.ListFoodRequests)
		requests.GET("/active", h.ActiveFoodRequests)
		requests.GET("/status/:status", h.FoodRequestsByStatus)
		requests.GET("/priority/:priority", h.FoodRequestsByPriority)
		requests.GET("/ngo/:ngoId", h.FoodRequestsByNgo)
		requests.GET("/:id", h.GetFoodRequest)
		requests.GET("/:id/history", h.GetFoodRequestHistory)
		requests.GET("/:id/matches", h.MatchingDonations)

		requests.POST("", only(models.RoleNGO), h.CreateFoodRequest)
		requests.PUT("/:id/match",
			only(statemachine.Requests.ActorsFor(models.RequestMatched)...), h.MatchFoodRequest)
		requests.PUT("/:id/fulfill",
			only(statemachine.Requests.ActorsFor(models.RequestFulfilled)...), h.FulfillFoodRequest)
		requests.PUT("/:id/cancel",
			only(statemachine.Requests.ActorsFor(models.RequestCancelled)...), h.CancelFoodRequest)
		requests.DELETE("/:id", only(models.RoleNGO, models.RoleAdmin), h.DeleteFoodRequest)
	}

	// ── Orders ─────────────────────────────────────────────────────
	orders := r.Group("/api/orders")
	orders.Use(authRequired, activeAccount)
	{
		orders.POST("", only(models.RoleNGO, models.RoleAdmin), h.PlaceOrder)
		orders.GET("", only(models.RoleAdmin, models.RoleVolunteer), h.ListOrders)
		orders.GET("/ngo/:ngoId", h.OrdersByNgo)
		orders.GET("/:trackingId", h.GetOrder)
		orders.GET("/:trackingId/history", h.GetOrderHistory)
		orders.GET("/:trackingId/qrcode", h.GetOrderQRCode)
		orders.PUT("/:trackingId/status", h.UpdateOrderStatus)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(authRequired, activeAccount, only(models.RoleAdmin))
	{
		admin.POST("/users", h.AdminCreateUser)
		admin.GET("/users", h.AdminListUsers)
		admin.PUT("/users/:id/enabled", h.AdminSetUserEnabled)
		admin.DELETE("/users/:id", h.AdminDeleteUser)
	}
}
