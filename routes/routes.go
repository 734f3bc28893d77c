package routes

import (
	"time"

	"autoserve/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterDiagnosisRoutes registers the conversational diagnosis endpoints.
func RegisterDiagnosisRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/diagnosis")
	{
		api.POST("/sessions", hb.StartSessionHandler)
		api.POST("/sessions/:id/answer", hb.AnswerHandler)
		api.GET("/sessions/:id", hb.GetSessionHandler)
		api.DELETE("/sessions/:id", hb.CancelSessionHandler)
	}
}

// RegisterProblemRoutes registers symptom matching and catalog search.
func RegisterProblemRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/problems")
	{
		api.POST("/match", hb.MatchProblemsHandler)
		api.GET("/search", hb.SearchProblemsHandler)
	}
}

// RegisterEstimateRoutes registers the estimate comparison endpoints.
func RegisterEstimateRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/estimates")
	{
		api.POST("", hb.CompareEstimatesHandler)
		api.GET("/sessions/:id", hb.SessionEstimatesHandler)
	}
}

// RegisterBookingRoutes registers service request creation and the
// dealership update path.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookings := r.Group("/api/bookings")
	{
		bookings.POST("", hb.CreateBookingHandler)
	}
	services := r.Group("/api/services")
	{
		services.GET("/:id", hb.GetServiceRequestHandler)
		services.PUT("/:id", hb.UpdateServiceRequestHandler)
	}
	r.GET("/api/customers/:id/services", hb.CustomerServicesHandler)
}

// RegisterDealerRoutes registers dealership-facing catalog and workload
// endpoints.
func RegisterDealerRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/api/dealerships", hb.ListDealershipsHandler)
	dealers := r.Group("/api/dealers")
	{
		dealers.GET("/:id/services", hb.DealershipServicesHandler)
		dealers.GET("/:id/labour", hb.DealershipLabourHandler)
		dealers.GET("/:id/parts", hb.DealershipPartsHandler)
	}
}

// RegisterHealthRoute registers the health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/api/health", handlers.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterDiagnosisRoutes(r, hb)
	RegisterProblemRoutes(r, hb)
	RegisterEstimateRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterDealerRoutes(r, hb)
	RegisterHealthRoute(r)
}
