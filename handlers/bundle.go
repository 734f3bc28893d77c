package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct for route
// registration.
type HandlerBundle struct {
	// Diagnosis endpoints.
	StartSessionHandler   gin.HandlerFunc
	AnswerHandler         gin.HandlerFunc
	GetSessionHandler     gin.HandlerFunc
	CancelSessionHandler  gin.HandlerFunc
	MatchProblemsHandler  gin.HandlerFunc
	SearchProblemsHandler gin.HandlerFunc

	// Estimate endpoints.
	CompareEstimatesHandler gin.HandlerFunc
	SessionEstimatesHandler gin.HandlerFunc

	// Booking endpoints.
	CreateBookingHandler        gin.HandlerFunc
	UpdateServiceRequestHandler gin.HandlerFunc
	GetServiceRequestHandler    gin.HandlerFunc
	CustomerServicesHandler     gin.HandlerFunc
	DealershipServicesHandler   gin.HandlerFunc

	// Catalog endpoints.
	ListDealershipsHandler  gin.HandlerFunc
	DealershipLabourHandler gin.HandlerFunc
	DealershipPartsHandler  gin.HandlerFunc
}
