package handlers

import (
	"errors"
	"math"
	"net/http"

	catalogRepo "autoserve/database/repository/catalog"
	"autoserve/models"
	"autoserve/services/diagnosis"
	"autoserve/services/estimate"
	"autoserve/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EstimateHandler exposes the cross-dealership estimate comparison endpoints.
type EstimateHandler struct {
	Aggregator *estimate.Aggregator
	Diagnosis  diagnosis.Service
	Vehicles   catalogRepo.VehicleSource
	Catalog    catalogRepo.Provider
}

func NewEstimateHandler(agg *estimate.Aggregator, diag diagnosis.Service, vehicles catalogRepo.VehicleSource, catalog catalogRepo.Provider) *EstimateHandler {
	return &EstimateHandler{Aggregator: agg, Diagnosis: diag, Vehicles: vehicles, Catalog: catalog}
}

// CompareHandler handles POST /api/estimates. Problems come either from an
// explicit list or from a finalized diagnosis session; an empty dealership
// list means every dealership in the catalog.
func (h *EstimateHandler) CompareHandler(c *gin.Context) {
	logger := utils.GetLogger()
	var input struct {
		SessionID     string   `json:"session_id,omitempty"`
		VehicleID     string   `json:"vehicle_id,omitempty"`
		ProblemIDs    []string `json:"problem_ids,omitempty"`
		DealershipIDs []string `json:"dealership_ids,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	problemIDs := input.ProblemIDs
	vehicleID := input.VehicleID
	if input.SessionID != "" {
		session, err := h.Diagnosis.GetSession(c.Request.Context(), input.SessionID)
		if err != nil {
			if errors.Is(err, diagnosis.ErrSessionNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if session.Stage != models.StageEstimation {
			c.JSON(http.StatusConflict, gin.H{"error": "diagnosis session has not reached the estimation stage"})
			return
		}
		for _, cand := range session.TopN {
			problemIDs = append(problemIDs, cand.ProblemID)
		}
		vehicleID = session.VehicleID
	}
	if len(problemIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no problems to estimate; provide problem_ids or a finalized session_id"})
		return
	}

	age, err := h.vehicleAge(c, vehicleID)
	if err != nil {
		return // response already written
	}

	dealershipIDs := input.DealershipIDs
	if len(dealershipIDs) == 0 {
		for _, d := range h.Catalog.Snapshot().Dealerships() {
			dealershipIDs = append(dealershipIDs, d.DealershipID)
		}
	}

	comparison, err := h.Aggregator.Compare(c.Request.Context(), dealershipIDs, problemIDs, age)
	if err != nil {
		logger.Error("Estimate comparison failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, comparison)
}

// SessionEstimatesHandler handles GET /api/estimates/sessions/:id, the
// shorthand for comparing a finalized session's top problems across all
// dealerships.
func (h *EstimateHandler) SessionEstimatesHandler(c *gin.Context) {
	sessionID := c.Param("id")
	session, err := h.Diagnosis.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, diagnosis.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if session.Stage != models.StageEstimation {
		c.JSON(http.StatusConflict, gin.H{"error": "diagnosis session has not reached the estimation stage"})
		return
	}

	var problemIDs []string
	for _, cand := range session.TopN {
		problemIDs = append(problemIDs, cand.ProblemID)
	}

	age, err := h.vehicleAge(c, session.VehicleID)
	if err != nil {
		return
	}

	var dealershipIDs []string
	for _, d := range h.Catalog.Snapshot().Dealerships() {
		dealershipIDs = append(dealershipIDs, d.DealershipID)
	}

	comparison, err := h.Aggregator.Compare(c.Request.Context(), dealershipIDs, problemIDs, age)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, comparison)
}

// vehicleAge resolves the vehicle's age in months, writing the error response
// itself on failure. Without a vehicle id no age-capped discount rule can
// match, so the age is pushed past every cap.
func (h *EstimateHandler) vehicleAge(c *gin.Context, vehicleID string) (int, error) {
	if vehicleID == "" {
		return math.MaxInt32, nil
	}
	vehicle, err := h.Vehicles.VehicleByID(c.Request.Context(), vehicleID)
	if err != nil {
		if catalogRepo.IsLookupMiss(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return 0, err
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return 0, err
	}
	return vehicle.AgeMonths, nil
}
