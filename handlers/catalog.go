package handlers

import (
	"net/http"
	"strconv"

	catalogRepo "autoserve/database/repository/catalog"
	"autoserve/utils"

	"github.com/gin-gonic/gin"
)

// CatalogHandler exposes read-only catalog browsing endpoints. Everything is
// served from the in-memory snapshot, so these never touch Mongo.
type CatalogHandler struct {
	Catalog catalogRepo.Provider
}

func NewCatalogHandler(catalog catalogRepo.Provider) *CatalogHandler {
	return &CatalogHandler{Catalog: catalog}
}

// SearchProblemsHandler handles GET /api/problems/search?q=...&limit=...
// An exact problem id match is returned alone; otherwise the query matches
// case-insensitively against ids, names and description fragments.
func (h *CatalogHandler) SearchProblemsHandler(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	problems := h.Catalog.Snapshot().SearchProblems(query, limit)
	c.JSON(http.StatusOK, gin.H{"problems": problems})
}

// ListDealershipsHandler handles GET /api/dealerships.
func (h *CatalogHandler) ListDealershipsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"dealerships": h.Catalog.Snapshot().Dealerships()})
}

// DealershipLabourHandler handles GET /api/dealers/:id/labour.
func (h *CatalogHandler) DealershipLabourHandler(c *gin.Context) {
	dealershipID := c.Param("id")
	snap := h.Catalog.Snapshot()
	if _, err := snap.DealershipByID(dealershipID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"labour": snap.Labour(dealershipID)})
}

// DealershipPartsHandler handles GET /api/dealers/:id/parts.
func (h *CatalogHandler) DealershipPartsHandler(c *gin.Context) {
	dealershipID := c.Param("id")
	snap := h.Catalog.Snapshot()
	if _, err := snap.DealershipByID(dealershipID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"parts": snap.DealerParts(dealershipID)})
}

// HealthHandler handles GET /api/health.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, utils.GetHealthStatus())
}
