package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	catalogRepo "autoserve/database/repository/catalog"
	"autoserve/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedCatalog struct {
	snap *catalogRepo.Snapshot
}

func (c fixedCatalog) Snapshot() *catalogRepo.Snapshot { return c.snap }

func catalogRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	snap, err := catalogRepo.BuildSnapshot(1, catalogRepo.SnapshotData{
		Problems: []models.ServiceProblem{
			{ProblemID: "SP001", Name: "Brake pad replacement", Description: []string{"Grinding noise when braking"}},
		},
		Dealerships: []models.Dealership{
			{DealershipID: "D1", Name: "Northside Motors"},
		},
	})
	require.NoError(t, err)

	h := NewCatalogHandler(fixedCatalog{snap: snap})
	r := gin.New()
	r.GET("/api/problems/search", h.SearchProblemsHandler)
	r.GET("/api/dealerships", h.ListDealershipsHandler)
	r.GET("/api/dealers/:id/labour", h.DealershipLabourHandler)
	return r
}

func TestSearchProblemsHandler(t *testing.T) {
	router := catalogRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/problems/search?q=brake", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Problems []models.ServiceProblem `json:"problems"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Problems, 1)
	assert.Equal(t, "SP001", body.Problems[0].ProblemID)
}

func TestSearchProblemsHandlerRequiresQuery(t *testing.T) {
	router := catalogRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/problems/search", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDealershipLabourHandlerUnknownDealer(t *testing.T) {
	router := catalogRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dealers/D404/labour", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListDealershipsHandler(t *testing.T) {
	router := catalogRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dealerships", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Dealerships []models.Dealership `json:"dealerships"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Dealerships, 1)
	assert.Equal(t, "Northside Motors", body.Dealerships[0].Name)
}
