package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soulbond-app/soulbond-backend/internal/usecase/discovery"
)

type DiscoveryHandler struct {
	discoveryUseCase *discovery.DiscoveryUseCase
}

func NewDiscoveryHandler(discoveryUseCase *discovery.DiscoveryUseCase) *DiscoveryHandler {
	return &DiscoveryHandler{
		discoveryUseCase: discoveryUseCase,
	}
}

// Discover handles GET /discovery
// @Summary Discover candidates
// @Description Rank eligible profiles by compatibility with the caller
// @Tags discovery
// @Security BearerAuth
// @Produce json
// @Param min_compatibility query number false "Minimum compatibility score"
// @Param min_age query int false "Minimum candidate age"
// @Param max_age query int false "Maximum candidate age"
// @Param max_distance_km query number false "Maximum distance in km"
// @Param max_results query int false "Result cap"
// @Success 200 {array} discovery.Result
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /discovery [get]
func (h *DiscoveryHandler) Discover(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var filters discovery.Filters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query parameters"})
		return
	}

	results, err := h.discoveryUseCase.Discover(c.Request.Context(), userID, filters)
	if err != nil {
		respondError(c, err)
		return
	}

	// Empty pools are a normal outcome, not an error.
	if results == nil {
		results = []discovery.Result{}
	}
	c.JSON(http.StatusOK, results)
}
