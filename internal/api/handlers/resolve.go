package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cardworth/appraiser/internal/models"
	"github.com/cardworth/appraiser/internal/services"
)

type ResolveHandler struct {
	resolver *services.Resolver
}

func NewResolveHandler(resolver *services.Resolver) *ResolveHandler {
	return &ResolveHandler{resolver: resolver}
}

// resolveRequest is the extracted-identity guess submitted by the caller.
// Everything is optional except that at least a name or set code must be
// present for a search to mean anything.
type resolveRequest struct {
	Game            string  `json:"game"`
	Name            string  `json:"name"`
	SetName         string  `json:"set"`
	SetCode         string  `json:"setCode"`
	CollectorNumber string  `json:"collectorNumber"`
	Variant         string  `json:"variant"`
	Language        string  `json:"language"`
	Confidence      float64 `json:"confidence"`
}

type resolveResponse struct {
	Extracted  models.ExtractedIdentity `json:"extracted"`
	Candidates []models.Candidate       `json:"candidates"`
}

// ResolveCard searches the card catalogs for the submitted identity guess
// and returns ranked candidates. An empty candidate list is a 200; it means
// no provider matched, which is an expected outcome, not a failure.
func (h *ResolveHandler) ResolveCard(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if req.Name == "" && req.SetCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one of name or setCode is required"})
		return
	}

	identity := models.ExtractedIdentity{
		Game:            models.Game(req.Game),
		Name:            req.Name,
		SetName:         req.SetName,
		SetCode:         req.SetCode,
		CollectorNumber: req.CollectorNumber,
		Variant:         req.Variant,
		Language:        req.Language,
		Confidence:      req.Confidence,
	}

	extracted, candidates := h.resolver.Resolve(c.Request.Context(), identity)
	c.JSON(http.StatusOK, resolveResponse{
		Extracted:  extracted,
		Candidates: candidates,
	})
}
