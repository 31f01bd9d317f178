package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cardworth/appraiser/internal/models"
	"github.com/cardworth/appraiser/internal/services"
)

type PriceHandler struct {
	quotes  *services.QuoteService
	fx      *services.ExchangeRateService
	pricing *services.JustTCGService
}

func NewPriceHandler(quotes *services.QuoteService, fx *services.ExchangeRateService, pricing *services.JustTCGService) *PriceHandler {
	return &PriceHandler{
		quotes:  quotes,
		fx:      fx,
		pricing: pricing,
	}
}

type priceRequest struct {
	Card         priceCard                `json:"card"`
	Distribution models.GradeDistribution `json:"distribution"`
	FeeGBP       float64                  `json:"feeGBP"`
}

type priceCard struct {
	Game            string `json:"game"`
	Name            string `json:"name"`
	SetName         string `json:"set"`
	CollectorNumber string `json:"collectorNumber"`
	Variant         string `json:"variant"`
}

// QuotePrice produces a graded-value quote for one card. "No live price"
// is a 200 with a manual-override note; only invalid input is an error.
func (h *PriceHandler) QuotePrice(c *gin.Context) {
	var req priceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if req.Card.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card.name is required"})
		return
	}
	if services.NormalizeGame(req.Card.Game) == models.GameUnknown {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card.game must be magic, pokemon or yugioh"})
		return
	}

	identity := models.ExtractedIdentity{
		Game:            models.Game(req.Card.Game),
		Name:            req.Card.Name,
		SetName:         req.Card.SetName,
		CollectorNumber: req.Card.CollectorNumber,
		Variant:         req.Card.Variant,
	}

	quote, err := h.quotes.Quote(c.Request.Context(), identity, req.Distribution, req.FeeGBP)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if quote == nil {
		c.JSON(http.StatusOK, gin.H{
			"source":   nil,
			"raw":      nil,
			"currency": nil,
			"note":     "Live pricing unavailable. Use manual raw override.",
		})
		return
	}

	c.JSON(http.StatusOK, quote)
}

// GetExchangeRates reports the cached FX snapshot and its age.
func (h *PriceHandler) GetExchangeRates(c *gin.Context) {
	snap := h.fx.Snapshot()
	if snap == nil {
		c.JSON(http.StatusOK, gin.H{"snapshot": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"snapshot":    snap,
		"age_seconds": int(time.Since(snap.FetchedAt).Seconds()),
	})
}

// GetPriceStatus reports the pricing API quota.
func (h *PriceHandler) GetPriceStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"daily_limit": h.pricing.GetDailyLimit(),
		"remaining":   h.pricing.GetRequestsRemaining(),
		"resets_at":   h.pricing.GetResetTime(),
	})
}
