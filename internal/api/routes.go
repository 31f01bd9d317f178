package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cardworth/appraiser/internal/api/handlers"
	"github.com/cardworth/appraiser/internal/config"
	"github.com/cardworth/appraiser/internal/services"
)

func SetupRouter(cfg config.Config, resolver *services.Resolver, quotes *services.QuoteService, fx *services.ExchangeRateService, pricing *services.JustTCGService) *gin.Engine {
	router := gin.Default()
	router.Use(RequestID())
	router.Use(Metrics())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	corsConfig.AllowCredentials = false
	router.Use(cors.New(corsConfig))

	resolveHandler := handlers.NewResolveHandler(resolver)
	priceHandler := handlers.NewPriceHandler(quotes, fx, pricing)

	api := router.Group("/api")
	{
		cards := api.Group("/cards")
		{
			cards.POST("/resolve", resolveHandler.ResolveCard)
		}

		prices := api.Group("/prices")
		{
			prices.POST("/quote", priceHandler.QuotePrice)
			prices.GET("/fx", priceHandler.GetExchangeRates)
			prices.GET("/status", priceHandler.GetPriceStatus)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
