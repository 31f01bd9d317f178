package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cardworth/appraiser/internal/api"
	"github.com/cardworth/appraiser/internal/config"
	"github.com/cardworth/appraiser/internal/services"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "./appraiser.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Identification adapters
	tcgdexService := services.NewTCGdexService(cfg.Providers.TCGdexBaseURL)
	pokemonService := services.NewPokemonTCGService(cfg.Providers.PokemonTCGBaseURL, cfg.Providers.PokemonTCGAPIKey, tcgdexService)
	scryfallService := services.NewScryfallService(cfg.Providers.ScryfallBaseURL)
	ygoService := services.NewYGOProDeckService(cfg.Providers.YGOProDeckBaseURL)

	resolver := services.NewResolver(scryfallService, pokemonService, ygoService)

	// Pricing path
	justTCGService := services.NewJustTCGService(cfg.Providers.JustTCGBaseURL, cfg.Providers.JustTCGAPIKey, cfg.Providers.JustTCGDailyLimit)
	setLookup := services.NewSetLookupService(justTCGService)
	fxService := services.NewExchangeRateService(cfg.FX.RatesURL, cfg.FX.FallbackUSD, cfg.FX.FallbackGBP)
	quoteService := services.NewQuoteService(justTCGService, setLookup, fxService, cfg.Pricing.DefaultCurrency, cfg.Pricing.DefaultFeeGBP)

	router := api.SetupRouter(cfg, resolver, quoteService, fxService, justTCGService)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
