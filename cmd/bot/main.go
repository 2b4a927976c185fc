// Package main runs the trading bot: feed aggregation, the trading engine
// and the HTTP/WebSocket API in one process.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"solana-trade-bot/internal/api"
	"solana-trade-bot/internal/dexscreener"
	"solana-trade-bot/internal/engine"
	"solana-trade-bot/internal/feeds"
	"solana-trade-bot/internal/helius"
	"solana-trade-bot/internal/jupiter"
	"solana-trade-bot/internal/moralis"
	"solana-trade-bot/internal/wallet"
)

func main() {
	// .env is optional; system env vars win when both are present.
	_ = godotenv.Load()

	// Parse flags (env vars as defaults)
	discoveryQuery := flag.String("discovery-query", envOr("DISCOVERY_QUERY", dexscreener.DefaultQuery), "DexScreener search query for discovery")
	moralisKey := flag.String("moralis-key", os.Getenv("MORALIS_API_KEY"), "Moralis API key (optional)")
	heliusKey := flag.String("helius-key", os.Getenv("HELIUS_API_KEY"), "Helius API key (optional)")
	walletSecret := flag.String("wallet-secret", os.Getenv("SOLANA_WALLET_SECRET"), "Solana keypair as a JSON byte array (optional, trading disabled without it)")
	apiAddr := flag.String("api-addr", envOr("API_ADDR", ":8080"), "HTTP API listen address")
	feedInterval := flag.Duration("feed-interval", 5*time.Second, "Feed refresh interval")
	tradeInterval := flag.Duration("trade-interval", 5*time.Second, "Trading cycle interval")
	autostart := flag.Bool("autostart", envOr("ENGINE_AUTOSTART", "true") == "true", "Start the trading engine on boot")

	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lshortfile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wallet is optional: without it the bot observes and scores but
	// never opens positions.
	var walletCfg wallet.Config
	if *walletSecret != "" {
		cfg, err := wallet.FromSecret(*walletSecret)
		if err != nil {
			logger.Fatalf("Invalid wallet secret: %v", err)
		}
		walletCfg = cfg
		logger.Printf("Wallet configured: %s", walletCfg.PublicKey)
	} else {
		logger.Println("No wallet secret provided, running in observation mode")
	}

	// Upstream clients
	dexClient := dexscreener.NewClient(dexscreener.WithQuery(*discoveryQuery))

	var prices feeds.PriceSource
	if *moralisKey != "" {
		client, err := moralis.NewClient(*moralisKey)
		if err != nil {
			logger.Fatalf("Moralis client: %v", err)
		}
		prices = client
	} else {
		logger.Println("No Moralis API key, price enrichment disabled")
	}

	heliusClient := helius.NewClient(*heliusKey)

	// Feed aggregation
	aggregator := feeds.NewAggregator(feeds.Options{
		Discovery: dexClient,
		Prices:    prices,
		Holders:   heliusClient,
		Interval:  *feedInterval,
		Logger:    log.New(os.Stdout, "[feeds] ", log.LstdFlags|log.Lshortfile),
	})
	aggregator.Start(ctx)
	defer aggregator.Stop()

	// Trading engine
	trader := engine.New(engine.Options{
		Feed:     aggregator,
		Quoter:   jupiter.NewClient(),
		Wallet:   walletCfg,
		Interval: *tradeInterval,
		Logger:   log.New(os.Stdout, "[engine] ", log.LstdFlags|log.Lshortfile),
	})
	if *autostart {
		trader.Start(ctx)
	}
	defer trader.Stop()

	// HTTP API
	handler := api.NewHandler(api.Options{
		Feed:          aggregator,
		Trader:        trader,
		EngineContext: ctx,
		Logger:        log.New(os.Stdout, "[api] ", log.LstdFlags|log.Lshortfile),
	})
	server := api.NewServer(*apiAddr, handler, logger)
	server.Start()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Printf("Received signal %v, initiating graceful shutdown...", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP shutdown error: %v", err)
	}

	cancel()
	logger.Println("Shutdown complete")
}

// envOr returns the environment variable value or a fallback.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
