package httputil_test

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/asx-screener/pkg/config"
	"github.com/wonny/asx-screener/pkg/httputil"
	"github.com/wonny/asx-screener/pkg/logger"
)

// Example_basic demonstrates basic HTTP client usage
func Example_basic() {
	cfg := &config.Config{Env: "production", LogLevel: "info"}
	log := logger.New(cfg)

	// Create HTTP client (SSOT)
	client := httputil.New(cfg, log)

	resp, err := client.Get(context.Background(), "https://api.example.com/data")
	if err != nil {
		fmt.Printf("Request failed: %v\n", err)
		return
	}

	var payload map[string]interface{}
	if err := httputil.DecodeJSON(resp, &payload); err != nil {
		fmt.Printf("Decode failed: %v\n", err)
		return
	}
	fmt.Println(len(payload))
}

// Example_scanner demonstrates a paced JSON POST with retries
func Example_scanner() {
	cfg := &config.Config{Env: "production", LogLevel: "info"}
	log := logger.New(cfg)

	client := httputil.NewWithTimeout(cfg, log, 20*time.Second).
		WithRetry(3, 500*time.Millisecond).
		WithLimiter(cfg.Snapshot.RatePerSec)

	body := map[string]interface{}{
		"markets": []string{"australia"},
		"columns": []string{"name", "close"},
		"range":   []int{0, 10},
	}

	resp, err := client.PostJSON(context.Background(), "https://scanner.tradingview.com/australia/scan", body)
	if err != nil {
		fmt.Printf("POST request failed: %v\n", err)
		return
	}
	defer resp.Body.Close()

	fmt.Printf("Status: %d\n", resp.StatusCode)
}
