package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mvoss/signalbridge/config"
	"github.com/mvoss/signalbridge/internal/domain"
	"github.com/mvoss/signalbridge/internal/infrastructure/extractor"
	"github.com/mvoss/signalbridge/internal/infrastructure/logger"
)

// Runs the extractor against a message from stdin and prints the parsed
// signal. Useful for tuning the prompt without touching a venue.
func main() {
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger("debug")
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	text, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Printf("Failed to read stdin: %v\n", err)
		os.Exit(1)
	}

	parser := extractor.NewOpenAIExtractor(cfg.Model.BaseURL, cfg.Model.APIKey, cfg.Model.Name, log)

	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	sig, err := parser.Parse(ctx, string(text))
	if errors.Is(err, domain.ErrNoSignal) {
		fmt.Println("No trade signal in message.")
		return
	}
	if err != nil {
		fmt.Printf("Parse failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Class:  %s\n", sig.Class)
	fmt.Printf("Symbol: %s\n", sig.Symbol)
	fmt.Printf("Action: %s\n", sig.Action)
	if sig.Class == domain.ClassForex {
		fmt.Printf("Entry:  %.5f\n", sig.Entry)
		fmt.Printf("SL:     %.5f\n", sig.StopLoss)
		for i, tp := range sig.TakeProfits {
			fmt.Printf("TP%d:    %.5f\n", i+1, tp)
		}
	} else {
		fmt.Printf("Expiry: %d min\n", sig.ExpiryMinutes)
		fmt.Printf("Gale:   %d\n", sig.GaleSteps)
	}

	if err := sig.Validate(); err != nil {
		fmt.Printf("⚠️  Validation: %v\n", err)
	}
}
