package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mvoss/signalbridge/config"
	"github.com/mvoss/signalbridge/internal/infrastructure/desk"
	"go.uber.org/zap"
)

// Connectivity check against the desk gateway: login, account balance,
// symbol list, and a tick for the optional symbol argument.
func main() {
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := zap.NewNop()
	client := desk.NewClient(cfg.Desk.GatewayURL, desk.Credentials{
		Login:    cfg.Desk.Login,
		Password: cfg.Desk.Password,
		Server:   cfg.Desk.Server,
	}, log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Printf("Testing Desk Gateway...\n")
	fmt.Printf("Endpoint: %s\n", cfg.Desk.GatewayURL)

	if err := client.Login(ctx); err != nil {
		fmt.Printf("❌ Login failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Logged in\n")

	balance, err := client.AccountBalance(ctx)
	if err != nil {
		fmt.Printf("❌ Failed to get balance: %v\n", err)
	} else {
		fmt.Printf("✅ Account Balance: %.2f\n", balance)
	}

	symbols, err := client.Instruments(ctx)
	if err != nil {
		fmt.Printf("❌ Failed to list symbols: %v\n", err)
	} else {
		fmt.Printf("✅ Symbols available: %d\n", len(symbols))
	}

	if len(os.Args) > 1 {
		symbol := os.Args[1]
		tick, err := client.CurrentTick(ctx, symbol)
		if err != nil {
			fmt.Printf("❌ Failed to get tick for %s: %v\n", symbol, err)
		} else {
			fmt.Printf("✅ %s Bid: %.5f Ask: %.5f\n", symbol, tick.Bid, tick.Ask)
		}

		info, err := client.SymbolInfo(ctx, symbol)
		if err != nil {
			fmt.Printf("❌ Failed to get symbol info: %v\n", err)
		} else {
			fmt.Printf("✅ Contract: %.0f Point: %g Spread: %d pts\n",
				info.ContractSize, info.Point, info.SpreadPoints)
		}
	}
}
