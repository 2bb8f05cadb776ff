package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/mvoss/signalbridge/internal/infrastructure/storage"
)

// Dumps the recorded executions from the bridge database, newest first.
func main() {
	dsn := "bridge.db"
	if len(os.Args) > 1 {
		dsn = os.Args[1]
	}
	limit := 50
	if len(os.Args) > 2 {
		if n, err := strconv.Atoi(os.Args[2]); err == nil {
			limit = n
		}
	}

	store, err := storage.NewSQLiteStore(dsn)
	if err != nil {
		fmt.Printf("Failed to init sqlite: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	execs, err := store.ListExecutions(context.Background(), limit)
	if err != nil {
		fmt.Printf("Failed to list executions: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Found %d executions:\n", len(execs))
	for _, e := range execs {
		switch e.Venue {
		case "desk":
			fmt.Printf("- [%s] %s %s %s lot %.2f entry %.5f SL %.5f TP %.5f ticket %d\n",
				e.CreatedAt.Format("2006-01-02 15:04:05"),
				e.Venue, e.Action, e.Symbol, e.Lot, e.Entry, e.StopLoss, e.TakeProfit, e.Ticket)
		default:
			fmt.Printf("- [%s] %s %s %s stake %.2f\n",
				e.CreatedAt.Format("2006-01-02 15:04:05"),
				e.Venue, e.Action, e.Symbol, e.Lot)
		}
	}
}
