package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mvoss/signalbridge/config"
	"github.com/mvoss/signalbridge/internal/infrastructure/binaryvenue"
	"github.com/mvoss/signalbridge/internal/infrastructure/desk"
	"github.com/mvoss/signalbridge/internal/infrastructure/extractor"
	"github.com/mvoss/signalbridge/internal/infrastructure/logger"
	"github.com/mvoss/signalbridge/internal/infrastructure/storage"
	"github.com/mvoss/signalbridge/internal/infrastructure/telegram"
	"github.com/mvoss/signalbridge/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Config
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}

	// 2. Init Logger
	log, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 3. Init Storage
	store, err := storage.NewSQLiteStore(cfg.Storage.DSN)
	if err != nil {
		log.Fatal("Failed to init sqlite", zap.Error(err))
	}
	defer store.Close()

	// 4. Init Venue Adapters
	deskClient := desk.NewClient(cfg.Desk.GatewayURL, desk.Credentials{
		Login:    cfg.Desk.Login,
		Password: cfg.Desk.Password,
		Server:   cfg.Desk.Server,
	}, log)

	binaryClient := binaryvenue.NewClient(cfg.Binary.WSEndpoint, cfg.Binary.SSID, log)

	// 5. Init Telegram
	tg := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChannelIDs, cfg.Telegram.OperatorChat, log)

	// 6. Init Services
	parser := extractor.NewOpenAIExtractor(cfg.Model.BaseURL, cfg.Model.APIKey, cfg.Model.Name, log)
	sizer := usecase.NewRiskSizer(cfg.Risk.MaxRiskFraction, cfg.Risk.MinLot)
	resolver := usecase.NewSymbolResolver(deskClient, cfg.Risk.ContractSizes)
	tracker := usecase.NewPositionTracker()
	executor := usecase.NewForexExecutor(deskClient, resolver, sizer, tracker, store, log)
	reporter := usecase.NewReportService(deskClient, store, cfg.ReportWindow(), log)
	gate := usecase.NewTechnicalGate(deskClient)

	var confirm usecase.ConfirmPolicy = usecase.AutoConfirm{}
	if cfg.Confirm == "prompt" {
		confirm = usecase.PromptConfirm{}
	}

	router := usecase.NewSignalRouter(parser, executor, binaryClient, tg, confirm, gate, store, cfg.Binary.Stake, log)

	// The watchdog gets its own audit log so stop moves and closed-trade
	// reports survive console scrollback.
	watchLog, err := logger.NewFileLogger("watchdog.log", cfg.Logging.Level)
	if err != nil {
		log.Warn("Watchdog file log unavailable, using main logger", zap.Error(err))
		watchLog = log
	}
	watchdog := usecase.NewWatchdog(deskClient, tracker, reporter, tg, cfg.WatchdogInterval(), watchLog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 7. Desk login up front, so a bad gateway shows at startup not on
	// the first signal.
	if err := deskClient.Login(ctx); err != nil {
		log.Error("Desk login failed, will retry per order", zap.Error(err))
	}

	// 8. Startup self-test DM to the operator.
	if err := tg.Notify(ctx, "Signal bridge online."); err != nil {
		log.Warn("Startup notice failed", zap.Error(err))
	}

	// 9. Start Workers
	go watchdog.Start(ctx)
	go func() {
		if err := tg.Run(ctx); err != nil {
			log.Fatal("Telegram listener failed", zap.Error(err))
		}
	}()

	go func() {
		for msg := range tg.Messages() {
			router.HandleMessage(ctx, msg)
		}
	}()

	log.Info("Bridge started",
		zap.Int("channels", len(cfg.Telegram.ChannelIDs)),
		zap.String("confirm", cfg.Confirm))

	// 10. Wait for Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down")
	cancel()
}
