package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/avigneron/winesync/internal/common"
	"github.com/avigneron/winesync/internal/detect"
	"github.com/avigneron/winesync/internal/export"
	"github.com/avigneron/winesync/internal/llm"
	"github.com/avigneron/winesync/internal/llm/anthropic"
	"github.com/avigneron/winesync/internal/mailbox"
	"github.com/avigneron/winesync/internal/pipeline"
	"github.com/avigneron/winesync/internal/state"
)

func main() {
	// Parse CLI flags
	var (
		maxMessages = flag.Int("max", 0, "maximum messages to fetch (overrides MAIL_MAX_RESULTS)")
		query       = flag.String("query", "ALL", "IMAP search query")
		out         = flag.String("out", "wines.xlsx", "local XLSX path used when no SHEET_ID is configured")
	)
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *maxMessages > 0 {
		cfg.Mail.MaxResults = *maxMessages
	}

	ctx := context.Background()

	logger.Info("winesync.start", "mailbox", cfg.Mail.Addr, "max_results", cfg.Mail.MaxResults)

	// Connect to the mailbox. Bad credentials or an unreachable server are
	// the only unrecoverable failures in a run.
	mb, err := mailbox.Connect(cfg.Mail.Addr, cfg.Mail.Username, cfg.Mail.Password, logger)
	if err != nil {
		logger.Error("mailbox connection failed", "error", err)
		os.Exit(1)
	}
	defer mb.Close()

	// Setup extraction client (graceful if missing)
	var extractor llm.OrderExtractor
	if cfg.LLM.APIKey != "" {
		extractor = anthropic.NewClient(anthropic.Config{
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			BaseURL:     cfg.LLM.BaseURL,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		logger.Info("extraction client initialized", "model", cfg.LLM.Model)
	} else {
		logger.Warn("ANTHROPIC_API_KEY not configured, extraction disabled")
	}

	store := state.NewStore(cfg.Sync.WatermarkPath, logger)
	watermark, haveWatermark := store.Load()
	if haveWatermark {
		logger.Info("winesync.watermark", "since", watermark)
	}

	budget := llm.NewBudget(cfg.LLM.MaxCalls)
	filter := detect.NewFilter(cfg.Sync.MerchantDomains)
	processor := pipeline.NewProcessor(logger, filter, extractor, budget, watermark)

	msgs := mb.FetchMessages(*query, cfg.Mail.MaxResults)
	logger.Info("winesync.fetched", "messages", len(msgs))

	orders := processor.Run(ctx, msgs)
	logger.Info("winesync.orders", "found", len(orders), "llm_calls", budget.Used)

	var sink export.Sink
	if cfg.Sheets.SheetID != "" {
		sink = &export.SheetsSink{
			SheetID:            cfg.Sheets.SheetID,
			Worksheet:          cfg.Sheets.Worksheet,
			ServiceAccountFile: cfg.Sheets.ServiceAccountFile,
			Logger:             logger,
		}
	} else {
		sink = &export.XLSXSink{Path: *out, Logger: logger}
	}
	// The watermark moves only after a successful append; a failed export
	// leaves it where it was so the batch is picked up again next run.
	if sink.AppendOrders(ctx, orders) {
		store.Advance(orders)
	} else {
		logger.Warn("winesync.watermark.held", "reason", "export failed")
	}
	logger.Info("winesync.done")
}
