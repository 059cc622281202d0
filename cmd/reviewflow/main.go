package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"reviewflow/internal/config"
	"reviewflow/internal/pipeline"
	"reviewflow/pkg/review"
	"reviewflow/pkg/transport"
)

func main() {
	variant := flag.String("variant", "configuration_item", "workflow variant: configuration_item or regression")
	source := flag.String("source", "", "source document path (required)")
	catalog := flag.String("catalog", "", "catalog document path; omit to derive via AI catalog extraction")
	names := flag.String("names", "", "comma-separated candidate names; empty selects all")
	useAI := flag.Bool("ai", false, "use AI-assisted detail extraction")
	model := flag.String("model", "", "model override for AI calls")
	level := flag.Int("level", 0, "AI catalog depth (3-5)")
	excelType := flag.String("type", "review", "artifact type: requirement, test_case, or review")
	out := flag.String("out", ".", "output directory for the downloaded artifact; empty skips download")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	// Missing .env is fine; explicit environment always wins.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed:", err)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	if *source == "" {
		flag.Usage()
		os.Exit(2)
	}

	clientCfg, err := variantConfig(cfg, *variant)
	if err != nil {
		log.Fatal(err)
	}

	tp := transport.New(&cfg.HTTP, logger)
	client, err := review.New(clientCfg, tp, logger.With("variant", *variant))
	if err != nil {
		log.Fatal("client setup failed:", err)
	}

	logger.Info("reviewflow starting",
		"variant", *variant,
		"base_url", clientCfg.BaseURL,
		"env", cfg.Env(),
	)

	opts := pipeline.Options{
		SourcePath:   *source,
		CatalogPath:  *catalog,
		Names:        splitNames(*names),
		UseAI:        *useAI,
		Model:        *model,
		CatalogLevel: *level,
		ExcelType:    review.ExcelType(*excelType),
		OutputDir:    *out,
	}

	result, err := pipeline.New(client, tp, logger).Run(context.Background(), opts)
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("session: %s\n", result.SessionID)
	fmt.Printf("candidates: %d, extracted: %d\n", len(result.Candidates), len(result.Extracted))
	if result.Artifact != nil && result.Artifact.DownloadURL != "" {
		fmt.Printf("download: %s\n", result.Artifact.DownloadURL)
	}
	if result.OutputPath != "" {
		fmt.Printf("saved: %s\n", result.OutputPath)
	}
}

func variantConfig(cfg *config.Config, variant string) (review.Config, error) {
	switch variant {
	case "configuration_item":
		return cfg.ConfigurationItemClient(), nil
	case "regression":
		return cfg.RegressionClient(), nil
	default:
		return review.Config{}, fmt.Errorf("unknown variant %q", variant)
	}
}

func splitNames(s string) []string {
	if s == "" {
		return nil
	}
	var names []string
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}
