package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/AngelCh415/ngram-report/internal/config"
	"github.com/AngelCh415/ngram-report/internal/export"
	"github.com/AngelCh415/ngram-report/internal/httpx"
	"github.com/AngelCh415/ngram-report/internal/ingest"
	"github.com/AngelCh415/ngram-report/internal/report"
	"github.com/AngelCh415/ngram-report/internal/textnorm"
	"github.com/AngelCh415/ngram-report/internal/utils"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("config", slog.String("err", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	norm, err := textnorm.Configure(cfg.Lemmatizer, cfg.ExtraStopWords)
	if err != nil {
		logger.Error("normalizer", slog.String("err", err.Error()))
		os.Exit(1)
	}

	cl := ingest.NewHTTPClient(cfg.HTTPTimeout)
	m := utils.NewMetrics()
	p := report.NewPipeline(norm, report.WithLogger(logger), report.WithObserver(m))

	r := httpx.NewRouter(httpx.Deps{
		Log:            logger,
		Pipeline:       p,
		Fetcher:        ingest.NewFetcher(cl, cfg.MaxUploadBytes),
		Sink:           export.NewSink(cl, cfg.SinkURL, cfg.SinkSecret),
		Metrics:        m,
		Sheet:          cfg.Sheet,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("starting server", slog.String("port", cfg.Port), slog.Int("stop_words", norm.StopWords().Len()), slog.String("lemmatizer", cfg.Lemmatizer))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
