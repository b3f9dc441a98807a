package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/kirillkom/transcript-summarizer/internal/config"
	"github.com/kirillkom/transcript-summarizer/internal/core/ports"
	"github.com/kirillkom/transcript-summarizer/internal/core/usecase"
	"github.com/kirillkom/transcript-summarizer/internal/infrastructure/clipboard/system"
	"github.com/kirillkom/transcript-summarizer/internal/infrastructure/filesource/localfs"
	"github.com/kirillkom/transcript-summarizer/internal/infrastructure/resilience"
	"github.com/kirillkom/transcript-summarizer/internal/infrastructure/summarizer"
	"github.com/kirillkom/transcript-summarizer/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Controller *usecase.UploadController
	Files      *localfs.Source
	Metrics    *metrics.WebMetrics
}

// Options swaps out host-bound collaborators, mainly for tests.
type Options struct {
	Clipboard ports.Clipboard
}

func New(cfg config.Config, service string, opts Options) (*App, error) {
	breaker := resilience.NewBreaker(resilience.Config{
		Enabled:      cfg.BreakerEnabled,
		MinRequests:  uint32(max(cfg.BreakerMinRequests, 0)),
		FailureRatio: cfg.BreakerFailureRatio,
		OpenTimeout:  cfg.BreakerOpenTimeout(),
	})

	client, err := summarizer.New(cfg.SummarizerBaseURL, cfg.SummarizerTimeout(), breaker)
	if err != nil {
		return nil, fmt.Errorf("init summarizer client: %w", err)
	}

	clip := opts.Clipboard
	if clip == nil {
		if !system.Available() {
			slog.Warn("clipboard_unavailable", "hint", "install xclip, xsel or wl-clipboard to enable copying")
		}
		clip = system.New()
	}

	webMetrics := metrics.NewWebMetrics(service)
	controller := usecase.NewUploadController(client, clip, webMetrics)

	return &App{
		Config:     cfg,
		Controller: controller,
		Files:      localfs.New(cfg.MaxUploadBytes),
		Metrics:    webMetrics,
	}, nil
}
