package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/hashicorp/go-cleanhttp"

	"github.com/dskvich/webchat-backend/pkg/api"
	"github.com/dskvich/webchat-backend/pkg/api/handler"
	"github.com/dskvich/webchat-backend/pkg/domain"
	"github.com/dskvich/webchat-backend/pkg/logger"
	"github.com/dskvich/webchat-backend/pkg/openai"
	"github.com/dskvich/webchat-backend/pkg/search"
	"github.com/dskvich/webchat-backend/pkg/services"
	"github.com/dskvich/webchat-backend/pkg/workers"
)

type Config struct {
	OpenRouterAPIKey  string        `env:"OPENROUTER_API_KEY,required,notEmpty"`
	OpenRouterBaseURL string        `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	OpenRouterModel   string        `env:"OPENROUTER_MODEL" envDefault:"qwen/qwen2.5-vl-32b-instruct:free"`
	OpenRouterReferer string        `env:"OPENROUTER_REFERER" envDefault:"https://your-domain.com"`
	OpenRouterTitle   string        `env:"OPENROUTER_TITLE" envDefault:"Chat-Duck-LLM"`
	LLMTimeout        time.Duration `env:"LLM_TIMEOUT" envDefault:"90s"`
	NewsMaxResults    int           `env:"NEWS_MAX_RESULTS" envDefault:"8"`
	SearchProvider    string        `env:"SEARCH_PROVIDER" envDefault:"duckduckgo"`
	SearXNGURL        string        `env:"SEARXNG_URL"`
	SearchRegion      string        `env:"SEARCH_REGION" envDefault:"fr-fr"`
	SearchSafeSearch  string        `env:"SEARCH_SAFESEARCH" envDefault:"moderate"`
	SearchTimeout     time.Duration `env:"SEARCH_TIMEOUT" envDefault:"20s"`
	Locale            string        `env:"LOCALE" envDefault:"en"`
	HTTPAddr          string        `env:"HTTP_ADDR" envDefault:":8000"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CORSOrigins       []string      `env:"CORS_ORIGINS" envDefault:"http://localhost:5173 http://localhost:5174" envSeparator:" "`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"debug"`
	LogFile           string        `env:"LOG_FILE"`
}

func main() {
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, logger.DefaultOptions)))

	if err := runMain(); err != nil {
		slog.Error("shutting down due to error", logger.Err(err))
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}

func runMain() error {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parsing env config: %w", err)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log, closeLog, err := logger.New(os.Stderr, level, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer closeLog()
	slog.SetDefault(log)

	workerGroup, err := setupWorkers(cfg)
	if err != nil {
		return err
	}

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case s := <-sigCh:
			slog.Info("shutting down due to signal", "signal", s.String())
			cancelFn()
		case <-ctx.Done():
		}
	}()

	return workerGroup.Start(ctx)
}

func setupWorkers(cfg Config) (*workers.Group, error) {
	pipeline, err := setupPipeline(cfg)
	if err != nil {
		return nil, err
	}

	router := api.NewRouter(handler.NewChat(pipeline), cfg.CORSOrigins)

	server, err := workers.NewHTTPServer(cfg.HTTPAddr, router)
	if err != nil {
		return nil, err
	}

	return workers.NewGroup(cfg.ShutdownTimeout, server), nil
}

func setupPipeline(cfg Config) (handler.ChatPipeline, error) {
	locale, err := domain.LocaleByName(cfg.Locale)
	if err != nil {
		return nil, err
	}

	safeSearch, err := search.ParseSafeSearch(cfg.SearchSafeSearch)
	if err != nil {
		return nil, err
	}

	searchHTTPClient := cleanhttp.DefaultPooledClient()
	searchHTTPClient.Timeout = cfg.SearchTimeout

	backend, err := newSearchBackend(cfg, searchHTTPClient)
	if err != nil {
		return nil, err
	}

	openAIClient, err := openai.NewClient(openai.Config{
		Token:   cfg.OpenRouterAPIKey,
		BaseURL: cfg.OpenRouterBaseURL,
		Model:   cfg.OpenRouterModel,
		Referer: cfg.OpenRouterReferer,
		Title:   cfg.OpenRouterTitle,
		Timeout: cfg.LLMTimeout,
		Retry:   openai.DefaultRetryPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("creating open ai client: %w", err)
	}

	newsSearcher := search.NewNewsSearcher(backend, cfg.SearchRegion, safeSearch)

	slog.Info("Chat pipeline configured",
		"searchProvider", backend.Name(),
		"model", cfg.OpenRouterModel,
		"locale", cfg.Locale,
		"maxResults", cfg.NewsMaxResults,
	)

	return services.NewChatPipeline(
		services.NewSearchService(newsSearcher, cfg.NewsMaxResults, locale),
		services.NewTextService(openAIClient, locale.SystemPrompt),
	), nil
}

func newSearchBackend(cfg Config, hc *http.Client) (search.Backend, error) {
	switch cfg.SearchProvider {
	case "duckduckgo":
		return search.NewDuckDuckGo(hc), nil
	case "searxng":
		if cfg.SearXNGURL == "" {
			return nil, fmt.Errorf("SEARXNG_URL is required for the searxng provider")
		}
		return search.NewSearXNG(hc, cfg.SearXNGURL), nil
	default:
		return nil, fmt.Errorf("unsupported search provider %q", cfg.SearchProvider)
	}
}
