package di

import (
	"context"
	"fmt"
	"io"
	"time"

	"listing-assistant/internal/adapter/tool"
	"listing-assistant/internal/application/port/output"
	"listing-assistant/internal/application/service"
	"listing-assistant/internal/infrastructure/browser/rod"
	"listing-assistant/internal/infrastructure/idealista"
	"listing-assistant/internal/infrastructure/llm/anthropic"
	"listing-assistant/internal/infrastructure/logger"
	"listing-assistant/internal/infrastructure/prompts"
	"listing-assistant/internal/infrastructure/storage"
	"listing-assistant/internal/infrastructure/userinteraction"
	"listing-assistant/internal/usecase/conversation"
	"listing-assistant/internal/usecase/detail"
	"listing-assistant/internal/usecase/enrich"
	"listing-assistant/internal/usecase/filter"
	"listing-assistant/internal/usecase/listings"
	"listing-assistant/internal/usecase/session"
)

const (
	FetchModePage = "page"
	FetchModeHTTP = "http"
)

type Config struct {
	AppEnv   string
	EnvFiles []string

	DataDir  string
	LogDir   string
	LogLevel string
	LogName  string

	Model      string
	APIBaseURL string
	LLMTimeout time.Duration

	MaxToolIterations int
	MaxTokens         int

	BrowserHeadless    bool
	BrowserControlURL  string
	BrowserUserDataDir string
	BrowserTimeout     time.Duration

	SiteBaseURL       string
	StartURL          string
	FetchMode         string
	HTTPRatePerSecond float64
	DetailBatchSize   int
	DetailBatchDelay  time.Duration
}

// Container holds what every command needs: logging and persisted state.
// The browser and the model client are only built for a chat.
type Container struct {
	Logger output.LoggerPort
	Store  *session.Store

	cfg Config
}

func NewContainer(cfg Config) (*Container, error) {
	log, err := logger.NewLoggerAdapter(logger.Config{Dir: cfg.LogDir, Name: cfg.LogName, Level: cfg.LogLevel})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	log.Info("configuration loaded",
		"app_env", cfg.AppEnv,
		"env_files", cfg.EnvFiles,
		"data_dir", cfg.DataDir,
		"fetch_mode", cfg.FetchMode,
	)

	kv := storage.NewFileStore(cfg.DataDir)

	return &Container{
		Logger: log,
		Store:  session.NewStore(kv, log),
		cfg:    cfg,
	}, nil
}

func (c *Container) Close() {
	if c.Logger != nil {
		c.Logger.Close()
	}
}

// Chat is a running assistant attached to a browser tab.
type Chat struct {
	Page       *rod.PageAdapter
	Controller *conversation.Controller
	Session    *userinteraction.Session
	Tools      output.ToolRegistry
}

func (c *Container) NewChat(ctx context.Context, in io.Reader, out io.Writer) (*Chat, error) {
	cfg := c.cfg

	browserCfg := rod.DefaultConfig()
	browserCfg.Headless = cfg.BrowserHeadless
	browserCfg.ControlURL = cfg.BrowserControlURL
	browserCfg.UserDataDir = cfg.BrowserUserDataDir
	if cfg.BrowserTimeout > 0 {
		browserCfg.Timeout = cfg.BrowserTimeout
	}
	page, err := rod.NewPageAdapter(ctx, browserCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}

	urls := idealista.NewURLBuilder(cfg.SiteBaseURL)

	var fetcher idealista.HTMLFetcher = page
	if cfg.FetchMode == FetchModeHTTP {
		fetcher = idealista.NewHTTPFetcher(cfg.HTTPRatePerSecond)
	}
	detailClient := idealista.NewDetailClient(fetcher, urls, idealista.DefaultRetry, c.Logger.WithField("component", "detail_client"))

	details := detail.NewService(detailClient, c.Store, c.Logger.WithField("component", "details"), detail.Config{
		BatchSize:  cfg.DetailBatchSize,
		BatchDelay: cfg.DetailBatchDelay,
	})

	engine := filter.NewEngine(page, c.Logger.WithField("component", "filter"))
	listingService := listings.NewService(page, engine, c.Store, c.Store, details, c.Logger.WithField("component", "listings"))

	llm := anthropic.NewAdapter(anthropic.Config{
		Model:   cfg.Model,
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.LLMTimeout,
		Logger:  c.Logger.WithField("component", "llm"),
	})

	generator, err := prompts.NewGenerator()
	if err != nil {
		page.Close()
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}

	console := userinteraction.NewConsole(in, out)
	tools := service.NewToolRegistry()

	controller := conversation.New(
		llm,
		tools,
		page,
		c.Store,
		listingService,
		generator,
		console,
		c.Logger.WithField("component", "conversation"),
		conversation.Config{
			MaxToolIterations: cfg.MaxToolIterations,
			MaxTokens:         cfg.MaxTokens,
		},
	)

	tool.RegisterAll(tools, tool.Dependencies{
		Page:     page,
		Listings: listingService,
		Details:  details,
		URLs:     urls,
		Filters:  controller,
		Guard:    controller,
		Surface:  console,
		Logger:   c.Logger.WithField("component", "tools"),
	})

	enricher := enrich.NewBadgeEnricher(page, listingService, details, c.Logger.WithField("component", "badges"))

	if cfg.StartURL != "" {
		if err := page.Navigate(ctx, cfg.StartURL); err != nil {
			page.Close()
			return nil, fmt.Errorf("failed to open %s: %w", cfg.StartURL, err)
		}
	}

	return &Chat{
		Page:       page,
		Controller: controller,
		Session:    userinteraction.NewSession(console, controller, enricher, c.Logger),
		Tools:      tools,
	}, nil
}

func (ch *Chat) Close() {
	if ch.Page != nil {
		ch.Page.Close()
	}
}
