package main

import (
	"fmt"
	"os"
	"time"

	"listing-assistant/internal/application/port/output"
	"listing-assistant/internal/di"
	"listing-assistant/internal/infrastructure/env"
)

func main() {
	envService := env.NewEnvService()

	root := newRootCmd(newApp(configFromEnv(envService)))
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func configFromEnv(e output.ConfigPort) di.Config {
	return di.Config{
		AppEnv:   e.AppEnv(),
		EnvFiles: e.Loaded(),

		DataDir:  e.GetWithDefault("ASSISTANT_DATA_DIR", ".assistant"),
		LogDir:   e.GetWithDefault("ASSISTANT_LOG_DIR", "log"),
		LogLevel: e.GetWithDefault("ASSISTANT_LOG_LEVEL", "info"),
		LogName:  "assistant_" + e.AppEnv(),

		Model:      e.Get("ANTHROPIC_MODEL"),
		APIBaseURL: e.Get("ANTHROPIC_BASE_URL"),
		LLMTimeout: e.GetDuration("ASSISTANT_LLM_TIMEOUT", 60*time.Second),

		MaxToolIterations: e.GetInt("ASSISTANT_MAX_TOOL_ITERATIONS", 10),
		MaxTokens:         e.GetInt("ASSISTANT_MAX_TOKENS", 1024),

		BrowserHeadless:    e.GetBool("BROWSER_HEADLESS", false),
		BrowserControlURL:  e.Get("BROWSER_CONTROL_URL"),
		BrowserUserDataDir: e.Get("BROWSER_USER_DATA_DIR"),
		BrowserTimeout:     e.GetDuration("BROWSER_TIMEOUT", 10*time.Second),

		SiteBaseURL:       e.Get("SITE_BASE_URL"),
		StartURL:          e.Get("ASSISTANT_START_URL"),
		FetchMode:         e.GetWithDefault("FETCH_MODE", di.FetchModePage),
		HTTPRatePerSecond: float64(e.GetInt("FETCH_RATE_PER_SECOND", 1)),
		DetailBatchSize:   e.GetInt("DETAIL_BATCH_SIZE", 3),
		DetailBatchDelay:  e.GetDuration("DETAIL_BATCH_DELAY", 1500*time.Millisecond),
	}
}
