package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/riskcsv-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/riskcsv-cli/internal/config"
	"github.com/KaramelBytes/riskcsv-cli/internal/logging"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Retry/HTTP flags (override config if set)
	flagHTTPTimeoutSec   int
	flagRetryMaxAttempts int
	flagRetryBaseDelayMs int
	flagRetryMaxDelayMs  int

	// Loaded configuration
	cfg    *cfgpkg.Global
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "riskcsv",
	Short: "riskcsv: score credit-risk CSV files against a remote or simulated model",
	Long: `riskcsv loads a CSV of loan applicants, converts up to 10 rows into the
scoring envelope expected by the model-risk service, and prints the predicted
risk label and class probabilities for each row.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		if msg := exitMessage(err); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(1)
	}
}

// reportedError marks a failure already shown to the user as an advisory.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

func reported(err error) error { return reportedError{err: err} }

// exitMessage is the final line printed for err, empty if it was reported.
func exitMessage(err error) string {
	var r reportedError
	if errors.As(err, &r) {
		return ""
	}
	return "✗ Error: " + err.Error()
}

func init() {
	cobra.OnInitialize(loadConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.riskcsv/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxAttempts, "retry-max", 0, "max attempts on 429/5xx (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryBaseDelayMs, "retry-base-ms", 0, "base retry backoff in ms (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagRetryMaxDelayMs, "retry-max-ms", 0, "max retry backoff cap in ms (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c

	// Apply CLI overrides if provided
	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("retry-max") && flagRetryMaxAttempts > 0 {
		cfg.RetryMaxAttempts = flagRetryMaxAttempts
	}
	if f.Changed("retry-base-ms") && flagRetryBaseDelayMs > 0 {
		cfg.RetryBaseDelayMs = flagRetryBaseDelayMs
	}
	if f.Changed("retry-max-ms") && flagRetryMaxDelayMs > 0 {
		cfg.RetryMaxDelayMs = flagRetryMaxDelayMs
	}
	if debug {
		cfg.LogLevel = "debug"
	}

	l, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
		return
	}
	logger = l
}

// requireConfig returns the loaded config, loading defaults if startup
// loading failed.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

// newScorer builds the scorer for engine, falling back to the configured
// default when engine is empty.
func newScorer(engine string) (ai.Scorer, string, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, "", err
	}
	if engine == "" {
		engine = c.DefaultEngine
	}
	baseURL, apiKey := c.Endpoint(engine)
	if (engine == ai.EngineWatson || engine == ai.EngineGPT) && baseURL == "" {
		return nil, "", fmt.Errorf("engine %q needs %s_base_url (config set %s_base_url <url> or RISKCSV_%s_BASE_URL)",
			engine, engine, engine, envName(engine))
	}
	s, ok := ai.GetScorer(engine, ai.EngineConfig{
		BaseURL:         baseURL,
		APIKey:          apiKey,
		HTTPTimeout:     c.HTTPTimeout(),
		RetryMax:        c.RetryMaxAttempts,
		BaseDelay:       c.RetryBaseDelay(),
		MaxDelay:        c.RetryMaxDelay(),
		SimulationDelay: c.SimulationDelay(),
		Logger:          logger.Named(engine),
	})
	if !ok {
		return nil, "", fmt.Errorf("unknown engine %q (available: %v)", engine, ai.Engines())
	}
	return s, engine, nil
}

func envName(engine string) string {
	switch engine {
	case ai.EngineWatson:
		return "WATSON"
	case ai.EngineGPT:
		return "GPT"
	}
	return ""
}
