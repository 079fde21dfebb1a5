package cmd

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/riskcsv-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/riskcsv-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set riskcsv configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "default_engine: %s\n", cfg.DefaultEngine)
		fmt.Fprintf(out, "watson_base_url: %s\n", cfg.WatsonBaseURL)
		fmt.Fprintf(out, "watson_api_key: %s\n", mask(cfg.WatsonAPIKey))
		fmt.Fprintf(out, "gpt_base_url: %s\n", cfg.GPTBaseURL)
		fmt.Fprintf(out, "gpt_api_key: %s\n", mask(cfg.GPTAPIKey))
		fmt.Fprintf(out, "http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		fmt.Fprintf(out, "retry_max_attempts: %d\n", cfg.RetryMaxAttempts)
		fmt.Fprintf(out, "retry_base_delay_ms: %d\n", cfg.RetryBaseDelayMs)
		fmt.Fprintf(out, "retry_max_delay_ms: %d\n", cfg.RetryMaxDelayMs)
		fmt.Fprintf(out, "simulation_delay_ms: %d\n", cfg.SimulationDelayMs)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		if cfg.MetricsFile != "" {
			fmt.Fprintf(out, "metrics_file: %s\n", cfg.MetricsFile)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := cfgpkg.LoadFile(cfgFile)
		if err != nil {
			return err
		}
		if err := setConfigValue(c, args[0], args[1]); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	intField := func(dst *int) error {
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid non-negative int for %s: %v", key, val)
		}
		*dst = i
		return nil
	}
	switch key {
	case "default_engine":
		v := strings.ToLower(strings.TrimSpace(val))
		if !slices.Contains(ai.Engines(), v) {
			return fmt.Errorf("invalid default_engine: %s (use one of %s)", val, strings.Join(ai.Engines(), ", "))
		}
		c.DefaultEngine = v
	case "watson_base_url":
		c.WatsonBaseURL = val
	case "watson_api_key":
		c.WatsonAPIKey = val
	case "gpt_base_url":
		c.GPTBaseURL = val
	case "gpt_api_key":
		c.GPTAPIKey = val
	case "http_timeout_sec":
		return intField(&c.HTTPTimeoutSec)
	case "retry_max_attempts":
		return intField(&c.RetryMaxAttempts)
	case "retry_base_delay_ms":
		return intField(&c.RetryBaseDelayMs)
	case "retry_max_delay_ms":
		return intField(&c.RetryMaxDelayMs)
	case "simulation_delay_ms":
		return intField(&c.SimulationDelayMs)
	case "log_level":
		c.LogLevel = val
	case "log_format":
		switch val {
		case "console", "json":
			c.LogFormat = val
		default:
			return fmt.Errorf("invalid log_format: %s (use console or json)", val)
		}
	case "metrics_file":
		c.MetricsFile = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
