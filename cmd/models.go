package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/riskcsv-cli/internal/ai"
)

var modelsEngine string

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect scoring engines and backend models",
	Example: `  riskcsv models engines
  riskcsv models list --engine gpt`,
}

var modelsEnginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "List the available scoring engines",
	RunE: func(cmd *cobra.Command, args []string) error {
		def := ""
		if c, err := requireConfig(); err == nil {
			def = c.DefaultEngine
		}
		for _, name := range ai.Engines() {
			marker := " "
			if name == def {
				marker = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
		}
		return nil
	},
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Fetch the model listing from an HTTP engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		scorer, engine, err := newScorer(modelsEngine)
		if err != nil {
			return err
		}
		lister, ok := scorer.(ai.ModelLister)
		if !ok {
			return fmt.Errorf("engine %q does not expose a model listing", engine)
		}
		raw, err := lister.ListModels(cmd.Context())
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return fmt.Errorf("format listing: %w", err)
		}
		buf.WriteByte('\n')
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsEnginesCmd)
	modelsCmd.AddCommand(modelsListCmd)

	modelsListCmd.Flags().StringVarP(&modelsEngine, "engine", "e", "", "HTTP engine to query: watson | gpt (default from config)")
}
