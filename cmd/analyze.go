package cmd

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/riskcsv-cli/internal/metrics"
	"github.com/KaramelBytes/riskcsv-cli/internal/session"
	"github.com/KaramelBytes/riskcsv-cli/internal/utils"
)

var (
	anaEngine      string
	anaJSON        bool
	anaOutputPath  string
	anaMetricsFile string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.csv>",
	Short: "Score up to 10 rows of a CSV and print the predicted risk",
	Example: `  riskcsv analyze applicants.csv
  riskcsv analyze applicants.csv --engine watson --json
  riskcsv analyze applicants.csv -o results.json --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scorer, engine, err := newScorer(anaEngine)
		if err != nil {
			return err
		}
		metricsPath := anaMetricsFile
		if metricsPath == "" && cfg != nil {
			metricsPath = cfg.MetricsFile
		}
		if metricsPath != "" {
			defer func() {
				if werr := metrics.WriteFile(metricsPath); werr != nil {
					logger.Warn("write metrics", zap.String("path", metricsPath), zap.Error(werr))
				}
			}()
		}

		in, err := fileInputFromPath(args[0])
		if err != nil {
			return err
		}
		sess := session.New(scorer, session.WithLogger(logger), session.WithEngineName(engine))
		errOut := cmd.ErrOrStderr()

		if err := sess.Select(cmd.Context(), in); err != nil {
			return reportFailure(errOut, sess, err)
		}
		printAdvisory(errOut, sess.Advisory())

		ch, err := sess.Analyze(cmd.Context())
		if err != nil {
			return reportFailure(errOut, sess, err)
		}
		fmt.Fprintf(errOut, "Analyzing with engine %s...\n", engine)
		o := <-ch
		if o.Err != nil {
			return reportFailure(errOut, sess, o.Err)
		}
		printAdvisory(errOut, sess.Advisory())

		rep := buildReport(sess, engine, o)
		var out bytes.Buffer
		if anaJSON {
			b, err := utils.PrettyJSON(rep)
			if err != nil {
				return err
			}
			out.Write(b)
			out.WriteByte('\n')
		} else if anaOutputPath != "" {
			renderReport(&out, rep)
		} else {
			renderReport(cmd.OutOrStdout(), rep)
			return nil
		}

		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, out.Bytes()); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(errOut, "✓ Wrote results to %s\n", anaOutputPath)
			return nil
		}
		_, err = cmd.OutOrStdout().Write(out.Bytes())
		return err
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaEngine, "engine", "e", "", "scoring engine: watson | gpt | local | local-gpt (default from config)")
	analyzeCmd.Flags().BoolVar(&anaJSON, "json", false, "print results as JSON")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "write results to this path instead of stdout")
	analyzeCmd.Flags().StringVar(&anaMetricsFile, "metrics-file", "", "write Prometheus metrics in text format to this path on exit")
}
