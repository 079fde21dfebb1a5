package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/riskcsv-cli/internal/session"
	"github.com/KaramelBytes/riskcsv-cli/internal/utils"
)

var previewCmd = &cobra.Command{
	Use:   "preview <file.csv>",
	Short: "Show the scoring envelope a CSV would produce, without sending it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := fileInputFromPath(args[0])
		if err != nil {
			return err
		}
		sess := session.New(nil, session.WithLogger(logger))
		if err := sess.Select(cmd.Context(), in); err != nil {
			return reportFailure(cmd.ErrOrStderr(), sess, err)
		}
		printAdvisory(cmd.ErrOrStderr(), sess.Advisory())

		req, err := sess.Request()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Columns: %s\n", strings.Join(sess.Table().Header, ", "))
		b, err := utils.PrettyJSON(req)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
}
