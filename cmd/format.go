package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errRejected = errors.New("text rejected by post filter")

var (
	formatPost string
	formatLive []string
)

var formatCmd = &cobra.Command{
	Use:   "format [text]",
	Short: "Paste text into a field, submit it and print the processed text",
	Long: `Paste text into a field built from the config file, end the edit and print
the text the post filter produced. Exits non-zero when the post filter
rejects the text.

Examples:
  richinput format --filter dollar_amount 1234
  richinput format --live bullet_point --filter password 'secret'`,
	RunE: runFormat,
}

func init() {
	formatCmd.Flags().StringVarP(&formatPost, "filter", "f", "", "post filter (overrides filters.post)")
	formatCmd.Flags().StringSliceVar(&formatLive, "live", nil, "live filters (overrides filters.live)")
	rootCmd.AddCommand(formatCmd)
}

func runFormat(cmd *cobra.Command, args []string) error {
	input, err := inputText(cmd, args)
	if err != nil {
		return err
	}

	c := cfg
	if formatPost != "" {
		c.Filters.Post = formatPost
	}
	if cmd.Flags().Changed("live") {
		c.Filters.Live = formatLive
	}
	e, _, err := c.NewEngine(nil, engineOpts...)
	if err != nil {
		return err
	}
	defer e.Close()

	e.BeginEdit()
	e.Paste(input)
	out, ok := e.EndEdit()
	if !ok {
		return fmt.Errorf("%w: %q", errRejected, e.Text())
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
