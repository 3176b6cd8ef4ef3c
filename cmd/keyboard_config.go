package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var keyboardConfigCmd = &cobra.Command{
	Use:   "keyboard-config",
	Short: "Print the keyboard configuration sent to the platform",
	Long: `Print the JSON configuration a platform keyboard is shown with, built from
the config file's input section.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		kc, err := cfg.KeyboardConfiguration()
		if err != nil {
			return err
		}
		data, err := kc.Encode()
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(data), "", "  "); err != nil {
			return fmt.Errorf("formatting keyboard configuration: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), buf.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keyboardConfigCmd)
}
