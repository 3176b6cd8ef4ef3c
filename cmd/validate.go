package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/richinput/internal/validator"
)

var (
	validateMode     string
	validateLineType string
)

var validateCmd = &cobra.Command{
	Use:   "validate [text]",
	Short: "Type text into an empty field and print what the validator keeps",
	Long: `Run text through a character validator as if it were typed into an empty
field. The mode and line type default to the config file's input section.

Modes: none, integer, decimal, alphanumeric, name, email_address,
ip_address, sentence, custom, decimal_force_point.

Examples:
  richinput validate --mode integer 'a1b2'
  richinput validate --mode name 'jOHN o'\''neil'`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVarP(&validateMode, "mode", "m", "", "validation mode")
	validateCmd.Flags().StringVarP(&validateLineType, "line-type", "l", "", "line type (single_line, multi_line_submit, multi_line_newline)")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	input, err := inputText(cmd, args)
	if err != nil {
		return err
	}
	v, err := cfg.TextValidator()
	if err != nil {
		return err
	}
	if validateMode != "" {
		if v.Validation, err = validator.ParseValidation(validateMode); err != nil {
			return fmt.Errorf("--mode: %w", err)
		}
		if v.Validation == validator.Custom && v.Custom == nil {
			return fmt.Errorf("--mode custom needs input.custom_validator in the config file")
		}
	}
	if validateLineType != "" {
		if v.LineType, err = validator.ParseLineType(validateLineType); err != nil {
			return fmt.Errorf("--line-type: %w", err)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), v.ValidateString(input))
	return nil
}
