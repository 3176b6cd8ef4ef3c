package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/richinput/internal/richtext"
)

var parseJSON bool

var parseCmd = &cobra.Command{
	Use:   "parse [rich text]",
	Short: "Show the plain text and tag runs of rich text",
	Long: `Parse rich text with the configured grammar, emoji and bindings and print
the plain text the keyboard would see, the normalized rich text and every
tagged run.

Reads stdin when no argument is given.

Examples:
  richinput parse '<b>bold</b> and <i>italic'
  echo 'hi <sprite name=grinning>' | richinput parse --json | jq '.text'`,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "print JSON")
	rootCmd.AddCommand(parseCmd)
}

type parseOutput struct {
	Text     string        `json:"text"`
	RichText string        `json:"rich_text"`
	Regions  []regionEntry `json:"regions"`
}

type regionEntry struct {
	Text      string   `json:"text"`
	StartTags []string `json:"start_tags"`
	EndTags   []string `json:"end_tags"`
	Symbol    string   `json:"symbol,omitempty"`
}

func runParse(cmd *cobra.Command, args []string) error {
	input, err := inputText(cmd, args)
	if err != nil {
		return err
	}
	e, _, err := cfg.NewEngine(nil, engineOpts...)
	if err != nil {
		return err
	}
	defer e.Close()

	e.SetRichText(input)
	out := parseOutput{Text: e.Text(), RichText: e.RichText()}
	if e.RichTextEnabled() {
		out.Regions = regionEntries(e.Processor().ParseRichTextRegions(e.RichText()))
	}

	w := cmd.OutOrStdout()
	if parseJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Fprintf(w, "text:      %q\n", out.Text)
	fmt.Fprintf(w, "rich text: %q\n", out.RichText)
	for i, r := range out.Regions {
		fmt.Fprintf(w, "%3d %q %v %v", i, r.Text, r.StartTags, r.EndTags)
		if r.Symbol != "" {
			fmt.Fprintf(w, " symbol %q", r.Symbol)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func regionEntries(regions []*richtext.RichTextRegion) []regionEntry {
	out := make([]regionEntry, 0, len(regions))
	for _, r := range regions {
		entry := regionEntry{Text: r.Text(), StartTags: r.StartTags, EndTags: r.EndTags}
		if r.IsSymbol {
			entry.Symbol = r.SymbolText
		}
		out = append(out, entry)
	}
	return out
}
