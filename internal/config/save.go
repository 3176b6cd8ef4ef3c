package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/richinput/internal/log"
)

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# richinput configuration

# Markup support
rich_text:
  enabled: true
  # Limit the grammar to these tags (default: every built-in tag)
  # tags: [b, i, u, color, link, sprite]
  emojis_allowed: true
  bindings_allowed: true

# Emoji recognized in typed text. Without a file or entries a built-in set is used.
# emoji:
#   file: ~/.config/richinput/symbols.yaml
#   entries:
#     - name: wave
#       text: "👋"
#       rich_text: "<sprite name=wave>"

# Named markup that is typed as a single symbol, e.g. user mentions
# bindings:
#   - name: alice
#     rich_text: "<link=user:alice>@alice</link>"

input:
  # none, integer, decimal, alphanumeric, name, email_address, ip_address,
  # sentence, custom, decimal_force_point
  validation: none
  # single_line, multi_line_submit, multi_line_newline
  line_type: single_line
  character_limit: 0        # 0 means unlimited
  read_only: false
  keyboard_type: default
  autocapitalization: none
  return_key: default
  autocorrection: false
  secure: false
  # Rules used when validation is custom
  # custom_validator:
  #   rules:
  #     - conditions:
  #         - operator: value_in_string
  #           string_value: "aeiou"
  #       action: to_uppercase
  #   other_character_action: allow

filters:
  # Live filters run in order on every edit:
  #   block_duplicate_character, block_rich_text_tags, bullet_point,
  #   emoji_character_limit, tag_user
  # live: [tag_user]
  # Display-only decoration: credit_card, date, password_character
  # live_decoration: credit_card
  # Run when editing ends: dollar_amount, dollar_decimal, password
  # post: dollar_amount
  emoji_character_limit: 20
  password_reveal: 1s
  language: en-US

# Tracing of edits
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # none, file, stdout, otlp (default: file)
#   file_path: ~/.config/richinput/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)

# Feature flags
# flags:
#   word-replace-detection: true
#   strict-binding-pool: false
#   diff-repair: true
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}

// Save writes cfg to configPath. Top-level sections already in the file are
// replaced in place so their comments survive; new sections are appended.
func Save(configPath string, cfg Config) error {
	data, err := os.ReadFile(configPath) //nolint:gosec // G304: path comes from the user
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	var fresh yaml.Node
	if err := fresh.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{&fresh}}
	} else {
		mergeMapping(doc.Content[0], &fresh)
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	if err := writeAtomic(configPath, buf.Bytes()); err != nil {
		return err
	}
	log.Info(log.CatConfig, "Saved config", "path", configPath)
	return nil
}

// mergeMapping replaces or appends every key of src in dst.
func mergeMapping(dst, src *yaml.Node) {
	for i := 0; i+1 < len(src.Content); i += 2 {
		key, value := src.Content[i], src.Content[i+1]
		found := false
		for j := 0; j+1 < len(dst.Content); j += 2 {
			if dst.Content[j].Value == key.Value {
				dst.Content[j+1] = value
				found = true
				break
			}
		}
		if !found {
			dst.Content = append(dst.Content, key, value)
		}
	}
}

// writeAtomic writes to a temp file next to path and renames it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".richinput.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
