package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/richinput/internal/config"
	"github.com/zjrosen/richinput/internal/log"
	"github.com/zjrosen/richinput/internal/playground"
	"github.com/zjrosen/richinput/internal/watcher"
)

var noWatch bool

var playgroundCmd = &cobra.Command{
	Use:   "playground",
	Short: "Interactive playground for the configured input field",
	Long: `Launch an interactive editor built from the config file. Markup, emoji,
mentions, validation and filters all behave as configured.

The config file is watched and the field is rebuilt when it changes.`,
	RunE: runPlayground,
}

func init() {
	playgroundCmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload when the config file changes")
	rootCmd.AddCommand(playgroundCmd)
}

func runPlayground(_ *cobra.Command, _ []string) error {
	opts := []playground.Option{playground.WithEngineOptions(engineOpts...)}

	if path := viper.ConfigFileUsed(); path != "" && !noWatch {
		w, err := watcher.New(watcher.DefaultConfig(path))
		if err != nil {
			return fmt.Errorf("creating config watcher: %w", err)
		}
		changes, err := w.Start()
		if err != nil {
			return fmt.Errorf("watching config: %w", err)
		}
		defer func() {
			if err := w.Stop(); err != nil {
				log.ErrorErr(log.CatWatcher, "Stopping config watcher failed", err)
			}
		}()
		opts = append(opts, playground.WithReload(changes, reloadConfig))
	}

	zone.NewGlobal()
	model, err := playground.New(cfg, opts...)
	if err != nil {
		return err
	}
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running playground: %w", err)
	}
	return nil
}

// reloadConfig re-reads the config file viper loaded at startup.
func reloadConfig() (config.Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		return config.Config{}, fmt.Errorf("reading config: %w", err)
	}
	c, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Config{}, err
	}
	if err := config.Validate(c); err != nil {
		return config.Config{}, err
	}
	return c, nil
}
