package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/richinput/internal/config"
	"github.com/zjrosen/richinput/internal/inputfield"
	"github.com/zjrosen/richinput/internal/log"
	"github.com/zjrosen/richinput/internal/tracing"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const localConfigPath = ".richinput/config.yaml"

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
	configErr error

	// engineOpts are added to every engine a command builds.
	engineOpts []inputfield.Option
	cleanups   []func()
)

var rootCmd = &cobra.Command{
	Use:   "richinput",
	Short: "Rich text input fields for the terminal",
	Long: `richinput edits text with inline markup, emoji and mentions while keeping
a plain text copy for the keyboard in sync.

Run without a subcommand to open the playground.`,
	Version:            version,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
	RunE:               runPlayground,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/richinput/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log (also RICHINPUT_DEBUG)")
}

func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .richinput/config.yaml (current directory)
		// 2. ~/.config/richinput/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			viper.AddConfigPath(config.DefaultConfigDir())
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			configErr = fmt.Errorf("reading config: %w", err)
			return
		}
		// No config file found anywhere - create the default in the user config dir
		defaultPath := filepath.Join(config.DefaultConfigDir(), "config.yaml")
		if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
			viper.SetConfigFile(defaultPath)
			_ = viper.ReadInConfig()
		}
		// If write fails, just continue with defaults (no config file)
	}

	cfg, configErr = config.Load(viper.GetViper())
}

// setup starts logging and tracing for the command being run.
func setup(cmd *cobra.Command, _ []string) error {
	if os.Getenv("RICHINPUT_DEBUG") != "" || debugFlag {
		logPath := os.Getenv("RICHINPUT_LOG")
		if logPath == "" {
			logPath = "debug.log"
		}
		cleanup, err := log.Init(logPath)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		cleanups = append(cleanups, cleanup)
		log.Info(log.CatConfig, "richinput starting", "command", cmd.Name(), "version", version, "logPath", logPath)
	}

	if configErr != nil {
		return configErr
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	if provider.Enabled() {
		engineOpts = append(engineOpts, inputfield.WithTracer(provider.Tracer()))
		cleanups = append(cleanups, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := provider.Shutdown(ctx); err != nil {
				log.ErrorErr(log.CatConfig, "Tracing shutdown failed", err)
			}
		})
		log.Info(log.CatConfig, "Tracing enabled", "exporter", cfg.Tracing.Exporter)
	}
	return nil
}

func teardown(*cobra.Command, []string) error {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
	engineOpts = nil
	return nil
}

// inputText joins args, or reads stdin when there are none.
func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
