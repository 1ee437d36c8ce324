package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"bibrarian/src/cmd/bibrarian/fetchcmd"
	"bibrarian/src/cmd/bibrarian/pickcmd"
	"bibrarian/src/cmd/bibrarian/searchcmd"
	"bibrarian/src/internal/config"
	"bibrarian/src/internal/logging"
	"bibrarian/src/internal/repo"
	"bibrarian/src/internal/tui"
	"bibrarian/src/internal/version"
)

func newRootCmd() *cobra.Command {
	var (
		configPath string
		genConfig  bool
		logPath    string
		keysOutput string
	)
	cmd := &cobra.Command{
		Use:           version.Name,
		Short:         "Interactive bibliography search across BibTeX files and dblp.org",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if genConfig {
				target := configPath
				if target == "" {
					target = config.DefaultFileName
				}
				if err := config.WriteDefault(target); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote example configuration to %s\n", target)
				return nil
			}
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			log, closeLog, err := openLog(cfg, logPath)
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()

			repos, enabled, err := repo.FromConfig(cfg, log)
			if err != nil {
				return err
			}
			log.Info("starting", "version", version.Version, "config", cfg.Source, "repos", len(repos))
			return tui.Run(tui.Options{
				Config:     cfg,
				Repos:      repos,
				Enabled:    enabled,
				KeysOutput: keysOutput,
				Log:        log,
			})
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "f", "", "configuration file (default: discover "+config.DefaultFileName+" upward from cwd)")
	cmd.Flags().BoolVarP(&genConfig, "gen-config", "g", false, "write an example configuration file and exit")
	cmd.Flags().StringVarP(&logPath, "log", "l", "", "log file (default: config log.path or a temp file)")
	cmd.Flags().StringVarP(&keysOutput, "keys-output", "k", "", "write selected citation keys to this file on ctrl+w")
	return cmd
}

// loadConfig resolves the config file: the explicit -f path when given,
// otherwise the first .bibrarian.json found walking up from cwd.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		path, err = config.Discover(cwd, config.DefaultFileName)
		if errors.Is(err, config.ErrNotFound) {
			return nil, fmt.Errorf("no %s found in this or any parent directory.\nYou can generate an example config file using option -g", config.DefaultFileName)
		}
		if err != nil {
			return nil, err
		}
	}
	return config.Load(path)
}

func openLog(cfg *config.Config, flagPath string) (*slog.Logger, func() error, error) {
	path := flagPath
	if path == "" {
		path = cfg.Log.Path
	}
	if path == "" {
		path = logging.DefaultPath()
	}
	return logging.Setup(path, cfg.Log.Level)
}

func execute() error {
	root := newRootCmd()
	root.AddCommand(pickcmd.New())
	root.AddCommand(searchcmd.New())
	root.AddCommand(fetchcmd.New())
	return root.Execute()
}

func main() {
	if err := execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
