// Package searchcmd is the non-interactive query surface: it runs one search
// across every enabled repository and prints the matches, for scripting and
// for editor integrations that do not want the full screen interface.
package searchcmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"bibrarian/src/internal/config"
	"bibrarian/src/internal/repo"
	"bibrarian/src/internal/schema"
)

// New returns the search command.
func New() *cobra.Command {
	var (
		configPath string
		format     string
	)
	cmd := &cobra.Command{
		Use:   "search <keyword>...",
		Short: "Search all enabled repositories and print the matches",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(configPath)
			if err != nil {
				return err
			}
			repos, enabled, err := repo.FromConfig(cfg, nil)
			if err != nil {
				return err
			}
			entries, err := runSearch(cmd, repos, enabled, strings.Join(args, " "))
			if err != nil {
				return err
			}
			switch format {
			case "table":
				renderTable(cmd, entries)
				return nil
			case "yaml":
				return yaml.NewEncoder(cmd.OutOrStdout()).Encode(entries)
			default:
				return fmt.Errorf("unknown format %q (want table or yaml)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "f", "", "configuration file (default: discover "+config.DefaultFileName+" upward from cwd)")
	cmd.Flags().StringVar(&format, "format", "table", "output format: table or yaml")
	return cmd
}

func resolveConfig(path string) (*config.Config, error) {
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

// runSearch loads and queries the enabled repositories in parallel and
// merges the results in repository order. A repo whose glob matches no file
// is skipped with a note on stderr rather than failing the whole query.
func runSearch(cmd *cobra.Command, repos []repo.Repo, enabled []bool, query string) ([]schema.Entry, error) {
	results := make([][]schema.Entry, len(repos))
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(cmd.Context())
	for i, r := range repos {
		if i < len(enabled) && !enabled[i] {
			continue
		}
		g.Go(func() error {
			if err := r.Load(ctx); err != nil {
				if errors.Is(err, repo.ErrNoFile) {
					mu.Lock()
					fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: no file\n", r.Source())
					mu.Unlock()
					return nil
				}
				return fmt.Errorf("%s: %w", r.Source(), err)
			}
			entries, err := r.Search(ctx, query)
			if err != nil {
				return fmt.Errorf("%s: %w", r.Source(), err)
			}
			results[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var out []schema.Entry
	for _, rs := range results {
		out = append(out, rs...)
	}
	return out, nil
}

func renderTable(cmd *cobra.Command, entries []schema.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no matches")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s (%s)\n", e.UniqueKey(), e.AbbrevAuthors(), e.Title, e.Year)
	}
}
