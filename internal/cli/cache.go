package cli

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/metromap/pkg/cache"
	"github.com/matzehuels/metromap/pkg/config"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the local layout and render cache",
		Long: `Layouts are cached by map content and layout options, artifacts by
layout and render options. These commands work on the file backend; a
Redis cache expires entries by TTL.`,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Remove all cached layouts and artifacts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fc, err := c.fileCache()
				if fc == nil || err != nil {
					return err
				}
				n, err := fc.Clear()
				if err != nil {
					return err
				}
				printSuccess("Cleared %d cached entries", n)
				printDetail("Directory: %s", fc.Dir())
				return nil
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Show cached entries and disk usage per stage",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fc, err := c.fileCache()
				if fc == nil || err != nil {
					return err
				}
				usage, err := fc.Usage()
				if err != nil {
					return err
				}
				if len(usage) == 0 {
					printInfo("Cache is empty")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), usageTable(usage))
				printDetail("Directory: %s", fc.Dir())
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the cache directory path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				dir, err := c.cacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), dir)
				return nil
			},
		},
	)
	return cmd
}

// fileCache opens the configured file cache. It returns nil without an
// error when there is nothing to inspect: a Redis backend or a cache
// directory that was never created.
func (c *CLI) fileCache() (*cache.FileCache, error) {
	if c.Config.Cache.Backend == config.CacheRedis {
		printWarning("Cache backend is redis; entries expire on their own")
		return nil, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		return nil, fmt.Errorf("get cache dir: %w", err)
	}
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		printInfo("Cache is empty")
		return nil, nil
	}
	return cache.NewFileCache(dir)
}

func usageTable(usage []cache.StageUsage) string {
	var entries int
	var size int64
	rows := make([][]string, 0, len(usage)+1)
	for _, u := range usage {
		rows = append(rows, []string{u.Stage, strconv.Itoa(u.Entries), formatBytes(u.Bytes)})
		entries += u.Entries
		size += u.Bytes
	}
	rows = append(rows, []string{"total", strconv.Itoa(entries), formatBytes(size)})

	return styledTable(colorDim, "Stage", "Entries", "Size").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case row == len(rows)-1:
				return lipgloss.NewStyle().Bold(true)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
