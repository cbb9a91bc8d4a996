package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/thankstars/pkg/cache"
	errs "github.com/matzehuels/thankstars/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the registry lookup cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached registry responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			dir := cfg.Cache.Dir

			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo(out, "Cache is empty")
				return nil
			}

			count := countEntries(dir)
			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return errs.Wrap(errs.ErrCodeConfig, err, "open cache %s", dir)
			}
			if err := fc.Clear(); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess(out, "Cleared %d cached %s", count, plural(count, "entry", "entries"))
			printDetail(out, "Directory: %s", dir)
			if cfg.Cache.RedisURL != "" {
				printDetail(out, "Redis entries expire on their own after cache_ttl (%s)", cfg.CacheTTL)
			}
			return nil
		},
	}
}

func countEntries(dir string) int {
	count := 0
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	return count
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.Cache.Dir)
			return nil
		},
	}
}
