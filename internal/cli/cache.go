package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/argmap/internal/cache"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the on-disk evaluation cache",
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired and unreadable cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		disk, err := diskCache()
		if err != nil {
			return err
		}
		removed, err := disk.Prune()
		if err != nil {
			return fmt.Errorf("prune cache: %w", err)
		}
		fmt.Printf("✓ Removed %d expired entr(ies)\n", removed)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cache entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		disk, err := diskCache()
		if err != nil {
			return err
		}
		if err := disk.Clear(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		fmt.Println("✓ Cache cleared")
		return nil
	},
}

func diskCache() (*cache.DiskCache, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Cache.Dir == "" {
		return nil, fmt.Errorf("no cache directory configured (cache.dir)")
	}
	return cache.NewDiskCache(cfg.Cache.Dir, cfg.Cache.DiskTTL), nil
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
