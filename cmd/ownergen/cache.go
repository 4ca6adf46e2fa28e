package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ownergen/internal/storage"
)

var (
	cacheDirFlag string
	cacheJSON    bool
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the result cache",
	Long:  "Inspect or clear cached ownership tables stored under the cache directory",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached ownership table",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached ownership tables",
	Args:  cobra.NoArgs,
	RunE:  runCacheList,
}

func init() {
	cacheCmd.PersistentFlags().StringVar(&cacheDirFlag, "cache-dir", "", "Result cache directory (default: from config)")
	cacheListCmd.Flags().BoolVar(&cacheJSON, "json", false, "Output JSON")

	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheListCmd)
	rootCmd.AddCommand(cacheCmd)
}

// openCacheDB opens the cache database, or returns nil when none exists yet.
func openCacheDB(s *session) (*storage.DB, error) {
	dir := s.cfg.Cache.Dir
	if cacheDirFlag != "" {
		dir = cacheDirFlag
	}
	dir = s.resolve(dir)
	if _, err := os.Stat(filepath.Join(dir, storage.DBFile)); err != nil {
		return nil, nil
	}
	return storage.Open(dir, s.logger)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	db, err := openCacheDB(s)
	if err != nil {
		return err
	}
	removed := 0
	if db != nil {
		defer func() { _ = db.Close() }()
		if removed, err = storage.NewCache(db, s.logger).Clear(); err != nil {
			return err
		}
	}

	fmt.Printf("Removed %d cache %s\n", removed, plural(removed, "entry", "entries"))
	return nil
}

func runCacheList(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	db, err := openCacheDB(s)
	if err != nil {
		return err
	}
	entries := []storage.Entry{}
	if db != nil {
		defer func() { _ = db.Close() }()
		if entries, err = storage.NewCache(db, s.logger).List(); err != nil {
			return err
		}
	}

	if cacheJSON {
		return printJSON(os.Stdout, entries)
	}
	printCacheEntries(os.Stdout, entries)
	return nil
}

func printCacheEntries(w io.Writer, entries []storage.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "Cache is empty")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tTIP\tFILES\tSIZE\tCREATED\tRUN")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			shortHash(e.Key, 12),
			shortHash(e.TipCommit, 8),
			e.Files,
			humanBytes(int64(e.Size)),
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			e.RunID,
		)
	}
	_ = tw.Flush()
}
