package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show memory statistics",
		Args:  cobra.NoArgs,
		Run:   runStats,
	}

	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete old memories",
		Long:  "Delete stored memories older than --days (default: memory.retention_days).",
		Args:  cobra.NoArgs,
		Run:   runCleanup,
	}
	cleanupCmd.Flags().Int("days", 0, "Delete memories older than this many days")

	memoryCmd.AddCommand(statsCmd, cleanupCmd)
}

func runStats(cmd *cobra.Command, args []string) {
	e := setup()
	defer e.Close()

	st, err := e.mem.Stats(cmd.Context())
	if err != nil {
		exitErr("stats", err)
	}

	if formatFlag == "text" {
		fmt.Printf("Total:     %d\n", st.TotalMemories)
		fmt.Printf("Buffer:    %d\n", st.BufferSize)
		fmt.Printf("Database:  %s\n", st.DatabasePath)
		fmt.Printf("Available: %v\n", st.Available)
		cats := make([]string, 0, len(st.Categories))
		for c := range st.Categories {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		for _, c := range cats {
			fmt.Printf("  %-16s %d\n", c, st.Categories[c])
		}
		return
	}
	printJSON(st)
}

func runCleanup(cmd *cobra.Command, args []string) {
	days, _ := cmd.Flags().GetInt("days")

	e := setup()
	defer e.Close()
	if days <= 0 {
		days = e.cfg.Memory.RetentionDays
	}
	if days <= 0 {
		exitErr("cleanup", fmt.Errorf("retention is disabled; pass --days"))
	}

	n, err := e.mem.CleanupOlderThan(cmd.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		exitErr("cleanup", err)
	}
	fmt.Printf(`{"ok":true,"deleted":%d,"days":%d}`+"\n", n, days)
}
