package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/outpost-campaign/internal/levels"
	"github.com/vovakirdan/outpost-campaign/internal/storage"
)

var flagRecent int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show recorded attempt statistics",
	Long: `Display per-level attempt statistics and the most recent attempts
from the database.

Examples:
  outpost stats
  outpost stats --recent 20`,
	Run: runStats,
}

func init() {
	statsCmd.Flags().IntVar(&flagRecent, "recent", 10, "How many recent attempts to list")
}

func runStats(_ *cobra.Command, _ []string) {
	registry, err := levels.Load(flagCampaign)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading campaign: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening attempts database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	allStats, err := store.GetAllLevelStats()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving stats: %v\n", err)
		os.Exit(1)
	}

	if len(allStats) == 0 {
		fmt.Println("No attempts recorded yet.")
		fmt.Println()
		fmt.Println("Run 'outpost run' or 'outpost play' to record the first attempt!")
		return
	}

	fmt.Println("Level statistics")
	fmt.Println()
	fmt.Printf("  %-16s  %-8s  %-9s  %-7s  %-10s  %s\n",
		"Level", "Attempts", "Victories", "Defeats", "Best turns", "Fastest")
	fmt.Printf("  %-16s  %-8s  %-9s  %-7s  %-10s  %s\n",
		"-----", "--------", "---------", "-------", "----------", "-------")

	for _, def := range registry.List() {
		ls, ok := allStats[def.ID]
		if !ok {
			continue
		}
		best := "-"
		if ls.BestTurns > 0 {
			best = fmt.Sprintf("%d", ls.BestTurns)
		}
		fastest := "-"
		if ls.BestDuration > 0 {
			fastest = ls.BestDuration.Round(time.Millisecond).String()
		}
		fmt.Printf("  %-16s  %-8d  %-9d  %-7d  %-10s  %s\n",
			def.ID, ls.Attempts, ls.Victories, ls.Defeats, best, fastest)
	}

	attempts, err := store.RecentAttempts(flagRecent)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving attempts: %v\n", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("Recent attempts")
	fmt.Println()
	for _, a := range attempts {
		fmt.Printf("  %-16s  %-8s  turn %-4d  %s\n",
			a.LevelID, a.Outcome, a.Turns, a.CreatedAt.Format("2006-01-02 15:04"))
	}
}
