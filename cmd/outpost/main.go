// outpost drives a multi-level colony campaign: it evaluates win/lose
// conditions against the simulation every turn and advances the campaign
// on victories.
//
// Usage:
//
//	outpost run               - Run the campaign headless with the demo colony
//	outpost play              - Watch a campaign run live in the terminal
//	outpost levels            - List the campaign's levels and conditions
//	outpost stats             - Show recorded attempt statistics
//	outpost serve             - Start an SSH server for remote watching
//
// Global flags:
//
//	--campaign <path>  - Campaign YAML (default: embedded standard campaign)
//	--db <path>        - Attempts database (default: ~/.outpost/attempts.db)
//	--seed <value>     - Demo colony RNG seed (0 = random based on time)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagCampaign string
	flagDBPath   string
	flagSeed     int64
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "outpost",
	Short: "Outpost Campaign - turn-based campaign progression engine",
	Long: `Outpost Campaign evaluates a level's win and lose conditions against
colony simulation snapshots once per turn, and drives the campaign's
level-to-level progression.

Available commands:
  run      - Run the campaign headless against the demo colony
  play     - Watch a live campaign run in a terminal UI
  levels   - List campaign levels and their conditions
  stats    - View recorded attempt statistics
  serve    - Start SSH server for remote watching

Examples:
  outpost run
  outpost run --level lean-economy
  outpost play
  outpost levels
  outpost stats
  outpost serve --ssh :2323`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagCampaign, "campaign", "", "Path to a campaign YAML file")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.outpost/attempts.db", "Path to attempts database")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Demo colony RNG seed (0 = random based on time)")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
}
