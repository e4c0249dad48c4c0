package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/outpost-campaign/internal/campaign"
	"github.com/vovakirdan/outpost-campaign/internal/levels"
	"github.com/vovakirdan/outpost-campaign/internal/platform/tui"
	"github.com/vovakirdan/outpost-campaign/internal/sim"
	"github.com/vovakirdan/outpost-campaign/internal/storage"
)

var flagTurnRate int

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Watch a live campaign run in the terminal",
	Long: `Run the campaign against the demo colony and watch condition progress
update live.

Controls:
  r          - Restart current level
  n          - Advance after a victory (skips the celebration delay)
  Q/Ctrl+C   - Quit

Examples:
  outpost play
  outpost play --turn-rate 4
  outpost play --campaign ./my-campaign.yaml`,
	Run: runPlay,
}

func init() {
	playCmd.Flags().IntVar(&flagTurnRate, "turn-rate", 2, "Simulated turns per second")
}

func runPlay(_ *cobra.Command, _ []string) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "outpost",
		Level:  log.WarnLevel, // keep the TUI clean
	})

	registry, err := levels.Load(flagCampaign)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading campaign: %v\n", err)
		os.Exit(1)
	}

	// Terminal size is only advisory; the watcher reflows on resize.
	if _, _, termErr := term.GetSize(int(os.Stdout.Fd())); termErr != nil {
		fmt.Fprintln(os.Stderr, "Warning: not a terminal, output may be garbled")
	}

	events := tui.NewEventBuffer()
	controller := campaign.New(registry, events, logger)

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open attempts database: %v\n", err)
		store = nil
	}
	if store != nil {
		controller.SetRecorder(store)
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	colony := sim.NewColony(sim.DefaultColonyConfig(), seed)

	first, ok := registry.FirstEnabled()
	if !ok {
		fmt.Fprintln(os.Stderr, "Error: campaign has no enabled levels")
		os.Exit(1)
	}
	controller.StartLevel(first)

	runErr := tui.Run(controller, colony, events, flagTurnRate)

	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running watcher: %v\n", runErr)
		os.Exit(1)
	}
}
