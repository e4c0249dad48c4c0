package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/outpost-campaign/internal/campaign"
	"github.com/vovakirdan/outpost-campaign/internal/levels"
	"github.com/vovakirdan/outpost-campaign/internal/sim"
	"github.com/vovakirdan/outpost-campaign/internal/storage"
)

var (
	flagLevel    string
	flagMaxTurns int
	flagRetries  int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the campaign headless with the demo colony",
	Long: `Run the campaign (or a single level) to completion against the demo
colony, logging condition transitions and level outcomes.

A failed level is retried up to --retries times before the run stops.

Examples:
  outpost run
  outpost run --level first-light
  outpost run --seed 42 --retries 1`,
	Run: runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagLevel, "level", "", "Run only this level id")
	runCmd.Flags().IntVar(&flagMaxTurns, "max-turns", 200, "Safety cap on turns per attempt")
	runCmd.Flags().IntVar(&flagRetries, "retries", 2, "Retries per level before giving up")
}

func runRun(_ *cobra.Command, _ []string) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "outpost",
	})

	registry, err := levels.Load(flagCampaign)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading campaign: %v\n", err)
		os.Exit(1)
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	sink := campaign.SinkFunc(func(ev campaign.Event) {
		switch e := ev.(type) {
		case campaign.StateChangedEvent:
			logger.Info("conditions state changed",
				"level", e.LevelID, "turn", e.Result.Turn,
				"victory", e.Result.Victory, "defeat", e.Result.Defeat)
		case campaign.LevelCompletedEvent:
			logger.Info("level completed",
				"level", e.LevelID, "turn", e.Turn, "duration", e.Duration)
		case campaign.LevelFailedEvent:
			logger.Warn("level failed", "level", e.LevelID, "turn", e.FailTurn)
		case campaign.CampaignCompletedEvent:
			logger.Info("campaign completed",
				"levels", e.Completed, "attempts", e.Stats.Attempts,
				"victories", e.Stats.Victories, "defeats", e.Stats.Defeats)
		}
	})

	controller := campaign.New(registry, sink, logger)

	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open attempts database", "error", err)
	} else {
		controller.SetRecorder(store)
		defer store.Close()
	}

	startID := flagLevel
	if startID == "" {
		first, ok := registry.FirstEnabled()
		if !ok {
			fmt.Fprintln(os.Stderr, "Error: campaign has no enabled levels")
			os.Exit(1)
		}
		startID = first
	}

	if !controller.StartLevel(startID) {
		fmt.Fprintf(os.Stderr, "Error: cannot start level %q (unknown, disabled or locked)\n", startID)
		os.Exit(1)
	}

	retriesLeft := flagRetries
	for {
		colony := sim.NewColony(sim.DefaultColonyConfig(), seed)

		for turn := 0; turn < flagMaxTurns && controller.State() == campaign.StateLevelActive; turn++ {
			colony.Step()
			controller.Tick(colony.Snapshot())
		}

		switch controller.State() {
		case campaign.StateVictory:
			if flagLevel != "" || !controller.AdvanceToNextLevel() {
				printSummary(controller)
				return
			}
			retriesLeft = flagRetries

		case campaign.StateDefeat:
			if retriesLeft == 0 {
				logger.Error("out of retries", "level", controller.CurrentLevelID())
				printSummary(controller)
				os.Exit(1)
			}
			retriesLeft--
			seed++ // a fresh seed gives the retry a different run
			controller.RestartCurrentLevel()

		case campaign.StateIdle:
			printSummary(controller)
			return

		default:
			logger.Error("attempt hit the turn cap without an outcome",
				"level", controller.CurrentLevelID(), "cap", flagMaxTurns)
			printSummary(controller)
			os.Exit(1)
		}
	}
}

func printSummary(c *campaign.Controller) {
	stats := c.Stats()

	fmt.Println()
	fmt.Println("Campaign summary")
	fmt.Printf("  completed: %d  attempts: %d  victories: %d  defeats: %d\n",
		len(c.CompletedLevels()), stats.Attempts, stats.Victories, stats.Defeats)
	if stats.Victories > 0 {
		fmt.Printf("  average completion: %s  fastest: %s\n",
			stats.AverageCompletion.Round(time.Millisecond),
			stats.FastestCompletion.Round(time.Millisecond))
	}
	for _, h := range c.History() {
		fmt.Printf("  ✓ %s (%s)\n", h.Name, h.ID)
	}
}
