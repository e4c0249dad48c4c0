package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/outpost-campaign/internal/conditions"
	"github.com/vovakirdan/outpost-campaign/internal/levels"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List campaign levels and their conditions",
	Long: `Display every level of the campaign with its win and lose conditions.

Examples:
  outpost levels
  outpost levels --campaign ./my-campaign.yaml`,
	Run: runLevels,
}

func runLevels(_ *cobra.Command, _ []string) {
	registry, err := levels.Load(flagCampaign)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading campaign: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Campaign: %s\n\n", registry.Name())

	for i, def := range registry.List() {
		state := "enabled"
		if !def.Enabled {
			state = "disabled"
		}
		fmt.Printf("%d. %s (%s) [%s]\n", i+1, def.Name, def.ID, state)
		if def.Description != "" {
			fmt.Printf("   %s\n", def.Description)
		}
		fmt.Println("   win:")
		for _, cfg := range def.WinConditions {
			fmt.Printf("     - %s\n", describeConfig(cfg))
		}
		fmt.Println("   lose:")
		for _, cfg := range def.LoseConditions {
			fmt.Printf("     - %s\n", describeConfig(cfg))
		}
		fmt.Println()
	}
}

// describeConfig renders one condition config as a short summary line.
func describeConfig(cfg conditions.Config) string {
	parts := []string{cfg.Type}
	if cfg.Building != "" {
		parts = append(parts, "building="+cfg.Building)
	}
	if cfg.Mode != "" {
		parts = append(parts, "mode="+cfg.Mode)
	}
	if cfg.Comparator != "" {
		parts = append(parts, "comparator="+cfg.Comparator)
	}
	if cfg.Count > 0 {
		parts = append(parts, fmt.Sprintf("count=%d", cfg.Count))
	}
	if cfg.Predicate != "" {
		parts = append(parts, "predicate="+cfg.Predicate)
	}
	if cfg.Turns > 0 {
		parts = append(parts, fmt.Sprintf("turns=%d", cfg.Turns))
	}
	if len(cfg.Requires) > 0 {
		parts = append(parts, "requires="+strings.Join(cfg.Requires, ","))
	}
	if cfg.MaxTurns > 0 {
		parts = append(parts, fmt.Sprintf("max_turns=%d", cfg.MaxTurns))
	}
	if cfg.Resource != "" {
		parts = append(parts, "resource="+cfg.Resource)
	}
	if cfg.Limit > 0 {
		parts = append(parts, fmt.Sprintf("limit=%.0f", cfg.Limit))
	}
	return strings.Join(parts, " ")
}
