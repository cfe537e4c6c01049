package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ticket-dash/cmd/mockgen/engine"
	"ticket-dash/internal/ticket"
)

func main() {
	dialect := flag.String("dialect", "jira", "Export dialect: jira, servicenow")
	scenario := flag.String("scenario", "mild", "Scenario to generate: mild, chaos, drift")
	distribution := flag.String("distribution", "uniform", "Distribution to use: uniform, weibull")
	out := flag.String("out", "", "Output CSV file (default ./.cache/mock_<dialect>.csv)")
	count := flag.Int("count", 200, "Number of tickets to generate")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible exports")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Dialect:      ticket.Dialect(*dialect),
		Scenario:     *scenario,
		Distribution: *distribution,
		Count:        *count,
		Now:          time.Now(),
		Seed:         *seed,
	}
	path := *out
	if path == "" {
		path = filepath.Join(".cache", fmt.Sprintf("mock_%s.csv", cfg.Dialect))
	}

	fmt.Printf("Generating %s scenario '%s' (Distribution: %s, Count: %d, Seed: %d) to %s...\n", cfg.Dialect, cfg.Scenario, cfg.Distribution, cfg.Count, cfg.Seed, path)

	export, err := engine.Generate(cfg)
	if err != nil {
		fmt.Printf("Failed to generate mock data: %v\n", err)
		os.Exit(1)
	}
	if err := engine.Save(path, export); err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
}
