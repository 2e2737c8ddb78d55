package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/danielpatrickdp/driftwatch/internal/alerts"
	"github.com/danielpatrickdp/driftwatch/internal/config"
	"github.com/danielpatrickdp/driftwatch/internal/dataset"
	"github.com/danielpatrickdp/driftwatch/internal/embed"
	"github.com/danielpatrickdp/driftwatch/internal/ledger"
	"github.com/danielpatrickdp/driftwatch/internal/runner"
	"github.com/danielpatrickdp/driftwatch/internal/synth"
	"github.com/danielpatrickdp/driftwatch/internal/textdrift"
)

// #region main

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "run":
		runCmd(os.Args[2:])
	case "generate":
		generateCmd(os.Args[2:])
	case "inspect":
		inspectCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: driftwatch <command> [flags]")
	fmt.Fprintln(os.Stderr, "  run       run drift analysis on a reference/current table pair")
	fmt.Fprintln(os.Stderr, "  generate  generate synthetic drift data")
	fmt.Fprintln(os.Stderr, "  inspect   inspect the run ledger")
}

// #endregion main

// #region run-cmd

func runCmd(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path (YAML)")
	refPath := fs.String("ref", "", "reference table path (JSON column document)")
	curPath := fs.String("cur", "", "current table path (JSON column document)")
	outDir := fs.String("out", "reports", "output directory")
	fs.Parse(args)

	if *refPath == "" || *curPath == "" {
		log.Fatal("run: -ref and -cur are required")
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}

	ref, err := dataset.ReadJSON(*refPath)
	if err != nil {
		log.Fatalf("load reference: %v", err)
	}
	cur, err := dataset.ReadJSON(*curPath)
	if err != nil {
		log.Fatalf("load current: %v", err)
	}

	var embedder textdrift.Embedder
	if cfg.Embedding.URL != "" {
		embedder = embed.NewClient(cfg.Embedding.URL, cfg.EmbeddingTimeout())
	}

	var led *ledger.Store
	if cfg.LedgerPath != "" {
		if dir := filepath.Dir(cfg.LedgerPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				log.Fatalf("create ledger dir: %v", err)
			}
		}
		led, err = ledger.NewStore(cfg.LedgerPath)
		if err != nil {
			log.Fatalf("open ledger: %v", err)
		}
		defer led.Close()
	}

	r := runner.New(cfg, nil, embedder, led)
	summary, err := r.Run(context.Background(), ref, cur)
	if err != nil {
		log.Fatalf("run drift analysis: %v", err)
	}

	summaryPath := filepath.Join(*outDir, "drift_summary.json")
	if err := summary.WriteJSON(summaryPath); err != nil {
		log.Fatalf("write summary: %v", err)
	}

	fmt.Println("=== Drift Analysis Complete ===")
	fmt.Printf("JSON summary: %s\n", summaryPath)
	printAlerts(summary.Alerts)
}

func printAlerts(list []alerts.Alert) {
	if len(list) == 0 {
		fmt.Println("\nNo alerts triggered.")
		return
	}
	fmt.Printf("\n=== Alerts (%d) ===\n", len(list))
	for _, a := range list {
		fmt.Printf("ALERT [%s]: %s\n", a.Severity, a.Message)
	}
}

// #endregion run-cmd

// #region generate-cmd

func generateCmd(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	outDir := fs.String("out", "data", "output directory")
	n := fs.Int("n", 1000, "number of samples per table")
	seed := fs.Int64("seed", 42, "random seed")
	fs.Parse(args)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}

	refPath := filepath.Join(*outDir, "reference.json")
	curPath := filepath.Join(*outDir, "current.json")

	if err := synth.Baseline(*n, *seed).WriteJSON(refPath); err != nil {
		log.Fatalf("write reference: %v", err)
	}
	if err := synth.Drifted(*n, *seed+1).WriteJSON(curPath); err != nil {
		log.Fatalf("write current: %v", err)
	}

	fmt.Printf("Generated reference dataset: %s\n", refPath)
	fmt.Printf("Generated current dataset: %s\n", curPath)
}

// #endregion generate-cmd

// #region inspect-cmd

func inspectCmd(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	ledgerPath := fs.String("ledger", "", "path to the run ledger db")
	last := fs.Int("last", 20, "show N most recent runs")
	jsonOut := fs.Bool("json", false, "output as JSON instead of a table")
	fs.Parse(args)

	if *ledgerPath == "" {
		log.Fatal("inspect: -ledger is required")
	}

	store, err := ledger.NewStore(*ledgerPath)
	if err != nil {
		log.Fatalf("open ledger: %v", err)
	}
	defer store.Close()

	runs, err := store.RecentRuns(*last)
	if err != nil {
		log.Fatalf("query runs: %v", err)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(runs); err != nil {
			log.Fatalf("encode runs: %v", err)
		}
		return
	}

	fmt.Printf("%-36s  %-24s  %8s  %8s  %6s\n", "RUN", "STARTED", "DRIFT", "SHARE", "ALERTS")
	for _, r := range runs {
		fmt.Printf("%-36s  %-24s  %8.3f  %8.3f  %6d\n",
			r.RunID, r.StartedAt.Format("2006-01-02T15:04:05Z"), r.DatasetDriftScore, r.DriftingShare, r.AlertCount)
	}
}

// #endregion inspect-cmd
