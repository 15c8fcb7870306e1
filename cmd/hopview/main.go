package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sagoresarker/cabletrace/internal/cables"
	"github.com/sagoresarker/cabletrace/internal/config"
	"github.com/sagoresarker/cabletrace/internal/logger"
	"github.com/sagoresarker/cabletrace/internal/models"
	"github.com/sagoresarker/cabletrace/internal/session"
	"github.com/sagoresarker/cabletrace/internal/tui"
	"github.com/sagoresarker/cabletrace/internal/utils"
)

func main() {
	file := flag.String("file", "", "JSON file with a run ({\"target\", \"hops\"}) or a bare hop array")
	configPath := flag.String("config", "", "path to config file")
	merge := flag.Bool("merge", false, "merge consecutive hops at the same place")
	annotate := flag.Bool("annotate", false, "match hop pairs to cables from the cable collection")
	logPath := flag.String("log", "", "write debug logs to this file")
	flag.Parse()

	if *file == "" {
		fmt.Println("Please provide a hop file with -file")
		fmt.Println("Example: hopview -file trace.json")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// the alt screen owns the terminal, so logs only go to a file
	log := zap.NewNop()
	if *logPath != "" {
		logCfg := cfg.Logging
		logCfg.Output = *logPath
		if log, err = logger.New(logCfg); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
			os.Exit(1)
		}
	}
	defer log.Sync()

	run, err := readRun(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if *merge {
		run.Hops = models.MergeConsecutive(run.Hops)
	}
	if *annotate {
		catalog, err := cables.LoadFile(cfg.Cables.GeoJSONPath, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		run.Hops = catalog.Annotate(run.Hops, cfg.Cables.NearestToleranceKm)
	}

	s := session.New("local", session.OptionsFromConfig(cfg), nil, log)
	defer s.Close()

	p := tea.NewProgram(tui.NewViewerModel(s, run, cfg.Idle.TickInterval), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "viewer failed: %v\n", err)
		os.Exit(1)
	}
}

func readRun(path string) (models.Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Run{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var run models.Run
	if err := json.Unmarshal(data, &run); err != nil {
		var hops []models.Hop
		if errHops := json.Unmarshal(data, &hops); errHops != nil {
			return models.Run{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		run.Hops = hops
	}

	if run.Target != "" {
		target, err := utils.NormalizeHost(run.Target)
		if err != nil {
			return models.Run{}, fmt.Errorf("target %q: %w", run.Target, err)
		}
		run.Target = target
	}
	return run, nil
}
