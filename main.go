package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/catroom/config"
	"github.com/pthm-cable/catroom/coords"
	"github.com/pthm-cable/catroom/headless"
	"github.com/pthm-cable/catroom/placement"
	"github.com/pthm-cable/catroom/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headlessMode := flag.Bool("headless", false, "Audit the projection and exit without graphics")
	outputDir := flag.String("output-dir", "", "Output directory for CSV reports and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed for furniture placement (0 = time-based)")
	windowWidth := flag.Int("window-width", 0, "Window width in px (0 = use config)")
	windowHeight := flag.Int("window-height", 0, "Window height in px (0 = use config)")
	panelWidth := flag.Float64("panel-width", -1, "Side panel width in px (-1 = use config)")
	furniture := flag.Bool("furniture", true, "Place the furniture catalogue")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *windowWidth > 0 {
		cfg.Screen.Width = *windowWidth
	}
	if *windowHeight > 0 {
		cfg.Screen.Height = *windowHeight
	}
	if *panelWidth >= 0 {
		cfg.Panel.SidePanelWidth = *panelWidth
	}

	// Set up seed
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if *headlessMode {
		// Headless mode - pure projection audit, no raylib needed
		window := coords.StaticWindow{Width: float64(cfg.Screen.Width), Height: float64(cfg.Screen.Height)}
		sched := &coords.ManualScheduler{}
		sys := coords.NewWithOptions(cfg, window, coords.Options{Scheduler: sched.Schedule, Logger: logger})

		slog.Info("starting headless audit",
			"seed", rngSeed,
			"window_width", cfg.Screen.Width,
			"window_height", cfg.Screen.Height,
			"panel_width", cfg.Panel.SidePanelWidth,
		)

		_, err := headless.Run(sys, headless.Options{
			Seed:      rngSeed,
			Furniture: *furniture,
			OutputDir: *outputDir,
			Logger:    logger,
		})
		if err != nil {
			slog.Error("audit failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Cat Room")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	sched := &coords.ManualScheduler{}
	sys := coords.NewWithOptions(cfg, viewer.Window{}, coords.Options{Scheduler: sched.Schedule, Logger: logger})

	svc := placement.New(sys, placement.Options{Seed: rngSeed, Logger: logger})
	if *furniture {
		if err := headless.PlaceCatalogue(svc, cfg); err != nil {
			slog.Error("failed to place furniture", "error", err)
		}
	}

	v := viewer.New(sys, sched, svc, logger)
	defer v.Unload()

	for !rl.WindowShouldClose() {
		v.Update()
		v.Draw()
	}
}
