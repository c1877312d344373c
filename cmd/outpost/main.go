// Command outpost runs the colony simulation server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/outpost-sim/outpost/internal/api"
	"github.com/outpost-sim/outpost/internal/config"
	"github.com/outpost-sim/outpost/internal/engine"
	"github.com/outpost-sim/outpost/internal/persistence"
	"github.com/outpost-sim/outpost/internal/world"
)

func main() {
	var (
		tuningPath = flag.String("tuning", "configs/tuning.yaml", "tuning file path")
		dbPath     = flag.String("db", "data/outpost.db", "save database path")
		apiPort    = flag.Int("port", 8080, "HTTP API port")
		fresh      = flag.Bool("fresh", false, "ignore any saved world and start over")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*tuningPath)
	if err != nil {
		slog.Error("failed to load tuning", "path", *tuningPath, "error", err)
		os.Exit(1)
	}

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll("data", 0755)
	db, err := persistence.Open(*dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", *dbPath)

	// ── Load or Generate World ────────────────────────────────────────
	ws := loadWorld(db, cfg, *fresh)

	biomes := world.BiomeCounts(ws.Grid)
	for b, c := range biomes {
		slog.Info("terrain", "biome", world.BiomeName(b), "count", c)
	}
	slog.Info("world ready",
		"tick", ws.Tick,
		"agents", len(ws.Agents),
		"grid", fmt.Sprintf("%dx%d", ws.Grid.Width, ws.Grid.Height),
	)

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.NewEngine(ws, logger)

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("OUTPOST_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("OUTPOST_ADMIN_KEY not set, control POST endpoints disabled")
	}

	apiServer := &api.Server{
		World:    ws,
		Eng:      eng,
		DB:       db,
		Port:     *apiPort,
		AdminKey: adminKey,
	}
	apiServer.Start()

	// ── Run ───────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Outpost is live: %d colonists on a %dx%d grid.\n",
		len(ws.Agents), ws.Grid.Width, ws.Grid.Height)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", *apiPort)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run(ctx)

	// Final save on shutdown.
	slog.Info("final save...")
	ws.RLock()
	snap := ws.Capture()
	news := ws.News.Items()
	ws.RUnlock()
	if err := db.SaveSnapshot(snap); err != nil {
		slog.Error("final save failed", "error", err)
	}
	if err := db.AppendNews(news); err != nil {
		slog.Error("news log write failed", "error", err)
	}

	fmt.Println("Simulation stopped. World state saved.")
}

// loadWorld restores the saved world when present, otherwise generates a
// fresh one and writes the initial save.
func loadWorld(db *persistence.DB, cfg config.Config, fresh bool) *engine.WorldState {
	if !fresh {
		snap, err := db.LoadSnapshot()
		switch {
		case err == nil:
			ws, rerr := engine.Restore(snap, cfg)
			if rerr != nil {
				slog.Error("saved world is unusable, generating fresh", "error", rerr)
				break
			}
			slog.Info("world state restored", "tick", ws.Tick, "agents", len(ws.Agents))
			return ws
		case errors.Is(err, persistence.ErrNoSave):
			slog.Info("no saved state found, generating new world")
		default:
			slog.Error("failed to read save, generating fresh", "error", err)
		}
	}

	ws := engine.NewWorldState(cfg)
	if err := db.SaveSnapshot(ws.Capture()); err != nil {
		slog.Error("initial save failed", "error", err)
	}
	return ws
}
