package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/survivethenight/server/internal/config"
	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/data"
	"github.com/survivethenight/server/internal/entities"
	"github.com/survivethenight/server/internal/game"
	"github.com/survivethenight/server/internal/mapgen"
	gonet "github.com/survivethenight/server/internal/net"
	"github.com/survivethenight/server/internal/persist"
	"github.com/survivethenight/server/internal/scripting"
	"github.com/survivethenight/server/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m          Survive the Night  v0.1.0        \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mServer:\033[0m %s \033[90m(id: %d)\033[0m\n\n", serverName, serverID)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	cfgPath := flag.String("config", "config/server.toml", "path to the server config")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	// 3. Load game data and scripts
	printSection("Data")

	table, err := data.LoadEntityTable(cfg.Data.Entities)
	if err != nil {
		return fmt.Errorf("entity table: %w", err)
	}
	printStat("Entity templates", table.Count())
	printStat("Items", len(table.Items()))

	scripts, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer scripts.Close()
	printOK("Lua wave script loaded")
	fmt.Println()

	// 4. Build the world
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	manager := world.NewManager(log, world.WithTrackerCapacity(cfg.Game.RemovedTrackerCapacity))
	gameMap := mapgen.New(mapgen.Config{
		Width:       cfg.Map.Width,
		Height:      cfg.Map.Height,
		TileSize:    cfg.Map.TileSize,
		Seed:        cfg.Map.Seed,
		TreeDensity: cfg.Map.TreeDensity,
	}, manager, scripts, log)

	srv := game.NewServer(game.Config{
		FPS:                    cfg.Game.FPS,
		DayDuration:            cfg.Game.DayDuration,
		NightDuration:          cfg.Game.NightDuration,
		PerformanceLogInterval: cfg.Game.PerformanceLogInterval,
	}, manager, gameMap, log,
		game.WithMetrics(game.NewMetrics(reg)),
		game.WithNightScheduler(scripts),
	)
	entities.Register(manager, table, log)

	hub := gonet.NewHub(gonet.Config{
		InQueueSize:        cfg.Network.InQueueSize,
		OutQueueSize:       cfg.Network.OutQueueSize,
		MaxMessagesPerTick: cfg.Network.MaxMessagesPerTick,
		ReadTimeout:        cfg.Network.ReadTimeout,
		WriteTimeout:       cfg.Network.WriteTimeout,
	}, reg, log)
	hub.Attach(srv)

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	// 5. Match history (optional)
	if cfg.Database.Enabled {
		printSection("Database")

		dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		db, err := persist.NewDB(dbCtx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		err = persist.RunMigrations(dbCtx, db)
		cancel()
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("Migrations applied")
		fmt.Println()

		repo := persist.NewMatchRepo(db)
		recorder := persist.NewRecorder(repo, srv, log)
		recorder.Subscribe(srv.Bus())
		srv.OnPlayerSpawned(func(p *ecs.Entity) { recorder.PlayerJoined(p.ID()) })
		g.Go(func() error { return recorder.Run(gctx) })
		mux.HandleFunc("/matches", matchesHandler(repo, log))
	}

	// 6. First game
	srv.StartNewGame()
	printStat("Entities on map", len(manager.Entities()))

	httpServer := &http.Server{
		Addr:              cfg.Network.BindAddress,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	printSection("Ready")
	printReady(fmt.Sprintf("Listening on %s", cfg.Network.BindAddress))
	printReady(fmt.Sprintf("Game loop %d fps (tick: %s)", cfg.Game.FPS, cfg.Game.TickInterval()))
	fmt.Println()

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		err := srv.Run(gctx)
		hub.Shutdown()
		return err
	})
	g.Go(func() error {
		shutdownCh := make(chan os.Signal, 1)
		signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(shutdownCh)

		select {
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
		case <-gctx.Done():
		}
		stop()
		srv.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Info("server stopped")
	return err
}

func matchesHandler(repo *persist.MatchRepo, log *zap.Logger) http.HandlerFunc {
	type match struct {
		ID            string    `json:"id"`
		StartedAt     time.Time `json:"startedAt"`
		EndedAt       time.Time `json:"endedAt"`
		DaysSurvived  int       `json:"daysSurvived"`
		Players       int       `json:"players"`
		ZombiesKilled int       `json:"zombiesKilled"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := repo.Recent(r.Context(), 20)
		if err != nil {
			log.Error("list matches", zap.Error(err))
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		out := make([]match, 0, len(rows))
		for _, m := range rows {
			out = append(out, match{
				ID:            m.ID.String(),
				StartedAt:     m.StartedAt,
				EndedAt:       m.EndedAt,
				DaysSurvived:  m.DaysSurvived,
				Players:       m.Players,
				ZombiesKilled: m.ZombiesKilled,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(out); err != nil {
			log.Debug("write matches", zap.Error(err))
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
