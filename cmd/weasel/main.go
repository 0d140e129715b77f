package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fullweasel/server/internal/assets"
	"github.com/fullweasel/server/internal/config"
	"github.com/fullweasel/server/internal/data"
	"github.com/fullweasel/server/internal/game"
	"github.com/fullweasel/server/internal/handler"
	gonet "github.com/fullweasel/server/internal/net"
	"github.com/fullweasel/server/internal/net/message"
	"github.com/fullweasel/server/internal/scripting"
	"github.com/fullweasel/server/internal/system"
	"github.com/fullweasel/server/internal/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name string) {
	fmt.Println()
	fmt.Println("\033[35;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Printf("\033[35;1m  │\033[0m %-41s \033[35;1m│\033[0m\n", name)
	fmt.Println("\033[35;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
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

func printWarn(msg string) {
	fmt.Printf("  \033[33m!\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Server ─────────────────────────────────────────────────────────

func run() error {
	//1.- Configuration and logging.
	cfgPath := "config/server.toml"
	if p := os.Getenv("WEASEL_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	seed := cfg.Server.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	printBanner(cfg.Server.Name)

	//2.- Tuning tables and scoring scripts.
	printSection("Data")

	rounds, err := data.LoadRoundTable(cfg.Data.Rounds)
	if err != nil {
		return fmt.Errorf("load round table: %w", err)
	}
	printStat("Rounds", rounds.Count())

	stages, err := data.LoadStageTable(cfg.Data.Stages)
	if err != nil {
		return fmt.Errorf("load stage table: %w", err)
	}
	printStat("Costume stages", stages.Count())

	lines, err := data.LoadLineTable(cfg.Data.Lines)
	if err != nil {
		return fmt.Errorf("load line table: %w", err)
	}
	printStat("Feedback lines", lines.Count())

	luaEngine, err := scripting.NewEngine(cfg.Data.Scripts, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()
	if luaEngine.Has("calc_meter_delta") {
		printOK("Lua scoring scripts loaded")
	} else {
		printWarn("calc_meter_delta not defined, using config awards")
	}
	fmt.Println()

	//3.- Assets: manifest, background and music. Failures degrade, never abort.
	printSection("Assets")

	httpClient := &http.Client{Timeout: 10 * time.Second}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	manifest, degraded := assets.LoadOrFallback(ctx, cfg.Assets.Manifest, httpClient, log)
	if degraded {
		printWarn("manifest unavailable, using built-in fallback")
	}
	catalog := assets.Resolve(manifest)
	printStat("Sprite roles", len(catalog.Map()))

	prober := &assets.SourceProber{Root: cfg.Assets.PublicDir, Client: httpClient}
	background, err := assets.ChooseBackground(ctx, manifest.VideoURLs(), prober, cfg.Assets.ProbeTimeout, rng, log)
	if err != nil {
		log.Warn("no playable background video, using slideshow",
			zap.Int("candidates", len(manifest.VideoURLs())),
			zap.Int("slides", len(manifest.SlideURLs())),
			zap.Error(err),
		)
		printWarn("background: PNG slideshow")
	} else {
		printOK("background: " + background.Video)
	}
	playlist := assets.NewPlaylist(manifest.TrackURLs())
	printStat("Music tracks", playlist.Len())

	media := game.Media{
		Background: background,
		Slideshow:  assets.Slideshow{Frames: manifest.SlideURLs(), Interval: cfg.Assets.SlideshowInterval},
		Degraded:   degraded,
	}
	fmt.Println()

	//4.- Simulation core.
	engine, err := game.New(game.Options{
		Gameplay: cfg.Gameplay,
		Rounds:   rounds,
		Stages:   stages,
		Lines:    lines,
		Scorer:   luaEngine,
		Seed:     seed,
		Name:     cfg.Server.Name,
		Honoree:  cfg.Server.Honoree,
		Log:      log,
	})
	if err != nil {
		return fmt.Errorf("game engine: %w", err)
	}
	engine.SetMedia(media)

	//5.- Transport and message handlers.
	msgReg := message.NewRegistry(log)
	deps := &handler.Deps{
		Engine:   engine,
		Catalog:  catalog,
		Media:    media,
		Playlist: playlist,
		Rng:      rng,
		Log:      log,
	}
	handler.RegisterAll(msgReg, deps)

	netServer, err := gonet.NewServer(cfg.Network, cfg.Assets.PublicDir, log)
	if err != nil {
		return fmt.Errorf("net server: %w", err)
	}
	go netServer.Serve()

	store := gonet.NewSessionStore()
	engine.Register(system.NewInputSystem(netServer, msgReg, store, engine.State(), cfg.Network.MaxMessagesPerTick,
		func(sess *gonet.Session) { handler.Greet(sess, deps) }, log))
	engine.Register(system.NewOutputSystem(engine, store, cfg.Network.SnapshotEvery, log))

	//6.- Optional trace recorder.
	var tracer *trace.Writer
	if cfg.Trace.Enabled {
		tracer, err = trace.NewWriter(cfg.Trace.Dir, cfg.Server.Name, seed, engine.Mode(), time.Now)
		if err != nil {
			return fmt.Errorf("trace writer: %w", err)
		}
		engine.Register(system.NewTraceSystem(tracer, engine, engine.Bus(), log))
		printOK("tracing to " + tracer.Dir())
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Network.TickRate)
	defer ticker.Stop()

	printSection("Ready")
	printReady(fmt.Sprintf("listening on %s", netServer.Addr().String()))
	printReady(fmt.Sprintf("game loop running (tick: %s, mode: %s)", cfg.Network.TickRate, engine.Mode()))
	fmt.Println()

	//7.- Game loop. Debug requests run between ticks on this goroutine.
	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			engine.Tick(now.Sub(last))
			last = now
		case req := <-netServer.DebugRequests():
			if req.Kind == gonet.DebugAdvance {
				engine.Advance(req.AdvanceMs)
			}
			body, err := engine.SnapshotJSON()
			if err != nil {
				log.Error("encode debug snapshot", zap.Error(err))
				body = []byte(`{}`)
			}
			req.Reply <- body
		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			if err := netServer.Shutdown(shutdownCtx); err != nil {
				log.Warn("http shutdown", zap.Error(err))
			}
			done()
			if tracer != nil {
				if err := tracer.Close(); err != nil {
					log.Warn("close trace", zap.Error(err))
				}
			}
			log.Info("server stopped")
			return nil
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
