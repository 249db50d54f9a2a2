package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"chart-workspace/internal/catalog"
	"chart-workspace/internal/commands"
	"chart-workspace/internal/config"
	"chart-workspace/internal/debug"
	"chart-workspace/internal/debugapi"
	"chart-workspace/internal/env"
	"chart-workspace/internal/fonts"
	"chart-workspace/internal/graphics"
	"chart-workspace/internal/logger"
	"chart-workspace/internal/objects"
	"chart-workspace/internal/scene"
	"chart-workspace/internal/storage"
	"chart-workspace/internal/terminal"
	"chart-workspace/internal/ticker"
	"chart-workspace/internal/workspace"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
)

func main() {
	if err := env.Load(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "env:", err)
	}
	cfg, cfgErr := config.Load(config.Path)
	cfg.ApplyEnv(os.Getenv)

	log := logger.New(cfg.Debug.LogLevel)
	zl := log.Zerolog()
	if cfgErr != nil {
		zl.Warn().Err(cfgErr).Msg("using default config")
	}

	store, err := openStore(cfg.Storage.Path)
	if err != nil {
		zl.Error().Err(err).Str("path", cfg.Storage.Path).Msg("exclusions will not persist")
		store = storage.NewMemory()
	}
	defer store.Close()

	cat := catalog.Default()
	if cfg.Catalog != "" {
		if cat, err = catalog.Load(cfg.Catalog); err != nil {
			zl.Error().Err(err).Str("path", cfg.Catalog).Msg("using built-in catalog")
			cat = catalog.Default()
		}
	}

	backend := graphics.NewBackend(zl)
	svc := workspace.New(workspace.Options{
		Store:             store,
		Catalog:           cat,
		DefaultExclusions: cfg.DefaultExclusions,
		Chart: workspace.ChartOptions{
			Symbol:      cfg.Chart.Symbol,
			InitialBars: cfg.Chart.InitialBars,
			StartPrice:  cfg.Chart.StartPrice,
			Retention:   cfg.Chart.Retention,
			Width:       cfg.Chart.Width,
			Height:      cfg.Chart.Height,
		},
		Releaser: backend,
		Log:      zl,
		Callbacks: workspace.Callbacks{
			OnSelect: func(selected bool, pos mgl32.Vec3) {
				zl.Debug().Bool("selected", selected).Floats32("pos", pos[:]).Msg("selection")
			},
			OnPositionChange: func(pos mgl32.Vec3) {
				zl.Debug().Floats32("pos", pos[:]).Msg("position")
			},
		},
	})

	world := graphics.NewWorld(backend)
	world.SetGridVisible(cfg.Debug.GridVisible)
	hud := &graphics.HUD{Subtitle: fmt.Sprintf("· %s · %s", cfg.Chart.Interval, cfg.Chart.Exchange)}
	dbg := debug.New()
	dbg.SetShowFPS(cfg.Debug.ShowFPS)
	dbg.SetShowMemAlloc(cfg.Debug.ShowMemAlloc)
	dbg.ShowInstances = cfg.Debug.ShowFPS
	input := graphics.NewInput(svc)

	reg := commands.NewRegistry()
	commands.RegisterWorkspace(reg, svc, commands.Toggles{
		Grid: func(v bool) {
			world.SetGridVisible(v)
			cfg.Debug.GridVisible = v
			savePrefs(log, cfg)
		},
		FPS: func(fps, mem bool) {
			dbg.SetShowFPS(fps)
			dbg.SetShowMemAlloc(mem)
			dbg.ShowInstances = fps
			cfg.Debug.ShowFPS, cfg.Debug.ShowMemAlloc = fps, mem
			savePrefs(log, cfg)
		},
	}, log.Log)
	term := terminal.New(log, reg)

	tick, err := ticker.New(cfg.Chart.TickSpec, zl)
	if err != nil {
		zl.Error().Err(err).Str("spec", cfg.Chart.TickSpec).Msg("bad tick schedule, using default")
		tick, _ = ticker.New(ticker.DefaultSpec, zl)
	}

	var api *debugapi.Server
	if cfg.Debug.HTTPAddr != "" {
		api = debugapi.New(debugapi.Config{Addr: cfg.Debug.HTTPAddr, Workspace: svc, Log: zl})
		go func() {
			if err := api.Start(); err != nil {
				zl.Error().Err(err).Msg("debug API stopped")
			}
		}()
	}

	assets := map[objects.BaseKind]string{
		objects.Ultrawide: cfg.Assets.Ultrawide,
		objects.Monitor:   cfg.Assets.Monitor,
		objects.Hanging:   cfg.Assets.HangingMonitor,
	}

	graphics.Run(graphics.Window{
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Title:      cfg.Window.Title,
		Fullscreen: cfg.Window.Fullscreen,
		TargetFPS:  cfg.Window.TargetFPS,
	}, graphics.Loop{
		Init: func() {
			if cfg.Window.Font != "" {
				loadFont(zl, cfg, hud, term, dbg)
			}
			// Loads run from the timer queue so the first frame is drawn before they block.
			for _, kind := range objects.BaseKinds {
				svc.Timers().After(0, func() {
					root, err := backend.Load(string(kind), cfg.AssetPath(assets[kind]))
					if err != nil {
						zl.Error().Err(err).Str("base", string(kind)).Msg("asset load failed")
						svc.BaseFailed(kind, err)
						return
					}
					svc.BaseLoaded(kind, root)
				})
			}
			tick.Start()
		},
		Update: func() {
			term.Update()
			input.Poll(!term.IsOpen())
			if tick.Poll() {
				svc.Tick()
			}
			svc.Step()
			if svc.TakeDirty() {
				backend.UploadChart(svc.Raster())
			}
			dbg.SetInstances(svc.Overlay().Instances)
		},
		Draw: func() {
			world.Draw(svc.Camera(), svc.Scene(), selectedNode(svc.Objects().Selected()), svc.Gizmo())
			hud.Draw(svc.Overlay(), float32(svc.ScreenViewport().Width))
			term.Draw()
			dbg.Draw()
		},
		Close: func() {
			tick.Stop()
			svc.Teardown()
			if api != nil {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				_ = api.Shutdown(ctx)
				cancel()
			}
			if err := backend.Close(); err != nil {
				zl.Warn().Err(err).Msg("backend close")
			}
		},
	})
}

func openStore(path string) (storage.KV, error) {
	if path == "" {
		return storage.NewMemory(), nil
	}
	db, err := storage.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func selectedNode(inst *objects.Instance) *scene.Node {
	if inst == nil {
		return nil
	}
	return inst.Node
}

func loadFont(zl zerolog.Logger, cfg config.Config, hud *graphics.HUD, term *terminal.Terminal, dbg *debug.Debug) {
	path, err := fonts.Find(cfg.Window.Font, fonts.Dirs(cfg.Assets.Dir))
	if err != nil {
		zl.Warn().Err(err).Str("font", cfg.Window.Font).Msg("using default font")
		return
	}
	f, ok := graphics.LoadFont(path)
	if !ok {
		zl.Warn().Str("path", path).Msg("font did not load")
		return
	}
	hud.SetFont(f)
	term.SetFont(f)
	dbg.SetFont(f)
}

func savePrefs(log *logger.Logger, cfg config.Config) {
	if err := config.Save(config.Path, cfg); err != nil {
		log.Log("could not save prefs: " + err.Error())
	}
}
