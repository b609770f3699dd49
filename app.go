package main

import (
	"context"
	"fmt"
	"io"

	"azote/internal/cache"
	"azote/internal/config"
	"azote/internal/display"
	"azote/internal/i18n"
	"azote/internal/imageops"
	"azote/internal/logging"
	"azote/internal/manager"
)

// Size of the seeded sample pictures.
const sampleWidth, sampleHeight = 1920, 1080

// app is everything a command needs: configuration, directories and, on
// demand, the displays.
type app struct {
	ctx      context.Context
	out      io.Writer
	cfg      config.Config
	settings *config.Settings
	dirs     config.Dirs
	env      display.Env
	wayland  bool
	cache    *cache.Cache
	tr       *i18n.Translator

	displays []display.Display
	source   display.Source
}

func newApp(ctx context.Context, lang string, out io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		// Defaults are still usable.
		logging.Warn("Config: %v", err)
	}

	env := display.EnvFromOS()
	a := &app{
		ctx:     ctx,
		out:     out,
		cfg:     cfg,
		env:     env,
		wayland: env.SwaySock != "" || env.WaylandDisplay != "",
	}
	if err := a.prepareDirs(); err != nil {
		return nil, err
	}
	logging.Setup(a.dirs.LogFile, logging.ParseLevel(cfg.LogLevel))
	logging.Info("azote %s starting, wayland=%v", version, a.wayland)

	if err := imageops.SeedSamples(a.dirs.Sample, sampleWidth, sampleHeight); err != nil {
		logging.Warn("Seeding samples: %v", err)
	}
	a.settings, err = config.LoadSettings(a.dirs.SettingsFile, a.dirs.Sample)
	if err != nil {
		logging.Warn("Settings: %v", err)
	}

	if lang == "" {
		lang = a.settings.Lang
	}
	a.tr = i18n.New(lang)
	a.cache = cache.New(a.dirs.Thumbnails, cfg.ThumbWidth, cfg.ThumbHeight, cfg.AllowedTypes)
	return a, nil
}

func (a *app) prepareDirs() error {
	dirs, err := config.NewDirs(a.wayland)
	if err != nil {
		return err
	}
	if err := dirs.Prepare(); err != nil {
		logging.Warn("Preparing %s: %v", dirs.App, err)
	}
	a.dirs = dirs
	return nil
}

// loadDisplays discovers the outputs once. The painter follows the source
// that answered, which may differ from the environment's first guess.
func (a *app) loadDisplays() error {
	if a.displays != nil {
		return nil
	}
	displays, src, err := display.Discover(a.ctx, display.Detect(a.env, nil))
	if err != nil {
		return err
	}
	a.displays, a.source = displays, src
	if src.Wayland() != a.wayland {
		a.wayland = src.Wayland()
		return a.prepareDirs()
	}
	return nil
}

func (a *app) manager() (*manager.Manager, error) {
	if err := a.loadDisplays(); err != nil {
		return nil, err
	}
	return manager.New(manager.Options{
		Displays:     a.displays,
		Wayland:      a.wayland,
		Dirs:         a.dirs,
		ThumbWidth:   a.cfg.ThumbWidth,
		ThumbHeight:  a.cfg.ThumbHeight,
		Cache:        a.cache,
		GenericNames: a.settings.GenericDisplayNames,
	})
}

func (a *app) say(id string, data map[string]any) {
	fmt.Fprintln(a.out, a.tr.T(id, data))
}

func (a *app) clear(all bool) error {
	n := a.cache.Clear(a.settings.SrcPath, all)
	a.say("cleared", map[string]any{"Count": n})
	return nil
}
