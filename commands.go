package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"azote/internal/backend"
	"azote/internal/cache"
	"azote/internal/colors"
	"azote/internal/config"
	"azote/internal/display"
	"azote/internal/dotfiles"
	"azote/internal/imageops"
	"azote/internal/ipc"
	"azote/internal/logging"
	"azote/internal/manager"
	"azote/internal/trash"
	"azote/internal/watch"
)

var errUsage = errors.New("wrong arguments, see azote -h")

func (a *app) run(args []string) error {
	if len(args) == 0 {
		return a.status()
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "displays":
		return a.cmdDisplays()
	case "thumbs":
		return a.cmdThumbs()
	case "list":
		return a.cmdList(rest)
	case "folder":
		return a.cmdFolder(rest)
	case "set":
		return a.cmdSet(rest)
	case "all":
		return a.cmdAll(rest)
	case "split":
		return a.cmdSplit(rest)
	case "flip":
		return a.cmdFlip(rest)
	case "scale":
		return a.cmdScale(rest)
	case "restore":
		return a.cmdRestore()
	case "random":
		return a.cmdRandom(rest)
	case "pick":
		return a.cmdPick(rest)
	case "palette":
		return a.cmdPalette(rest)
	case "dotfiles":
		return a.cmdDotfiles(rest)
	case "trash":
		return a.cmdTrash(rest)
	case "watch":
		return a.cmdWatch()
	}
	return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

// status is the default startup: displays, thumbnails and cache usage.
func (a *app) status() error {
	if err := a.cmdDisplays(); err != nil {
		return err
	}
	a.say("folder_set", map[string]any{"Path": a.settings.SrcPath})
	if err := a.cmdThumbs(); err != nil {
		return err
	}
	files, size := a.cache.Usage()
	a.say("cache_status", map[string]any{"Count": files, "Size": cache.FormatBytes(size)})
	return nil
}

func (a *app) cmdDisplays() error {
	if err := a.loadDisplays(); err != nil {
		if errors.Is(err, display.ErrNoDisplays) {
			a.say("no_displays", nil)
		}
		return err
	}
	fmt.Fprintf(a.out, "%d display(s) via %s:\n", len(a.displays), a.source.Name())
	for _, d := range a.displays {
		fmt.Fprintf(a.out, "  %-12s %dx%d+%d+%d  %s\n", d.Name, d.Width, d.Height, d.X, d.Y, d.GenericName)
	}
	return nil
}

func (a *app) cmdThumbs() error {
	stats, err := a.cache.EnsureWithProgress(a.settings.SrcPath, func(done, total int) {
		logging.Debug("Thumbnail %d/%d", done, total)
	})
	if err != nil {
		return err
	}
	a.say("thumbs_done", map[string]any{
		"Created": stats.Created, "Refreshed": stats.Refreshed, "Fresh": stats.Fresh, "Failed": stats.Failed,
	})
	return nil
}

func (a *app) cmdList(args []string) error {
	fs := newFlagSet("list")
	sorting := fs.String("sort", "", "new, old, az or za")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *sorting != "" && *sorting != a.settings.Sorting {
		switch *sorting {
		case config.SortNewest, config.SortOldest, config.SortAZ, config.SortZA:
		default:
			return fmt.Errorf("sort %q: %w", *sorting, errUsage)
		}
		a.settings.Sorting = *sorting
		if err := a.settings.Save(); err != nil {
			return err
		}
	}
	files, err := backend.GetWallpapers(a.settings.SrcPath, a.cfg.AllowedTypes, a.settings.Sorting)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Fprintln(a.out, f)
	}
	return nil
}

func (a *app) cmdFolder(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	dir, err := filepath.Abs(config.ExpandUser(args[0]))
	if err != nil {
		return err
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a folder", dir)
	}
	a.settings.SrcPath = dir
	if err := a.settings.Save(); err != nil {
		return err
	}
	a.say("folder_set", map[string]any{"Path": dir})
	return a.cmdThumbs()
}

// applyWith builds a manager, lets edit change it and applies the result.
func (a *app) applyWith(edit func(m *manager.Manager) error) error {
	m, err := a.manager()
	if err != nil {
		return err
	}
	if err := edit(m); err != nil {
		return err
	}
	if err := m.Apply(a.ctx); err != nil {
		return err
	}
	a.say("applied", nil)
	return nil
}

func (a *app) cmdSet(args []string) error {
	fs := newFlagSet("set")
	mode := fs.String("mode", "", "scaling mode")
	hex := fs.String("color", "", "plain colour instead of a picture")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 1 || len(rest) > 2 || (len(rest) == 1) == (*hex == "") {
		return errUsage
	}
	name := rest[0]
	return a.applyWith(func(m *manager.Manager) error {
		if *hex != "" {
			if err := m.SetColor(name, *hex); err != nil {
				return err
			}
		} else if err := m.Assign(name, rest[1]); err != nil {
			return err
		}
		if *mode != "" {
			return m.SetMode(name, *mode)
		}
		return nil
	})
}

func (a *app) cmdAll(args []string) error {
	fs := newFlagSet("all")
	mode := fs.String("mode", "", "scaling mode")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}
	m, err := a.manager()
	if err != nil {
		return err
	}
	if err := m.ApplyAll(a.ctx, fs.Arg(0), *mode); err != nil {
		return err
	}
	a.say("applied", nil)
	return nil
}

// setModeAll applies mode to every display when it is not empty.
func setModeAll(m *manager.Manager, mode string) error {
	if mode == "" {
		return nil
	}
	for _, d := range m.Displays() {
		if err := m.SetMode(d.Name, mode); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) cmdSplit(args []string) error {
	fs := newFlagSet("split")
	exclude := fs.String("exclude", "", "comma separated displays to leave out")
	mode := fs.String("mode", "", "scaling mode")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}
	return a.applyWith(func(m *manager.Manager) error {
		for _, name := range strings.Split(*exclude, ",") {
			if name = strings.TrimSpace(name); name == "" {
				continue
			}
			if err := m.SetInclude(name, false); err != nil {
				return err
			}
		}
		if err := m.Split(fs.Arg(0)); err != nil {
			return err
		}
		return setModeAll(m, *mode)
	})
}

func (a *app) cmdFlip(args []string) error {
	fs := newFlagSet("flip")
	mode := fs.String("mode", "", "scaling mode")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errUsage
	}
	return a.applyWith(func(m *manager.Manager) error {
		if err := m.Flip(fs.Arg(0), fs.Arg(1)); err != nil {
			return err
		}
		if *mode != "" {
			return m.SetMode(fs.Arg(0), *mode)
		}
		return nil
	})
}

func (a *app) cmdScale(args []string) error {
	fs := newFlagSet("scale")
	smart := fs.Bool("smart", false, "let content analysis choose the crop")
	mode := fs.String("mode", "", "scaling mode")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errUsage
	}
	var cropper imageops.Cropper = imageops.CenterCrop{}
	if *smart {
		cropper = imageops.SmartCrop{}
	}
	return a.applyWith(func(m *manager.Manager) error {
		if err := m.ScaleToDisplay(fs.Arg(0), fs.Arg(1), cropper); err != nil {
			return err
		}
		if *mode != "" {
			return m.SetMode(fs.Arg(0), *mode)
		}
		return nil
	})
}

func (a *app) cmdRestore() error {
	m, err := a.manager()
	if err != nil {
		return err
	}
	if err := m.Restore(a.ctx); err != nil {
		if errors.Is(err, manager.ErrNothingToRestore) {
			a.say("nothing_to_restore", nil)
			return nil
		}
		return err
	}
	a.say("restored", nil)
	return nil
}

// cmdRandom sets a random picture of the folder on every display. With an
// interval it keeps rotating until interrupted, and a running rotation can
// be driven from another process with -next, -show or -stop.
func (a *app) cmdRandom(args []string) error {
	fs := newFlagSet("random")
	interval := fs.Int("interval", 0, "seconds between changes; 0 sets one picture and exits")
	mode := fs.String("mode", "", "scaling mode")
	next := fs.Bool("next", false, "make the running rotation move on")
	show := fs.String("show", "", "make the running rotation show this picture")
	stopIt := fs.Bool("stop", false, "end the running rotation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	socket := ipc.SocketPath(a.dirs.App)
	switch {
	case *next:
		return ipc.Send(socket, ipc.CmdNext, "")
	case *show != "":
		path, err := filepath.Abs(*show)
		if err != nil {
			return err
		}
		return ipc.Send(socket, ipc.CmdSet, path)
	case *stopIt:
		return ipc.Send(socket, ipc.CmdStop, "")
	}

	m, err := a.manager()
	if err != nil {
		return err
	}
	pickOne := func() error {
		files, err := backend.GetWallpapers(a.settings.SrcPath, a.cfg.AllowedTypes, a.settings.Sorting)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no pictures in %s", a.settings.SrcPath)
		}
		selected := files[rand.IntN(len(files))]
		logging.Info("Random pick: %s", selected)
		return m.ApplyAll(a.ctx, selected, *mode)
	}

	if err := pickOne(); err != nil {
		return err
	}
	if *interval <= 0 {
		a.say("applied", nil)
		return nil
	}

	ctx, cancel := context.WithCancel(a.ctx)
	defer cancel()
	requests := make(chan [2]string)
	if err := ipc.Listen(ctx, socket, func(cmd, arg string) {
		select {
		case requests <- [2]string{cmd, arg}:
		case <-ctx.Done():
		}
	}); err != nil {
		logging.Warn("Rotation control: %v", err)
	}

	ticker := time.NewTicker(time.Duration(*interval) * time.Second)
	defer ticker.Stop()
	for {
		var err error
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err = pickOne()
		case req := <-requests:
			switch req[0] {
			case ipc.CmdNext:
				err = pickOne()
			case ipc.CmdSet:
				err = m.ApplyAll(ctx, req[1], *mode)
			case ipc.CmdStop:
				return nil
			default:
				logging.Warn("Rotation control: unknown command %q", req[0])
			}
			ticker.Reset(time.Duration(*interval) * time.Second)
		}
		if err != nil {
			logging.Warn("Random wallpaper: %v", err)
		}
	}
}

func (a *app) cmdPick(args []string) error {
	fs := newFlagSet("pick")
	copyIt := fs.Bool("copy", false, "copy the hex value to the clipboard")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c := colors.Picker{Wayland: a.wayland}.Pick(a.ctx)
	hex := colors.FromNRGBA(c).Hex()
	a.say("picked", map[string]any{"Hex": hex, "RGB": colors.FormatRGB(c)})
	if *copyIt {
		return a.copy(hex)
	}
	return nil
}

func (a *app) copy(text string) error {
	if err := colors.Copy(text); err != nil {
		return err
	}
	a.say("copied", nil)
	return nil
}

func (a *app) cmdPalette(args []string) error {
	fs := newFlagSet("palette")
	n := fs.Int("n", a.cfg.PaletteColors, "number of colours")
	byLightness := fs.Bool("sort", false, "order from dark to light")
	copyIt := fs.Bool("copy", false, "copy the hex values to the clipboard")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}
	img, err := imageops.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	swatches, err := colors.Palette(img, *n, a.cfg.PaletteQuality)
	if err != nil {
		return err
	}
	if *byLightness {
		colors.SortByLightness(swatches)
	}
	for _, s := range swatches {
		fmt.Fprintf(a.out, "%s  %-20s %d\n", s.Hex(), colors.FormatRGB(s.RGB()), s.Count)
	}
	if *copyIt {
		return a.copy(colors.Hexes(swatches))
	}
	return nil
}

// cmdDotfiles lists the colours of a dotfile, or sets those given as
// KEY=#hex where KEY is group.key for alacritty and the resource name for
// X resources.
func (a *app) cmdDotfiles(args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	alacritty, xres := dotfiles.Locate()
	var path string
	switch args[0] {
	case "alacritty":
		path = alacritty
	case "xresources":
		path = xres
	default:
		return errUsage
	}
	if path == "" {
		a.say("no_dotfiles", nil)
		return nil
	}
	doc, err := dotfiles.Load(path)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		fmt.Fprintln(a.out, path)
		for _, c := range doc.Colors() {
			key := c.Key
			if c.Group != "" {
				key = c.Group + "." + c.Key
			}
			fmt.Fprintf(a.out, "  %-24s %s\n", key, c.Value)
		}
		return nil
	}

	for _, assignment := range args[1:] {
		key, hex, ok := strings.Cut(assignment, "=")
		if !ok {
			return fmt.Errorf("%q: %w", assignment, errUsage)
		}
		group := ""
		if args[0] == "alacritty" {
			if group, key, ok = strings.Cut(key, "."); !ok {
				return fmt.Errorf("%q: want group.key=#hex", assignment)
			}
		}
		if err := doc.Set(group, key, hex); err != nil {
			return err
		}
	}
	return dotfiles.Save(doc)
}

func (a *app) cmdTrash(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	if err := trash.Move(a.ctx, path); err != nil {
		if errors.Is(err, trash.ErrUnavailable) {
			a.say("no_trash", nil)
		}
		return err
	}
	a.say("trashed", map[string]any{"Path": path})
	a.forgetThumbnail(path)
	return nil
}

// forgetThumbnail drops the cache entry of a picture that is gone. Other
// entries stay, whichever folder the picture was in.
func (a *app) forgetThumbnail(path string) {
	if err := a.cache.Remove(path); err != nil {
		logging.Warn("Removing thumbnail of %s: %v", path, err)
	}
}

func (a *app) cmdWatch() error {
	interval := time.Duration(a.cfg.TrackingIntervalSeconds) * time.Second
	w := watch.New(a.settings.SrcPath, a.cfg.AllowedTypes, interval)
	if err := a.cmdThumbs(); err != nil {
		return err
	}
	a.say("watching", map[string]any{"Path": a.settings.SrcPath})
	return w.Run(a.ctx, func(names []string) {
		if _, err := a.cache.Ensure(a.settings.SrcPath); err != nil {
			logging.Warn("Refreshing thumbnails: %v", err)
		}
		a.cache.Clear(a.settings.SrcPath, false)
		a.say("folder_changed", map[string]any{"Count": len(names), "Path": a.settings.SrcPath})
	})
}
