//go:build gtk

package display

import (
	"context"
	"fmt"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/gtk"
)

func init() {
	lastResort = func(env Env) Source {
		return GDKSource{wayland: env.WaylandDisplay != ""}
	}
}

// GDKSource reads monitor geometry from GDK. GDK knows no connector names,
// so displays are named after the monitor model.
type GDKSource struct {
	wayland bool
}

func (GDKSource) Name() string    { return "gdk" }
func (s GDKSource) Wayland() bool { return s.wayland }

func (GDKSource) Enumerate(ctx context.Context) ([]Display, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := gtk.InitCheck(nil); err != nil {
		return nil, fmt.Errorf("gtk init: %w", err)
	}
	dpy, err := gdk.DisplayGetDefault()
	if err != nil {
		return nil, err
	}
	var displays []Display
	for i := 0; i < dpy.GetNMonitors(); i++ {
		mon, err := dpy.GetMonitor(i)
		if err != nil || mon == nil {
			continue
		}
		geo := mon.GetGeometry()
		name := mon.GetModel()
		if name == "" {
			name = fmt.Sprintf("monitor-%d", i)
		}
		displays = append(displays, Display{
			Name:        name,
			X:           geo.GetX(),
			Y:           geo.GetY(),
			Width:       geo.GetWidth(),
			Height:      geo.GetHeight(),
			GenericName: genericName(mon.GetManufacturer(), mon.GetModel()),
			Index:       i,
		})
	}
	return displays, nil
}
