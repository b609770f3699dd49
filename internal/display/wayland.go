package display

import (
	"context"
	"encoding/json"
	"fmt"
)

// SwaySource asks sway through swaymsg.
type SwaySource struct {
	Run Runner
}

func (SwaySource) Name() string  { return "sway" }
func (SwaySource) Wayland() bool { return true }

type swayOutput struct {
	Name   string `json:"name"`
	Make   string `json:"make"`
	Model  string `json:"model"`
	Serial string `json:"serial"`
	Active bool   `json:"active"`
	Rect   struct {
		X      int `json:"x"`
		Y      int `json:"y"`
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"rect"`
}

func (s SwaySource) Enumerate(ctx context.Context) ([]Display, error) {
	out, err := s.Run(ctx, "swaymsg", "-t", "get_outputs", "-r")
	if err != nil {
		return nil, err
	}
	return parseSway(out)
}

func parseSway(data []byte) ([]Display, error) {
	var outputs []swayOutput
	if err := json.Unmarshal(data, &outputs); err != nil {
		return nil, fmt.Errorf("parse swaymsg output: %w", err)
	}
	var displays []Display
	for _, o := range outputs {
		if !o.Active {
			continue
		}
		displays = append(displays, Display{
			Name:        o.Name,
			X:           o.Rect.X,
			Y:           o.Rect.Y,
			Width:       o.Rect.Width,
			Height:      o.Rect.Height,
			GenericName: genericName(o.Make, o.Model, o.Serial),
			Index:       len(displays),
		})
	}
	return displays, nil
}

// WlrRandrSource asks any wlroots compositor through wlr-randr.
type WlrRandrSource struct {
	Run Runner
}

func (WlrRandrSource) Name() string  { return "wlr-randr" }
func (WlrRandrSource) Wayland() bool { return true }

type wlrOutput struct {
	Name      string  `json:"name"`
	Make      string  `json:"make"`
	Model     string  `json:"model"`
	Serial    string  `json:"serial"`
	Enabled   bool    `json:"enabled"`
	Scale     float64 `json:"scale"`
	Transform string  `json:"transform"`
	Position  struct {
		X int `json:"x"`
		Y int `json:"y"`
	} `json:"position"`
	Modes []struct {
		Width   int  `json:"width"`
		Height  int  `json:"height"`
		Current bool `json:"current"`
	} `json:"modes"`
}

func (s WlrRandrSource) Enumerate(ctx context.Context) ([]Display, error) {
	out, err := s.Run(ctx, "wlr-randr", "--json")
	if err != nil {
		return nil, err
	}
	return parseWlrRandr(out)
}

func parseWlrRandr(data []byte) ([]Display, error) {
	var outputs []wlrOutput
	if err := json.Unmarshal(data, &outputs); err != nil {
		return nil, fmt.Errorf("parse wlr-randr output: %w", err)
	}
	var displays []Display
	for _, o := range outputs {
		if !o.Enabled {
			continue
		}
		w, h := 0, 0
		for _, m := range o.Modes {
			if m.Current {
				w, h = m.Width, m.Height
				break
			}
		}
		if w == 0 || h == 0 {
			continue
		}
		switch o.Transform {
		case "90", "270", "flipped-90", "flipped-270":
			w, h = h, w
		}
		// Report the logical size, as sway does.
		if o.Scale > 0 && o.Scale != 1 {
			w = int(float64(w)/o.Scale + 0.5)
			h = int(float64(h)/o.Scale + 0.5)
		}
		displays = append(displays, Display{
			Name:        o.Name,
			X:           o.Position.X,
			Y:           o.Position.Y,
			Width:       w,
			Height:      h,
			GenericName: genericName(o.Make, o.Model, o.Serial),
			Index:       len(displays),
		})
	}
	return displays, nil
}
