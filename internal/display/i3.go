package display

import (
	"context"

	"go.i3wm.org/i3/v4"
)

// I3Source asks i3 over its IPC socket.
type I3Source struct {
	// GetOutputs defaults to i3.GetOutputs.
	GetOutputs func() ([]i3.Output, error)
}

func (I3Source) Name() string  { return "i3" }
func (I3Source) Wayland() bool { return false }

func (s I3Source) Enumerate(ctx context.Context) ([]Display, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	get := s.GetOutputs
	if get == nil {
		get = i3.GetOutputs
	}
	outputs, err := get()
	if err != nil {
		return nil, err
	}
	var displays []Display
	for _, o := range outputs {
		// i3 also reports an inactive xroot-0 pseudo output.
		if !o.Active {
			continue
		}
		displays = append(displays, Display{
			Name:        o.Name,
			X:           int(o.Rect.X),
			Y:           int(o.Rect.Y),
			Width:       int(o.Rect.Width),
			Height:      int(o.Rect.Height),
			GenericName: o.Name,
			Index:       len(displays),
		})
	}
	return displays, nil
}
