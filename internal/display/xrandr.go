package display

import (
	"bufio"
	"bytes"
	"context"
	"regexp"
	"strconv"
	"strings"
)

var geometryRe = regexp.MustCompile(`(\d+)x(\d+)\+(\d+)\+(\d+)`)

// XrandrSource parses xrandr's text report.
type XrandrSource struct {
	Run Runner
}

func (XrandrSource) Name() string  { return "xrandr" }
func (XrandrSource) Wayland() bool { return false }

func (s XrandrSource) Enumerate(ctx context.Context) ([]Display, error) {
	out, err := s.Run(ctx, "xrandr", "--query")
	if err != nil {
		return nil, err
	}
	return parseXrandr(out), nil
}

// parseXrandr keeps connected outputs that have a geometry, i.e. those that
// are switched on. Index follows xrandr's listing, which is the order feh
// assigns images in.
func parseXrandr(data []byte) []Display {
	var displays []Display
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, " connected") {
			continue
		}
		m := geometryRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.Fields(line)[0]
		w, _ := strconv.Atoi(m[1])
		h, _ := strconv.Atoi(m[2])
		x, _ := strconv.Atoi(m[3])
		y, _ := strconv.Atoi(m[4])
		displays = append(displays, Display{
			Name:        name,
			X:           x,
			Y:           y,
			Width:       w,
			Height:      h,
			GenericName: name,
			Index:       len(displays),
		})
	}
	return displays
}
