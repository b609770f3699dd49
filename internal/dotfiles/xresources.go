package dotfiles

import (
	"fmt"
	"strings"
)

// xresDoc edits X resources line by line; only the colour word of a changed
// line is replaced.
type xresDoc struct {
	path  string
	lines []string
	index map[string]int // key -> line number
	keys  []string
}

// parseXresources accepts lines of two or three words whose last word is a
// #rrggbb colour, such as "*.color0: #282828" or "#define bg #282828".
func parseXresources(path string, data []byte) *xresDoc {
	doc := &xresDoc{path: path, lines: strings.Split(string(data), "\n"), index: map[string]int{}}
	for i, line := range doc.lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "!") {
			continue
		}
		parts := strings.Fields(trimmed)
		if len(parts) < 2 || len(parts) > 3 {
			continue
		}
		last := parts[len(parts)-1]
		if !strings.HasPrefix(last, "#") {
			continue
		}
		if _, ok := normalizeHex(last); !ok {
			continue
		}
		key := strings.Join(parts[:len(parts)-1], " ")
		if _, seen := doc.index[key]; !seen {
			doc.keys = append(doc.keys, key)
		}
		doc.index[key] = i
	}
	return doc
}

func (d *xresDoc) Path() string { return d.path }

func (d *xresDoc) Colors() []Color {
	out := make([]Color, 0, len(d.keys))
	for _, k := range d.keys {
		fields := strings.Fields(d.lines[d.index[k]])
		v, _ := normalizeHex(fields[len(fields)-1])
		out = append(out, Color{Key: k, Value: v})
	}
	return out
}

// Set ignores group.
func (d *xresDoc) Set(_, key, hex string) error {
	v, err := validHex(hex)
	if err != nil {
		return err
	}
	i, ok := d.index[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	line := d.lines[i]
	fields := strings.Fields(line)
	old := fields[len(fields)-1]
	at := strings.LastIndex(line, old)
	d.lines[i] = line[:at] + v + line[at+len(old):]
	return nil
}

func (d *xresDoc) Bytes() ([]byte, error) {
	return []byte(strings.Join(d.lines, "\n")), nil
}
