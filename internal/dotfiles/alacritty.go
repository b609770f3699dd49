package dotfiles

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// yamlDoc keeps the node tree so that comments and key order survive an
// edit.
type yamlDoc struct {
	path string
	root yaml.Node
}

func parseYAML(path string, data []byte) (*yamlDoc, error) {
	doc := &yamlDoc{path: path}
	if err := yaml.Unmarshal(data, &doc.root); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if doc.colorsNode() == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoColors)
	}
	return doc, nil
}

func (d *yamlDoc) Path() string { return d.path }

// mappingValue returns the value node of key in mapping node m.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func (d *yamlDoc) colorsNode() *yaml.Node {
	if d.root.Kind != yaml.DocumentNode || len(d.root.Content) == 0 {
		return nil
	}
	return mappingValue(d.root.Content[0], "colors")
}

func (d *yamlDoc) Colors() []Color {
	var out []Color
	colors := d.colorsNode()
	for i := 0; i+1 < len(colors.Content); i += 2 {
		group, entries := colors.Content[i].Value, colors.Content[i+1]
		if entries.Kind != yaml.MappingNode {
			continue
		}
		for j := 0; j+1 < len(entries.Content); j += 2 {
			if v, ok := normalizeHex(entries.Content[j+1].Value); ok {
				out = append(out, Color{Group: group, Key: entries.Content[j].Value, Value: v})
			}
		}
	}
	return out
}

// Set stores hex in alacritty's 0xrrggbb notation.
func (d *yamlDoc) Set(group, key, hex string) error {
	v, err := validHex(hex)
	if err != nil {
		return err
	}
	node := mappingValue(mappingValue(d.colorsNode(), group), key)
	if node == nil || node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: colors.%s.%s", ErrUnknownKey, group, key)
	}
	node.Value = "0x" + strings.TrimPrefix(v, "#")
	return nil
}

func (d *yamlDoc) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&d.root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// tomlDoc edits a decoded table. go-toml does not keep comments, so a saved
// file loses them.
type tomlDoc struct {
	path string
	root map[string]any
}

func parseTOML(path string, data []byte) (*tomlDoc, error) {
	doc := &tomlDoc{path: path}
	if err := toml.Unmarshal(data, &doc.root); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if _, ok := doc.root["colors"].(map[string]any); !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNoColors)
	}
	return doc, nil
}

func (d *tomlDoc) Path() string { return d.path }

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (d *tomlDoc) Colors() []Color {
	var out []Color
	colors := d.root["colors"].(map[string]any)
	for _, group := range sortedKeys(colors) {
		entries, ok := colors[group].(map[string]any)
		if !ok {
			continue
		}
		for _, key := range sortedKeys(entries) {
			s, ok := entries[key].(string)
			if !ok {
				continue
			}
			if v, ok := normalizeHex(s); ok {
				out = append(out, Color{Group: group, Key: key, Value: v})
			}
		}
	}
	return out
}

func (d *tomlDoc) Set(group, key, hex string) error {
	v, err := validHex(hex)
	if err != nil {
		return err
	}
	entries, ok := d.root["colors"].(map[string]any)[group].(map[string]any)
	if !ok {
		return fmt.Errorf("%w: colors.%s.%s", ErrUnknownKey, group, key)
	}
	if _, ok := entries[key].(string); !ok {
		return fmt.Errorf("%w: colors.%s.%s", ErrUnknownKey, group, key)
	}
	entries[key] = v
	return nil
}

func (d *tomlDoc) Bytes() ([]byte, error) {
	return toml.Marshal(d.root)
}
