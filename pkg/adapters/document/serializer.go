package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/manual/pkg/core"
)

// Codec defines how the whole catalog is read from and written to one document.
//
// The document root is a mapping from section name to an ordered sequence of
// objects with "title" and "content" fields. The "id" field is additive:
// documents written before identities existed omit it and still decode.
type Codec interface {
	Decode(data []byte) (core.Catalog, error)
	Encode(cat core.Catalog) ([]byte, error)
	// Format names the codec for logs and introspection.
	Format() string
}

// CodecFor picks a codec from the file extension. Unknown extensions use JSON.
func CodecFor(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAMLCodec{}
	default:
		return JSONCodec{}
	}
}

// record is the on-disk shape of a single entry.
type record struct {
	ID      string `json:"id,omitempty" yaml:"id,omitempty"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
}

func toRecords(entries []core.Entry) []record {
	out := make([]record, 0, len(entries))
	for _, e := range entries {
		out = append(out, record{ID: string(e.ID), Title: e.Title, Content: e.Content})
	}
	return out
}

func appendRecords(cat *core.Catalog, section core.Section, items []record) {
	cat.AddSection(section)
	for _, it := range items {
		cat.Append(core.Entry{
			ID:      core.EntryID(it.ID),
			Section: section,
			Title:   it.Title,
			Content: it.Content,
		})
	}
}

// --- JSON Codec ---

// JSONCodec reads and writes the catalog as an indented JSON object.
// Object key order is preserved in both directions.
type JSONCodec struct{}

func (JSONCodec) Format() string { return "json" }

func (JSONCodec) Decode(data []byte) (core.Catalog, error) {
	cat := core.NewCatalog()
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return cat, fmt.Errorf("invalid json: %w", err)
	}
	if tok == nil {
		return cat, nil // literal null
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return cat, fmt.Errorf("invalid json: root must be an object of sections, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return cat, fmt.Errorf("invalid json: %w", err)
		}
		section, ok := tok.(string)
		if !ok {
			return cat, fmt.Errorf("invalid json: unexpected token %v", tok)
		}
		if cat.Has(section) {
			return cat, fmt.Errorf("invalid json: section %q appears twice", section)
		}
		var items []record
		if err := dec.Decode(&items); err != nil {
			return cat, fmt.Errorf("invalid entries for section %q: %w", section, err)
		}
		appendRecords(&cat, section, items)
	}

	if _, err := dec.Token(); err != nil {
		return cat, fmt.Errorf("invalid json: %w", err)
	}
	if tok, err := dec.Token(); err != io.EOF {
		if err != nil {
			return cat, fmt.Errorf("invalid json: trailing data: %w", err)
		}
		return cat, fmt.Errorf("invalid json: trailing data after the root object: %v", tok)
	}
	return cat, nil
}

func (JSONCodec) Encode(cat core.Catalog) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, section := range cat.Sections() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(section)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(toRecords(cat.Entries(section)))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// --- YAML Codec ---

// YAMLCodec reads and writes the catalog as a YAML mapping.
// Mapping order is preserved through yaml.Node.
type YAMLCodec struct{}

func (YAMLCodec) Format() string { return "yaml" }

func (YAMLCodec) Decode(data []byte) (core.Catalog, error) {
	cat := core.NewCatalog()

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return cat, fmt.Errorf("invalid yaml: %w", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return cat, nil // empty stream
	}

	m := root.Content[0]
	if m.Kind == yaml.ScalarNode && m.Tag == "!!null" {
		return cat, nil
	}
	if m.Kind != yaml.MappingNode {
		return cat, fmt.Errorf("invalid yaml: root must be a mapping of sections (line %d)", m.Line)
	}

	for i := 0; i+1 < len(m.Content); i += 2 {
		section := m.Content[i].Value
		if cat.Has(section) {
			return cat, fmt.Errorf("invalid yaml: section %q appears twice (line %d)", section, m.Content[i].Line)
		}
		var items []record
		if err := m.Content[i+1].Decode(&items); err != nil {
			return cat, fmt.Errorf("invalid entries for section %q: %w", section, err)
		}
		appendRecords(&cat, section, items)
	}
	return cat, nil
}

func (YAMLCodec) Encode(cat core.Catalog) ([]byte, error) {
	m := &yaml.Node{Kind: yaml.MappingNode}
	for _, section := range cat.Sections() {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: section}
		val := &yaml.Node{}
		if err := val.Encode(toRecords(cat.Entries(section))); err != nil {
			return nil, fmt.Errorf("failed to encode section %q: %w", section, err)
		}
		m.Content = append(m.Content, key, val)
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(m); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
