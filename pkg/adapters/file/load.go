// Package file reads and writes dialog graphs in the editor export format,
// as JSON or YAML documents.
package file

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/diagraph/pkg/adapters/memory"
	"github.com/aretw0/diagraph/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format selects the document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf guesses the encoding from a file name.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported graph file %q", path)
}

// Decode parses a document.
func Decode(r io.Reader, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode json graph: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode yaml graph: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown graph format %q", format)
	}
	return &doc, nil
}

// Encode writes a document.
func Encode(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown graph format %q", format)
}

// GraphID derives a graph id from a file name.
func GraphID(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// Load reads one graph file. The graph id is the file name without extension.
func Load(path string) (*domain.Graph, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph file: %w", err)
	}
	doc, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	g, err := ToGraph(GraphID(path), doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Save writes g to path in the format given by its extension.
func Save(path string, g *domain.Graph) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, FromGraph(g), format); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// LoadAll reads graph files and directories of graph files. Files with
// unknown extensions inside directories are skipped.
func LoadAll(paths ...string) ([]*domain.Graph, error) {
	var graphs []*domain.Graph
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			g, err := Load(p)
			if err != nil {
				return nil, err
			}
			graphs = append(graphs, g)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if _, err := FormatOf(e.Name()); err == nil {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			g, err := Load(filepath.Join(p, name))
			if err != nil {
				return nil, err
			}
			graphs = append(graphs, g)
		}
	}
	return graphs, nil
}

// NewLoader serves the graphs found at paths from memory.
func NewLoader(paths []string, opts ...memory.LoaderOption) (*memory.Loader, error) {
	graphs, err := LoadAll(paths...)
	if err != nil {
		return nil, err
	}
	return memory.NewLoader(graphs, opts...), nil
}
