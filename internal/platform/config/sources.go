package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SourceTable is the optional YAML override for individual sources:
//
//	sources:
//	  gst:
//	    base_url: https://gst.internal
//	    timeout: 3s
//	  startup_india:
//	    disabled: true
type SourceTable struct {
	Sources map[string]SourceEntry `yaml:"sources"`
}

// SourceEntry overrides the defaults for one source kind. Zero values keep
// the default.
type SourceEntry struct {
	BaseURL   string        `yaml:"base_url"`
	Path      string        `yaml:"path"`
	AuthToken string        `yaml:"auth_token"`
	Timeout   time.Duration `yaml:"timeout"`
	Disabled  bool          `yaml:"disabled"`
}

// LoadSourcesFile reads a source table. An empty path yields an empty table.
func LoadSourcesFile(path string) (SourceTable, error) {
	table := SourceTable{Sources: map[string]SourceEntry{}}
	if strings.TrimSpace(path) == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return table, fmt.Errorf("read sources file: %w", err)
	}
	return ParseSources(data)
}

// ParseSources decodes a YAML source table.
func ParseSources(data []byte) (SourceTable, error) {
	var table SourceTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return SourceTable{}, fmt.Errorf("parse sources file: %w", err)
	}
	if table.Sources == nil {
		table.Sources = map[string]SourceEntry{}
	}
	return table, nil
}

// Entry returns the override for a source kind.
func (t SourceTable) Entry(kind string) (SourceEntry, bool) {
	e, ok := t.Sources[kind]
	return e, ok
}
