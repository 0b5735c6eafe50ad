// Package config loads and saves a store's config.toml (spec.md §6):
// schema version, default note type, ID scheme, ontology mode and custom
// link-type inverses, per-type descriptions, and auto-index settings.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/mwaldstein/qipu-sub003/internal/idgen"
	"github.com/mwaldstein/qipu-sub003/internal/model"
	"github.com/mwaldstein/qipu-sub003/internal/ontology"
	"github.com/mwaldstein/qipu-sub003/internal/qerr"
)

// FileName is the config file's name within the store root.
const FileName = "config.toml"

// CurrentVersion is the layout version this build writes. A store whose
// config reports an older or newer version still loads (spec.md §3: "Layout
// is versioned by a config version field"); callers that care about
// migration compare against CurrentVersion themselves.
const CurrentVersion = 1

// Config mirrors config.toml's schema (spec.md §6).
type Config struct {
	Version         int                         `toml:"version"`
	DefaultNoteType string                      `toml:"default_note_type"`
	IDScheme        string                      `toml:"id_scheme"`
	TypeDescriptions map[string]string          `toml:"type_descriptions"`
	Ontology        OntologyConfig              `toml:"ontology"`
	AutoIndex       AutoIndexConfig             `toml:"auto_index"`
	Similarity      SimilarityConfig            `toml:"similarity"`
}

// OntologyConfig is the `[ontology]` section.
type OntologyConfig struct {
	Mode     string            `toml:"mode"`
	Inverses map[string]string `toml:"inverses"`
	Costs    map[string]float64 `toml:"costs"`
}

// AutoIndexConfig is the `[auto_index]` section controlling the adaptive
// indexing strategy (spec.md §4.5).
type AutoIndexConfig struct {
	Strategy  string `toml:"strategy"`   // adaptive | quick | basic | full
	Threshold int    `toml:"threshold"`  // note count at or above which adaptive falls back to quick
	QuickK    int    `toml:"quick_k"`    // number of most-recent notes quick indexes
}

// SimilarityConfig is the `[similarity]` section (spec.md §9 open question:
// these thresholds are policy, exposed as configuration).
type SimilarityConfig struct {
	RelatedThreshold  float64 `toml:"related_threshold"`
	DuplicateThreshold float64 `toml:"duplicate_threshold"`
	Stemming          bool    `toml:"stemming"`
}

// Default returns the configuration a freshly initialized store gets.
func Default() *Config {
	return &Config{
		Version:         CurrentVersion,
		DefaultNoteType: "fleeting",
		IDScheme:        string(idgen.SchemeHash),
		TypeDescriptions: map[string]string{
			"fleeting":   "Quick, unprocessed capture",
			"literature": "Notes derived from a source",
			"permanent":  "Evergreen, fully-formed ideas",
			"moc":        "Map of Content: links to other notes",
		},
		Ontology: OntologyConfig{Mode: string(ontology.ModeDefault)},
		AutoIndex: AutoIndexConfig{
			Strategy:  "adaptive",
			Threshold: 500,
			QuickK:    50,
		},
		Similarity: SimilarityConfig{
			RelatedThreshold:   0.3,
			DuplicateThreshold: 0.85,
			Stemming:           false,
		},
	}
}

// Load reads config.toml from root. A missing file is not an error at this
// layer (store.Open distinguishes "no store" from "store with missing
// config" at a higher level); it returns Default().
func Load(root string) (*Config, error) {
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path) // #nosec G304 -- store-relative path
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, qerr.Wrap(qerr.Io, err, "reading %s", path)
	}

	cfg := Default()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, qerr.Wrap(qerr.Toml, err, "parsing %s", path)
	}
	return cfg, nil
}

// Save writes the configuration to root/config.toml.
func (c *Config) Save(root string) error {
	path := filepath.Join(root, FileName)
	f, err := os.Create(path) // #nosec G304 -- store-relative path
	if err != nil {
		return qerr.Wrap(qerr.Io, err, "creating %s", path)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(c); err != nil {
		return qerr.Wrap(qerr.Toml, err, "encoding %s", path)
	}
	return nil
}

// ToOntology builds an *ontology.Ontology from the config's [ontology]
// section (spec.md §3, §6: custom ontologies override or extend the
// standard mappings depending on Mode).
func (c *Config) ToOntology() *ontology.Ontology {
	o := &ontology.Ontology{Mode: ontology.Mode(c.Ontology.Mode)}
	if o.Mode == "" {
		o.Mode = ontology.ModeDefault
	}
	if len(c.Ontology.Inverses) > 0 {
		o.Custom = make(map[model.LinkType]model.LinkType, len(c.Ontology.Inverses))
		for k, v := range c.Ontology.Inverses {
			o.Custom[model.NewLinkType(k)] = model.NewLinkType(v)
		}
	}
	if len(c.Ontology.Costs) > 0 {
		o.Costs = make(map[model.LinkType]float64, len(c.Ontology.Costs))
		for k, v := range c.Ontology.Costs {
			o.Costs[model.NewLinkType(k)] = v
		}
	}
	return o
}
