package dashboard

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// CatalogManifest models a YAML/JSON document overriding catalog metadata.
type CatalogManifest struct {
	Version string         `json:"version" yaml:"version"`
	Name    string         `json:"name,omitempty" yaml:"name,omitempty"`
	Widgets []CatalogEntry `json:"widgets" yaml:"widgets"`
	Source  string         `json:"-" yaml:"-"`
}

// LoadManifestFile reads a manifest from disk, applies it to the registry, and returns the document.
func (r *Registry) LoadManifestFile(path string) (*CatalogManifest, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := r.LoadManifest(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadManifest merges manifest entries over the registered ones. Zero-valued fields
// keep the current metadata.
func (r *Registry) LoadManifest(doc *CatalogManifest) error {
	if doc == nil {
		return errors.New("dashboard: manifest document is nil")
	}
	for _, override := range doc.Widgets {
		base, _ := r.Entry(override.Type)
		merged := mergeEntry(base, override)
		if err := r.Register(merged); err != nil {
			return fmt.Errorf("dashboard: register widget %s from %s: %w", override.Type, doc.Source, err)
		}
	}
	return nil
}

// ReadManifest loads a manifest file from disk without applying it.
func ReadManifest(path string) (*CatalogManifest, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*CatalogManifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc CatalogManifest
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("dashboard: manifest is empty")
		}
		return nil, fmt.Errorf("dashboard: parse manifest: %w", err)
	}
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the manifest only references known widget types, once each.
func (doc *CatalogManifest) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("dashboard: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[WidgetType]struct{}, len(doc.Widgets))
	for idx, entry := range doc.Widgets {
		if entry.Type == "" {
			return fmt.Errorf("dashboard: manifest widget at index %d is missing type", idx)
		}
		if !entry.Type.Valid() {
			return fmt.Errorf("%w: manifest widget %q", ErrUnknownWidgetType, entry.Type)
		}
		if _, exists := seen[entry.Type]; exists {
			return fmt.Errorf("dashboard: manifest duplicates widget type %s", entry.Type)
		}
		seen[entry.Type] = struct{}{}
	}
	return nil
}

func mergeEntry(base, override CatalogEntry) CatalogEntry {
	merged := base
	merged.Type = override.Type
	if override.Kind != "" {
		merged.Kind = override.Kind
	}
	if override.Title != "" {
		merged.Title = override.Title
	}
	if len(override.TitleLocalized) > 0 {
		merged.TitleLocalized = override.TitleLocalized
	}
	if override.Description != "" {
		merged.Description = override.Description
	}
	if len(override.DescriptionLocalized) > 0 {
		merged.DescriptionLocalized = override.DescriptionLocalized
	}
	if override.Icon != "" {
		merged.Icon = override.Icon
	}
	if override.DefaultSize != "" {
		merged.DefaultSize = override.DefaultSize
	}
	if override.MinSize != "" {
		merged.MinSize = override.MinSize
	}
	if override.MaxSize != "" {
		merged.MaxSize = override.MaxSize
	}
	if override.Singleton {
		merged.Singleton = true
	}
	if len(override.Schema) > 0 {
		merged.Schema = override.Schema
	}
	return merged
}
