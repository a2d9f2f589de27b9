package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-widgetgrid/components/dashboard"
)

type manifestCmd struct {
	Type         string            `arg:"" help:"Widget type to override."`
	ManifestPath string            `name:"file" required:"" type:"path" help:"Manifest YAML file to create or update."`
	Title        string            `help:"Display title."`
	Description  string            `help:"One-line description."`
	Icon         string            `help:"Icon name."`
	DefaultSize  string            `name:"default-size" help:"Size used when the widget is added."`
	MinSize      string            `name:"min-size" help:"Smallest size the widget cycles to."`
	MaxSize      string            `name:"max-size" help:"Largest size the widget cycles to."`
	Localized    map[string]string `name:"title-locale" help:"Localized titles (locale=title)."`
	Overwrite    bool              `help:"Replace an existing override for the type."`
}

func (cmd *manifestCmd) Run(_ context.Context) error {
	t, err := parseWidgetType(cmd.Type)
	if err != nil {
		return err
	}
	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("gridctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}

	entry := dashboard.CatalogEntry{
		Type:           t,
		Title:          cmd.Title,
		TitleLocalized: cmd.Localized,
		Description:    cmd.Description,
		Icon:           cmd.Icon,
		DefaultSize:    dashboard.WidgetSize(cmd.DefaultSize),
		MinSize:        dashboard.WidgetSize(cmd.MinSize),
		MaxSize:        dashboard.WidgetSize(cmd.MaxSize),
	}

	replaced := false
	for idx := range doc.Widgets {
		if doc.Widgets[idx].Type != t {
			continue
		}
		if !cmd.Overwrite {
			return fmt.Errorf("gridctl: manifest already overrides %s (use --overwrite to replace)", t)
		}
		doc.Widgets[idx] = entry
		replaced = true
		break
	}
	if !replaced {
		doc.Widgets = append(doc.Widgets, entry)
	}
	sort.Slice(doc.Widgets, func(i, j int) bool {
		return doc.Widgets[i].Type < doc.Widgets[j].Type
	})

	// Reject overrides that would not apply cleanly over the built-in catalog.
	if err := dashboard.NewRegistry().LoadManifest(doc); err != nil {
		return err
	}
	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "✓ Recorded %s in %s\n", t, manifestPath)
	return nil
}

func loadOrInitManifest(path string) (*dashboard.CatalogManifest, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &dashboard.CatalogManifest{
				Version: dashboard.ManifestVersion,
				Widgets: []dashboard.CatalogEntry{},
				Source:  path,
			}, nil
		}
		return nil, fmt.Errorf("gridctl: stat manifest: %w", err)
	}
	return dashboard.ReadManifest(path)
}

func writeManifest(path string, doc *dashboard.CatalogManifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("gridctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("gridctl: create manifest %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("gridctl: write manifest: %w", err)
	}
	return nil
}
