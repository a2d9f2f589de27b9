package dashboard

import (
	"fmt"
	"sort"
	"sync"
)

// Catalog exposes widget metadata keyed by type.
type Catalog interface {
	Entry(t WidgetType) (CatalogEntry, bool)
	Entries() []CatalogEntry
}

// CatalogEntry is the static metadata describing a widget type.
type CatalogEntry struct {
	Type                 WidgetType        `json:"type" yaml:"type"`
	Kind                 WidgetKind        `json:"kind" yaml:"kind,omitempty"`
	Title                string            `json:"title" yaml:"title,omitempty"`
	TitleLocalized       map[string]string `json:"title_localized,omitempty" yaml:"title_localized,omitempty"`
	Description          string            `json:"description,omitempty" yaml:"description,omitempty"`
	DescriptionLocalized map[string]string `json:"description_localized,omitempty" yaml:"description_localized,omitempty"`
	Icon                 string            `json:"icon,omitempty" yaml:"icon,omitempty"`
	DefaultSize          WidgetSize        `json:"default_size" yaml:"default_size,omitempty"`
	MinSize              WidgetSize        `json:"min_size" yaml:"min_size,omitempty"`
	MaxSize              WidgetSize        `json:"max_size" yaml:"max_size,omitempty"`
	Singleton            bool              `json:"singleton,omitempty" yaml:"singleton,omitempty"`
	Schema               map[string]any    `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// CatalogHook lets packages adjust catalog entries during init().
type CatalogHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []CatalogHook
)

// RegisterCatalogHook registers a hook executed against new registries.
func RegisterCatalogHook(h CatalogHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry implements Catalog with hook + manifest support.
type Registry struct {
	mu      sync.RWMutex
	entries map[WidgetType]CatalogEntry
}

// NewRegistry builds a registry holding the default catalog and applies global hooks.
func NewRegistry() *Registry {
	reg := &Registry{entries: map[WidgetType]CatalogEntry{}}
	for _, entry := range DefaultCatalogEntries() {
		_ = reg.Register(entry)
	}
	_ = reg.ApplyHooks()
	return reg
}

// ApplyHooks executes registered catalog hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// Register stores or replaces the metadata for a widget type.
func (r *Registry) Register(entry CatalogEntry) error {
	if !entry.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownWidgetType, entry.Type)
	}
	if err := entry.validate(); err != nil {
		return err
	}
	entry.normalizeLocalizedFields()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.Type] = entry
	return nil
}

// Entry fetches catalog metadata by type.
func (r *Registry) Entry(t WidgetType) (CatalogEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[t]
	return entry, ok
}

// Entries returns all registered entries sorted by type.
func (r *Registry) Entries() []CatalogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]CatalogEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

// Selectable lists the entries a widget selector may offer given the types already on
// the grid. Singleton types that are present are left out.
func Selectable(catalog Catalog, present []WidgetType) []CatalogEntry {
	if catalog == nil {
		return nil
	}
	onGrid := make(map[WidgetType]struct{}, len(present))
	for _, t := range present {
		onGrid[t] = struct{}{}
	}
	entries := catalog.Entries()
	out := make([]CatalogEntry, 0, len(entries))
	for _, entry := range entries {
		if _, ok := onGrid[entry.Type]; ok && entry.Singleton {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func (entry CatalogEntry) validate() error {
	if entry.Title == "" {
		return fmt.Errorf("dashboard: catalog entry %s is missing a title", entry.Type)
	}
	for _, size := range []WidgetSize{entry.DefaultSize, entry.MinSize, entry.MaxSize} {
		if !size.Valid() {
			return fmt.Errorf("%w: %q in catalog entry %s", ErrInvalidSize, size, entry.Type)
		}
	}
	if entry.MinSize.rank() > entry.MaxSize.rank() {
		return fmt.Errorf("dashboard: catalog entry %s has min size %s above max size %s", entry.Type, entry.MinSize, entry.MaxSize)
	}
	if !entry.DefaultSize.Within(entry.MinSize, entry.MaxSize) {
		return fmt.Errorf("dashboard: catalog entry %s default size %s outside [%s, %s]", entry.Type, entry.DefaultSize, entry.MinSize, entry.MaxSize)
	}
	return nil
}
