package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ConfigValidator validates widget configuration payloads against their schema.
type ConfigValidator interface {
	Validate(entry CatalogEntry, config map[string]any) error
}

// JSONSchemaValidator compiles catalog schemas and validates configuration maps.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[WidgetType]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[WidgetType]*jsonschema.Schema),
	}
}

// Validate ensures the provided configuration satisfies the catalog schema.
func (v *JSONSchemaValidator) Validate(entry CatalogEntry, config map[string]any) error {
	if len(entry.Schema) == 0 {
		return nil
	}
	schema, err := v.schemaFor(entry)
	if err != nil {
		return err
	}
	var payload map[string]any
	if config == nil {
		payload = map[string]any{}
	} else {
		data, err := json.Marshal(config)
		if err != nil {
			return fmt.Errorf("dashboard: marshal config for %s: %w", entry.Type, err)
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("dashboard: normalize config for %s: %w", entry.Type, err)
		}
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("%w: configuration for %s: %v", ErrInvalidConfig, entry.Type, err)
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(entry CatalogEntry) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[entry.Type]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := json.Marshal(entry.Schema)
	if err != nil {
		return nil, fmt.Errorf("dashboard: marshal schema %s: %w", entry.Type, err)
	}
	compiler := jsonschema.NewCompiler()
	name := string(entry.Type) + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("dashboard: load schema %s: %w", entry.Type, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("dashboard: compile schema %s: %w", entry.Type, err)
	}
	v.mu.Lock()
	v.compiled[entry.Type] = compiled
	v.mu.Unlock()
	return compiled, nil
}
