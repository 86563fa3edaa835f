// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package config

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// SchemaID is the $id of the config file schema.
const SchemaID = "https://authcore.dev/schemas/config.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jschema.Schema
	errSchema      error
)

// GenerateSchema reflects the JSON Schema for config files from Config.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{DoNotReference: true}
	schema := r.Reflect(&Config{})
	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "AuthCore Configuration"
	schema.Description = "Schema for authcore YAML config files"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}

// ValidateYAML checks a config file against the generated schema. Unknown
// keys are rejected.
func ValidateYAML(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	if doc == nil {
		// An empty file configures nothing.
		return nil
	}

	sch, err := schema()
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}
	if err := sch.Validate(normalize(doc)); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func schema() (*jschema.Schema, error) {
	schemaOnce.Do(func() {
		var raw []byte
		raw, errSchema = GenerateSchema()
		if errSchema != nil {
			return
		}
		var doc any
		if errSchema = json.Unmarshal(raw, &doc); errSchema != nil {
			return
		}
		c := jschema.NewCompiler()
		if errSchema = c.AddResource("config.schema.json", doc); errSchema != nil {
			return
		}
		compiledSchema, errSchema = c.Compile("config.schema.json")
	})
	return compiledSchema, errSchema
}

// normalize converts yaml.v3 output to the JSON value model the validator
// expects. Integers become float64.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	default:
		return val
	}
}
