package mcq

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// candidateSchema is the shape every accepted question object must have.
// Validation runs per candidate so one malformed object never sinks the
// rest of the batch.
var candidateSchema = map[string]any{
	"type":     "object",
	"required": []any{"question", "options", "correct_answer"},
	"properties": map[string]any{
		"question":    map[string]any{"type": "string", "minLength": 1},
		"question_es": map[string]any{"type": "string"},
		"options": map[string]any{
			"type":     "object",
			"required": []any{"A", "B", "C", "D"},
			"properties": map[string]any{
				"A": map[string]any{"type": "string"},
				"B": map[string]any{"type": "string"},
				"C": map[string]any{"type": "string"},
				"D": map[string]any{"type": "string"},
			},
			"additionalProperties": false,
		},
		"correct_answer": map[string]any{
			"type": "string",
			"enum": []any{"A", "B", "C", "D"},
		},
		"explanation": map[string]any{"type": "string"},
		"topic_name":  map[string]any{"type": "string"},
		"source":      map[string]any{"type": "string"},
		"difficulty": map[string]any{
			"type": "string",
			"enum": []any{"easy", "medium", "hard"},
		},
	},
}

var (
	compiledOnce   sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func compiled() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		defBytes, err := json.Marshal(candidateSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal candidate schema: %w", err)
			return
		}
		var def any
		if err := json.Unmarshal(defBytes, &def); err != nil {
			compileErr = fmt.Errorf("parse candidate schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://mcq-candidate.json", def); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("schema://mcq-candidate.json")
	})
	return compiledSchema, compileErr
}

// validateCandidate checks one raw question object against the schema.
func validateCandidate(raw json.RawMessage) error {
	schema, err := compiled()
	if err != nil {
		return err
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("candidate is not valid JSON: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("candidate schema validation: %w", err)
	}
	return nil
}
