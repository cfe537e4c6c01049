package report

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"ticket-dash/internal/stats"
)

// Schema returns the JSON Schema of the metrics bundle as indented JSON.
func Schema() ([]byte, error) {
	s, err := jsonschema.For[stats.Bundle](nil)
	if err != nil {
		return nil, fmt.Errorf("failed to infer bundle schema: %w", err)
	}
	s.Title = "ticket-dash metrics bundle"
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode bundle schema: %w", err)
	}
	return out, nil
}
