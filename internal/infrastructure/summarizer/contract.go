package summarizer

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var contractDocument []byte

const summarizeResponseSchema = "SummarizeResponse"

// responseContract checks success bodies against the service's OpenAPI
// document before they are decoded.
type responseContract struct {
	schema *openapi3.Schema
}

func loadResponseContract() (*responseContract, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(contractDocument)
	if err != nil {
		return nil, fmt.Errorf("load summarizer contract: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate summarizer contract: %w", err)
	}

	ref, ok := doc.Components.Schemas[summarizeResponseSchema]
	if !ok || ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("summarizer contract: schema %s is missing", summarizeResponseSchema)
	}
	return &responseContract{schema: ref.Value}, nil
}

func (c *responseContract) decode(raw []byte) (string, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", fmt.Errorf("decode response json: %w", err)
	}
	if err := c.schema.VisitJSON(value); err != nil {
		return "", fmt.Errorf("response does not match contract: %w", err)
	}

	var out struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode summary: %w", err)
	}
	return out.Summary, nil
}
