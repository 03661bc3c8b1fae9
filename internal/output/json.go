// # internal/output/json.go
package output

import (
	"encoding/json"
	"fmt"

	"depscan/internal/app"
)

type JSONGenerator struct{}

type jsonResolution struct {
	Explicit  []string `json:"explicit"`
	Implicit  []string `json:"implicit"`
	Mandatory []string `json:"mandatory"`
}

func (g *JSONGenerator) Generate(res *app.Resolution) (string, error) {
	doc := jsonResolution{
		Explicit:  res.Explicit.Strings(),
		Implicit:  res.Implicit.Strings(),
		Mandatory: res.Mandatory.Strings(),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode resolution: %w", err)
	}
	return string(data) + "\n", nil
}
