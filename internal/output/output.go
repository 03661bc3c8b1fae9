// # internal/output/output.go
package output

import (
	"fmt"

	"depscan/internal/app"
)

// Generator renders a finished resolution into one output format.
type Generator interface {
	Generate(res *app.Resolution) (string, error)
}

func ForFormat(format string) (Generator, error) {
	switch format {
	case "text", "":
		return &TextGenerator{}, nil
	case "tsv":
		return &TSVGenerator{}, nil
	case "json":
		return &JSONGenerator{}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}
