// # internal/output/text.go
package output

import (
	"strings"

	"depscan/internal/app"
)

// TextGenerator renders a resolution as a requirements file. Explicit
// entries become plain lines; implicit ones are emitted as comments so the
// file documents what the mandatory requirements already supply without
// re-declaring it.
type TextGenerator struct{}

func (g *TextGenerator) Generate(res *app.Resolution) (string, error) {
	var buf strings.Builder

	for _, r := range res.Explicit.Sorted() {
		buf.WriteString(r.String())
		buf.WriteString("\n")
	}

	if res.Implicit.Len() > 0 {
		buf.WriteString("# supplied transitively by mandatory requirements:\n")
		for _, r := range res.Implicit.Sorted() {
			buf.WriteString("# ")
			buf.WriteString(r.String())
			buf.WriteString("\n")
		}
	}

	return buf.String(), nil
}
