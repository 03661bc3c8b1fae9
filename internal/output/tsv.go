// # internal/output/tsv.go
package output

import (
	"fmt"
	"strings"

	"depscan/internal/app"
	"depscan/internal/requirement"
)

type TSVGenerator struct{}

func (g *TSVGenerator) Generate(res *app.Resolution) (string, error) {
	var buf strings.Builder

	buf.WriteString("Kind\tName\tRequirement\n")
	writeRows(&buf, "explicit", res.Explicit)
	writeRows(&buf, "implicit", res.Implicit)

	return buf.String(), nil
}

func writeRows(buf *strings.Builder, kind string, set *requirement.Set) {
	for _, r := range set.Sorted() {
		buf.WriteString(fmt.Sprintf("%s\t%s\t%s\n", kind, r.Key(), r.String()))
	}
}
