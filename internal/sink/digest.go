package sink

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"

	"github.com/ocochard/cmonit/internal/model"
)

// Incident is one bitmap transition worth reporting in a cycle's digest.
type Incident struct {
	Service  string
	Kind     model.EventKind
	Recovery bool // true if this is a recovery rather than a new failure
	Message  string
}

// BuildDigest renders the cycle's incidents as a Markdown document and
// returns both the source and its rendered HTML, the way the teacher's
// web package would hand a hostgroup description through gomarkdown
// before serving it -- except here the source is generated, not
// user-authored.
func BuildDigest(cycleStart string, incidents []Incident) (source, html string) {
	if len(incidents) == 0 {
		return "", ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Cycle %s\n\n", cycleStart)
	for _, inc := range incidents {
		if inc.Recovery {
			fmt.Fprintf(&b, "- **%s** recovered (%s): %s\n", inc.Service, inc.Kind, inc.Message)
		} else {
			fmt.Fprintf(&b, "- **%s** failed (%s): %s\n", inc.Service, inc.Kind, inc.Message)
		}
	}

	source = b.String()
	html = string(markdown.ToHTML([]byte(source), nil, nil))
	return source, html
}
