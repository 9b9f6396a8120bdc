package output

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
)

// RenderMarkdown renders Markdown for a terminal, wrapping at width columns.
func RenderMarkdown(md []byte, width int) ([]byte, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	out, err := r.RenderBytes(md)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// highlightJava returns code with ANSI syntax coloring, or code unchanged if
// highlighting fails.
func highlightJava(code string) string {
	var b strings.Builder
	if err := quick.Highlight(&b, code, "java", "terminal256", "monokai"); err != nil {
		return code
	}
	return b.String()
}
