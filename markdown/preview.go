package markdown

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// Preview renders s for a terminal of the given width.
func Preview(s string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	src := Clean(s)
	if src == "" {
		return NoContentText + "\n", nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create terminal renderer: %w", err)
	}
	return r.Render(src)
}
