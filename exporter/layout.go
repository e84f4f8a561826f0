package exporter

import (
	"fmt"
	"strings"
)

// Page sizes in PostScript points (1/72 inch).
var pageSizes = map[string][2]float64{
	"a4":     {595.28, 841.89},
	"letter": {612, 792},
	"legal":  {612, 1008},
}

const (
	DefaultFormat      = "a4"
	DefaultMarginPt    = 30
	DefaultRenderWidth = 1200

	pointsPerInch = 72.0
	cssPxPerPoint = 96.0 / 72.0

	// Chrome's printToPDF accepts scales in this range only.
	minPrintScale = 0.1
	maxPrintScale = 2.0
)

// PageLayout fixes how the HTML document is laid onto PDF pages.
// The document is rendered at RenderWidthPx regardless of any viewport and
// then scaled down so it spans exactly the content width of the page.
type PageLayout struct {
	Format        string
	MarginPt      float64
	RenderWidthPx int
}

func DefaultLayout() PageLayout {
	return PageLayout{Format: DefaultFormat, MarginPt: DefaultMarginPt, RenderWidthPx: DefaultRenderWidth}
}

func (l PageLayout) Validate() error {
	if _, ok := pageSizes[strings.ToLower(l.Format)]; !ok {
		return fmt.Errorf("unknown page format %q", l.Format)
	}
	w, _ := l.PageSize()
	if l.MarginPt < 0 || 2*l.MarginPt >= w {
		return fmt.Errorf("margin %.1fpt does not fit a %s page", l.MarginPt, l.Format)
	}
	if l.RenderWidthPx <= 0 {
		return fmt.Errorf("render width must be positive, got %d", l.RenderWidthPx)
	}
	if sc := l.printScale(); sc < minPrintScale || sc > maxPrintScale {
		return fmt.Errorf("render width %dpx gives print scale %.3f on a %s page, outside [%.1f, %.1f]",
			l.RenderWidthPx, sc, l.Format, minPrintScale, maxPrintScale)
	}
	return nil
}

// PageSize returns width and height in points.
func (l PageLayout) PageSize() (float64, float64) {
	s, ok := pageSizes[strings.ToLower(l.Format)]
	if !ok {
		s = pageSizes[DefaultFormat]
	}
	return s[0], s[1]
}

// ContentWidth is the printable width in points.
func (l PageLayout) ContentWidth() float64 {
	w, _ := l.PageSize()
	return w - 2*l.MarginPt
}

// Scale maps the render width onto the content width (points per render pixel).
func (l PageLayout) Scale() float64 {
	return l.ContentWidth() / float64(l.RenderWidthPx)
}

// printScale is Scale expressed in the CSS-pixel units Chrome's print scale uses.
func (l PageLayout) printScale() float64 {
	return l.Scale() * cssPxPerPoint
}
