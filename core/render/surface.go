// Package render paints a visualizer Frame onto any Surface. It knows nothing
// about windows or terminals; hosts supply the Surface.
package render

import (
	"errors"
	"image/color"
)

// ErrSurfaceUnavailable is returned by Draw when there is nothing to draw on.
// The caller skips the frame and tries again next tick.
var ErrSurfaceUnavailable = errors.New("render surface unavailable")

// Surface is the minimal 2D canvas the pass needs. Coordinates are in
// pixels (or cells) with the origin at the top left.
type Surface interface {
	Size() (w, h float64)
	Clear(c color.RGBA)
	Line(x0, y0, x1, y1, width float64, c color.RGBA)
	FillCircle(cx, cy, r float64, c color.RGBA)
	StrokeCircle(cx, cy, r, width float64, c color.RGBA)
	// LinearGradient fills the rectangle with a vertical blend from top to
	// bottom.
	LinearGradient(x, y, w, h float64, top, bottom color.RGBA)
	// RadialGradient fills a disc blending from inner at the center to outer
	// at radius r.
	RadialGradient(cx, cy, r float64, inner, outer color.RGBA)
	Text(x, y float64, s string, c color.RGBA)
}

func usable(s Surface) bool {
	if s == nil {
		return false
	}
	w, h := s.Size()
	return w > 0 && h > 0
}
