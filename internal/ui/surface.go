package ui

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var whiteSubImage = func() *ebiten.Image {
	img := ebiten.NewImage(3, 3)
	img.Fill(color.White)
	return img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
}()

// gradientSegments is the number of triangles in a radial gradient fan.
const gradientSegments = 32

// Surface adapts an ebiten image (or sub-image) to render.Surface.
// Coordinates are relative to the image bounds.
type Surface struct {
	dst    *ebiten.Image
	ox, oy float32
}

func NewSurface(dst *ebiten.Image) *Surface {
	s := &Surface{dst: dst}
	if dst != nil {
		min := dst.Bounds().Min
		s.ox, s.oy = float32(min.X), float32(min.Y)
	}
	return s
}

func (s *Surface) Size() (float64, float64) {
	if s.dst == nil {
		return 0, 0
	}
	b := s.dst.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

func (s *Surface) Clear(c color.RGBA) { s.dst.Fill(c) }

func (s *Surface) Line(x0, y0, x1, y1, width float64, c color.RGBA) {
	vector.StrokeLine(s.dst, s.ox+float32(x0), s.oy+float32(y0), s.ox+float32(x1), s.oy+float32(y1), float32(width), c, true)
}

func (s *Surface) FillCircle(cx, cy, r float64, c color.RGBA) {
	vector.DrawFilledCircle(s.dst, s.ox+float32(cx), s.oy+float32(cy), float32(r), c, true)
}

func (s *Surface) StrokeCircle(cx, cy, r, width float64, c color.RGBA) {
	vector.StrokeCircle(s.dst, s.ox+float32(cx), s.oy+float32(cy), float32(r), float32(width), c, true)
}

func vertex(x, y float32, c color.RGBA) ebiten.Vertex {
	return ebiten.Vertex{
		DstX: x, DstY: y, SrcX: 1, SrcY: 1,
		ColorR: float32(c.R) / 255,
		ColorG: float32(c.G) / 255,
		ColorB: float32(c.B) / 255,
		ColorA: float32(c.A) / 255,
	}
}

var premultiplied = &ebiten.DrawTrianglesOptions{ColorScaleMode: ebiten.ColorScaleModePremultipliedAlpha}

func (s *Surface) LinearGradient(x, y, w, h float64, top, bottom color.RGBA) {
	x0, y0 := s.ox+float32(x), s.oy+float32(y)
	x1, y1 := x0+float32(w), y0+float32(h)
	vs := []ebiten.Vertex{
		vertex(x0, y0, top),
		vertex(x1, y0, top),
		vertex(x0, y1, bottom),
		vertex(x1, y1, bottom),
	}
	s.dst.DrawTriangles(vs, []uint16{0, 1, 2, 1, 2, 3}, whiteSubImage, premultiplied)
}

func (s *Surface) RadialGradient(cx, cy, r float64, inner, outer color.RGBA) {
	x, y := s.ox+float32(cx), s.oy+float32(cy)
	vs := make([]ebiten.Vertex, 0, gradientSegments+1)
	is := make([]uint16, 0, gradientSegments*3)
	vs = append(vs, vertex(x, y, inner))
	for i := 0; i < gradientSegments; i++ {
		a := 2 * math.Pi * float64(i) / gradientSegments
		vs = append(vs, vertex(x+float32(r*math.Cos(a)), y+float32(r*math.Sin(a)), outer))
		next := uint16(i+1)%gradientSegments + 1
		is = append(is, 0, uint16(i+1), next)
	}
	s.dst.DrawTriangles(vs, is, whiteSubImage, premultiplied)
}

// Text uses the debug font, which is always white.
func (s *Surface) Text(x, y float64, str string, _ color.RGBA) {
	debugPrint(s.dst, str, int(s.ox)+int(x), int(s.oy)+int(y))
}
