package render

import "image/color"

// Theme is the palette used by Pass.
type Theme struct {
	BGTop    color.RGBA
	BGBottom color.RGBA
	Lane     color.RGBA
	Edge     color.RGBA
	Node     color.RGBA
	NodeOff  color.RGBA
	Glow     color.RGBA
	Ripple   color.RGBA
	Flash    color.RGBA
	Label    color.RGBA
	Status   color.RGBA
	Paused   color.RGBA
}

var DefaultTheme = Theme{
	BGTop:    color.RGBA{20, 20, 30, 255},
	BGBottom: color.RGBA{10, 10, 10, 255},
	Lane:     color.RGBA{60, 60, 60, 255},
	Edge:     color.RGBA{240, 240, 240, 255},
	Node:     color.RGBA{0, 200, 255, 255},
	NodeOff:  color.RGBA{80, 80, 80, 255},
	Glow:     color.RGBA{0, 200, 255, 160},
	Ripple:   color.RGBA{255, 255, 0, 255},
	Flash:    color.RGBA{255, 255, 255, 255},
	Label:    color.RGBA{200, 200, 200, 255},
	Status:   color.RGBA{40, 200, 40, 255},
	Paused:   color.RGBA{200, 40, 40, 255},
}

func withAlpha(c color.RGBA, a float64) color.RGBA {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	// premultiplied, as image/color expects
	return color.RGBA{
		R: uint8(float64(c.R) * a),
		G: uint8(float64(c.G) * a),
		B: uint8(float64(c.B) * a),
		A: uint8(float64(c.A) * a),
	}
}
