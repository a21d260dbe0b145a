package ui

import "image/color"

var (
	colBar          = color.RGBA{15, 15, 15, 255}
	colButtonBorder = color.RGBA{240, 240, 240, 255}
	colPlayButton   = color.RGBA{40, 200, 40, 255}
	colStopButton   = color.RGBA{200, 40, 40, 255}
	colResetButton  = color.RGBA{40, 160, 200, 255}
	colTrack        = color.RGBA{80, 80, 80, 255}
	colKnob         = color.RGBA{200, 200, 200, 255}
)
