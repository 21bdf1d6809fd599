package render

import "image/color"

// Global render configuration for colors and logical canvas.
var (
	Foreground = color.RGBA{R: 0xF2, G: 0xF2, B: 0xF2, A: 0xFF}
	Background = color.RGBA{R: 0x10, G: 0x10, B: 0x14, A: 0xFF}

	ButtonFace    = color.RGBA{R: 0x3A, G: 0x3D, B: 0x46, A: 0xFF}
	ButtonPressed = color.RGBA{R: 0x1F, G: 0x6F, B: 0xD6, A: 0xFF}
	ButtonBorder  = color.RGBA{R: 0x5C, G: 0x61, B: 0x6E, A: 0xFF}
	ErrorText     = color.RGBA{R: 0xFF, G: 0x6B, B: 0x5E, A: 0xFF}

	// Logical canvas size; scaled to framebuffer.
	CanvasWidth  = 1280
	CanvasHeight = 720

	// FramesPerSecond is the redraw rate of RunLoop.
	FramesPerSecond = 30
)
