package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/golang/freetype/truetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

const defaultTextSize = 32

type canvasLogger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// Canvas is an offscreen RGBA image implementing Drawer.
type Canvas struct {
	img    *image.RGBA
	ttFont *truetype.Font
	faces  map[int]font.Face
	logger canvasLogger
}

func NewCanvas(width, height int, logger canvasLogger) *Canvas {
	c := &Canvas{
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		faces:  make(map[int]font.Face),
		logger: logger,
	}
	tt, err := truetype.Parse(goregular.TTF)
	if err != nil {
		if logger != nil {
			logger.Errorf("render", "truetype parse failed, using basicfont: %v", err)
		}
	} else {
		c.ttFont = tt
	}
	return c
}

// Image exposes the backing image. Callers must not retain it across redraws.
func (c *Canvas) Image() *image.RGBA { return c.img }

func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *Canvas) face(size int) font.Face {
	if size <= 0 {
		size = defaultTextSize
	}
	if c.ttFont == nil {
		return basicfont.Face7x13
	}
	if face, ok := c.faces[size]; ok {
		return face
	}
	face := truetype.NewFace(c.ttFont, &truetype.Options{Size: float64(size), DPI: 72, Hinting: font.HintingFull})
	c.faces[size] = face
	return face
}

func (c *Canvas) FillBackground() {
	draw.Draw(c.img, c.img.Bounds(), &image.Uniform{C: Background}, image.Point{}, draw.Src)
}

func (c *Canvas) FillRect(rect image.Rectangle, fill color.Color) {
	draw.Draw(c.img, rect.Intersect(c.img.Bounds()), &image.Uniform{C: fill}, image.Point{}, draw.Over)
}

func (c *Canvas) StrokeRect(rect image.Rectangle, stroke color.Color, thicknessPx int) {
	if thicknessPx <= 0 {
		thicknessPx = 1
	}
	c.FillRect(image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+thicknessPx), stroke)
	c.FillRect(image.Rect(rect.Min.X, rect.Max.Y-thicknessPx, rect.Max.X, rect.Max.Y), stroke)
	c.FillRect(image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+thicknessPx, rect.Max.Y), stroke)
	c.FillRect(image.Rect(rect.Max.X-thicknessPx, rect.Min.Y, rect.Max.X, rect.Max.Y), stroke)
}

func (c *Canvas) MeasureText(text string, style TextStyle) TextMetrics {
	face := c.face(style.Size)
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()
	return TextMetrics{
		Width:      font.MeasureString(face, text).Ceil(),
		Height:     ascent + descent,
		Ascent:     ascent,
		Descent:    descent,
		LineHeight: metrics.Height.Ceil(),
	}
}

func (c *Canvas) DrawText(text string, x, y int, style TextStyle) TextMetrics {
	metrics := c.MeasureText(text, style)
	switch style.Align {
	case TextAlignCenter:
		x -= metrics.Width / 2
	case TextAlignRight:
		x -= metrics.Width
	}
	textColor := style.Color
	if textColor == nil {
		textColor = Foreground
	}
	drawer := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(textColor),
		Face: c.face(style.Size),
		Dot:  fixed.P(x, y+metrics.Ascent),
	}
	drawer.DrawString(text)
	return metrics
}

// DrawTextInRect centres a single line of text in rect.
func (c *Canvas) DrawTextInRect(text string, rect image.Rectangle, style TextStyle) {
	metrics := c.MeasureText(text, style)
	style.Align = TextAlignCenter
	centerX := rect.Min.X + rect.Dx()/2
	top := rect.Min.Y + (rect.Dy()-metrics.Height)/2
	c.DrawText(text, centerX, top, style)
}

func (c *Canvas) DrawTextCentered(text string) {
	width, height := c.Size()
	c.DrawTextInRect(text, image.Rect(0, 0, width, height), TextStyle{Size: 48})
}

func (c *Canvas) DrawImageInRect(img image.Image, rect image.Rectangle) {
	if img == nil || rect.Empty() || img.Bounds().Empty() {
		return
	}
	src := img.Bounds()
	c.scaleInto(rect, fitRect(src.Dx(), src.Dy(), rect), img)
}

func (c *Canvas) DrawPreview(img image.Image, rect image.Rectangle, angleDegrees int, scale float64) {
	if img == nil || rect.Empty() || img.Bounds().Empty() {
		return
	}
	rotated := RotateQuarter(img, angleDegrees)
	b := rotated.Bounds()
	target := scaleAbout(fitRect(b.Dx(), b.Dy(), rect), scale, center(rect))
	c.scaleInto(rect, target, rotated)
}

// scaleInto scales src onto target, clipped to clip.
func (c *Canvas) scaleInto(clip, target image.Rectangle, src image.Image) {
	clip = clip.Intersect(c.img.Bounds())
	if clip.Empty() {
		return
	}
	dst, ok := c.img.SubImage(clip).(*image.RGBA)
	if !ok {
		return
	}
	xdraw.ApproxBiLinear.Scale(dst, target, src, src.Bounds(), xdraw.Over, nil)
}

func center(rect image.Rectangle) image.Point {
	return image.Pt(rect.Min.X+rect.Dx()/2, rect.Min.Y+rect.Dy()/2)
}

// fitRect returns the largest srcW:srcH rectangle centred inside rect.
func fitRect(srcW, srcH int, rect image.Rectangle) image.Rectangle {
	if srcW <= 0 || srcH <= 0 {
		return image.Rectangle{}
	}
	scale := math.Min(float64(rect.Dx())/float64(srcW), float64(rect.Dy())/float64(srcH))
	return centeredRect(int(float64(srcW)*scale), int(float64(srcH)*scale), center(rect))
}

func scaleAbout(rect image.Rectangle, scale float64, origin image.Point) image.Rectangle {
	if scale <= 0 || scale == 1 {
		return rect
	}
	return image.Rect(
		origin.X+int(math.Round(float64(rect.Min.X-origin.X)*scale)),
		origin.Y+int(math.Round(float64(rect.Min.Y-origin.Y)*scale)),
		origin.X+int(math.Round(float64(rect.Max.X-origin.X)*scale)),
		origin.Y+int(math.Round(float64(rect.Max.Y-origin.Y)*scale)),
	)
}

func centeredRect(width, height int, origin image.Point) image.Rectangle {
	minX := origin.X - width/2
	minY := origin.Y - height/2
	return image.Rect(minX, minY, minX+width, minY+height)
}
