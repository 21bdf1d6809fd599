package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/skip2/go-qrcode"
)

const (
	defaultQRCodeSizePx = 256
	qrQuietZonePx       = 8

	// URLs up to this length stay readable at low recovery on a small overlay.
	qrLowRecoveryMaxLen = 48
)

// RemoteQRCode renders payload as a square QR code of sizePx pixels, dark
// modules on white with a fixed quiet zone so it reads on the dark preview.
// An empty payload yields (nil, nil).
func RemoteQRCode(payload string, sizePx int) (image.Image, error) {
	if payload == "" {
		return nil, nil
	}
	if sizePx <= 0 {
		sizePx = defaultQRCodeSizePx
	}

	level := qrcode.Medium
	if len(payload) <= qrLowRecoveryMaxLen {
		level = qrcode.Low
	}
	code, err := qrcode.New(payload, level)
	if err != nil {
		return nil, err
	}
	code.DisableBorder = true

	inner := sizePx - 2*qrQuietZonePx
	if inner <= 0 {
		return code.Image(sizePx), nil
	}
	out := image.NewRGBA(image.Rect(0, 0, sizePx, sizePx))
	draw.Draw(out, out.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	modules := code.Image(inner)
	offset := image.Pt(qrQuietZonePx, qrQuietZonePx)
	draw.Draw(out, modules.Bounds().Add(offset), modules, modules.Bounds().Min, draw.Src)
	return out, nil
}
