package camera

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// fourCC packs a V4L2 pixel format code.
func fourCC(code string) uint32 {
	return uint32(code[0]) | uint32(code[1])<<8 | uint32(code[2])<<16 | uint32(code[3])<<24
}

var (
	pixFmtMJPEG = fourCC("MJPG")
	pixFmtYUYV  = fourCC("YUYV")
)

func formatName(code uint32) string {
	return string([]byte{byte(code), byte(code >> 8), byte(code >> 16), byte(code >> 24)})
}

// decodeFrame turns one raw driver buffer into an image.
func decodeFrame(format uint32, data []byte, width, height int) (image.Image, error) {
	switch format {
	case pixFmtMJPEG:
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode mjpeg frame: %w", err)
		}
		return img, nil
	case pixFmtYUYV:
		return yuyvToYCbCr(data, width, height)
	default:
		return nil, fmt.Errorf("unsupported pixel format %s", formatName(format))
	}
}

// yuyvToYCbCr converts packed 4:2:2 (Y0 U Y1 V) into a planar image.YCbCr.
// Rows may be padded by the driver; the line stride is len(data)/height.
func yuyvToYCbCr(data []byte, width, height int) (*image.YCbCr, error) {
	if width <= 0 || height <= 0 || width%2 != 0 {
		return nil, fmt.Errorf("invalid yuyv geometry %dx%d", width, height)
	}
	stride := len(data) / height
	if stride < width*2 {
		return nil, fmt.Errorf("short yuyv frame: %d bytes for %dx%d", len(data), width, height)
	}

	img := image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio422)
	for y := 0; y < height; y++ {
		row := data[y*stride : y*stride+width*2]
		for x := 0; x < width; x += 2 {
			i := x * 2
			img.Y[y*img.YStride+x] = row[i]
			img.Y[y*img.YStride+x+1] = row[i+2]
			c := y*img.CStride + x/2
			img.Cb[c] = row[i+1]
			img.Cr[c] = row[i+3]
		}
	}
	return img, nil
}
