// Package imaging normalizes uploaded attachment photos before they hit the
// blob store: format sniffing, downscaling, and JPEG re-encoding.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// MaxEdge is the maximum width or height of a stored photo.
const MaxEdge = 1600

// jpegQuality is the compression quality for re-encoded output.
const jpegQuality = 85

// Photo is a normalized attachment image, always JPEG.
type Photo struct {
	Data []byte
	MIME string
}

// IsSupported reports whether a sniffed MIME type is an accepted photo input.
func IsSupported(mime string) bool {
	return mime == "image/jpeg" || mime == "image/png"
}

// Normalize reads an uploaded image, validates its format by sniffing the
// bytes rather than trusting client headers, downscales anything larger than
// MaxEdge, and re-encodes it as JPEG.
func Normalize(r io.Reader) (*Photo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}

	detected := http.DetectContentType(data)
	if !IsSupported(detected) {
		return nil, fmt.Errorf("unsupported image format: %s (only JPEG and PNG accepted)", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = fit(img, MaxEdge)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	return &Photo{Data: buf.Bytes(), MIME: "image/jpeg"}, nil
}

// fit shrinks the image so neither edge exceeds maxEdge, preserving aspect
// ratio with Catmull-Rom interpolation. Images already within bounds are
// returned unchanged, never upscaled.
func fit(img image.Image, maxEdge int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w <= maxEdge && h <= maxEdge {
		return img
	}

	newW, newH := w, h
	if w > h {
		newW = maxEdge
		newH = int(float64(h) * float64(maxEdge) / float64(w))
	} else {
		newH = maxEdge
		newW = int(float64(w) * float64(maxEdge) / float64(h))
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func init() {
	// jpeg registers itself, png needs the explicit import anyway.
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
