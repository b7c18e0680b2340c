package io

import (
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/amplify/pkg/errors"
)

// Format is an output image encoding.
type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
)

// DefaultJPEGQuality is used when EncodeImage is given a quality <= 0.
const DefaultJPEGQuality = 95

// ParseFormat maps a user-facing name to a Format. The empty string selects JPEG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "jpg", "jpeg":
		return JPEG, nil
	case "png":
		return PNG, nil
	default:
		return "", errors.New(errors.ErrCodeUnsupported, "unsupported image format %q (want jpeg or png)", s)
	}
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	if f == PNG {
		return ".png"
	}
	return ".jpg"
}

// DecodeImage reads one image and applies its EXIF orientation.
func DecodeImage(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode image")
	}
	return img, nil
}

// Canonical returns img as an opaque NRGBA image with its bounds starting at
// the origin. Colour channels are kept; alpha is discarded.
func Canonical(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

// EncodeImage writes img in the given format. quality applies to JPEG only.
func EncodeImage(w io.Writer, img image.Image, f Format, quality int) error {
	var err error
	switch f {
	case PNG:
		err = imaging.Encode(w, img, imaging.PNG)
	case JPEG, "":
		if quality <= 0 {
			quality = DefaultJPEGQuality
		}
		err = imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
	default:
		return errors.New(errors.ErrCodeUnsupported, "unsupported image format %q", string(f))
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", string(f))
	}
	return nil
}

// IsImageFile reports whether name has a recognised image extension.
func IsImageFile(name string) bool {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return false
	}
	_, ok := imageExts[strings.ToLower(name[i:])]
	return ok
}

var imageExts = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {},
	".bmp": {}, ".tif": {}, ".tiff": {}, ".webp": {},
}
