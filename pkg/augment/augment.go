package augment

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/amplify/pkg/errors"
	"github.com/matzehuels/amplify/pkg/rng"
)

// Plan is one fully drawn set of augmentation decisions.
type Plan struct {
	Rotate     bool
	Angle      int // degrees counter-clockwise; meaningful when Rotate is set
	Flip       bool
	Brightness float64
	Contrast   float64
	Fill       color.NRGBA
}

// Identity returns a plan that leaves pixels unchanged.
func Identity() Plan {
	return Plan{Brightness: 1, Contrast: 1, Fill: color.NRGBA{A: 0xff}}
}

// Draw samples a Plan from p. A nil p selects DefaultParams.
func Draw(src rng.Source, p *Params) (Plan, error) {
	p, err := resolve(p)
	if err != nil {
		return Plan{}, err
	}
	if src == nil {
		return Plan{}, errors.InvalidInput("random source is required")
	}

	var plan Plan
	plan.Fill = p.Fill
	if rng.Bernoulli(src, p.RotateProbability) {
		plan.Rotate = true
		plan.Angle = src.IntN(2*p.MaxRotation+1) - p.MaxRotation
	}
	plan.Flip = rng.Bernoulli(src, p.FlipProbability)
	plan.Brightness = rng.Uniform(src, p.BrightnessMin, p.BrightnessMax)
	plan.Contrast = rng.Uniform(src, p.ContrastMin, p.ContrastMax)
	return plan, nil
}

// Augment returns a randomized variant of img with the same dimensions.
// A nil p selects DefaultParams.
//
// Zero-sized and non-opaque images fail with errors.ErrCodeInvalidInput.
// Params that fail Validate are reported as errors.ErrCodeInvalidConfig.
func Augment(img image.Image, src rng.Source, p *Params) (*image.NRGBA, error) {
	if err := checkImage(img); err != nil {
		return nil, err
	}
	plan, err := Draw(src, p)
	if err != nil {
		return nil, err
	}
	return plan.Apply(img)
}

// Apply executes the plan's stages in order on a copy of img.
func (pl Plan) Apply(img image.Image) (*image.NRGBA, error) {
	if err := checkImage(img); err != nil {
		return nil, err
	}

	out := imaging.Clone(img)
	if pl.Rotate && pl.Angle%360 != 0 {
		out = rotate(out, pl.Angle, pl.Fill)
	}
	if pl.Flip {
		out = imaging.FlipH(out)
	}
	if pl.Brightness != 1 {
		out = scaleBrightness(out, pl.Brightness)
	}
	if pl.Contrast != 1 {
		out = scaleContrast(out, pl.Contrast)
	}
	return out, nil
}

// checkImage enforces the canonical input form.
func checkImage(img image.Image) error {
	if img == nil {
		return errors.InvalidInput("image is nil")
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return errors.InvalidInput("image has zero size (%dx%d)", b.Dx(), b.Dy())
	}
	if o, ok := img.(interface{ Opaque() bool }); ok && !o.Opaque() {
		return errors.InvalidInput("image has transparency; convert it to opaque RGB first")
	}
	return nil
}

// rotate turns img counter-clockwise about its centre on a same-size canvas.
func rotate(img *image.NRGBA, angle int, fill color.NRGBA) *image.NRGBA {
	fill.A = 0xff
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	rotated := imaging.Rotate(img, float64(angle), fill)
	return imaging.PasteCenter(imaging.New(w, h, fill), rotated)
}

// scaleBrightness multiplies every colour channel by factor.
func scaleBrightness(img *image.NRGBA, factor float64) *image.NRGBA {
	lut := buildLUT(func(v float64) float64 { return v * factor })
	return applyLUT(img, &lut)
}

// scaleContrast stretches every colour channel about the image's mean luma.
func scaleContrast(img *image.NRGBA, factor float64) *image.NRGBA {
	mean := math.Floor(meanLuma(img) + 0.5)
	lut := buildLUT(func(v float64) float64 { return mean + factor*(v-mean) })
	return applyLUT(img, &lut)
}

// meanLuma returns the average ITU-R 601 luma of img in [0, 255].
func meanLuma(img *image.NRGBA) float64 {
	b := img.Bounds()
	var sum float64
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		for x := 0; x < len(row); x += 4 {
			sum += (299*float64(row[x]) + 587*float64(row[x+1]) + 114*float64(row[x+2])) / 1000
		}
	}
	return sum / float64(b.Dx()*b.Dy())
}

func buildLUT(fn func(float64) float64) [256]uint8 {
	var lut [256]uint8
	for i := range lut {
		lut[i] = clamp(fn(float64(i)))
	}
	return lut
}

func applyLUT(img *image.NRGBA, lut *[256]uint8) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: lut[c.R], G: lut[c.G], B: lut[c.B], A: c.A}
	})
}

func clamp(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(math.Round(v))
	}
}
