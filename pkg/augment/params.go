package augment

import (
	"image/color"

	"github.com/matzehuels/amplify/pkg/errors"
)

// Params configures the augmentation distributions.
type Params struct {
	RotateProbability float64
	MaxRotation       int // degrees
	FlipProbability   float64
	BrightnessMin     float64
	BrightnessMax     float64
	ContrastMin       float64
	ContrastMax       float64
	// Fill colours the corners a rotation uncovers. It must be opaque.
	Fill color.NRGBA
}

// DefaultParams returns the stock augmentation distributions.
func DefaultParams() Params {
	return Params{
		RotateProbability: 0.5,
		MaxRotation:       15,
		FlipProbability:   0.5,
		BrightnessMin:     0.8,
		BrightnessMax:     1.2,
		ContrastMin:       0.8,
		ContrastMax:       1.2,
		Fill:              color.NRGBA{A: 0xff},
	}
}

// Validate checks every field.
func (p Params) Validate() error {
	if err := errors.ValidateProbability("rotate_probability", p.RotateProbability); err != nil {
		return err
	}
	if p.MaxRotation < 0 || p.MaxRotation > 180 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_rotation must be within [0, 180], got %d", p.MaxRotation)
	}
	if err := errors.ValidateProbability("flip_probability", p.FlipProbability); err != nil {
		return err
	}
	if err := errors.ValidateRange("brightness", p.BrightnessMin, p.BrightnessMax); err != nil {
		return err
	}
	if err := errors.ValidateRange("contrast", p.ContrastMin, p.ContrastMax); err != nil {
		return err
	}
	if p.Fill.A != 0xff {
		return errors.New(errors.ErrCodeInvalidConfig, "fill colour must be opaque, got alpha %d", p.Fill.A)
	}
	return nil
}

// resolve returns the defaults for nil and validates everything else.
func resolve(p *Params) (*Params, error) {
	if p == nil {
		def := DefaultParams()
		return &def, nil
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
