package cache

// Keyer derives cache keys for each kind of job.
type Keyer interface {
	ExpandKey(inputHash string, opts ExpandKeyOpts) string
	AugmentKey(inputHash string, opts AugmentKeyOpts) string
}

// ExpandKeyOpts holds everything besides the input that shapes an expansion.
type ExpandKeyOpts struct {
	Rows            int     `json:"rows"`
	Seed            uint64  `json:"seed"`
	NoiseFraction   float64 `json:"noise_fraction"`
	SwapProbability float64 `json:"swap_probability"`
	Comma           rune    `json:"comma,omitempty"` // input delimiter; 0 is ','
}

// AugmentKeyOpts holds everything besides the input that shapes an
// augmentation batch.
type AugmentKeyOpts struct {
	Count             int     `json:"count"`
	Seed              uint64  `json:"seed"`
	RotateProbability float64 `json:"rotate_probability"`
	MaxRotation       int     `json:"max_rotation"`
	FlipProbability   float64 `json:"flip_probability"`
	BrightnessMin     float64 `json:"brightness_min"`
	BrightnessMax     float64 `json:"brightness_max"`
	ContrastMin       float64 `json:"contrast_min"`
	ContrastMax       float64 `json:"contrast_max"`
	Fill              string  `json:"fill"`
	Format            string  `json:"format"`
	Quality           int     `json:"quality"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ExpandKey returns "expand:<hash>".
func (DefaultKeyer) ExpandKey(inputHash string, opts ExpandKeyOpts) string {
	return hashKey("expand", inputHash, opts)
}

// AugmentKey returns "augment:<hash>".
func (DefaultKeyer) AugmentKey(inputHash string, opts AugmentKeyOpts) string {
	return hashKey("augment", inputHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
//
//	teamKeyer := NewScopedKeyer(NewDefaultKeyer(), "team:vision:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ExpandKey generates a prefixed expansion key.
func (k *ScopedKeyer) ExpandKey(inputHash string, opts ExpandKeyOpts) string {
	return k.prefix + k.inner.ExpandKey(inputHash, opts)
}

// AugmentKey generates a prefixed augmentation key.
func (k *ScopedKeyer) AugmentKey(inputHash string, opts AugmentKeyOpts) string {
	return k.prefix + k.inner.AugmentKey(inputHash, opts)
}
