package scopager

const (
	MaxLimit     = 100
	DefaultLimit = 10
)

// LimitConfig is the only numeric configuration surface of the engine: the
// default page size and the hard cap requested sizes are clamped to.
type LimitConfig struct {
	Default int
	Max     int
}

// DefaultLimitConfig returns the package-level defaults.
func DefaultLimitConfig() LimitConfig {
	return LimitConfig{Default: DefaultLimit, Max: MaxLimit}
}

// Normalize clamps a requested page size into [1, Max]. Non-positive values
// fall back to Default. The clamp is silent: an oversized request is served
// with Max records, not rejected.
func (c LimitConfig) Normalize(limit int) int {
	ret, _ := c.IsNormalized(limit)
	return ret
}

// IsNormalized reports, next to the effective limit, whether the requested
// value was usable as-is.
func (c LimitConfig) IsNormalized(limit int) (int, bool) {
	def, max := c.Default, c.Max
	if def <= 0 {
		def = DefaultLimit
	}
	if max <= 0 {
		max = MaxLimit
	}

	if limit <= 0 {
		return def, false
	} else if limit > max {
		return max, false
	}

	return limit, true
}

func IsNormalizedLimitMax(limit int, maxLimit int) (int, bool) {
	return LimitConfig{Default: DefaultLimit, Max: maxLimit}.IsNormalized(limit)
}

func NormalizeLimitMax(limit int, maxLimit int) int {
	ret, _ := IsNormalizedLimitMax(limit, maxLimit)
	return ret
}

func NormalizeLimit(limit int) int {
	return NormalizeLimitMax(limit, MaxLimit)
}
