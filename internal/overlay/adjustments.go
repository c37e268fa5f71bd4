package overlay

// Adjustments are the per-session user tweaks applied on top of the
// pose-derived placement.
type Adjustments struct {
	Scale    float64 `json:"scale"`    // multiplier on the covering scale, >= 0
	Rotation float64 `json:"rotation"` // degrees, added to the yaw-derived angle
	X        int     `json:"x"`        // pixel offset from the hair region origin
	Y        int     `json:"y"`
}

// DefaultAdjustments returns the neutral adjustment record.
func DefaultAdjustments() Adjustments {
	return Adjustments{Scale: 1.0}
}
