package retained

// ============================================================================
// Geometry
// ============================================================================

// Point is a position in a scroll container's coordinate space.
type Point struct {
	X, Y float32
}

// Insets is padding reserved at the edges of a scroll container's content.
type Insets struct {
	Top, Left, Bottom, Right float32
}

// Rect is an axis-aligned rectangle. Height may be negative for a control
// whose revealed region has collapsed past its origin.
type Rect struct {
	X, Y          float32 // Top-left corner
	Width, Height float32
}

// lerp linearly interpolates between two float32 values.
func lerp(a, b, t float32) float32 {
	if t == 1 {
		return b
	}
	return a + (b-a)*t
}

// lerpInsets interpolates every edge of an inset.
func lerpInsets(from, to Insets, t float32) Insets {
	return Insets{
		Top:    lerp(from.Top, to.Top, t),
		Left:   lerp(from.Left, to.Left, t),
		Bottom: lerp(from.Bottom, to.Bottom, t),
		Right:  lerp(from.Right, to.Right, t),
	}
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
