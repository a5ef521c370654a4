// Package tooltip places an overlay next to an anchor element while keeping
// it inside the viewport.
package tooltip

// Rect is an axis-aligned box in viewport coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Placement names the side of the anchor the overlay ended up on.
type Placement string

const (
	PlacementBelow Placement = "below"
	PlacementAbove Placement = "above"
)

// DefaultOffset is the gap between anchor and overlay.
const DefaultOffset = 8

// Position is the computed overlay origin.
type Position struct {
	Left      float64   `json:"left"`
	Top       float64   `json:"top"`
	Placement Placement `json:"placement"`
}

// Options tune Place.
type Options struct {
	Offset float64
	Margin float64
}

// Place centers the overlay under the anchor, flips above when the bottom
// would overflow and there is room above, and clamps both axes to the
// viewport inset by Margin. An overlay larger than the viewport is pinned to
// the top-left margin.
func Place(anchor Rect, overlay Size, viewport Size, opts Options) Position {
	offset := opts.Offset
	if offset == 0 {
		offset = DefaultOffset
	}
	margin := opts.Margin

	left := anchor.X + anchor.Width/2 - overlay.Width/2
	left = clamp(left, margin, viewport.Width-margin-overlay.Width)

	pos := Position{Left: left, Top: anchor.Bottom() + offset, Placement: PlacementBelow}
	if pos.Top+overlay.Height > viewport.Height-margin {
		above := anchor.Y - offset - overlay.Height
		if above >= margin {
			pos.Top = above
			pos.Placement = PlacementAbove
		}
	}
	pos.Top = clamp(pos.Top, margin, viewport.Height-margin-overlay.Height)
	return pos
}

// clamp prefers lo when the range is empty.
func clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
