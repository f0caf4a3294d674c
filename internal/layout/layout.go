// Package layout computes panel placement for the dashboard.
//
// Compute is a pure function: the same ids, variant and size always yield the
// same Result. It keeps no state and never reads the clock or the terminal.
package layout

import (
	"fmt"
	"math"
	"strings"
)

// Variant selects how panels are arranged.
type Variant int

const (
	Grid Variant = iota
	Horizontal
	Vertical
)

// String returns the config spelling of the variant.
func (v Variant) String() string {
	switch v {
	case Grid:
		return "grid"
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return "unknown"
	}
}

// ParseVariant converts a config value into a Variant.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "grid":
		return Grid, nil
	case "horizontal":
		return Horizontal, nil
	case "vertical":
		return Vertical, nil
	default:
		return Grid, fmt.Errorf("unknown layout %q (expected grid, horizontal or vertical)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Variant) MarshalText() ([]byte, error) {
	if v < Grid || v > Vertical {
		return nil, fmt.Errorf("invalid layout variant %d", int(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Variant) UnmarshalText(b []byte) error {
	parsed, err := ParseVariant(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Size is a terminal area in cells.
type Size struct {
	Width  int
	Height int
}

// Empty reports whether the area has no cells.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Rect is a cell rectangle with its origin at the top-left corner.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Area returns the number of cells covered.
func (r Rect) Area() int {
	return r.Width * r.Height
}

// Overlaps reports whether two rectangles share at least one cell.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// Placement assigns a panel to a rectangle.
type Placement struct {
	ID   string
	Rect Rect
	Row  int
	Col  int
}

// Result is the full placement for one computation.
type Result struct {
	Variant    Variant
	Size       Size
	Rows       int
	Cols       int
	Placements []Placement
}

// Rect returns the rectangle assigned to id.
func (r Result) Rect(id string) (Rect, bool) {
	for _, p := range r.Placements {
		if p.ID == id {
			return p.Rect, true
		}
	}
	return Rect{}, false
}

// Empty reports whether nothing was placed.
func (r Result) Empty() bool {
	return len(r.Placements) == 0
}

// Compute places ids within size according to variant.
//
// Grid uses ceil(sqrt(n)) columns and as many rows as needed, filling row by
// row; a count that does not fill the last row leaves its trailing cells
// blank. Horizontal puts every panel in one row and Vertical in one column.
// Leftover cells from uneven division go to the leftmost columns and the
// topmost rows, so the grid cells always tile the whole area.
func Compute(ids []string, variant Variant, size Size) Result {
	res := Result{Variant: variant, Size: size}
	n := len(ids)
	if n == 0 || size.Empty() {
		return res
	}

	switch variant {
	case Horizontal:
		res.Rows, res.Cols = 1, n
	case Vertical:
		res.Rows, res.Cols = n, 1
	default:
		res.Cols = int(math.Ceil(math.Sqrt(float64(n))))
		res.Rows = (n + res.Cols - 1) / res.Cols
	}

	widths := split(size.Width, res.Cols)
	heights := split(size.Height, res.Rows)
	xs := offsets(widths)
	ys := offsets(heights)

	res.Placements = make([]Placement, 0, n)
	for i, id := range ids {
		row, col := i/res.Cols, i%res.Cols
		res.Placements = append(res.Placements, Placement{
			ID:  id,
			Row: row,
			Col: col,
			Rect: Rect{
				X:      xs[col],
				Y:      ys[row],
				Width:  widths[col],
				Height: heights[row],
			},
		})
	}
	return res
}

// split divides total into parts cells, giving the remainder one cell at a
// time to the leading parts.
func split(total, parts int) []int {
	out := make([]int, parts)
	base, rem := total/parts, total%parts
	for i := range out {
		out[i] = base
		if i < rem {
			out[i]++
		}
	}
	return out
}

func offsets(sizes []int) []int {
	out := make([]int, len(sizes))
	pos := 0
	for i, s := range sizes {
		out[i] = pos
		pos += s
	}
	return out
}

// Auto picks a variant from the terminal's aspect ratio: very wide terminals
// get Horizontal, very tall ones Vertical, everything else Grid.
func Auto(size Size) Variant {
	if size.Height <= 0 {
		return Grid
	}
	ratio := float64(size.Width) / float64(size.Height)
	switch {
	case ratio >= 3:
		return Horizontal
	case ratio <= 0.33:
		return Vertical
	default:
		return Grid
	}
}
