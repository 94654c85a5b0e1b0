package model

// MaskShape selects the spatial predicate applied before each cell update.
type MaskShape string

const (
	MaskNone          MaskShape = "none"
	MaskElliptic      MaskShape = "elliptic"
	MaskInnerElliptic MaskShape = "innerElliptic"
	MaskVertical      MaskShape = "vertical"
	MaskHorizontal    MaskShape = "horizontal"
	MaskRhombic       MaskShape = "rhombic"
	MaskTriangle      MaskShape = "triangle"
)

// MaskShapes lists the recognized shapes in display order.
var MaskShapes = []MaskShape{
	MaskNone,
	MaskElliptic,
	MaskInnerElliptic,
	MaskVertical,
	MaskHorizontal,
	MaskRhombic,
	MaskTriangle,
}

// Known reports whether s is one of the recognized shapes.
func (s MaskShape) Known() bool {
	for _, k := range MaskShapes {
		if s == k {
			return true
		}
	}
	return false
}

// Mask decides which cells take part in a step.
// Unrecognized shapes accept every cell.
type Mask struct {
	Shape     MaskShape
	Threshold float64
}

// NoMask accepts every cell.
var NoMask = Mask{Shape: MaskNone}

// Accept reports whether cell (col, row) is active on a rows x cols grid.
// Coordinates are normalized to grid-centered fractions in [-0.5, 0.5).
func (m Mask) Accept(col, row, rows, cols int) bool {
	if m.Shape == MaskNone {
		return true
	}
	im := float64(col)/float64(cols) - 0.5
	jm := float64(row)/float64(rows) - 0.5
	t := m.Threshold
	switch m.Shape {
	case MaskElliptic:
		return im*im+jm*jm < t
	case MaskInnerElliptic:
		return im*im+jm*jm > t
	case MaskVertical:
		return im < t
	case MaskHorizontal:
		return jm < t
	case MaskRhombic:
		return im+jm < t
	case MaskTriangle:
		return im-jm > t
	}
	return true
}

// AcceptedCount returns how many interior cells m accepts.
func (m Mask) AcceptedCount(rows, cols int) int {
	n := 0
	for row := 1; row < rows-1; row++ {
		for col := 1; col < cols-1; col++ {
			if m.Accept(col, row, rows, cols) {
				n++
			}
		}
	}
	return n
}

// ParseMaskShape maps a config name to a shape. Unknown names are kept
// as-is and behave like MaskNone.
func ParseMaskShape(name string) MaskShape {
	if name == "" {
		return MaskNone
	}
	return MaskShape(name)
}
