package model

// Stride is the number of scalars stored per cell (G, X, Y).
const Stride = 3

// Species identifies one of the three evolving concentrations.
type Species int

const (
	SpeciesG Species = iota
	SpeciesX
	SpeciesY
)

// String returns the species letter.
func (s Species) String() string {
	switch s {
	case SpeciesG:
		return "G"
	case SpeciesX:
		return "X"
	case SpeciesY:
		return "Y"
	}
	return "?"
}

// AllSpecies lists the species in storage order.
var AllSpecies = [...]Species{SpeciesG, SpeciesX, SpeciesY}

// Conc is a concentration triple for one cell.
type Conc struct {
	G, X, Y float64
}

// Get returns the value for species s.
func (c Conc) Get(s Species) float64 {
	switch s {
	case SpeciesX:
		return c.X
	case SpeciesY:
		return c.Y
	}
	return c.G
}

// Field stores a rows x cols grid of (G, X, Y) triples in row-major order.
type Field struct {
	Rows, Cols int
	Cells      []float64
}

// NewField allocates a field filled with the initial concentration.
func NewField(rows, cols int, init Conc) Field {
	f := Field{Rows: rows, Cols: cols, Cells: make([]float64, Stride*rows*cols)}
	f.Fill(init)
	return f
}

// Fill sets every cell to c.
func (f Field) Fill(c Conc) {
	for i := 0; i+2 < len(f.Cells); i += Stride {
		f.Cells[i] = c.G
		f.Cells[i+1] = c.X
		f.Cells[i+2] = c.Y
	}
}

// RowStride returns the number of scalars in one row.
func (f Field) RowStride() int { return Stride * f.Cols }

// Index returns the flat index of the first scalar of cell (row, col).
func (f Field) Index(row, col int) int { return CellIndex(row, col, f.Cols) }

// At returns the triple stored at (row, col).
func (f Field) At(row, col int) Conc {
	return cellAt(f.Cells, f.Index(row, col))
}

// Interior reports whether (row, col) is updated by the step sweep.
func (f Field) Interior(row, col int) bool {
	return row >= 1 && row < f.Rows-1 && col >= 1 && col < f.Cols-1
}

// CellIndex returns the flat index of cell (row, col) in a grid of cols columns.
func CellIndex(row, col, cols int) int {
	return Stride * (row*cols + col)
}

func cellAt(v []float64, idx int) Conc {
	return Conc{G: v[idx], X: v[idx+1], Y: v[idx+2]}
}
