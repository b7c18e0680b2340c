package table

// Kind classifies a column for perturbation.
type Kind int

const (
	// Categorical columns hold arbitrary values and are only ever resampled.
	Categorical Kind = iota
	// Numeric columns hold numbers and receive Gaussian noise.
	Numeric
)

// String returns "numeric" or "categorical".
func (k Kind) String() string {
	if k == Numeric {
		return "numeric"
	}
	return "categorical"
}

// Column describes one classified column.
type Column struct {
	Name  string
	Index int
	Kind  Kind
}

// Schema is the fixed numeric/categorical partition of a table's columns.
type Schema struct {
	columns []Column
}

// Classify tags every column of t. A column is Numeric when every cell in it
// holds a number (missing numbers included); otherwise it is Categorical.
// A table without rows classifies every column as Categorical.
func Classify(t *Table) Schema {
	cols := make([]Column, t.Width())
	for i, name := range t.columns {
		kind := Categorical
		if t.Len() > 0 {
			kind = Numeric
			for _, row := range t.rows {
				if !row.cells[i].IsNumber() {
					kind = Categorical
					break
				}
			}
		}
		cols[i] = Column{Name: name, Index: i, Kind: kind}
	}
	return Schema{columns: cols}
}

// Columns returns every column in table order.
func (s Schema) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Numeric returns the numeric columns in table order.
func (s Schema) Numeric() []Column { return s.filter(Numeric) }

// Categorical returns the categorical columns in table order.
func (s Schema) Categorical() []Column { return s.filter(Categorical) }

// Kind returns the kind of the named column.
func (s Schema) Kind(name string) (Kind, bool) {
	for _, c := range s.columns {
		if c.Name == name {
			return c.Kind, true
		}
	}
	return Categorical, false
}

func (s Schema) filter(k Kind) []Column {
	var out []Column
	for _, c := range s.columns {
		if c.Kind == k {
			out = append(out, c)
		}
	}
	return out
}
