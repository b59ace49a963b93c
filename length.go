package canopy

// Point is a row/column position in source text. Columns are measured in
// characters from the start of the row.
type Point struct {
	Row    uint32
	Column uint32
}

// Length measures a span of source text in every unit the runtime cares
// about: bytes, characters, and the row/column extent. Lengths form a
// monoid under Add; Sub is defined only when the receiver dominates the
// argument (covers at least as much text in every dimension).
type Length struct {
	Bytes  uint32
	Chars  uint32
	Extent Point
}

// ZeroLength returns the empty length.
func ZeroLength() Length { return Length{} }

// Add returns the concatenation of two lengths. Rows accumulate; the
// column restarts after a newline, so the right operand's column stands
// alone whenever it spans at least one row.
func (l Length) Add(o Length) Length {
	result := Length{
		Bytes: l.Bytes + o.Bytes,
		Chars: l.Chars + o.Chars,
	}
	result.Extent.Row = l.Extent.Row + o.Extent.Row
	if o.Extent.Row > 0 {
		result.Extent.Column = o.Extent.Column
	} else {
		result.Extent.Column = l.Extent.Column + o.Extent.Column
	}
	return result
}

// Sub returns the length remaining when o is removed from the front of l.
// The receiver must dominate o.
func (l Length) Sub(o Length) Length {
	result := Length{
		Bytes: l.Bytes - o.Bytes,
		Chars: l.Chars - o.Chars,
	}
	result.Extent.Row = l.Extent.Row - o.Extent.Row
	if l.Extent.Row == o.Extent.Row {
		result.Extent.Column = l.Extent.Column - o.Extent.Column
	} else {
		result.Extent.Column = l.Extent.Column
	}
	return result
}

// Eq reports whether two lengths are identical in every dimension.
func (l Length) Eq(o Length) bool {
	return l.Bytes == o.Bytes && l.Chars == o.Chars && l.Extent == o.Extent
}

// IsZero reports whether the length spans no text.
func (l Length) IsZero() bool {
	return l.Bytes == 0 && l.Chars == 0 && l.Extent == (Point{})
}
