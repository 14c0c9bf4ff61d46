package selection

// Mask holds one byte per input point: 1 when selected, 0 otherwise.
type Mask []uint8

// Selected reports whether point i is selected.
func (m Mask) Selected(i int) bool {
	return m[i] != 0
}

// Count returns the number of selected points.
func (m Mask) Count() int {
	n := 0
	for _, b := range m {
		if b != 0 {
			n++
		}
	}
	return n
}

// Indices returns the indices of selected points in ascending order.
func (m Mask) Indices() []int {
	out := make([]int, 0, m.Count())
	for i, b := range m {
		if b != 0 {
			out = append(out, i)
		}
	}
	return out
}
