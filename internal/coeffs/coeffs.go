// Package coeffs implements the sparse coefficient representation used to
// carry a single position's per-term contributions from an eval plug-in to
// the gradient computation, without allocating a dense vector the size of
// the full parameter set for every training example.
package coeffs

// Coefficient is one term's net white-minus-black contribution to a
// position's evaluation, before tapering: (trace[white] - trace[black]) as
// produced by the plug-in's trace accumulation.
type Coefficient struct {
	Index uint16
	Value int16
}

// Sparse is an ordered list of non-zero coefficients for one position.
type Sparse []Coefficient

// FromDense compresses a dense per-term trace into Sparse form, dropping
// zero entries.
func FromDense(dense []int16) Sparse {
	out := make(Sparse, 0, len(dense))
	for i, v := range dense {
		if v != 0 {
			out = append(out, Coefficient{Index: uint16(i), Value: v})
		}
	}
	return out
}

// Dense expands s back into a zero-filled dense trace of length n, the
// inverse of FromDense. Used by invariant-checking tests, not the hot path.
func (s Sparse) Dense(n int) []int16 {
	out := make([]int16, n)
	for _, c := range s {
		out[c.Index] = c.Value
	}
	return out
}
