package coeffs

import "testing"

func TestFromDenseDropsZeros(t *testing.T) {
	dense := []int16{0, 5, 0, -3, 0}
	s := FromDense(dense)
	want := Sparse{{Index: 1, Value: 5}, {Index: 3, Value: -3}}
	if len(s) != len(want) {
		t.Fatalf("FromDense length = %d, want %d", len(s), len(want))
	}
	for i, c := range want {
		if s[i] != c {
			t.Fatalf("FromDense()[%d] = %+v, want %+v", i, s[i], c)
		}
	}
}

func TestFromDenseAllZero(t *testing.T) {
	s := FromDense(make([]int16, 10))
	if len(s) != 0 {
		t.Fatalf("FromDense(all zero) length = %d, want 0", len(s))
	}
}

func TestDenseRoundTrip(t *testing.T) {
	dense := []int16{0, 5, 0, -3, 0}
	s := FromDense(dense)
	got := s.Dense(len(dense))
	for i, v := range dense {
		if got[i] != v {
			t.Fatalf("Dense()[%d] = %v, want %v", i, got[i], v)
		}
	}
}
