package model

import "testing"

func TestPairArithmetic(t *testing.T) {
	a := Pair{MG: 10, EG: 20}
	b := Pair{MG: 3, EG: 4}
	if got := a.Add(b); got != (Pair{MG: 13, EG: 24}) {
		t.Fatalf("Add = %+v", got)
	}
	if got := a.Sub(b); got != (Pair{MG: 7, EG: 16}) {
		t.Fatalf("Sub = %+v", got)
	}
	if got := a.Scale(2); got != (Pair{MG: 20, EG: 40}) {
		t.Fatalf("Scale = %+v", got)
	}
}

func TestPairBlend(t *testing.T) {
	p := Pair{MG: 100, EG: 0}
	if got := p.Blend(24, 24); got != 100 {
		t.Fatalf("Blend(pure mg) = %v, want 100", got)
	}
	if got := p.Blend(0, 24); got != 0 {
		t.Fatalf("Blend(pure eg) = %v, want 0", got)
	}
	if got := p.Blend(12, 24); got != 50 {
		t.Fatalf("Blend(half) = %v, want 50", got)
	}
	if got := p.Blend(5, 0); got != p.EG {
		t.Fatalf("Blend(maxPhase=0) = %v, want %v", got, p.EG)
	}
}

func TestVectorFlattenUnflattenRoundTrip(t *testing.T) {
	v := Vector{{MG: 1, EG: 2}, {MG: -3, EG: 4.5}}
	flat := v.Flatten()
	want := []float64{1, 2, -3, 4.5}
	for i, f := range want {
		if flat[i] != f {
			t.Fatalf("Flatten()[%d] = %v, want %v", i, flat[i], f)
		}
	}

	other := v.Clone()
	for i := range other {
		other[i] = Pair{}
	}
	other.Unflatten(flat)
	for i := range v {
		if other[i] != v[i] {
			t.Fatalf("Unflatten()[%d] = %+v, want %+v", i, other[i], v[i])
		}
	}
}

func TestVectorCloneIsIndependent(t *testing.T) {
	v := Vector{{MG: 1, EG: 1}}
	c := v.Clone()
	c[0].MG = 99
	if v[0].MG == 99 {
		t.Fatalf("Clone shares storage with original")
	}
}

func TestUnflattenPanicsOnLengthMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on length mismatch")
		}
	}()
	v := Vector{{MG: 1, EG: 1}}
	v.Unflatten([]float64{1, 2, 3})
}
