package sim

import "testing"

func TestFacingFromDelta(t *testing.T) {
	cases := []struct {
		dx, dy float64
		want   Facing
	}{
		{1, 0, FacingRight},
		{1, 1, FacingDownRight},
		{0, 1, FacingDown},
		{-1, 1, FacingDownLeft},
		{-1, 0, FacingLeft},
		{-1, -1, FacingUpLeft},
		{0, -1, FacingUp},
		{1, -1, FacingUpRight},
		{0.5, -30, FacingUpRight},
	}
	for _, c := range cases {
		got, ok := FacingFromDelta(c.dx, c.dy)
		if !ok || got != c.want {
			t.Fatalf("delta (%.1f,%.1f): expected %s, got %s (ok=%v)", c.dx, c.dy, c.want, got, ok)
		}
	}
	if _, ok := FacingFromDelta(0, 0); ok {
		t.Fatal("zero delta should have no facing")
	}
}

func TestFacingVectorRoundTrip(t *testing.T) {
	for f := FacingDown; f <= FacingDownLeft; f++ {
		x, y := f.Vector()
		back, ok := FacingFromDelta(float64(x), float64(y))
		if !ok || back != f {
			t.Fatalf("%s: vector (%d,%d) maps back to %s", f, x, y, back)
		}
	}
}

func TestKiteOffset(t *testing.T) {
	if x, y := FacingDown.KiteOffset(); x != 0 || y != -1 {
		t.Fatalf("down should kite to (0,-1), got (%d,%d)", x, y)
	}
	if x, y := FacingRight.KiteOffset(); x != -1 || y != 0 {
		t.Fatalf("right should kite to (-1,0), got (%d,%d)", x, y)
	}
	if x, y := FacingUpLeft.KiteOffset(); x != 1 || y != 1 {
		t.Fatalf("upLeft should kite to (1,1), got (%d,%d)", x, y)
	}
}

func TestFacingNames(t *testing.T) {
	if FacingDownRight.String() != "downRight" {
		t.Fatalf("unexpected name %q", FacingDownRight.String())
	}
	if Facing(99).String() != "unknown" {
		t.Fatal("out-of-range facing should be unknown")
	}
}
