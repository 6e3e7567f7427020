package coords

import (
	"errors"
	"math"
	"testing"

	"meme-creator/pkg/geometry"
)

const tolerance = 1e-9

func near(a, b geometry.Point2D, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

func TestToIntrinsic(t *testing.T) {
	box := geometry.NewRect(10, 20, 250, 200)
	size := geometry.NewSize(500, 800)

	got, err := ToIntrinsic(geometry.NewPoint2D(60, 70), box, size)
	if err != nil {
		t.Fatal(err)
	}
	want := geometry.NewPoint2D(100, 200) // (50*2, 50*4)
	if !near(got, want, tolerance) {
		t.Errorf("ToIntrinsic = %v, want %v", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	boxes := []geometry.Rect{
		geometry.NewRect(0, 0, 500, 500),
		geometry.NewRect(13.5, 7.25, 321, 123),
		geometry.NewRect(-40, 900, 1920, 17),
	}
	sizes := []geometry.Size{
		geometry.NewSize(500, 500),
		geometry.NewSize(1200, 675),
		geometry.NewSize(33, 4096),
	}
	points := []geometry.Point2D{
		{0, 0}, {1, 1}, {499.5, 12.25}, {-30, 8000}, {1e4, -1e4},
	}
	for _, box := range boxes {
		for _, size := range sizes {
			for _, p := range points {
				d, err := ToDisplay(p, box, size)
				if err != nil {
					t.Fatal(err)
				}
				back, err := ToIntrinsic(d, box, size)
				if err != nil {
					t.Fatal(err)
				}
				tol := 1e-6 * math.Max(1, math.Max(math.Abs(p.X), math.Abs(p.Y)))
				if !near(back, p, tol) {
					t.Errorf("box %v size %v: round trip %v -> %v -> %v", box, size, p, d, back)
				}
			}
		}
	}
}

func TestIntrinsicDeltaIgnoresOrigin(t *testing.T) {
	size := geometry.NewSize(1000, 300)
	d := geometry.NewPoint2D(12, -7)
	a, err := IntrinsicDelta(d, geometry.NewRect(0, 0, 500, 600), size)
	if err != nil {
		t.Fatal(err)
	}
	b, err := IntrinsicDelta(d, geometry.NewRect(77, 33, 500, 600), size)
	if err != nil {
		t.Fatal(err)
	}
	want := geometry.NewPoint2D(24, -3.5)
	if !near(a, want, tolerance) || !near(b, want, tolerance) {
		t.Errorf("IntrinsicDelta = %v / %v, want %v", a, b, want)
	}
}

func TestNonUniformScale(t *testing.T) {
	sx, sy, err := Scale(geometry.NewRect(0, 0, 100, 400), geometry.NewSize(300, 200))
	if err != nil {
		t.Fatal(err)
	}
	if sx != 3 || sy != 0.5 {
		t.Errorf("Scale = (%v, %v), want (3, 0.5)", sx, sy)
	}
}

func TestDegenerate(t *testing.T) {
	p := geometry.NewPoint2D(1, 1)
	cases := []struct {
		box  geometry.Rect
		size geometry.Size
	}{
		{geometry.NewRect(0, 0, 0, 10), geometry.NewSize(10, 10)},
		{geometry.NewRect(0, 0, 10, 10), geometry.NewSize(10, 0)},
	}
	for _, c := range cases {
		if _, err := ToIntrinsic(p, c.box, c.size); !errors.Is(err, ErrDegenerate) {
			t.Errorf("ToIntrinsic error = %v, want ErrDegenerate", err)
		}
		if _, err := ToDisplay(p, c.box, c.size); !errors.Is(err, ErrDegenerate) {
			t.Errorf("ToDisplay error = %v, want ErrDegenerate", err)
		}
		if _, err := IntrinsicDelta(p, c.box, c.size); !errors.Is(err, ErrDegenerate) {
			t.Errorf("IntrinsicDelta error = %v, want ErrDegenerate", err)
		}
	}
}

func TestDisplaySize(t *testing.T) {
	got, err := DisplaySize(geometry.NewSize(200, 64), geometry.NewRect(0, 0, 250, 100), geometry.NewSize(500, 200))
	if err != nil {
		t.Fatal(err)
	}
	if got != geometry.NewSize(100, 32) {
		t.Errorf("DisplaySize = %v, want {100 32}", got)
	}
}
