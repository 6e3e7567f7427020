// Package coords converts between display space (the on-screen box the surface is
// drawn into) and intrinsic space (the base image's native pixel grid).
//
// The transform is rebuilt on every call because the display box can change
// between calls when the layout is resized.
package coords

import (
	"errors"
	"fmt"

	"meme-creator/pkg/geometry"

	"gonum.org/v1/gonum/mat"
)

// ErrDegenerate is returned when the display box or intrinsic size has no area.
var ErrDegenerate = errors.New("coords: degenerate display box or intrinsic size")

// Scale returns the per-axis display-to-intrinsic scale factors.
func Scale(box geometry.Rect, intrinsic geometry.Size) (sx, sy float64, err error) {
	if box.Empty() || intrinsic.Empty() {
		return 0, 0, fmt.Errorf("%w: box %vx%v, intrinsic %vx%v",
			ErrDegenerate, box.Width, box.Height, intrinsic.Width, intrinsic.Height)
	}
	return intrinsic.Width / box.Width, intrinsic.Height / box.Height, nil
}

// displayToIntrinsic builds the homogeneous 3x3 matrix
//
//	[sx 0  -sx*bx]
//	[0  sy -sy*by]
//	[0  0   1    ]
//
// mapping a display point to intrinsic space.
func displayToIntrinsic(box geometry.Rect, intrinsic geometry.Size) (*mat.Dense, error) {
	sx, sy, err := Scale(box, intrinsic)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(3, 3, []float64{
		sx, 0, -sx * box.X,
		0, sy, -sy * box.Y,
		0, 0, 1,
	}), nil
}

func apply(m mat.Matrix, x, y, w float64) geometry.Point2D {
	var out mat.VecDense
	out.MulVec(m, mat.NewVecDense(3, []float64{x, y, w}))
	return geometry.Point2D{X: out.AtVec(0), Y: out.AtVec(1)}
}

// ToIntrinsic maps a display-space point to intrinsic coordinates.
func ToIntrinsic(p geometry.Point2D, box geometry.Rect, intrinsic geometry.Size) (geometry.Point2D, error) {
	m, err := displayToIntrinsic(box, intrinsic)
	if err != nil {
		return geometry.Point2D{}, err
	}
	return apply(m, p.X, p.Y, 1), nil
}

// ToDisplay maps an intrinsic point back into display space.
func ToDisplay(p geometry.Point2D, box geometry.Rect, intrinsic geometry.Size) (geometry.Point2D, error) {
	m, err := displayToIntrinsic(box, intrinsic)
	if err != nil {
		return geometry.Point2D{}, err
	}
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return geometry.Point2D{}, fmt.Errorf("coords: invert transform: %w", err)
	}
	return apply(&inv, p.X, p.Y, 1), nil
}

// IntrinsicDelta maps a display-space offset (such as a drag offset) to an
// intrinsic offset. Only the linear part of the transform applies.
func IntrinsicDelta(d geometry.Point2D, box geometry.Rect, intrinsic geometry.Size) (geometry.Point2D, error) {
	m, err := displayToIntrinsic(box, intrinsic)
	if err != nil {
		return geometry.Point2D{}, err
	}
	return apply(m, d.X, d.Y, 0), nil
}

// DisplaySize maps an intrinsic length pair to display space, used to size the
// live drag visual.
func DisplaySize(s geometry.Size, box geometry.Rect, intrinsic geometry.Size) (geometry.Size, error) {
	sx, sy, err := Scale(box, intrinsic)
	if err != nil {
		return geometry.Size{}, err
	}
	return geometry.Size{Width: s.Width / sx, Height: s.Height / sy}, nil
}
