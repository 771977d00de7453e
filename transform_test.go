package strata

import (
	"math"
	"testing"
)

func assertPoint(t *testing.T, m [6]float64, x, y, wantX, wantY float64) {
	t.Helper()
	gx, gy := transformPoint(m, x, y)
	if math.Abs(gx-wantX) > 1e-9 || math.Abs(gy-wantY) > 1e-9 {
		t.Errorf("(%v, %v) -> (%v, %v), want (%v, %v)", x, y, gx, gy, wantX, wantY)
	}
}

func TestMultiplyAffineIdentity(t *testing.T) {
	m := [6]float64{2, 0, 0, 3, 10, 20}
	if multiplyAffine(identityTransform, m) != m {
		t.Error("I * m != m")
	}
	if multiplyAffine(m, identityTransform) != m {
		t.Error("m * I != m")
	}
}

func TestTranslationThenScale(t *testing.T) {
	// parent scale, child translation: the translation gets scaled.
	m := multiplyAffine(scaling(2, 2), translation(5, 5))
	assertPoint(t, m, 1, 1, 12, 12)
}

func TestOrientationRotationSquare(t *testing.T) {
	m := orientationRotation(Orientation90, 100, 100)
	assertPoint(t, m, 0, 0, 100, 0)
	assertPoint(t, m, 100, 0, 100, 100)
	assertPoint(t, m, 100, 100, 0, 100)
	assertPoint(t, m, 50, 50, 50, 50)
}

func TestOrientationRotationAspectSwap(t *testing.T) {
	// Quarter turns on a non-square rectangle still map corners to corners.
	m := orientationRotation(Orientation90, 200, 100)
	assertPoint(t, m, 0, 0, 200, 0)
	assertPoint(t, m, 200, 100, 0, 100)

	m = orientationRotation(Orientation270, 200, 100)
	assertPoint(t, m, 0, 0, 0, 100)
	assertPoint(t, m, 200, 100, 200, 0)
}

func TestOrientationRotation180(t *testing.T) {
	m := orientationRotation(Orientation180, 200, 100)
	assertPoint(t, m, 0, 0, 200, 100)
	assertPoint(t, m, 200, 100, 0, 0)
}

func TestOrientationRotationDegenerate(t *testing.T) {
	if orientationRotation(Orientation90, 0, 100) != identityTransform {
		t.Error("degenerate width should yield identity")
	}
}

func TestScaleFactorDegenerateSource(t *testing.T) {
	if scaleFactor(640, 0) != 1 {
		t.Errorf("scaleFactor(640, 0) = %v, want 1", scaleFactor(640, 0))
	}
}

func TestSurfaceTransformTranslationAndScale(t *testing.T) {
	lp := Properties{
		Opacity: 1,
		Source:  Rect{Width: 800, Height: 600},
		Dest:    Rect{X: 10, Y: 20, Width: 800, Height: 600},
	}
	sp := Properties{
		Opacity: 1,
		Dest:    Rect{X: 5, Y: 5, Width: 100, Height: 100},
	}

	// Surface scale 2x, layer scale 1. The scale runs last in the chain, so
	// the accumulated translation (15, 25) is scaled too.
	m := surfaceTransform(&lp, &sp, 50, 50)
	assertPoint(t, m, 0, 0, 30, 50)
	assertPoint(t, m, 50, 50, 130, 150)
}

func TestSurfaceTransformLayerScale(t *testing.T) {
	lp := Properties{
		Opacity: 1,
		Source:  Rect{Width: 1024, Height: 768},
		Dest:    Rect{Width: 512, Height: 384},
	}
	sp := Properties{
		Opacity: 1,
		Dest:    Rect{X: 100, Y: 100, Width: 200, Height: 200},
	}

	// Surface scale 1 (dest == source), layer scale one half.
	m := surfaceTransform(&lp, &sp, 200, 200)
	assertPoint(t, m, 0, 0, 50, 50)
	assertPoint(t, m, 200, 200, 150, 150)
}

func TestSurfaceTransformSurfaceRotation(t *testing.T) {
	lp := Properties{
		Opacity: 1,
		Source:  Rect{Width: 1024, Height: 768},
		Dest:    Rect{Width: 1024, Height: 768},
	}
	sp := Properties{
		Opacity:     1,
		Dest:        Rect{Width: 100, Height: 100},
		Orientation: Orientation180,
	}

	m := surfaceTransform(&lp, &sp, 100, 100)
	assertPoint(t, m, 0, 0, 100, 100)
	assertPoint(t, m, 100, 100, 0, 0)
}
