package strata

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// translation returns a pure translation matrix.
func translation(tx, ty float64) [6]float64 {
	return [6]float64{1, 0, 0, 1, tx, ty}
}

// scaling returns a pure anisotropic scale matrix.
func scaling(sx, sy float64) [6]float64 {
	return [6]float64{sx, 0, 0, sy, 0, 0}
}

// orientationSinCos returns the rotation terms for a 90-degree-step
// orientation. Exact values, no trigonometry.
func orientationSinCos(o Orientation) (sin, cos float64) {
	switch o {
	case Orientation90:
		return 1, 0
	case Orientation180:
		return 0, -1
	case Orientation270:
		return -1, 0
	default:
		return 0, 1
	}
}

// orientationRotation builds the rotation matrix for orientation o about the
// center of a w x h rectangle. Quarter turns additionally apply the aspect
// swap scale (w/h, h/w) so the rotated content still fills the rectangle.
// Degenerate dimensions yield the identity.
func orientationRotation(o Orientation, w, h float64) [6]float64 {
	if w == 0 || h == 0 {
		return identityTransform
	}

	sin, cos := orientationSinCos(o)
	sx, sy := 1.0, 1.0
	if o == Orientation90 || o == Orientation270 {
		sx = w / h
		sy = h / w
	}

	cx := 0.5 * w
	cy := 0.5 * h

	// translate(cx,cy) * scale * rotate * translate(-cx,-cy); the scale runs
	// after the rotation so the rotated extent fills the original rectangle.
	m := multiplyAffine(
		scaling(sx, sy),
		[6]float64{cos, sin, -sin, cos, 0, 0},
	)
	m = multiplyAffine(translation(cx, cy), m)
	return multiplyAffine(m, translation(-cx, -cy))
}

// scaleFactor returns dest/source, treating a degenerate source extent as
// already matching dest (factor 1).
func scaleFactor(dest, source int) float64 {
	if source == 0 {
		return 1
	}
	return float64(dest) / float64(source)
}

// surfaceTransform composes the full transform chain for one (layer, surface)
// pair in this fixed order, applied to a point left to right:
//
//	layer rotation (about layer dest center) -> layer translation ->
//	surface translation -> surface rotation (about surface dest center) ->
//	anisotropic scale (surf dest/src x layer dest/src)
//
// sourceW/sourceH are the surface's effective source extent (falling back to
// the attached content size when the source rect is unset).
func surfaceTransform(lp, sp *Properties, sourceW, sourceH int) [6]float64 {
	layerRot := orientationRotation(lp.Orientation,
		float64(lp.Dest.Width), float64(lp.Dest.Height))
	layerPos := translation(float64(lp.Dest.X), float64(lp.Dest.Y))
	surfPos := translation(float64(sp.Dest.X), float64(sp.Dest.Y))
	surfRot := orientationRotation(sp.Orientation,
		float64(sp.Dest.Width), float64(sp.Dest.Height))

	sx := scaleFactor(sp.Dest.Width, sourceW) * scaleFactor(lp.Dest.Width, lp.Source.Width)
	sy := scaleFactor(sp.Dest.Height, sourceH) * scaleFactor(lp.Dest.Height, lp.Source.Height)

	m := multiplyAffine(layerPos, layerRot)
	m = multiplyAffine(surfPos, m)
	m = multiplyAffine(surfRot, m)
	return multiplyAffine(scaling(sx, sy), m)
}
