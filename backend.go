package strata

// Output describes one display the scene composites onto. The commit engine
// only needs its pixel size; everything else about presentation belongs to
// the embedding render loop.
type Output interface {
	Size() (w, h int)
}

// StaticOutput is a fixed-size Output, enough for headless use and tests.
type StaticOutput struct {
	W, H int
}

// Size returns the fixed output size.
func (o StaticOutput) Size() (w, h int) {
	return o.W, o.H
}

// RenderView is one flattened entry of a screen's render list: a visible
// surface with content, seen through one of its layers. Transform maps
// surface-local source pixels to screen pixels; Alpha is the product of the
// layer and surface opacities.
type RenderView struct {
	Surface   *Surface
	Layer     *Layer
	Content   Content
	Transform [6]float64
	Alpha     float64
}
