package strata

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

func imageRect(r Rect) image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// EbitenBackend draws a screen's render list onto an ebiten image. Surface
// content must be attached as *ebiten.Image; entries carrying anything else
// are skipped.
type EbitenBackend struct {
	op ebiten.DrawImageOptions
}

// NewEbitenBackend builds a backend. One backend may serve several screens.
func NewEbitenBackend() *EbitenBackend {
	return &EbitenBackend{}
}

// Draw paints the screen's committed render list bottom-up onto dst.
func (b *EbitenBackend) Draw(dst *ebiten.Image, scr *Screen) {
	for _, view := range scr.RenderList() {
		img, ok := view.Content.(*ebiten.Image)
		if !ok {
			continue
		}

		src := img
		r := view.Surface.SourceRect()
		if r.Width > 0 && r.Height > 0 {
			sub := img.SubImage(imageRect(r))
			src = sub.(*ebiten.Image)
		}

		m := view.Transform
		b.op.GeoM.Reset()
		b.op.GeoM.SetElement(0, 0, m[0])
		b.op.GeoM.SetElement(1, 0, m[1])
		b.op.GeoM.SetElement(0, 1, m[2])
		b.op.GeoM.SetElement(1, 1, m[3])
		b.op.GeoM.SetElement(0, 2, m[4])
		b.op.GeoM.SetElement(1, 2, m[5])

		b.op.ColorScale.Reset()
		b.op.ColorScale.ScaleAlpha(float32(view.Alpha))

		dst.DrawImage(src, &b.op)
	}
}

// EbitenOutput adapts an ebiten game's logical screen size to the Output
// interface.
type EbitenOutput struct {
	W, H int
}

// Size returns the logical screen size.
func (o EbitenOutput) Size() (w, h int) {
	return o.W, o.H
}
