package strata

import (
	"errors"
	"fmt"
)

// SurfaceID identifies a surface. Ids are caller-assigned and unique among
// surfaces for the lifetime of the surface.
type SurfaceID uint32

// LayerID identifies a layer.
type LayerID uint32

// ScreenID identifies a screen. Screens are numbered from zero in output
// enumeration order.
type ScreenID uint32

// Sentinel errors returned by staging and lifecycle operations. Wrap-aware:
// test with errors.Is.
var (
	// ErrInvalidArgument reports a nil handle, an unknown id, or a malformed
	// value. The operation performed no mutation.
	ErrInvalidArgument = errors.New("strata: invalid argument")

	// ErrExists reports an id collision on creation or content attach.
	ErrExists = errors.New("strata: already exists")
)

func invalidArgf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidArgument)...)
}

// Rect is an axis-aligned pixel rectangle. The coordinate system has its
// origin at the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height int
}

// valid reports whether the rectangle has non-negative dimensions.
func (r Rect) valid() bool {
	return r.Width >= 0 && r.Height >= 0
}

// Orientation is a surface or layer rotation in 90-degree steps.
type Orientation uint8

const (
	Orientation0   Orientation = iota // no rotation
	Orientation90                     // 90 degrees clockwise
	Orientation180                    // 180 degrees
	Orientation270                    // 270 degrees clockwise
)

// valid reports whether o is one of the four defined steps.
func (o Orientation) valid() bool {
	return o <= Orientation270
}

// Notification is a bitmask of property groups. Staging setters accumulate
// bits into a per-entity dirty mask; Commit passes the accumulated mask to
// property observers and then clears it.
type Notification uint32

const (
	NotifyVisibility Notification = 1 << iota
	NotifyOpacity
	NotifyOrientation
	NotifySourceRect
	NotifyDestRect
	NotifyDimension
	NotifyPosition
	NotifyAdd
	NotifyRemove
	NotifyConfigure
)

// NotifyAll covers every property group.
const NotifyAll Notification = 1<<31 - 1

// orderChanged is the subset of bits that forces a membership-order rebuild
// at commit time.
const orderChanged = NotifyAdd | NotifyRemove

// Properties is the double-buffered property block shared by surfaces and
// layers. Staging setters write the pending copy; getters and observers see
// the current copy promoted by the last Commit.
type Properties struct {
	Visibility  bool
	Opacity     float64
	Source      Rect
	Dest        Rect
	Orientation Orientation
}

// defaultProperties returns the block a fresh entity starts with: invisible,
// fully opaque, source and dest sized w x h at the origin.
func defaultProperties(w, h int) Properties {
	return Properties{
		Opacity: 1.0,
		Source:  Rect{Width: w, Height: h},
		Dest:    Rect{Width: w, Height: h},
	}
}

// Content is an opaque render handle supplied by the rendering backend when
// it attaches pixel content to a surface. The core never inspects it; it only
// carries it into the render list. A surface without content is skipped
// during render-list construction.
type Content any
