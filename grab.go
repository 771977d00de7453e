package strata

import "time"

// Fixed is a signed 24.8 fixed-point coordinate, the format input devices
// report motion in.
type Fixed int32

// FixedFromInt converts a whole pixel count to Fixed.
func FixedFromInt(i int) Fixed {
	return Fixed(i << 8)
}

// FixedFromFloat converts a float coordinate to Fixed, truncating sub-1/256
// precision.
func FixedFromFloat(f float64) Fixed {
	return Fixed(f * 256.0)
}

// Int returns the whole pixel part.
func (f Fixed) Int() int {
	return int(f / 256)
}

// Float returns the coordinate as a float.
func (f Fixed) Float() float64 {
	return float64(f) / 256.0
}

const (
	// velocityStaleness resets velocity tracking when motion samples are
	// further apart than this.
	velocityStaleness = 200 * time.Millisecond

	// A release within flickMaxDuration of the grab start, with at least
	// flickMinVelocity pixels per millisecond behind it, classifies as a
	// flick.
	flickMaxDuration = 400 * time.Millisecond
	flickMinVelocity = 0.4
)

// MoveGrab drags a layer along with an input device. Motion samples stage
// position changes on the layer's pending block; the caller commits. The grab
// also tracks instantaneous velocity so the release handler can classify a
// flick. Pointer and touch devices feed the same grab, they only differ in
// where the coordinates come from.
type MoveGrab struct {
	layer *Layer

	// Layer origin relative to the grab point, so the layer tracks the
	// device without jumping on the first motion event.
	offX, offY Fixed

	// LockY freezes the vertical axis, for one-dimensional swipes.
	LockY bool

	// Bounds, when non-nil, clamps the staged layer position inside the
	// rectangle.
	Bounds *Rect

	startTime time.Duration
	lastTime  time.Duration
	baseX     Fixed
	baseY     Fixed
	vx, vy    float64

	moved bool
}

// NewMoveGrab starts a grab on l at device position (x, y) with the event
// timestamp t. Timestamps are the input stream's monotonic clock; only
// differences matter.
func NewMoveGrab(l *Layer, x, y Fixed, t time.Duration) (*MoveGrab, error) {
	if l == nil {
		return nil, invalidArgf("NewMoveGrab: nil layer")
	}
	lx, ly := l.Position()
	return &MoveGrab{
		layer:     l,
		offX:      FixedFromInt(lx) - x,
		offY:      FixedFromInt(ly) - y,
		startTime: t,
		lastTime:  t,
		baseX:     x,
		baseY:     y,
	}, nil
}

// Motion feeds one device motion sample, staging the layer's new position.
func (g *MoveGrab) Motion(x, y Fixed, t time.Duration) {
	if g.LockY {
		y = g.baseY
	}

	dt := t - g.lastTime
	switch {
	case dt > velocityStaleness:
		g.vx, g.vy = 0, 0
	case dt > 0:
		ms := float64(dt) / float64(time.Millisecond)
		g.vx = (x - g.baseX).Float() / ms
		g.vy = (y - g.baseY).Float() / ms
	}
	g.baseX, g.baseY = x, y
	g.lastTime = t

	nx := (x + g.offX).Int()
	ny := (y + g.offY).Int()
	if b := g.Bounds; b != nil {
		nx = min(max(nx, b.X), b.X+b.Width)
		ny = min(max(ny, b.Y), b.Y+b.Height)
	}
	lx, ly := g.layer.Position()
	if nx != lx || ny != ly {
		g.moved = true
	}
	g.layer.SetPosition(nx, ny)
}

// Layer returns the grabbed layer.
func (g *MoveGrab) Layer() *Layer {
	return g.layer
}

// Velocity returns the most recent velocity estimate in pixels per
// millisecond. Stale after velocityStaleness without motion.
func (g *MoveGrab) Velocity() (vx, vy float64) {
	return g.vx, g.vy
}

// Moved reports whether any motion sample actually displaced the layer.
func (g *MoveGrab) Moved() bool {
	return g.moved
}

// Elapsed returns how long the grab has been held as of timestamp t.
func (g *MoveGrab) Elapsed(t time.Duration) time.Duration {
	return t - g.startTime
}

// Flick classifies the release at timestamp t: a short grab released at
// speed. Velocity staleness applies, so a drag that stopped before release
// does not flick.
func (g *MoveGrab) Flick(t time.Duration) bool {
	if t-g.lastTime > velocityStaleness {
		return false
	}
	v := g.vx
	if v < 0 {
		v = -v
	}
	return g.Elapsed(t) < flickMaxDuration && v > flickMinVelocity
}

// GrabEndFunc receives the grab and the release timestamp when a device
// wrapper ends its grab.
type GrabEndFunc func(g *MoveGrab, t time.Duration)

// PointerGrab drives a MoveGrab from pointer events: the grab lives for as
// long as the initiating button is held.
type PointerGrab struct {
	grab  *MoveGrab
	onEnd GrabEndFunc
	ended bool
}

// NewPointerGrab wraps an active MoveGrab. onEnd fires once, on button
// release.
func NewPointerGrab(g *MoveGrab, onEnd GrabEndFunc) *PointerGrab {
	return &PointerGrab{grab: g, onEnd: onEnd}
}

// Motion forwards a pointer motion sample.
func (p *PointerGrab) Motion(x, y Fixed, t time.Duration) {
	if p.ended {
		return
	}
	p.grab.Motion(x, y, t)
}

// ButtonUp ends the grab.
func (p *PointerGrab) ButtonUp(t time.Duration) {
	if p.ended {
		return
	}
	p.ended = true
	if p.onEnd != nil {
		p.onEnd(p.grab, t)
	}
}

// TouchGrab drives a MoveGrab from touch events. Contact 0 is the primary
// contact: only its motion moves the layer. The grab ends when the last
// contact lifts.
type TouchGrab struct {
	grab     *MoveGrab
	onEnd    GrabEndFunc
	contacts map[int]struct{}
	ended    bool
}

// NewTouchGrab wraps an active MoveGrab started by contact 0. onEnd fires
// once, when all contacts are up.
func NewTouchGrab(g *MoveGrab, onEnd GrabEndFunc) *TouchGrab {
	return &TouchGrab{
		grab:     g,
		onEnd:    onEnd,
		contacts: map[int]struct{}{0: {}},
	}
}

// Down records an additional contact.
func (tg *TouchGrab) Down(id int, t time.Duration) {
	if tg.ended {
		return
	}
	tg.contacts[id] = struct{}{}
}

// Motion forwards a contact's motion sample. Non-primary contacts are
// tracked but do not move the layer.
func (tg *TouchGrab) Motion(id int, x, y Fixed, t time.Duration) {
	if tg.ended || id != 0 {
		return
	}
	tg.grab.Motion(x, y, t)
}

// Up lifts a contact, ending the grab when none remain.
func (tg *TouchGrab) Up(id int, t time.Duration) {
	if tg.ended {
		return
	}
	delete(tg.contacts, id)
	if len(tg.contacts) > 0 {
		return
	}
	tg.ended = true
	if tg.onEnd != nil {
		tg.onEnd(tg.grab, t)
	}
}
