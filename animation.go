package strata

import (
	"math"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// frameInterval is the scheduler's tick period, 30 frames per second.
const frameInterval = time.Second / 30

// Timer arms a single-shot deadline. The scheduler arms it whenever
// animations are active and disarms it when the active set empties; the
// embedding loop decides how the deadline is actually waited on.
type Timer interface {
	Arm(d time.Duration)
	Disarm()
}

// PollTimer is a Timer for frame-driven loops without their own timerfd
// equivalent: the loop polls Expired once per frame and runs the scheduler
// tick when it reports true.
type PollTimer struct {
	deadline time.Time
	armed    bool
	now      func() time.Time
}

// NewPollTimer builds a PollTimer reading the given clock. A nil clock means
// time.Now.
func NewPollTimer(now func() time.Time) *PollTimer {
	if now == nil {
		now = time.Now
	}
	return &PollTimer{now: now}
}

// Arm sets the deadline d from now, replacing any earlier one.
func (t *PollTimer) Arm(d time.Duration) {
	t.deadline = t.now().Add(d)
	t.armed = true
}

// Disarm cancels the pending deadline.
func (t *PollTimer) Disarm() {
	t.armed = false
}

// Expired reports whether the armed deadline has passed, disarming it.
func (t *PollTimer) Expired() bool {
	if !t.armed || t.now().Before(t.deadline) {
		return false
	}
	t.armed = false
	return true
}

// spring is a damped spring integrated with fixed 4ms Verlet substeps. Values
// are clamped to [min, max]; hitting a bound kills the velocity so fades
// settle instead of ringing.
type spring struct {
	k        float64
	friction float64

	current  float64
	previous float64
	target   float64

	min, max float64

	clock time.Duration // integration time consumed so far
}

const (
	springStep    = 0.01
	springSubstep = 4 * time.Millisecond
	springEpsilon = 0.0002
)

func newSpring(k, friction, current, target float64) *spring {
	return &spring{
		k:        k,
		friction: friction,
		current:  current,
		previous: current,
		target:   target,
		min:      0,
		max:      1,
	}
}

// update integrates the spring up to elapsed time since the animation start.
func (s *spring) update(elapsed time.Duration) {
	for ; s.clock < elapsed; s.clock += springSubstep {
		force := s.k*(s.target-s.current)/10.0 +
			(s.previous-s.current)*s.friction/100.0

		v := s.current - s.previous
		s.previous = s.current
		s.current += v + force*springStep*springStep

		if s.current >= s.max {
			s.current = s.max
			s.previous = s.max
		}
		if s.current <= s.min {
			s.current = s.min
			s.previous = s.min
		}
	}
}

func (s *spring) done() bool {
	return math.Abs(s.current-s.target) < springEpsilon &&
		math.Abs(s.previous-s.target) < springEpsilon
}

// AnimationKind discriminates the motion model driving an Animation.
type AnimationKind int

const (
	// AnimationFade drives a layer's opacity with a damped spring.
	AnimationFade AnimationKind = iota
	// AnimationMove drives a layer's position with constant-acceleration
	// kinematics.
	AnimationMove
	// AnimationTween drives a layer's opacity with an eased tween.
	AnimationTween
)

// animKey identifies the single property slot an animation occupies. Adding a
// second animation for the same slot preempts the first.
type animKey struct {
	layer LayerID
	prop  Notification
}

// Animation is one active entry in an AnimationSet. It stays valid until it
// completes or is preempted; after that, Done reports true and the destroy
// callback has fired exactly once.
type Animation struct {
	set   *AnimationSet
	key   animKey
	kind  AnimationKind
	layer *Layer

	start time.Time
	done  bool

	// fade
	spr *spring

	// move
	fromX, fromY int
	destX, destY int
	driving      float64 // signed displacement along the driving axis
	accel        float64 // units per ms^2
	startV       float64 // units per ms, signed along the driving axis
	duration     float64 // ms

	// tween
	tw            *gween.Tween
	tweenConsumed float32 // seconds already fed to tw

	onDestroy func(a *Animation)
}

// Kind returns the animation's motion model.
func (a *Animation) Kind() AnimationKind {
	return a.kind
}

// Layer returns the animated layer.
func (a *Animation) Layer() *Layer {
	return a.layer
}

// Done reports whether the animation has left the active set.
func (a *Animation) Done() bool {
	return a.done
}

// Stop removes the animation from its set without waiting for completion,
// firing the destroy callback. Stopping a finished animation is a no-op.
func (a *Animation) Stop() {
	if a == nil || a.done {
		return
	}
	a.set.remove(a.key)
}

// frame advances the animation to now, staging property changes on the
// layer's pending block. It reports whether the animation has reached its
// end state.
func (a *Animation) frame(now time.Time) bool {
	elapsed := now.Sub(a.start)
	if elapsed < 0 {
		elapsed = 0
	}

	switch a.kind {
	case AnimationFade:
		a.spr.update(elapsed)
		a.layer.SetOpacity(a.spr.current)
		return a.spr.done()

	case AnimationMove:
		t := float64(elapsed) / float64(time.Millisecond)
		if t >= a.duration || a.duration == 0 {
			a.layer.SetPosition(a.destX, a.destY)
			return true
		}
		s := a.startV*t + a.accel*t*t/2
		progress := s / a.driving
		x := a.fromX + int(math.Round(float64(a.destX-a.fromX)*progress))
		y := a.fromY + int(math.Round(float64(a.destY-a.fromY)*progress))
		a.layer.SetPosition(x, y)
		return false

	case AnimationTween:
		// gween advances by deltas while the scheduler tracks absolute time.
		dt := float32(elapsed.Seconds()) - a.tweenConsumed
		if dt < 0 {
			dt = 0
		}
		a.tweenConsumed += dt
		v, finished := a.tw.Update(dt)
		a.layer.SetOpacity(float64(v))
		return finished
	}
	return true
}

// AnimationSet is the scene's animation scheduler. All active animations
// advance on a shared 30Hz timer tick; each tick steps the whole batch, runs
// one Commit, then re-arms (or disarms, once the set is empty).
type AnimationSet struct {
	scene *Scene
	timer Timer
	now   func() time.Time

	active map[animKey]*Animation
	order  []animKey
}

// NewAnimationSet builds a scheduler over scene, arming deadlines on timer.
// A nil clock means time.Now.
func NewAnimationSet(scene *Scene, timer Timer, now func() time.Time) *AnimationSet {
	if now == nil {
		now = time.Now
	}
	return &AnimationSet{
		scene:  scene,
		timer:  timer,
		now:    now,
		active: make(map[animKey]*Animation),
	}
}

// Len returns the number of active animations.
func (as *AnimationSet) Len() int {
	return len(as.active)
}

// StartFade begins a spring fade of the layer's opacity toward 1 (fadeIn) or
// 0. The fade starts from the layer's committed opacity, so preempting a
// running fade reverses it mid-flight without a jump. onDestroy, if non-nil,
// fires exactly once when the animation leaves the set, whether it completed
// or was preempted.
func (as *AnimationSet) StartFade(l *Layer, fadeIn bool, onDestroy func(a *Animation)) (*Animation, error) {
	if l == nil {
		return nil, invalidArgf("StartFade: nil layer")
	}
	target := 0.0
	if fadeIn {
		target = 1.0
	}
	start := l.Opacity()
	spr := newSpring(300.0, 1400.0, start, target)
	spr.previous = start - (target-start)*0.03

	a := &Animation{
		kind:      AnimationFade,
		key:       animKey{layer: l.id, prop: NotifyOpacity},
		layer:     l,
		start:     as.now(),
		spr:       spr,
		onDestroy: onDestroy,
	}
	as.add(a)
	return a, nil
}

// StartMove begins a constant-acceleration slide of the layer from its
// committed position to (destX, destY). startV and endV are speeds in pixels
// per millisecond along the movement direction; the acceleration and duration
// follow from them and the distance. A zero-distance move completes on its
// first frame.
func (as *AnimationSet) StartMove(l *Layer, destX, destY int, startV, endV float64, onDestroy func(a *Animation)) (*Animation, error) {
	if l == nil {
		return nil, invalidArgf("StartMove: nil layer")
	}
	fromX, fromY := l.Position()

	dx := float64(destX - fromX)
	dy := float64(destY - fromY)
	driving := dx
	if math.Abs(dy) > math.Abs(dx) {
		driving = dy
	}
	// Velocities are directed toward the target.
	if driving < 0 {
		startV = -math.Abs(startV)
		endV = -math.Abs(endV)
	} else {
		startV = math.Abs(startV)
		endV = math.Abs(endV)
	}

	a := &Animation{
		kind:      AnimationMove,
		key:       animKey{layer: l.id, prop: NotifyPosition},
		layer:     l,
		start:     as.now(),
		fromX:     fromX,
		fromY:     fromY,
		destX:     destX,
		destY:     destY,
		driving:   driving,
		startV:    startV,
		onDestroy: onDestroy,
	}

	switch {
	case math.Abs(driving) <= 1e-3:
		a.duration = 0
	default:
		accel := (endV*endV - startV*startV) / (2 * driving)
		if math.Abs(accel) < 1e-6 {
			a.accel = 0
			a.duration = math.Abs(driving / startV)
		} else {
			a.accel = accel
			a.duration = (endV - startV) / accel
		}
	}

	as.add(a)
	return a, nil
}

// StartOpacityTween begins an eased tween of the layer's opacity from its
// committed value to target over the given duration. A nil easing means
// linear.
func (as *AnimationSet) StartOpacityTween(l *Layer, target float64, d time.Duration, easing ease.TweenFunc, onDestroy func(a *Animation)) (*Animation, error) {
	if l == nil {
		return nil, invalidArgf("StartOpacityTween: nil layer")
	}
	if target < 0 || target > 1 {
		return nil, invalidArgf("StartOpacityTween: target %v out of range", target)
	}
	if easing == nil {
		easing = ease.Linear
	}
	a := &Animation{
		kind:      AnimationTween,
		key:       animKey{layer: l.id, prop: NotifyOpacity},
		layer:     l,
		start:     as.now(),
		tw:        gween.New(float32(l.Opacity()), float32(target), float32(d.Seconds()), easing),
		onDestroy: onDestroy,
	}
	as.add(a)
	return a, nil
}

// add inserts an animation, preempting any active one on the same property
// slot, and arms the timer for an immediate first frame.
func (as *AnimationSet) add(a *Animation) {
	a.set = as
	as.remove(a.key)
	as.active[a.key] = a
	as.order = append(as.order, a.key)
	as.timer.Arm(time.Millisecond)
}

// remove drops the animation occupying key, firing its destroy callback.
func (as *AnimationSet) remove(key animKey) {
	a, ok := as.active[key]
	if !ok {
		return
	}
	delete(as.active, key)
	for i, k := range as.order {
		if k == key {
			as.order = append(as.order[:i], as.order[i+1:]...)
			break
		}
	}
	a.done = true
	if a.onDestroy != nil {
		fn := a.onDestroy
		a.onDestroy = nil
		fn(a)
	}
}

// Tick advances every active animation one frame, commits the scene once for
// the whole batch, retires finished animations, and re-arms the timer if any
// remain. The embedding loop calls it when the armed deadline expires.
func (as *AnimationSet) Tick() {
	now := as.now()

	var finished []animKey
	for _, key := range append([]animKey(nil), as.order...) {
		a, ok := as.active[key]
		if !ok {
			continue
		}
		if a.frame(now) {
			finished = append(finished, key)
		}
	}

	as.scene.Commit()

	for _, key := range finished {
		as.remove(key)
	}

	if len(as.active) > 0 {
		as.timer.Arm(frameInterval)
	} else {
		as.timer.Disarm()
	}
}
