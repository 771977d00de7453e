package strata

import (
	"testing"
	"time"
)

func TestFixedRoundTrip(t *testing.T) {
	if got := FixedFromInt(-12).Int(); got != -12 {
		t.Errorf("FixedFromInt(-12).Int() = %d", got)
	}
	if got := FixedFromFloat(1.5).Float(); got != 1.5 {
		t.Errorf("FixedFromFloat(1.5).Float() = %v", got)
	}
	if FixedFromInt(1) != 256 {
		t.Errorf("FixedFromInt(1) = %d, want 256", FixedFromInt(1))
	}
}

func grabLayer(t *testing.T) (*Scene, *Layer) {
	t.Helper()
	sc := NewScene(StaticOutput{W: 1024, H: 768})
	l, err := sc.CreateLayer(1, 1024, 768)
	if err != nil {
		t.Fatalf("CreateLayer: %v", err)
	}
	l.SetVisibility(true)
	sc.Commit()
	return sc, l
}

func TestGrabFollowsDeviceWithOffset(t *testing.T) {
	sc, l := grabLayer(t)
	l.SetPosition(100, 50)
	sc.Commit()

	g, err := NewMoveGrab(l, FixedFromInt(500), FixedFromInt(300), 0)
	if err != nil {
		t.Fatalf("NewMoveGrab: %v", err)
	}

	g.Motion(FixedFromInt(520), FixedFromInt(310), 16*time.Millisecond)
	sc.Commit()

	if x, y := l.Position(); x != 120 || y != 60 {
		t.Errorf("Position = (%d, %d), want (120, 60)", x, y)
	}
	if !g.Moved() {
		t.Error("Moved() = false after displacement")
	}
}

func TestGrabLockYFreezesVerticalAxis(t *testing.T) {
	sc, l := grabLayer(t)

	g, _ := NewMoveGrab(l, FixedFromInt(500), FixedFromInt(300), 0)
	g.LockY = true

	g.Motion(FixedFromInt(400), FixedFromInt(500), 16*time.Millisecond)
	sc.Commit()

	if x, y := l.Position(); x != -100 || y != 0 {
		t.Errorf("Position = (%d, %d), want (-100, 0)", x, y)
	}
}

func TestGrabVelocityTracking(t *testing.T) {
	_, l := grabLayer(t)
	g, _ := NewMoveGrab(l, FixedFromInt(500), 0, 0)

	// 50 px over 50 ms: 1 px/ms.
	g.Motion(FixedFromInt(550), 0, 50*time.Millisecond)
	vx, _ := g.Velocity()
	if vx != 1.0 {
		t.Errorf("vx = %v, want 1", vx)
	}

	// A stale sample resets the estimate.
	g.Motion(FixedFromInt(560), 0, 350*time.Millisecond)
	if vx, _ = g.Velocity(); vx != 0 {
		t.Errorf("vx = %v after stale gap, want 0", vx)
	}
}

func TestFlickClassification(t *testing.T) {
	_, l := grabLayer(t)

	// Fast short swipe: 0.8 px/ms released at 300 ms.
	g, _ := NewMoveGrab(l, FixedFromInt(500), 0, 0)
	for i := 1; i <= 6; i++ {
		g.Motion(FixedFromInt(500-40*i), 0, time.Duration(i)*50*time.Millisecond)
	}
	if !g.Flick(300 * time.Millisecond) {
		t.Error("fast short swipe did not classify as flick")
	}

	// Same speed but held past the duration cutoff.
	g, _ = NewMoveGrab(l, FixedFromInt(500), 0, 0)
	for i := 1; i <= 10; i++ {
		g.Motion(FixedFromInt(500-40*i), 0, time.Duration(i)*50*time.Millisecond)
	}
	if g.Flick(500 * time.Millisecond) {
		t.Error("long grab classified as flick")
	}

	// Fast drag that stopped before release.
	g, _ = NewMoveGrab(l, FixedFromInt(500), 0, 0)
	g.Motion(FixedFromInt(400), 0, 100*time.Millisecond)
	if g.Flick(350 * time.Millisecond) {
		t.Error("stopped drag classified as flick")
	}

	// Short but slow.
	g, _ = NewMoveGrab(l, FixedFromInt(500), 0, 0)
	g.Motion(FixedFromInt(480), 0, 100*time.Millisecond)
	if g.Flick(150 * time.Millisecond) {
		t.Error("slow swipe classified as flick")
	}
}

func TestGrabBoundsClampPosition(t *testing.T) {
	sc, l := grabLayer(t)

	g, _ := NewMoveGrab(l, FixedFromInt(500), 0, 0)
	g.Bounds = &Rect{X: -200, Width: 200}

	g.Motion(FixedFromInt(0), 0, 16*time.Millisecond)
	sc.Commit()
	if x, _ := l.Position(); x != -200 {
		t.Errorf("X = %d past the lower bound, want -200", x)
	}

	g.Motion(FixedFromInt(900), 0, 32*time.Millisecond)
	sc.Commit()
	if x, _ := l.Position(); x != 0 {
		t.Errorf("X = %d past the upper bound, want 0", x)
	}
}

func TestPointerGrabEndsOnButtonUp(t *testing.T) {
	sc, l := grabLayer(t)
	g, _ := NewMoveGrab(l, FixedFromInt(500), 0, 0)

	ends := 0
	p := NewPointerGrab(g, func(_ *MoveGrab, _ time.Duration) { ends++ })

	p.Motion(FixedFromInt(450), 0, 50*time.Millisecond)
	sc.Commit()
	if x, _ := l.Position(); x != -50 {
		t.Errorf("X = %d, want -50", x)
	}

	p.ButtonUp(100 * time.Millisecond)
	p.ButtonUp(120 * time.Millisecond) // redundant release

	if ends != 1 {
		t.Errorf("end fired %d times, want 1", ends)
	}

	// Motion after release is dropped.
	p.Motion(FixedFromInt(300), 0, 150*time.Millisecond)
	sc.Commit()
	if x, _ := l.Position(); x != -50 {
		t.Errorf("X = %d after release, want -50", x)
	}
}

func TestTouchGrabPrimaryContactDrivesMotion(t *testing.T) {
	sc, l := grabLayer(t)
	g, _ := NewMoveGrab(l, FixedFromInt(500), 0, 0)

	ends := 0
	tg := NewTouchGrab(g, func(_ *MoveGrab, _ time.Duration) { ends++ })
	tg.Down(1, 10*time.Millisecond)

	// Only contact 0 moves the layer.
	tg.Motion(1, FixedFromInt(900), 0, 20*time.Millisecond)
	tg.Motion(0, FixedFromInt(450), 0, 30*time.Millisecond)
	sc.Commit()
	if x, _ := l.Position(); x != -50 {
		t.Errorf("X = %d, want -50", x)
	}

	// The grab outlives the primary contact until every contact is up.
	tg.Up(0, 40*time.Millisecond)
	if ends != 0 {
		t.Fatal("grab ended with a contact still down")
	}
	tg.Up(1, 50*time.Millisecond)
	if ends != 1 {
		t.Errorf("end fired %d times, want 1", ends)
	}
}
