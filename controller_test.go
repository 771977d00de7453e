package strata

import (
	"math"
	"testing"
	"time"
)

func newTestController(t *testing.T, cfg Config) (*Controller, *Scene, *AnimationSet, *PollTimer, *testClock) {
	t.Helper()
	sc := NewScene(StaticOutput{W: 1024, H: 768})
	clock := &testClock{now: time.Unix(1000, 0)}
	timer := NewPollTimer(clock.Now)
	as := NewAnimationSet(sc, timer, clock.Now)
	c, err := NewController(sc, as, cfg)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return c, sc, as, timer, clock
}

// createAppSurface registers a surface and reports its size configured, which
// is what folds it into the application layer.
func createAppSurface(t *testing.T, sc *Scene, id SurfaceID, w, h int) *Surface {
	t.Helper()
	s, err := sc.CreateSurface(id, w, h)
	if err != nil {
		t.Fatalf("CreateSurface %d: %v", id, err)
	}
	sc.AttachContent(id, "buf", w, h)
	if err := sc.ConfigureSurface(id, w, h); err != nil {
		t.Fatalf("ConfigureSurface %d: %v", id, err)
	}
	return s
}

func TestControllerLayerSetup(t *testing.T) {
	cfg := DefaultConfig()
	_, sc, _, _, _ := newTestController(t, cfg)

	order := sc.Screen(0).LayerOrder()
	want := []LayerID{1000, 4000, 2000, 3000}
	if len(order) != len(want) {
		t.Fatalf("LayerOrder = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("LayerOrder = %v, want %v", order, want)
		}
	}

	if !sc.Layer(1000).Visibility() || !sc.Layer(4000).Visibility() {
		t.Error("base and application layers should be visible")
	}
	if sc.Layer(2000).Visibility() || sc.Layer(3000).Visibility() {
		t.Error("workspace layers should start hidden")
	}

	// Application area excludes the panel.
	if h := sc.Layer(4000).DestRect().Height; h != 768-cfg.PanelHeight {
		t.Errorf("application layer height = %d, want %d", h, 768-cfg.PanelHeight)
	}
}

func TestTilingLayout(t *testing.T) {
	c, sc, _, _, _ := newTestController(t, DefaultConfig())

	createAppSurface(t, sc, 10, 400, 300)
	createAppSurface(t, sc, 11, 400, 300)

	if err := c.SwitchMode(LayoutTiling); err != nil {
		t.Fatalf("SwitchMode: %v", err)
	}

	workArea := 768 - DefaultConfig().PanelHeight
	wantW, wantH := 1024/4, workArea/2

	r := sc.Surface(10).DestRect()
	if r != (Rect{X: 0, Y: 0, Width: wantW, Height: wantH}) {
		t.Errorf("surface 10 dest = %+v", r)
	}
	r = sc.Surface(11).DestRect()
	if r != (Rect{X: wantW, Y: 0, Width: wantW, Height: wantH}) {
		t.Errorf("surface 11 dest = %+v", r)
	}
}

func TestSideBySideHidesExtras(t *testing.T) {
	c, sc, _, _, _ := newTestController(t, DefaultConfig())

	createAppSurface(t, sc, 10, 400, 300)
	createAppSurface(t, sc, 11, 400, 300)
	createAppSurface(t, sc, 12, 400, 300)

	c.SwitchMode(LayoutSideBySide)

	workArea := 768 - DefaultConfig().PanelHeight
	if r := sc.Surface(10).DestRect(); r != (Rect{Width: 512, Height: workArea}) {
		t.Errorf("surface 10 dest = %+v", r)
	}
	if r := sc.Surface(11).DestRect(); r != (Rect{X: 512, Width: 512, Height: workArea}) {
		t.Errorf("surface 11 dest = %+v", r)
	}
	if sc.Surface(12).Visibility() {
		t.Error("third surface should be hidden in side-by-side")
	}
}

func TestFullscreenLayout(t *testing.T) {
	c, sc, _, _, _ := newTestController(t, DefaultConfig())
	createAppSurface(t, sc, 10, 400, 300)

	c.SwitchMode(LayoutFullscreen)

	workArea := 768 - DefaultConfig().PanelHeight
	if r := sc.Surface(10).DestRect(); r != (Rect{Width: 1024, Height: workArea}) {
		t.Errorf("dest = %+v, want fullscreen", r)
	}
}

func TestUISurfacesSkippedByLayout(t *testing.T) {
	c, sc, _, _, _ := newTestController(t, DefaultConfig())

	bg, _ := sc.CreateSurface(1, 1024, 768)
	sc.AttachContent(1, "buf", 1024, 768)
	if err := c.SetBackground(1); err != nil {
		t.Fatalf("SetBackground: %v", err)
	}

	createAppSurface(t, sc, 10, 400, 300)
	c.SwitchMode(LayoutTiling)

	if r := bg.DestRect(); r != (Rect{Width: 1024, Height: 768}) {
		t.Errorf("background dest = %+v, layout must not touch it", r)
	}
	order := sc.Layer(DefaultConfig().ApplicationLayerID).SurfaceOrder()
	if len(order) != 1 || order[0] != 10 {
		t.Errorf("application layer order = %v, want [10]", order)
	}
}

func TestPanelAndButtons(t *testing.T) {
	cfg := DefaultConfig()
	c, sc, _, _, _ := newTestController(t, cfg)

	sc.CreateSurface(2, 1024, cfg.PanelHeight)
	if err := c.SetPanel(2); err != nil {
		t.Fatalf("SetPanel: %v", err)
	}
	if r := sc.Surface(2).DestRect(); r.Y != 768-cfg.PanelHeight || r.Height != cfg.PanelHeight {
		t.Errorf("panel dest = %+v", r)
	}

	sc.CreateSurface(3, 48, 48)
	c.SetButton(3, 2)
	if r := sc.Surface(3).DestRect(); r.X != panelButtonStride*2+panelMargin {
		t.Errorf("button 2 X = %d, want %d", r.X, panelButtonStride*2+panelMargin)
	}

	sc.CreateSurface(4, 48, 48)
	c.SetHomeButton(4)
	if r := sc.Surface(4).DestRect(); r.X != 1024-panelButtonSize-panelMargin {
		t.Errorf("home button X = %d", r.X)
	}
}

func launcherConfig() Config {
	cfg := DefaultConfig()
	cfg.Launchers = []Launcher{
		{IconID: 100, Workspace: 0, Path: "/usr/bin/term"},
		{IconID: 101, Workspace: 0, Path: "/usr/bin/files"},
		{IconID: 102, Workspace: 1, Path: "/usr/bin/browser"},
	}
	return cfg
}

func TestUIReadyLaysOutLaunchers(t *testing.T) {
	c, sc, _, _, _ := newTestController(t, launcherConfig())

	for _, id := range []SurfaceID{100, 101, 102} {
		sc.CreateSurface(id, 64, 64)
		sc.AttachContent(id, "icon", 64, 64)
	}
	if err := c.UIReady(64); err != nil {
		t.Fatalf("UIReady: %v", err)
	}

	if c.WorkspaceCount() != 2 {
		t.Fatalf("WorkspaceCount = %d, want 2", c.WorkspaceCount())
	}
	if !c.IsWorkspaceSurface(100) || c.IsWorkspaceSurface(10) {
		t.Error("IsWorkspaceSurface misclassifies")
	}

	cols := 1024 / (64 + launcherMinSpace)
	space := (1024 - cols*64) / (cols + 1)

	if r := sc.Surface(100).DestRect(); r.X != space || r.Y != space {
		t.Errorf("icon 100 at (%d, %d), want (%d, %d)", r.X, r.Y, space, space)
	}
	if r := sc.Surface(101).DestRect(); r.X != space+64+space {
		t.Errorf("icon 101 X = %d, want %d", r.X, space+64+space)
	}
	// Second page starts one screen width to the right.
	if r := sc.Surface(102).DestRect(); r.X != 1024+space {
		t.Errorf("icon 102 X = %d, want %d", r.X, 1024+space)
	}
}

func TestHomeFadeInOut(t *testing.T) {
	c, sc, as, timer, clock := newTestController(t, launcherConfig())

	c.Home(true)
	ws := sc.Layer(DefaultConfig().WorkspaceLayerID)
	bg := sc.Layer(DefaultConfig().WorkspaceBackgroundLayerID)

	if !ws.Visibility() || !bg.Visibility() {
		t.Fatal("overlay not visible at fade-in start")
	}
	run(t, as, timer, clock, 5*time.Second)
	if math.Abs(ws.Opacity()-1) > springEpsilon {
		t.Errorf("workspace opacity = %v after fade in, want 1", ws.Opacity())
	}

	c.Home(false)
	run(t, as, timer, clock, 5*time.Second)
	if ws.Visibility() || bg.Visibility() {
		t.Error("overlay still visible after fade out")
	}
	if math.Abs(ws.Opacity()) > springEpsilon {
		t.Errorf("workspace opacity = %v after fade out, want 0", ws.Opacity())
	}
}

func TestHomeToggleMidFadeReverses(t *testing.T) {
	c, sc, as, timer, clock := newTestController(t, launcherConfig())
	ws := sc.Layer(DefaultConfig().WorkspaceLayerID)

	c.Home(true)
	// A few frames in, reverse.
	for i := 0; i < 2; i++ {
		clock.Advance(frameInterval)
		if timer.Expired() {
			as.Tick()
		}
	}
	mid := ws.Opacity()
	if mid <= 0 || mid >= 1 {
		t.Fatalf("mid-fade opacity = %v, want interior value", mid)
	}

	c.Home(false)
	run(t, as, timer, clock, 5*time.Second)
	if ws.Visibility() {
		t.Error("overlay visible after reversed fade settled")
	}
}

func TestTweenFadeModel(t *testing.T) {
	cfg := launcherConfig()
	cfg.FadeModel = "tween"
	c, sc, as, timer, clock := newTestController(t, cfg)
	ws := sc.Layer(cfg.WorkspaceLayerID)

	c.Home(true)
	run(t, as, timer, clock, 5*time.Second)
	if math.Abs(ws.Opacity()-1) > 1e-6 {
		t.Errorf("opacity = %v after tween fade, want 1", ws.Opacity())
	}
}

func TestWorkspaceSwipeFlickAdvancesPage(t *testing.T) {
	c, sc, as, timer, clock := newTestController(t, launcherConfig())
	ws := sc.Layer(DefaultConfig().WorkspaceLayerID)

	c.Home(true)
	run(t, as, timer, clock, 5*time.Second)

	var endPage int
	var endMoved bool
	ends := 0
	c.OnWorkspaceEndControl(func(page int, moved bool) {
		endPage, endMoved = page, moved
		ends++
	})

	if err := c.WorkspaceControlBegin(FixedFromInt(512), FixedFromInt(300), 0); err != nil {
		t.Fatalf("WorkspaceControlBegin: %v", err)
	}
	// Swipe left at roughly 1 px/ms for 300 ms.
	for i := 1; i <= 6; i++ {
		c.WorkspaceControlMotion(FixedFromInt(512-52*i), FixedFromInt(300), time.Duration(i)*50*time.Millisecond)
	}
	c.WorkspaceControlEnd(300 * time.Millisecond)

	run(t, as, timer, clock, 5*time.Second)

	if ends != 1 || endPage != 1 || !endMoved {
		t.Errorf("end control: page = %d, moved = %v, calls = %d; want 1, true, 1", endPage, endMoved, ends)
	}
	if c.CurrentWorkspace() != 1 {
		t.Errorf("CurrentWorkspace = %d, want 1", c.CurrentWorkspace())
	}
	if x, _ := ws.Position(); x != -1024 {
		t.Errorf("workspace X = %d, want -1024", x)
	}
}

func TestWorkspaceSlowReleaseSnapsToNearestPage(t *testing.T) {
	c, sc, as, timer, clock := newTestController(t, launcherConfig())
	ws := sc.Layer(DefaultConfig().WorkspaceLayerID)

	c.Home(true)
	run(t, as, timer, clock, 5*time.Second)

	// Drag 300 px left over 600 ms, then release: under the halfway point,
	// so it snaps back to page 0.
	c.WorkspaceControlBegin(FixedFromInt(512), FixedFromInt(300), 0)
	for i := 1; i <= 6; i++ {
		c.WorkspaceControlMotion(FixedFromInt(512-50*i), FixedFromInt(300), time.Duration(i)*100*time.Millisecond)
	}
	c.WorkspaceControlEnd(600 * time.Millisecond)

	run(t, as, timer, clock, 5*time.Second)

	if c.CurrentWorkspace() != 0 {
		t.Errorf("CurrentWorkspace = %d, want 0", c.CurrentWorkspace())
	}
	if x, _ := ws.Position(); x != 0 {
		t.Errorf("workspace X = %d, want 0", x)
	}
}

func TestWorkspaceControlRequiresOverlay(t *testing.T) {
	c, _, _, _, _ := newTestController(t, launcherConfig())

	if err := c.WorkspaceControlBegin(0, 0, 0); err == nil {
		t.Error("WorkspaceControlBegin succeeded with overlay hidden")
	}
}
