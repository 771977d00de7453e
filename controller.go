package strata

import (
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tanema/gween/ease"
)

// LayoutMode selects how the controller arranges application surfaces.
type LayoutMode int

const (
	// LayoutTiling arranges up to eight surfaces in a 4x2 grid of
	// quarter-width, half-height tiles.
	LayoutTiling LayoutMode = iota
	// LayoutSideBySide shows the first two surfaces as screen halves and
	// hides the rest.
	LayoutSideBySide
	// LayoutFullscreen stretches every surface over the whole application
	// area.
	LayoutFullscreen
	// LayoutRandom scatters surfaces at random positions.
	LayoutRandom
)

const (
	panelButtonSize   = 48
	panelButtonStride = 60
	panelMargin       = 15
	launcherMinSpace  = 10

	// workspaceSwipeTime is the nominal duration of the post-release
	// workspace slide; the handoff velocity is derived from it.
	workspaceSwipeTime = 500.0 // ms
)

// Controller is the reference shell policy built on the scene core. It owns
// four layers per the classic desktop split (background and panel on a base
// layer, applications above, a launcher workspace overlay on top), applies
// layout modes to application surfaces, fades the workspace overlay in and
// out, and pages the workspace with grab-and-flick swipes.
//
// It drives the first screen; additional screens mirror the base layer only.
type Controller struct {
	scene *Scene
	anims *AnimationSet
	cfg   Config
	log   *log.Logger

	baseLayer        *Layer
	appLayer         *Layer
	wsBackground     *Layer
	wsLayer          *Layer
	screenW, screenH int

	mode LayoutMode

	// Surfaces owned by the UI client; layouts skip them.
	uiSurfaces map[SurfaceID]struct{}
	// Launcher icon surfaces, by id, with their workspace page.
	launchers map[SurfaceID]int

	workspaceCount int
	currentPage    int

	homeVisible bool
	fade        *Animation

	grab      *MoveGrab
	onGrabEnd func(page int, moved bool)

	configuredHandle ObserverHandle
	removedHandle    ObserverHandle
}

// NewController builds the shell policy over scene, animating through anims.
// The scene must have at least one screen.
func NewController(scene *Scene, anims *AnimationSet, cfg Config) (*Controller, error) {
	if scene == nil || anims == nil {
		return nil, invalidArgf("NewController: nil scene or animation set")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	scr := scene.Screen(0)
	if scr == nil {
		return nil, invalidArgf("NewController: scene has no screens")
	}
	w, h := scr.Resolution()
	workArea := h - cfg.PanelHeight

	c := &Controller{
		scene:      scene,
		anims:      anims,
		cfg:        cfg,
		log:        scene.logger(),
		screenW:    w,
		screenH:    h,
		uiSurfaces: make(map[SurfaceID]struct{}),
		launchers:  make(map[SurfaceID]int),
	}

	var err error
	if c.baseLayer, err = scene.CreateLayer(cfg.BaseLayerID, w, h); err != nil {
		return nil, err
	}
	if c.appLayer, err = scene.CreateLayer(cfg.ApplicationLayerID, w, workArea); err != nil {
		return nil, err
	}
	if c.wsBackground, err = scene.CreateLayer(cfg.WorkspaceBackgroundLayerID, w, workArea); err != nil {
		return nil, err
	}
	if c.wsLayer, err = scene.CreateLayer(cfg.WorkspaceLayerID, w, workArea); err != nil {
		return nil, err
	}

	c.baseLayer.SetVisibility(true)
	c.appLayer.SetVisibility(true)
	// The workspace overlay stays hidden until the home toggle fades it in.
	c.wsBackground.SetVisibility(false)
	c.wsBackground.SetOpacity(0)
	c.wsLayer.SetVisibility(false)
	c.wsLayer.SetOpacity(0)

	scr.SetRenderOrder([]LayerID{
		cfg.BaseLayerID,
		cfg.ApplicationLayerID,
		cfg.WorkspaceBackgroundLayerID,
		cfg.WorkspaceLayerID,
	})
	for _, extra := range scene.Screens()[1:] {
		extra.SetRenderOrder([]LayerID{cfg.BaseLayerID})
	}

	for _, l := range cfg.Launchers {
		c.launchers[l.IconID] = l.Workspace
		c.uiSurfaces[l.IconID] = struct{}{}
		if l.Workspace+1 > c.workspaceCount {
			c.workspaceCount = l.Workspace + 1
		}
	}
	if c.workspaceCount == 0 {
		c.workspaceCount = 1
	}

	c.configuredHandle = scene.OnSurfaceConfigured(c.surfaceConfigured)
	c.removedHandle = scene.OnSurfaceRemoved(c.surfaceRemoved)

	scene.Commit()
	return c, nil
}

// Close detaches the controller from the scene's lifecycle channels.
func (c *Controller) Close() {
	c.configuredHandle.Remove()
	c.removedHandle.Remove()
}

// Mode returns the active layout mode.
func (c *Controller) Mode() LayoutMode {
	return c.mode
}

// CurrentWorkspace returns the committed workspace page.
func (c *Controller) CurrentWorkspace() int {
	return c.currentPage
}

// WorkspaceCount returns the number of launcher pages.
func (c *Controller) WorkspaceCount() int {
	return c.workspaceCount
}

// HomeVisible reports whether the workspace overlay is shown or fading in.
func (c *Controller) HomeVisible() bool {
	return c.homeVisible
}

// IsWorkspaceSurface reports whether id is a launcher icon on the workspace.
func (c *Controller) IsWorkspaceSurface(id SurfaceID) bool {
	_, ok := c.launchers[id]
	return ok
}

// SetBackground assigns the wallpaper surface, stretched over the whole
// screen at the bottom of the base layer.
func (c *Controller) SetBackground(id SurfaceID) error {
	s := c.scene.Surface(id)
	if s == nil {
		return invalidArgf("SetBackground: unknown surface %d", id)
	}
	c.uiSurfaces[id] = struct{}{}
	s.SetVisibility(true)
	s.SetDestRect(Rect{Width: c.screenW, Height: c.screenH})
	c.baseLayer.AddSurface(s)
	c.scene.Commit()
	return nil
}

// SetPanel assigns the panel surface, pinned to the bottom edge of the base
// layer at the configured panel height.
func (c *Controller) SetPanel(id SurfaceID) error {
	s := c.scene.Surface(id)
	if s == nil {
		return invalidArgf("SetPanel: unknown surface %d", id)
	}
	c.uiSurfaces[id] = struct{}{}
	s.SetVisibility(true)
	s.SetDestRect(Rect{
		Y:      c.screenH - c.cfg.PanelHeight,
		Width:  c.screenW,
		Height: c.cfg.PanelHeight,
	})
	c.baseLayer.AddSurface(s)
	c.scene.Commit()
	return nil
}

// SetButton assigns the n-th panel button surface, laid out left to right
// along the panel.
func (c *Controller) SetButton(id SurfaceID, n int) error {
	s := c.scene.Surface(id)
	if s == nil {
		return invalidArgf("SetButton: unknown surface %d", id)
	}
	if n < 0 {
		return invalidArgf("SetButton: negative slot %d", n)
	}
	c.uiSurfaces[id] = struct{}{}
	s.SetVisibility(true)
	s.SetDestRect(Rect{
		X:      panelButtonStride*n + panelMargin,
		Y:      c.screenH - c.cfg.PanelHeight + (c.cfg.PanelHeight-panelButtonSize)/2,
		Width:  panelButtonSize,
		Height: panelButtonSize,
	})
	c.baseLayer.AddSurface(s)
	c.scene.Commit()
	return nil
}

// SetHomeButton assigns the home toggle surface at the right edge of the
// panel.
func (c *Controller) SetHomeButton(id SurfaceID) error {
	s := c.scene.Surface(id)
	if s == nil {
		return invalidArgf("SetHomeButton: unknown surface %d", id)
	}
	c.uiSurfaces[id] = struct{}{}
	s.SetVisibility(true)
	s.SetDestRect(Rect{
		X:      c.screenW - panelButtonSize - panelMargin,
		Y:      c.screenH - c.cfg.PanelHeight + (c.cfg.PanelHeight-panelButtonSize)/2,
		Width:  panelButtonSize,
		Height: panelButtonSize,
	})
	c.baseLayer.AddSurface(s)
	c.scene.Commit()
	return nil
}

// SetWorkspaceBackground assigns the surface dimming the applications while
// the workspace overlay is up.
func (c *Controller) SetWorkspaceBackground(id SurfaceID) error {
	s := c.scene.Surface(id)
	if s == nil {
		return invalidArgf("SetWorkspaceBackground: unknown surface %d", id)
	}
	c.uiSurfaces[id] = struct{}{}
	s.SetVisibility(true)
	s.SetDestRect(Rect{Width: c.screenW, Height: c.screenH - c.cfg.PanelHeight})
	c.wsBackground.AddSurface(s)
	c.scene.Commit()
	return nil
}

// UIReady finalizes the UI: launcher icons are laid out on their workspace
// pages in a grid sized by iconSize, and the initial layout mode is applied
// to whatever application surfaces already exist.
func (c *Controller) UIReady(iconSize int) error {
	if iconSize <= 0 {
		return invalidArgf("UIReady: icon size %d", iconSize)
	}
	workArea := c.screenH - c.cfg.PanelHeight

	cols := c.screenW / (iconSize + launcherMinSpace)
	if cols < 1 {
		cols = 1
	}
	space := (c.screenW - cols*iconSize) / (cols + 1)

	// Per-page running cell index.
	cell := make(map[int]int)
	for _, launcher := range c.cfg.Launchers {
		s := c.scene.Surface(launcher.IconID)
		if s == nil {
			c.log.Warn("launcher icon not created yet", "surface", launcher.IconID)
			continue
		}
		i := cell[launcher.Workspace]
		cell[launcher.Workspace] = i + 1
		col := i % cols
		row := i / cols
		s.SetVisibility(true)
		s.SetDestRect(Rect{
			X:      launcher.Workspace*c.screenW + space + col*(iconSize+space),
			Y:      space + row*(iconSize+space),
			Width:  iconSize,
			Height: iconSize,
		})
		c.wsLayer.AddSurface(s)
	}

	c.wsLayer.SetDestRect(Rect{Width: c.screenW, Height: workArea})
	c.relayout()
	c.scene.Commit()
	c.log.Info("ui ready", "workspaces", c.workspaceCount, "icon", iconSize)
	return nil
}

// SwitchMode changes the layout mode and rearranges application surfaces.
func (c *Controller) SwitchMode(mode LayoutMode) error {
	if mode < LayoutTiling || mode > LayoutRandom {
		return invalidArgf("SwitchMode: unknown mode %d", mode)
	}
	c.mode = mode
	c.relayout()
	c.scene.Commit()
	return nil
}

// ToggleHome shows or hides the workspace overlay with a fade. A toggle
// mid-fade preempts the running fade and reverses from the current opacity.
func (c *Controller) ToggleHome() {
	c.Home(!c.homeVisible)
}

// Home shows (true) or hides (false) the workspace overlay.
func (c *Controller) Home(show bool) {
	if show == c.homeVisible && (c.fade == nil || c.fade.Done()) {
		return
	}
	c.homeVisible = show

	if show {
		c.wsBackground.SetVisibility(true)
		c.wsLayer.SetVisibility(true)
		c.scene.Commit()
		c.fade = c.startFade(c.wsBackground, true, nil)
		c.startFade(c.wsLayer, true, nil)
		return
	}
	c.fade = c.startFade(c.wsBackground, false, nil)
	c.startFade(c.wsLayer, false, func(*Animation) {
		// Only a completed fade-out hides the overlay; a preempting
		// fade-in must leave it visible.
		if !c.homeVisible {
			c.wsBackground.SetVisibility(false)
			c.wsLayer.SetVisibility(false)
			c.scene.Commit()
		}
	})
}

func (c *Controller) startFade(l *Layer, in bool, onDestroy func(*Animation)) *Animation {
	if c.cfg.FadeModel == "tween" {
		target := 0.0
		if in {
			target = 1.0
		}
		d := time.Duration(c.cfg.TransitionDurationMS) * time.Millisecond
		a, _ := c.anims.StartOpacityTween(l, target, d, ease.OutCubic, onDestroy)
		return a
	}
	a, _ := c.anims.StartFade(l, in, onDestroy)
	return a
}

// OnWorkspaceEndControl installs the callback fired when a workspace swipe
// finishes, with the destination page and whether the pointer actually moved.
func (c *Controller) OnWorkspaceEndControl(fn func(page int, moved bool)) {
	c.onGrabEnd = fn
}

// WorkspaceControlBegin starts a workspace swipe at device position (x, y).
// Both pointer and touch swipes route here. Fails if the overlay is hidden or
// there is only one page.
func (c *Controller) WorkspaceControlBegin(x, y Fixed, t time.Duration) error {
	if !c.homeVisible {
		return invalidArgf("workspace control: overlay hidden")
	}
	if c.workspaceCount <= 1 {
		return invalidArgf("workspace control: single page")
	}
	if c.grab != nil {
		return invalidArgf("workspace control: grab already active")
	}
	// A swipe preempts a pending slide.
	if a := c.anims.active[animKey{layer: c.wsLayer.id, prop: NotifyPosition}]; a != nil {
		a.Stop()
	}
	g, err := NewMoveGrab(c.wsLayer, x, y, t)
	if err != nil {
		return err
	}
	g.LockY = true
	// The workspace can only slide between the first and last page.
	span := (c.workspaceCount - 1) * c.screenW
	_, ly := c.wsLayer.Position()
	g.Bounds = &Rect{X: -span, Y: ly, Width: span}
	c.grab = g
	return nil
}

// WorkspaceControlMotion feeds one motion sample into the active swipe.
func (c *Controller) WorkspaceControlMotion(x, y Fixed, t time.Duration) {
	if c.grab == nil {
		return
	}
	c.grab.Motion(x, y, t)
	c.scene.Commit()
}

// WorkspaceControlEnd releases the swipe and slides the workspace to the
// chosen page: a flick advances one page in the swipe direction, a slow
// release snaps to the nearest page. The slide runs at uniform speed derived
// from the remaining distance, at least one pixel per millisecond.
func (c *Controller) WorkspaceControlEnd(t time.Duration) {
	g := c.grab
	if g == nil {
		return
	}
	c.grab = nil

	orgX, _ := c.wsLayer.Position()
	page := (-orgX + c.screenW/2) / c.screenW
	if g.Flick(t) {
		vx, _ := g.Velocity()
		if vx > 0 {
			page--
		} else {
			page++
		}
	}
	if page < 0 {
		page = 0
	}
	if page > c.workspaceCount-1 {
		page = c.workspaceCount - 1
	}

	destX := -page * c.screenW
	dist := destX - orgX
	if dist < 0 {
		dist = -dist
	}
	v := float64(dist) / workspaceSwipeTime
	if v < 1.0 {
		v = 1.0
	}

	moved := g.Moved()
	_, y := c.wsLayer.Position()
	c.anims.StartMove(c.wsLayer, destX, y, v, v, func(*Animation) {
		c.currentPage = page
		if c.onGrabEnd != nil {
			c.onGrabEnd(page, moved)
		}
	})
}

// surfaceConfigured folds freshly sized application surfaces into the
// application layer and re-runs the layout. UI surfaces are the client's
// business and are left alone.
func (c *Controller) surfaceConfigured(s *Surface) {
	if _, ui := c.uiSurfaces[s.ID()]; ui {
		return
	}
	if indexOfSurface(c.appLayer.pendingOrder, s.ID()) < 0 {
		c.appLayer.AddSurface(s)
		c.log.Debug("application surface added", "id", s.ID())
	}
	c.relayout()
	c.scene.Commit()
}

func (c *Controller) surfaceRemoved(s *Surface) {
	if _, ui := c.uiSurfaces[s.ID()]; ui {
		delete(c.uiSurfaces, s.ID())
		delete(c.launchers, s.ID())
		return
	}
	c.relayout()
	c.scene.Commit()
}

// relayout applies the active mode to the application surfaces, in layer
// order. Changes are staged only; callers commit.
func (c *Controller) relayout() {
	apps := make([]*Surface, 0, len(c.appLayer.pendingOrder))
	for _, id := range c.appLayer.pendingOrder {
		if s := c.scene.Surface(id); s != nil {
			apps = append(apps, s)
		}
	}
	if len(apps) == 0 {
		return
	}
	workArea := c.screenH - c.cfg.PanelHeight

	switch c.mode {
	case LayoutTiling:
		tileW := c.screenW / 4
		tileH := workArea / 2
		for i, s := range apps {
			if i >= 8 {
				s.SetVisibility(false)
				continue
			}
			s.SetVisibility(true)
			s.SetDestRect(Rect{
				X:      (i % 4) * tileW,
				Y:      (i / 4) * tileH,
				Width:  tileW,
				Height: tileH,
			})
		}

	case LayoutSideBySide:
		half := c.screenW / 2
		for i, s := range apps {
			if i >= 2 {
				s.SetVisibility(false)
				continue
			}
			s.SetVisibility(true)
			s.SetDestRect(Rect{X: i * half, Width: half, Height: workArea})
		}

	case LayoutFullscreen:
		for _, s := range apps {
			s.SetVisibility(true)
			s.SetDestRect(Rect{Width: c.screenW, Height: workArea})
		}

	case LayoutRandom:
		for _, s := range apps {
			w, h := s.ContentSize()
			if w > c.screenW {
				w = c.screenW
			}
			if h > workArea {
				h = workArea
			}
			s.SetVisibility(true)
			s.SetDestRect(Rect{
				X:      rand.IntN(max(c.screenW-w, 1)),
				Y:      rand.IntN(max(workArea-h, 1)),
				Width:  w,
				Height: h,
			})
		}
	}
}
