package strata

import (
	"io"

	"github.com/charmbracelet/log"
)

// ObserverHandle identifies one observer subscription. Remove unsubscribes;
// removing twice, or removing a zero handle, is harmless.
type ObserverHandle struct {
	remove func()
}

// Remove unsubscribes the observer.
func (h ObserverHandle) Remove() {
	if h.remove != nil {
		h.remove()
	}
}

// SurfaceFunc observes surface lifecycle events.
type SurfaceFunc func(s *Surface)

// LayerFunc observes layer lifecycle events.
type LayerFunc func(l *Layer)

type observerEntry[T any] struct {
	id uint32
	fn T
}

// observerList is an ordered observer registry with id-based removal, shared
// by the scene's lifecycle channels.
type observerList[T any] struct {
	entries []observerEntry[T]
	nextID  uint32
}

func (ol *observerList[T]) add(fn T) ObserverHandle {
	ol.nextID++
	id := ol.nextID
	ol.entries = append(ol.entries, observerEntry[T]{id: id, fn: fn})
	return ObserverHandle{remove: func() {
		for i := range ol.entries {
			if ol.entries[i].id == id {
				copy(ol.entries[i:], ol.entries[i+1:])
				ol.entries[len(ol.entries)-1] = observerEntry[T]{}
				ol.entries = ol.entries[:len(ol.entries)-1]
				return
			}
		}
	}}
}

// snapshot copies the current subscriber functions so dispatch survives
// mid-iteration subscription changes.
func (ol *observerList[T]) snapshot() []T {
	if len(ol.entries) == 0 {
		return nil
	}
	fns := make([]T, len(ol.entries))
	for i, e := range ol.entries {
		fns[i] = e.fn
	}
	return fns
}

// Scene is the root context of the compositing state. It owns the surface and
// layer tables, one screen per output, the lifecycle observer channels, and
// the commit engine. A Scene is not safe for concurrent use; callers
// serialize access the same way a display server serializes its event loop.
type Scene struct {
	log *log.Logger

	surfaces map[SurfaceID]*Surface
	layers   map[LayerID]*Layer
	screens  []*Screen

	surfaceCreated    observerList[SurfaceFunc]
	surfaceRemoved    observerList[SurfaceFunc]
	surfaceConfigured observerList[SurfaceFunc]
	layerCreated      observerList[LayerFunc]
	layerRemoved      observerList[LayerFunc]

	repaint func()
}

// NewScene builds a scene with one screen per output, numbered from zero in
// argument order.
func NewScene(outputs ...Output) *Scene {
	sc := &Scene{
		surfaces: make(map[SurfaceID]*Surface),
		layers:   make(map[LayerID]*Layer),
	}
	for i, out := range outputs {
		sc.screens = append(sc.screens, &Screen{
			id:     ScreenID(i),
			scene:  sc,
			output: out,
		})
	}
	return sc
}

// SetLogger replaces the scene's logger. By default the scene logs nowhere.
func (sc *Scene) SetLogger(l *log.Logger) {
	sc.log = l
}

func (sc *Scene) logger() *log.Logger {
	if sc.log == nil {
		sc.log = log.New(io.Discard)
	}
	return sc.log
}

// SetRepaintHandler installs the callback Commit invokes after promoting
// state, so the embedding output loop can schedule a redraw.
func (sc *Scene) SetRepaintHandler(fn func()) {
	sc.repaint = fn
}

// CreateSurface registers a new surface under a caller-assigned id with the
// default property block sized w x h. The new surface is invisible until a
// SetVisibility(true) is committed. Fails with ErrExists if the id is taken.
func (sc *Scene) CreateSurface(id SurfaceID, w, h int) (*Surface, error) {
	if w < 0 || h < 0 {
		return nil, invalidArgf("CreateSurface %d: negative size %dx%d", id, w, h)
	}
	if _, ok := sc.surfaces[id]; ok {
		return nil, invalidArgf("CreateSurface: id %d: %w", id, ErrExists)
	}
	s := &Surface{
		id:       id,
		scene:    sc,
		prop:     defaultProperties(w, h),
		contentW: w,
		contentH: h,
	}
	s.pending = s.prop
	sc.surfaces[id] = s
	sc.logger().Debug("surface created", "id", id, "w", w, "h", h)
	for _, fn := range sc.surfaceCreated.snapshot() {
		fn(s)
	}
	return s, nil
}

// Surface returns the surface registered under id, or nil.
func (sc *Scene) Surface(id SurfaceID) *Surface {
	return sc.surfaces[id]
}

// Surfaces returns all registered surfaces in unspecified order.
func (sc *Scene) Surfaces() []*Surface {
	out := make([]*Surface, 0, len(sc.surfaces))
	for _, s := range sc.surfaces {
		out = append(out, s)
	}
	return out
}

// RemoveSurface unregisters a surface. It is pulled from every layer's
// pending and committed order immediately; affected layers notify
// NotifyRemove on the next commit. Observers on the removed-surface channel
// fire before the handle is invalidated.
func (sc *Scene) RemoveSurface(id SurfaceID) error {
	s, ok := sc.surfaces[id]
	if !ok {
		return invalidArgf("RemoveSurface: unknown surface %d", id)
	}
	for _, l := range sc.layers {
		if indexOfSurface(l.pendingOrder, id) >= 0 || indexOfSurface(l.order, id) >= 0 {
			l.pendingOrder = removeSurfaceID(l.pendingOrder, id)
			l.order = removeSurfaceID(l.order, id)
			l.mask |= NotifyRemove
		}
	}
	for _, fn := range sc.surfaceRemoved.snapshot() {
		fn(s)
	}
	delete(sc.surfaces, id)
	sc.logger().Debug("surface removed", "id", id)
	return nil
}

// AttachContent hands a backend render handle to a surface together with its
// pixel size. Passing nil content is equivalent to DetachContent.
func (sc *Scene) AttachContent(id SurfaceID, content Content, w, h int) error {
	s, ok := sc.surfaces[id]
	if !ok {
		return invalidArgf("AttachContent: unknown surface %d", id)
	}
	if w < 0 || h < 0 {
		return invalidArgf("AttachContent %d: negative size %dx%d", id, w, h)
	}
	s.content = content
	if content != nil {
		s.contentW = w
		s.contentH = h
	}
	return nil
}

// DetachContent strips a surface of its render handle. The surface keeps its
// layer memberships but is skipped during render-list construction until
// content is attached again.
func (sc *Scene) DetachContent(id SurfaceID) error {
	s, ok := sc.surfaces[id]
	if !ok {
		return invalidArgf("DetachContent: unknown surface %d", id)
	}
	s.content = nil
	return nil
}

// ConfigureSurface records a new content pixel size, as reported by the
// content producer. The configured channel fires immediately, outside the
// commit cycle, so a controller can re-layout before the next frame.
func (sc *Scene) ConfigureSurface(id SurfaceID, w, h int) error {
	s, ok := sc.surfaces[id]
	if !ok {
		return invalidArgf("ConfigureSurface: unknown surface %d", id)
	}
	if w < 0 || h < 0 {
		return invalidArgf("ConfigureSurface %d: negative size %dx%d", id, w, h)
	}
	s.contentW = w
	s.contentH = h
	s.mask |= NotifyConfigure
	for _, fn := range sc.surfaceConfigured.snapshot() {
		fn(s)
	}
	return nil
}

// CreateLayer registers a new layer under a caller-assigned id with the
// default property block sized w x h. Fails with ErrExists if the id is
// taken.
func (sc *Scene) CreateLayer(id LayerID, w, h int) (*Layer, error) {
	if w < 0 || h < 0 {
		return nil, invalidArgf("CreateLayer %d: negative size %dx%d", id, w, h)
	}
	if _, ok := sc.layers[id]; ok {
		return nil, invalidArgf("CreateLayer: id %d: %w", id, ErrExists)
	}
	l := &Layer{
		id:    id,
		scene: sc,
		prop:  defaultProperties(w, h),
	}
	l.pending = l.prop
	sc.layers[id] = l
	sc.logger().Debug("layer created", "id", id, "w", w, "h", h)
	for _, fn := range sc.layerCreated.snapshot() {
		fn(l)
	}
	return l, nil
}

// Layer returns the layer registered under id, or nil.
func (sc *Scene) Layer(id LayerID) *Layer {
	return sc.layers[id]
}

// Layers returns all registered layers in unspecified order.
func (sc *Scene) Layers() []*Layer {
	out := make([]*Layer, 0, len(sc.layers))
	for _, l := range sc.layers {
		out = append(out, l)
	}
	return out
}

// RemoveLayer unregisters a layer, pulling it from every screen's pending and
// committed order immediately.
func (sc *Scene) RemoveLayer(id LayerID) error {
	l, ok := sc.layers[id]
	if !ok {
		return invalidArgf("RemoveLayer: unknown layer %d", id)
	}
	for _, scr := range sc.screens {
		if indexOfLayer(scr.pendingOrder, id) >= 0 || indexOfLayer(scr.order, id) >= 0 {
			scr.pendingOrder = removeLayerID(scr.pendingOrder, id)
			scr.order = removeLayerID(scr.order, id)
			scr.orderDirty = true
		}
	}
	for _, fn := range sc.layerRemoved.snapshot() {
		fn(l)
	}
	delete(sc.layers, id)
	sc.logger().Debug("layer removed", "id", id)
	return nil
}

// Screen returns the screen with the given id, or nil.
func (sc *Scene) Screen(id ScreenID) *Screen {
	if int(id) >= len(sc.screens) {
		return nil
	}
	return sc.screens[id]
}

// Screens returns the scene's screens in output enumeration order.
func (sc *Scene) Screens() []*Screen {
	return append([]*Screen(nil), sc.screens...)
}

// OnSurfaceCreated subscribes to surface creation. The callback fires
// immediately when CreateSurface succeeds, outside the commit cycle.
func (sc *Scene) OnSurfaceCreated(fn SurfaceFunc) ObserverHandle {
	return sc.surfaceCreated.add(fn)
}

// OnSurfaceRemoved subscribes to surface removal. The callback fires while
// the surface handle is still valid.
func (sc *Scene) OnSurfaceRemoved(fn SurfaceFunc) ObserverHandle {
	return sc.surfaceRemoved.add(fn)
}

// OnSurfaceConfigured subscribes to content size reports.
func (sc *Scene) OnSurfaceConfigured(fn SurfaceFunc) ObserverHandle {
	return sc.surfaceConfigured.add(fn)
}

// OnLayerCreated subscribes to layer creation.
func (sc *Scene) OnLayerCreated(fn LayerFunc) ObserverHandle {
	return sc.layerCreated.add(fn)
}

// OnLayerRemoved subscribes to layer removal.
func (sc *Scene) OnLayerRemoved(fn LayerFunc) ObserverHandle {
	return sc.layerRemoved.add(fn)
}
