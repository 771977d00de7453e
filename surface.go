package strata

// SurfacePropertyFunc observes one surface's committed property changes. It
// receives the full current block and the dirty mask accumulated since the
// previous commit.
type SurfacePropertyFunc func(s *Surface, props Properties, mask Notification)

type surfacePropertyObserver struct {
	id uint32
	fn SurfacePropertyFunc
}

// Surface is a drawable unit. All staging setters write the pending block
// only; getters read the current block only, so a set followed by a get
// observes the pre-commit value until Scene.Commit runs.
//
// A surface may be shared by multiple layers. Its pixel content is an opaque
// handle owned by the rendering backend; the backend may detach it at any
// time and a surface without content never appears in the render list.
type Surface struct {
	id    SurfaceID
	scene *Scene

	prop    Properties
	pending Properties
	mask    Notification

	content  Content
	contentW int
	contentH int

	// Layers whose committed order contains this surface. Rebuilt by the
	// commit engine, never mutated by staging calls.
	orderLayers []LayerID

	observers  []surfacePropertyObserver
	observerID uint32
}

// ID returns the surface's caller-assigned id.
func (s *Surface) ID() SurfaceID {
	return s.id
}

// Visibility returns the committed visibility flag.
func (s *Surface) Visibility() bool {
	return s.prop.Visibility
}

// Opacity returns the committed opacity.
func (s *Surface) Opacity() float64 {
	return s.prop.Opacity
}

// SourceRect returns the committed source rectangle.
func (s *Surface) SourceRect() Rect {
	return s.prop.Source
}

// DestRect returns the committed destination rectangle.
func (s *Surface) DestRect() Rect {
	return s.prop.Dest
}

// Position returns the committed destination position.
func (s *Surface) Position() (x, y int) {
	return s.prop.Dest.X, s.prop.Dest.Y
}

// Orientation returns the committed orientation.
func (s *Surface) Orientation() Orientation {
	return s.prop.Orientation
}

// Properties returns a copy of the full committed property block.
func (s *Surface) Properties() Properties {
	return s.prop
}

// Content returns the attached render handle, or nil if the backend has
// detached it.
func (s *Surface) Content() Content {
	return s.content
}

// ContentSize returns the pixel size the content producer last configured.
func (s *Surface) ContentSize() (w, h int) {
	return s.contentW, s.contentH
}

// Layers returns the ids of the layers whose committed order contains this
// surface. The result is a copy.
func (s *Surface) Layers() []LayerID {
	return append([]LayerID(nil), s.orderLayers...)
}

// SetVisibility stages a visibility change.
func (s *Surface) SetVisibility(visible bool) error {
	if s == nil {
		return invalidArgf("Surface.SetVisibility: nil surface")
	}
	s.pending.Visibility = visible
	s.mask |= NotifyVisibility
	return nil
}

// SetOpacity stages an opacity change. The value must be in [0, 1].
func (s *Surface) SetOpacity(opacity float64) error {
	if s == nil {
		return invalidArgf("Surface.SetOpacity: nil surface")
	}
	if opacity < 0 || opacity > 1 {
		return invalidArgf("Surface.SetOpacity: opacity %v out of range", opacity)
	}
	s.pending.Opacity = opacity
	s.mask |= NotifyOpacity
	return nil
}

// SetSourceRect stages a source rectangle change.
func (s *Surface) SetSourceRect(r Rect) error {
	if s == nil {
		return invalidArgf("Surface.SetSourceRect: nil surface")
	}
	if !r.valid() {
		return invalidArgf("Surface.SetSourceRect: malformed rect %+v", r)
	}
	s.pending.Source = r
	s.mask |= NotifySourceRect
	return nil
}

// SetDestRect stages a destination rectangle change.
func (s *Surface) SetDestRect(r Rect) error {
	if s == nil {
		return invalidArgf("Surface.SetDestRect: nil surface")
	}
	if !r.valid() {
		return invalidArgf("Surface.SetDestRect: malformed rect %+v", r)
	}
	s.pending.Dest = r
	s.mask |= NotifyDestRect
	return nil
}

// SetPosition stages a destination position change, leaving the size alone.
func (s *Surface) SetPosition(x, y int) error {
	if s == nil {
		return invalidArgf("Surface.SetPosition: nil surface")
	}
	s.pending.Dest.X = x
	s.pending.Dest.Y = y
	s.mask |= NotifyPosition
	return nil
}

// SetDimension stages a destination size change, leaving the position alone.
func (s *Surface) SetDimension(w, h int) error {
	if s == nil {
		return invalidArgf("Surface.SetDimension: nil surface")
	}
	if w < 0 || h < 0 {
		return invalidArgf("Surface.SetDimension: negative size %dx%d", w, h)
	}
	s.pending.Dest.Width = w
	s.pending.Dest.Height = h
	s.mask |= NotifyDimension
	return nil
}

// SetOrientation stages an orientation change.
func (s *Surface) SetOrientation(o Orientation) error {
	if s == nil {
		return invalidArgf("Surface.SetOrientation: nil surface")
	}
	if !o.valid() {
		return invalidArgf("Surface.SetOrientation: orientation %d", o)
	}
	s.pending.Orientation = o
	s.mask |= NotifyOrientation
	return nil
}

// OnPropertyChanged subscribes to this surface's committed property changes.
// Observers fire in registration order after each commit that left the
// surface's dirty mask non-empty. The same function may be subscribed more
// than once; each subscription is removed independently through its handle.
func (s *Surface) OnPropertyChanged(fn SurfacePropertyFunc) ObserverHandle {
	s.observerID++
	id := s.observerID
	s.observers = append(s.observers, surfacePropertyObserver{id: id, fn: fn})
	return ObserverHandle{remove: func() {
		s.observers = removeSurfaceObserver(s.observers, id)
	}}
}

func removeSurfaceObserver(obs []surfacePropertyObserver, id uint32) []surfacePropertyObserver {
	for i := range obs {
		if obs[i].id == id {
			copy(obs[i:], obs[i+1:])
			obs[len(obs)-1] = surfacePropertyObserver{}
			return obs[:len(obs)-1]
		}
	}
	return obs
}

// sendProperties dispatches property observers over a snapshot and clears the
// dirty mask. Observers may unsubscribe or subscribe during dispatch without
// corrupting the iteration.
func (s *Surface) sendProperties() {
	if s.mask == 0 {
		return
	}
	mask := s.mask
	snapshot := append([]surfacePropertyObserver(nil), s.observers...)
	for _, o := range snapshot {
		o.fn(s, s.prop, mask)
	}
	s.mask = 0
}

// effectiveSource returns the source extent used for scale computation,
// falling back to the attached content size when the source rect is unset.
func (s *Surface) effectiveSource() (w, h int) {
	if s.prop.Source.Width == 0 && s.prop.Source.Height == 0 {
		return s.contentW, s.contentH
	}
	return s.prop.Source.Width, s.prop.Source.Height
}
