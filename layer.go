package strata

// LayerPropertyFunc observes one layer's committed property changes.
type LayerPropertyFunc func(l *Layer, props Properties, mask Notification)

type layerPropertyObserver struct {
	id uint32
	fn LayerPropertyFunc
}

// Layer groups an ordered sequence of surfaces. Order is painter's order: the
// first surface in the list is the bottom-most and is painted first.
//
// Membership is double-buffered like properties: Add/Remove/SetRenderOrder
// edit the pending order, and the commit engine rebuilds the committed order
// from it whenever the order-changed flag is set.
type Layer struct {
	id    LayerID
	scene *Scene

	prop    Properties
	pending Properties
	mask    Notification

	pendingOrder []SurfaceID // staged membership, painter's order
	order        []SurfaceID // committed membership

	// Screens whose committed order contains this layer.
	orderScreens []ScreenID

	observers  []layerPropertyObserver
	observerID uint32
}

// ID returns the layer's caller-assigned id.
func (l *Layer) ID() LayerID {
	return l.id
}

// Visibility returns the committed visibility flag.
func (l *Layer) Visibility() bool {
	return l.prop.Visibility
}

// Opacity returns the committed opacity.
func (l *Layer) Opacity() float64 {
	return l.prop.Opacity
}

// SourceRect returns the committed source rectangle.
func (l *Layer) SourceRect() Rect {
	return l.prop.Source
}

// DestRect returns the committed destination rectangle.
func (l *Layer) DestRect() Rect {
	return l.prop.Dest
}

// Position returns the committed destination position.
func (l *Layer) Position() (x, y int) {
	return l.prop.Dest.X, l.prop.Dest.Y
}

// Orientation returns the committed orientation.
func (l *Layer) Orientation() Orientation {
	return l.prop.Orientation
}

// Properties returns a copy of the full committed property block.
func (l *Layer) Properties() Properties {
	return l.prop
}

// SurfaceOrder returns the committed surface membership in painter's order.
// The result is a copy.
func (l *Layer) SurfaceOrder() []SurfaceID {
	return append([]SurfaceID(nil), l.order...)
}

// Screens returns the ids of the screens whose committed order contains this
// layer. The result is a copy.
func (l *Layer) Screens() []ScreenID {
	return append([]ScreenID(nil), l.orderScreens...)
}

// SetVisibility stages a visibility change.
func (l *Layer) SetVisibility(visible bool) error {
	if l == nil {
		return invalidArgf("Layer.SetVisibility: nil layer")
	}
	l.pending.Visibility = visible
	l.mask |= NotifyVisibility
	return nil
}

// SetOpacity stages an opacity change. The value must be in [0, 1].
func (l *Layer) SetOpacity(opacity float64) error {
	if l == nil {
		return invalidArgf("Layer.SetOpacity: nil layer")
	}
	if opacity < 0 || opacity > 1 {
		return invalidArgf("Layer.SetOpacity: opacity %v out of range", opacity)
	}
	l.pending.Opacity = opacity
	l.mask |= NotifyOpacity
	return nil
}

// SetSourceRect stages a source rectangle change. The source extent is the
// denominator of the layer's scale factor.
func (l *Layer) SetSourceRect(r Rect) error {
	if l == nil {
		return invalidArgf("Layer.SetSourceRect: nil layer")
	}
	if !r.valid() {
		return invalidArgf("Layer.SetSourceRect: malformed rect %+v", r)
	}
	l.pending.Source = r
	l.mask |= NotifySourceRect
	return nil
}

// SetDestRect stages a destination rectangle change.
func (l *Layer) SetDestRect(r Rect) error {
	if l == nil {
		return invalidArgf("Layer.SetDestRect: nil layer")
	}
	if !r.valid() {
		return invalidArgf("Layer.SetDestRect: malformed rect %+v", r)
	}
	l.pending.Dest = r
	l.mask |= NotifyDestRect
	return nil
}

// SetPosition stages a destination position change, leaving the size alone.
func (l *Layer) SetPosition(x, y int) error {
	if l == nil {
		return invalidArgf("Layer.SetPosition: nil layer")
	}
	l.pending.Dest.X = x
	l.pending.Dest.Y = y
	l.mask |= NotifyPosition
	return nil
}

// SetDimension stages a destination size change, leaving the position alone.
func (l *Layer) SetDimension(w, h int) error {
	if l == nil {
		return invalidArgf("Layer.SetDimension: nil layer")
	}
	if w < 0 || h < 0 {
		return invalidArgf("Layer.SetDimension: negative size %dx%d", w, h)
	}
	l.pending.Dest.Width = w
	l.pending.Dest.Height = h
	l.mask |= NotifyDimension
	return nil
}

// SetOrientation stages an orientation change.
func (l *Layer) SetOrientation(o Orientation) error {
	if l == nil {
		return invalidArgf("Layer.SetOrientation: nil layer")
	}
	if !o.valid() {
		return invalidArgf("Layer.SetOrientation: orientation %d", o)
	}
	l.pending.Orientation = o
	l.mask |= NotifyOrientation
	return nil
}

// AddSurface stages appending s to this layer's surface order. Adding a
// surface already present in the pending order is a no-op, not an error.
func (l *Layer) AddSurface(s *Surface) error {
	if l == nil || s == nil {
		return invalidArgf("Layer.AddSurface: nil handle")
	}
	if indexOfSurface(l.pendingOrder, s.id) >= 0 {
		l.scene.logger().Warn("layer: surface already staged", "layer", l.id, "surface", s.id)
		return nil
	}
	l.pendingOrder = append(l.pendingOrder, s.id)
	l.mask |= NotifyAdd
	return nil
}

// RemoveSurface stages removing s from this layer's surface order. Removing a
// surface that is not staged is a no-op.
func (l *Layer) RemoveSurface(s *Surface) error {
	if l == nil || s == nil {
		return invalidArgf("Layer.RemoveSurface: nil handle")
	}
	l.pendingOrder = removeSurfaceID(l.pendingOrder, s.id)
	l.mask |= NotifyRemove
	return nil
}

// SetRenderOrder replaces the entire pending surface order in one call. Each
// id is resolved against the scene's surface table; unresolvable ids are
// silently skipped. A duplicated id keeps its last position.
func (l *Layer) SetRenderOrder(ids []SurfaceID) error {
	if l == nil {
		return invalidArgf("Layer.SetRenderOrder: nil layer")
	}
	order := make([]SurfaceID, 0, len(ids))
	for _, id := range ids {
		if l.scene.Surface(id) == nil {
			continue
		}
		order = removeSurfaceID(order, id)
		order = append(order, id)
	}
	l.pendingOrder = order
	l.mask |= NotifyAdd
	return nil
}

// OnPropertyChanged subscribes to this layer's committed property changes.
// Same dispatch rules as Surface.OnPropertyChanged.
func (l *Layer) OnPropertyChanged(fn LayerPropertyFunc) ObserverHandle {
	l.observerID++
	id := l.observerID
	l.observers = append(l.observers, layerPropertyObserver{id: id, fn: fn})
	return ObserverHandle{remove: func() {
		l.observers = removeLayerObserver(l.observers, id)
	}}
}

func removeLayerObserver(obs []layerPropertyObserver, id uint32) []layerPropertyObserver {
	for i := range obs {
		if obs[i].id == id {
			copy(obs[i:], obs[i+1:])
			obs[len(obs)-1] = layerPropertyObserver{}
			return obs[:len(obs)-1]
		}
	}
	return obs
}

func (l *Layer) sendProperties() {
	if l.mask == 0 {
		return
	}
	mask := l.mask
	snapshot := append([]layerPropertyObserver(nil), l.observers...)
	for _, o := range snapshot {
		o.fn(l, l.prop, mask)
	}
	l.mask = 0
}

func indexOfSurface(ids []SurfaceID, id SurfaceID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func removeSurfaceID(ids []SurfaceID, id SurfaceID) []SurfaceID {
	if i := indexOfSurface(ids, id); i >= 0 {
		return append(ids[:i], ids[i+1:]...)
	}
	return ids
}
