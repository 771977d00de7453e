package strata

// Screen is the root of one output's composition. It holds an ordered list of
// layers (painter's order) and owns that output's flattened render list, which
// the commit engine rebuilds whenever any layer on the screen reports an order
// change.
type Screen struct {
	id     ScreenID
	scene  *Scene
	output Output

	pendingOrder []LayerID // staged layer order
	order        []LayerID // committed layer order

	// Flattened committed render list, bottom-most view first. Rebuilt as a
	// whole on commit; never patched in place.
	renderList []RenderView

	orderDirty bool
}

// ID returns the screen's id.
func (sc *Screen) ID() ScreenID {
	return sc.id
}

// Output returns the output this screen composites onto.
func (sc *Screen) Output() Output {
	return sc.output
}

// Resolution returns the output's pixel size.
func (sc *Screen) Resolution() (w, h int) {
	return sc.output.Size()
}

// LayerOrder returns the committed layer order, bottom-most first. The result
// is a copy.
func (sc *Screen) LayerOrder() []LayerID {
	return append([]LayerID(nil), sc.order...)
}

// RenderList returns the committed flattened render list, bottom-most view
// first. The slice is owned by the screen and valid until the next Commit;
// callers that hold it across commits must copy it.
func (sc *Screen) RenderList() []RenderView {
	return sc.renderList
}

// AddLayer stages appending l to this screen's layer order. Adding a layer
// already staged is a no-op, not an error.
func (sc *Screen) AddLayer(l *Layer) error {
	if sc == nil || l == nil {
		return invalidArgf("Screen.AddLayer: nil handle")
	}
	if indexOfLayer(sc.pendingOrder, l.id) >= 0 {
		sc.scene.logger().Warn("screen: layer already staged", "screen", sc.id, "layer", l.id)
		return nil
	}
	sc.pendingOrder = append(sc.pendingOrder, l.id)
	sc.orderDirty = true
	return nil
}

// RemoveLayer stages removing l from this screen's layer order.
func (sc *Screen) RemoveLayer(l *Layer) error {
	if sc == nil || l == nil {
		return invalidArgf("Screen.RemoveLayer: nil handle")
	}
	sc.pendingOrder = removeLayerID(sc.pendingOrder, l.id)
	sc.orderDirty = true
	return nil
}

// SetRenderOrder replaces the entire pending layer order. Unresolvable ids are
// silently skipped; a duplicated id keeps its last position.
func (sc *Screen) SetRenderOrder(ids []LayerID) error {
	if sc == nil {
		return invalidArgf("Screen.SetRenderOrder: nil screen")
	}
	order := make([]LayerID, 0, len(ids))
	for _, id := range ids {
		if sc.scene.Layer(id) == nil {
			continue
		}
		order = removeLayerID(order, id)
		order = append(order, id)
	}
	sc.pendingOrder = order
	sc.orderDirty = true
	return nil
}

func indexOfLayer(ids []LayerID, id LayerID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func removeLayerID(ids []LayerID, id LayerID) []LayerID {
	if i := indexOfLayer(ids, id); i >= 0 {
		return append(ids[:i], ids[i+1:]...)
	}
	return ids
}
