package strata

import "sort"

// Commit atomically promotes all staged state to current, in a fixed phase
// order:
//
//  1. surface property promotion
//  2. layer property promotion, plus a full committed-order rebuild for every
//     layer whose mask carries an order-changed bit
//  3. screen order promotion and a full render-list rebuild per screen
//  4. transform and alpha recomputation for every render-list entry
//  5. FIFO property-observer dispatch (surfaces, then layers), clearing each
//     entity's dirty mask
//
// A commit with nothing staged is a valid no-op apart from the repaint
// request. Getters called from observers already see the promoted state.
func (sc *Scene) Commit() {
	orderDirty := false

	for _, s := range sc.sortedSurfaces() {
		s.prop = s.pending
	}

	for _, l := range sc.sortedLayers() {
		l.prop = l.pending
		if l.mask&orderChanged != 0 {
			l.order = append(l.order[:0], l.pendingOrder...)
			orderDirty = true
		}
	}

	for _, scr := range sc.screens {
		if scr.orderDirty {
			scr.order = append(scr.order[:0], scr.pendingOrder...)
			scr.orderDirty = false
			orderDirty = true
		}
	}

	if orderDirty {
		sc.rebuildBackLinks()
	}
	for _, scr := range sc.screens {
		sc.rebuildRenderList(scr)
	}

	for _, s := range sc.sortedSurfaces() {
		s.sendProperties()
	}
	for _, l := range sc.sortedLayers() {
		l.sendProperties()
	}

	if sc.repaint != nil {
		sc.repaint()
	}
}

// rebuildBackLinks recomputes surface->layers and layer->screens reverse
// membership from the committed orders.
func (sc *Scene) rebuildBackLinks() {
	for _, s := range sc.surfaces {
		s.orderLayers = s.orderLayers[:0]
	}
	for _, l := range sc.layers {
		l.orderScreens = l.orderScreens[:0]
	}
	for _, l := range sc.sortedLayers() {
		for _, sid := range l.order {
			if s := sc.surfaces[sid]; s != nil {
				s.orderLayers = append(s.orderLayers, l.id)
			}
		}
	}
	for _, scr := range sc.screens {
		for _, lid := range scr.order {
			if l := sc.layers[lid]; l != nil {
				l.orderScreens = append(l.orderScreens, scr.id)
			}
		}
	}
}

// rebuildRenderList flattens a screen's committed graph into its render list.
// Visibility is checked per level, not inherited: an invisible layer drops
// all of its surfaces, and an invisible or content-less surface is skipped
// individually. Each surviving entry gets a fresh transform and alpha.
func (sc *Scene) rebuildRenderList(scr *Screen) {
	scr.renderList = scr.renderList[:0]
	for _, lid := range scr.order {
		l := sc.layers[lid]
		if l == nil || !l.prop.Visibility {
			continue
		}
		for _, sid := range l.order {
			s := sc.surfaces[sid]
			if s == nil || !s.prop.Visibility || s.content == nil {
				continue
			}
			sp := s.prop
			srcW, srcH := s.effectiveSource()
			if sp.Dest.Width == 0 && sp.Dest.Height == 0 {
				sp.Dest.Width = srcW
				sp.Dest.Height = srcH
			}
			scr.renderList = append(scr.renderList, RenderView{
				Surface:   s,
				Layer:     l,
				Content:   s.content,
				Transform: surfaceTransform(&l.prop, &sp, srcW, srcH),
				Alpha:     l.prop.Opacity * s.prop.Opacity,
			})
		}
	}
}

// sortedSurfaces returns the surface table ordered by id, so promotion and
// observer dispatch are deterministic.
func (sc *Scene) sortedSurfaces() []*Surface {
	out := sc.Surfaces()
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (sc *Scene) sortedLayers() []*Layer {
	out := sc.Layers()
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
