// Package strata is a deferred-commit scene-graph compositor for layered
// display stacks.
//
// Surfaces carry content, layers order surfaces, screens order layers. Every
// property and membership change is staged on a pending copy and becomes
// visible only when [Scene.Commit] promotes the whole graph atomically:
//
//	scene := strata.NewScene(strata.StaticOutput{W: 1920, H: 1080})
//	surf, _ := scene.CreateSurface(1, 800, 600)
//	layer, _ := scene.CreateLayer(1000, 1920, 1080)
//	layer.AddSurface(surf)
//	layer.SetVisibility(true)
//	surf.SetVisibility(true)
//	scene.Screen(0).AddLayer(layer)
//	scene.Commit()
//
// Getters always read the committed state, so a setter followed by a getter
// observes the pre-commit value until the next Commit. Each commit rebuilds
// every screen's flattened render list, recomputes per-view transforms, and
// then dispatches property observers with the accumulated change masks.
//
// # Animation
//
// [AnimationSet] advances all active animations on a shared 30Hz tick: spring
// fades, constant-acceleration moves, and eased tweens (via [gween]). One
// Commit runs per tick for the whole batch.
//
// # Shell policy
//
// [Controller] is a reference desktop policy on top of the core: a base
// layer for background and panel, a layer for applications with switchable
// layout modes, and a launcher workspace overlay that fades in over the apps
// and pages horizontally with grab-and-flick swipes ([MoveGrab]).
//
// # Rendering
//
// The core is renderer-agnostic; it produces [RenderView] lists against an
// [Output]. [EbitenBackend] draws those lists with [Ebitengine] for the
// bundled demo and for anyone embedding the compositor in an ebiten loop.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
package strata
