// Package graphcanvas is a node-graph editing canvas for [Ebitengine].
//
// A [Canvas] displays a [Graph]: every graph node gets a visual node from a
// [VisualizerRegistry], positioned through a pannable, zoomable
// [ViewTransform]. Connections between pins are painted by the graph
// schema's [ConnectionVisualizer]. Input is routed through an [InputLinker]
// that dispatches pointer, key, wheel, drag and manual triggers to bound
// callbacks with priority and condition gating.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	canvas := graphcanvas.NewCanvas(nil)
//	if err := graphcanvas.DefaultConfig().Apply(canvas); err != nil {
//		log.Fatal(err)
//	}
//	canvas.SetGraph(g)
//	graphcanvas.Run(canvas, graphcanvas.RunConfig{
//		Title: "Graph", Width: 1280, Height: 720,
//	})
//
// For full control, implement [ebiten.Game] yourself and call
// [Canvas.Update] and [Canvas.Draw] directly, placing the canvas with
// [Canvas.SetRect].
//
// # Input
//
// Bindings are keyed by [Trip], a press, release or named manual trigger:
//
//	canvas.Linker().BindInputCallback(graphcanvas.PressTrip("Delete"), graphcanvas.InputCallback{
//		Handler:   graphcanvas.HandlerFunc(deleteSelection),
//		Condition: func(w graphcanvas.Widget) bool { return w == graphcanvas.Widget(canvas) },
//	})
//
// Callbacks run in ascending priority order. The first event-layer callback
// that returns [Handled] stops dispatch; raw-layer callbacks always run.
// Events bubble from pin to node to canvas until one is handled.
//
// A press handled with [Reply.DetectDrag] arms drag detection. Once the
// pointer leaves the dead zone, drag triggers bound to the press trip are
// tried in order until one yields a [DragDropOperation] whose Setup accepts
// the source.
//
// Keymaps map trips to named actions and load from YAML or TOML files. See
// [Keymap], [DefaultActions] and [Canvas.WatchKeymap].
//
// # Testing
//
// Synthetic input can be queued with [Canvas.InjectClick],
// [Canvas.InjectDrag] and friends, one event per Update, or scripted from
// JSON with [LoadInputScript].
//
// # ECS
//
// [InputLinker.SetEventStore] forwards every dispatch verdict to an
// [EventStore]. The graphcanvas/ecs module adapts it to a [Donburi] world.
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package graphcanvas
