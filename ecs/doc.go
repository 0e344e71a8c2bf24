// Package ecs provides ECS adapters for graphcanvas input dispatch.
//
// The primary adapter is [NewDonburiStore], which forwards every dispatch
// verdict of an [graphcanvas.InputLinker] into a [Donburi] world as a typed
// event. Subscribe to [InputEventType] in your ECS systems to receive them.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	canvas.Linker().SetEventStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
