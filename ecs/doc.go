// Package ecs mirrors grove scene tree events into a [Donburi] world.
//
// [NewDonburiStore] publishes every [grove.NodeEvent] as a typed event on
// [NodeEventType] and keeps one entity per tracked node, carrying a
// [NodeComponent] with the node's name, parent and world origin. Systems
// can query those entities instead of walking the tree.
//
// Usage:
//
//	store := ecs.NewDonburiStore(world)
//	scene.SetEntityStore(store)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
