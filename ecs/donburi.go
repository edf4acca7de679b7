package ecs

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"

	"github.com/phanxgames/grove"
)

// NodeEventType is the Donburi event type for grove tree events.
// Subscribe to it in ECS systems to react to added, removed and moved
// nodes.
var NodeEventType = events.NewEventType[grove.NodeEvent]()

// NodeData is the component value kept for every tracked node.
type NodeData struct {
	NodeID      uint32
	Name        string
	ParentID    uint32
	WorldOrigin mgl64.Vec3
}

// NodeComponent holds the NodeData of entities mirrored from a scene.
var NodeComponent = donburi.NewComponentType[NodeData]()

// DonburiStore is a grove.EntityStore backed by a Donburi world.
type DonburiStore struct {
	world    donburi.World
	entities map[uint32]donburi.Entity
	children map[uint32][]uint32
}

// NewDonburiStore creates an EntityStore backed by world. Events are
// published to NodeEventType and can be consumed with Subscribe and
// ProcessEvents.
func NewDonburiStore(world donburi.World) *DonburiStore {
	return &DonburiStore{
		world:    world,
		entities: make(map[uint32]donburi.Entity),
		children: make(map[uint32][]uint32),
	}
}

// EmitNodeEvent publishes e and updates the mirrored entities.
func (s *DonburiStore) EmitNodeEvent(e grove.NodeEvent) {
	switch e.Type {
	case grove.NodeAdded:
		s.track(e)
	case grove.NodeTransformed:
		if entry := s.Entry(e.NodeID); entry != nil {
			NodeComponent.Get(entry).WorldOrigin = e.WorldOrigin
		} else {
			s.track(e)
		}
	case grove.NodeRemoved:
		s.untrack(e.NodeID)
		s.unlink(e.ParentID, e.NodeID)
	}
	NodeEventType.Publish(s.world, e)
}

// Entry returns the entry mirroring the node with id, or nil.
func (s *DonburiStore) Entry(id uint32) *donburi.Entry {
	ent, ok := s.entities[id]
	if !ok || !s.world.Valid(ent) {
		return nil
	}
	return s.world.Entry(ent)
}

// Len returns the number of mirrored nodes.
func (s *DonburiStore) Len() int { return len(s.entities) }

func (s *DonburiStore) track(e grove.NodeEvent) {
	data := NodeData{NodeID: e.NodeID, Name: e.NodeName, ParentID: e.ParentID, WorldOrigin: e.WorldOrigin}
	if entry := s.Entry(e.NodeID); entry != nil {
		old := NodeComponent.Get(entry)
		s.unlink(old.ParentID, e.NodeID)
		*old = data
	} else {
		ent := s.world.Create(NodeComponent)
		NodeComponent.SetValue(s.world.Entry(ent), data)
		s.entities[e.NodeID] = ent
	}
	s.children[e.ParentID] = append(s.children[e.ParentID], e.NodeID)
}

// untrack removes the entity of id and of every node tracked below it.
func (s *DonburiStore) untrack(id uint32) {
	for _, c := range s.children[id] {
		s.untrack(c)
	}
	delete(s.children, id)
	if ent, ok := s.entities[id]; ok {
		if s.world.Valid(ent) {
			s.world.Remove(ent)
		}
		delete(s.entities, id)
	}
}

func (s *DonburiStore) unlink(parent, id uint32) {
	list := s.children[parent]
	for i, c := range list {
		if c == id {
			s.children[parent] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

var _ grove.EntityStore = (*DonburiStore)(nil)
