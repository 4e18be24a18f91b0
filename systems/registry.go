package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/predprey/components"
)

// Registry stores every live animal as an ECS entity carrying an Animal component.
// Cells refer to animals by entity; the registry is the only place their state lives.
type Registry struct {
	world   *ecs.World
	animals *ecs.Map1[components.Animal]
	filter  *ecs.Filter1[components.Animal]
	count   [2]int
}

// NewRegistry creates an empty registry backed by a fresh world.
func NewRegistry() *Registry {
	world := ecs.NewWorld()
	return &Registry{
		world:   world,
		animals: ecs.NewMap1[components.Animal](world),
		filter:  ecs.NewFilter1[components.Animal](world),
	}
}

// Spawn creates an entity for the animal.
func (r *Registry) Spawn(a components.Animal) ecs.Entity {
	r.count[a.Species]++
	return r.animals.NewEntity(&a)
}

// Get returns the animal stored for a live entity.
// The pointer is only valid until the next Spawn or Kill.
func (r *Registry) Get(e ecs.Entity) *components.Animal {
	return r.animals.Get(e)
}

// Alive reports whether the entity still exists.
func (r *Registry) Alive(e ecs.Entity) bool {
	return r.world.Alive(e)
}

// Kill removes a live entity.
func (r *Registry) Kill(e ecs.Entity) {
	r.count[r.animals.Get(e).Species]--
	r.world.RemoveEntity(e)
}

// Count returns the number of live animals of a species.
func (r *Registry) Count(s components.Species) int {
	return r.count[s]
}

// Each calls fn for every live animal. fn must not spawn or kill.
func (r *Registry) Each(fn func(e ecs.Entity, a components.Animal)) {
	query := r.filter.Query()
	for query.Next() {
		a := query.Get()
		fn(query.Entity(), *a)
	}
}
