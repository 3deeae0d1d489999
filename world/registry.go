package world

import "sort"

// Registry owns every known remote entity. It is only touched from the
// game tick, so it carries no lock.
type Registry struct {
	entities map[string]*Entity
}

func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[string]*Entity),
	}
}

// Upsert inserts the entity if absent, otherwise merges the non-nil fields.
// It reports whether the entity was created.
func (r *Registry) Upsert(ID string, f Fields) bool {
	if e, ok := r.entities[ID]; ok {
		e.apply(f)
		return false
	}
	e := &Entity{ID: ID}
	if f.Position != nil {
		e.Position = *f.Position
	}
	e.apply(f)
	r.entities[ID] = e
	return true
}

// Remove deletes the entity and returns its last state.
func (r *Registry) Remove(ID string) (Entity, bool) {
	e, ok := r.entities[ID]
	if !ok {
		return Entity{}, false
	}
	delete(r.entities, ID)
	return *e, true
}

// ReplaceAll destroys every entity of the given kind before inserting the
// new population.
func (r *Registry) ReplaceAll(kind Kind, entities []Entity) {
	for ID, e := range r.entities {
		if e.Kind == kind {
			delete(r.entities, ID)
		}
	}
	for _, e := range entities {
		e := e
		e.Kind = kind
		r.entities[e.ID] = &e
	}
}

// Get returns a copy of the entity.
func (r *Registry) Get(ID string) (Entity, bool) {
	e, ok := r.entities[ID]
	if !ok {
		return Entity{}, false
	}
	return *e, true
}

func (r *Registry) Has(ID string) bool {
	_, ok := r.entities[ID]
	return ok
}

// All returns copies of every entity ordered by id.
func (r *Registry) All() []Entity {
	all := make([]Entity, 0, len(r.entities))
	for _, e := range r.entities {
		all = append(all, *e)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].ID < all[j].ID
	})
	return all
}

// ForEach visits a copy of every entity in no particular order.
func (r *Registry) ForEach(callback func(Entity)) {
	for _, e := range r.entities {
		callback(*e)
	}
}

func (r *Registry) Len() int {
	return len(r.entities)
}

func (r *Registry) Count(kind Kind) int {
	n := 0
	for _, e := range r.entities {
		if e.Kind == kind {
			n++
		}
	}
	return n
}
