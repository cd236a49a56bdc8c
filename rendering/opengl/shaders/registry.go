package shaders

// Registry maps (program kind, semantic) to a uniform location. Only resolved
// locations are registered, so iterating the consumers of a semantic visits
// exactly the programs whose source declares it.
type Registry struct {
	locations [kindCount]map[Semantic]int32
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.locations {
		r.locations[i] = make(map[Semantic]int32)
	}
	return r
}

// Register records a location; negative locations are dropped
func (r *Registry) Register(k Kind, s Semantic, loc int32) {
	if loc < 0 || k < 0 || k >= kindCount {
		return
	}
	r.locations[k][s] = loc
}

// Lookup returns the location of s in program k
func (r *Registry) Lookup(k Kind, s Semantic) (int32, bool) {
	if k < 0 || k >= kindCount {
		return -1, false
	}
	loc, ok := r.locations[k][s]
	if !ok {
		return -1, false
	}
	return loc, true
}

// Consumers returns, in build order, the kinds that declare s
func (r *Registry) Consumers(s Semantic) []Kind {
	var kinds []Kind
	for _, k := range Kinds {
		if _, ok := r.locations[k][s]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// Forget drops every location of k
func (r *Registry) Forget(k Kind) {
	if k >= 0 && k < kindCount {
		r.locations[k] = make(map[Semantic]int32)
	}
}
