package talon

// IgnorePair names two actors whose shapes must never be tested against each
// other. The relation is symmetric; order does not matter.
type IgnorePair struct {
	A *ActorHandle
	B *ActorHandle
}

// SetIgnoreCollisionPairTable replaces the ignore-pair relation. Both
// directions of every pair become queryable in O(1). The iteration cache is
// invalidated: the filtered pair set has changed.
func (s *Simulation) SetIgnoreCollisionPairTable(pairs []IgnorePair) {
	s.ignorePairs = make(map[*ActorHandle]map[*ActorHandle]struct{}, len(pairs))

	for _, p := range pairs {
		if p.A == nil || p.B == nil {
			continue
		}
		s.addIgnorePair(p.A, p.B)
		s.addIgnorePair(p.B, p.A)
	}

	s.invalidateCache()
}

// SetIgnoreCollisionActors replaces the set of actors excluded from all
// collision
func (s *Simulation) SetIgnoreCollisionActors(actors []*ActorHandle) {
	s.ignoreActors = make(map[*ActorHandle]struct{}, len(actors))

	for _, h := range actors {
		if h == nil {
			continue
		}
		s.ignoreActors[h] = struct{}{}
	}

	s.invalidateCache()
}

func (s *Simulation) addIgnorePair(from, to *ActorHandle) {
	set, ok := s.ignorePairs[from]
	if !ok {
		set = map[*ActorHandle]struct{}{}
		s.ignorePairs[from] = set
	}
	set[to] = struct{}{}
}

// shouldIgnore reports whether contact generation is suppressed for the two
// actors, either by the pair table or by the ignore-actor set
func (s *Simulation) shouldIgnore(a, b *ActorHandle) bool {
	if _, ok := s.ignoreActors[a]; ok {
		return true
	}
	if _, ok := s.ignoreActors[b]; ok {
		return true
	}
	if set, ok := s.ignorePairs[a]; ok {
		if _, ok := set[b]; ok {
			return true
		}
	}

	return false
}

// dropIgnoreEntries purges a removed actor from both filter tables so the
// maps never pin stale handles
func (s *Simulation) dropIgnoreEntries(h *ActorHandle) {
	delete(s.ignoreActors, h)

	if set, ok := s.ignorePairs[h]; ok {
		for other := range set {
			delete(s.ignorePairs[other], h)
			if len(s.ignorePairs[other]) == 0 {
				delete(s.ignorePairs, other)
			}
		}
		delete(s.ignorePairs, h)
	}
}
