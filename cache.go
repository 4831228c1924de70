package talon

import "go.uber.org/zap"

// iterationCache memoizes the shape-pair enumeration the contact generator
// walks every frame. The enumeration itself is implicit — dynamic shape i
// against every later shape j of a different actor — so the cache only needs
// the partition snapshot and the sorted list of enumeration positions the
// filter table excludes. It is valid for exactly one actor-set
// configuration: any create, remove, swap or filter update invalidates it.
type iterationCache struct {
	// sorted enumeration positions to bypass without testing
	skip []int

	numShapes        int
	numDynamicShapes int

	// tick at which the cache was last rebuilt, for staleness diagnostics
	builtTick uint64
	valid     bool
}

// invalidateCache flags the enumeration for rebuild on next use
func (s *Simulation) invalidateCache() {
	s.cache.valid = false
}

// prepareIterationCache rebuilds the enumeration bookkeeping if anything
// invalidated it since the last build. Returns whether a rebuild happened.
func (s *Simulation) prepareIterationCache() bool {
	if s.cache.valid {
		return false
	}

	c := &s.cache
	c.skip = c.skip[:0]
	c.numShapes = s.shapes.len()

	// shapes follow actor order, so the simulated actors' shapes form a
	// contiguous prefix
	nd := 0
	for nd < c.numShapes && s.shapes.owners[nd] < s.numSimulated {
		nd++
	}
	c.numDynamicShapes = nd

	pos := 0
	for i := 0; i < c.numDynamicShapes; i++ {
		ownerA := s.shapes.owners[i]
		handleA := s.handles[ownerA]

		for j := i + 1; j < c.numShapes; j++ {
			ownerB := s.shapes.owners[j]
			if ownerB == ownerA {
				continue
			}

			if s.shouldIgnore(handleA, s.handles[ownerB]) {
				c.skip = append(c.skip, pos)
			}
			pos++
		}
	}

	c.builtTick = s.simCount
	c.valid = true

	s.log.Debug("iteration cache rebuilt",
		zap.Uint64("tick", s.simCount),
		zap.Int("positions", pos),
		zap.Int("skipped", len(c.skip)),
	)

	return true
}
