package service

import (
	"github.com/Harshitk-cp/causalchain/internal/domain"
)

// TraceForward returns every path that follows effects from startID, up to
// maxDepth hops. A maxDepth of zero or less uses DefaultMaxDepth. An unknown
// start id yields no paths.
func (s *CausalService) TraceForward(startID string, maxDepth int) [][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trace(startID, maxDepth, domain.DirectionForward)
}

// TraceBackward follows causes from endID. Paths are returned in causal
// order: the farthest cause first and endID last.
func (s *CausalService) TraceBackward(endID string, maxDepth int) [][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trace(endID, maxDepth, domain.DirectionBackward)
}

// trace is a depth-first search with a path-local visited set: a node is
// marked when pushed and unmarked when popped, so sibling branches may
// revisit it but a single path never contains it twice. A branch ends, and
// its path is recorded, when depth exceeds maxDepth, when the node has no
// further neighbours, or when the next node is already on the path.
// Callers must hold s.mu.
func (s *CausalService) trace(startID string, maxDepth int, dir domain.Direction) [][]string {
	paths := [][]string{}
	if _, ok := s.store.Node(startID); !ok {
		return paths
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	var path []string
	onPath := make(map[string]bool)

	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		if depth > maxDepth || onPath[id] {
			paths = append(paths, orderPath(path, dir))
			return
		}

		path = append(path, id)
		onPath[id] = true

		next := s.neighbours(id, dir)
		if len(next) == 0 {
			paths = append(paths, orderPath(path, dir))
		}
		for _, n := range next {
			walk(n, depth+1)
		}

		path = path[:len(path)-1]
		delete(onPath, id)
	}
	walk(startID, 0)

	return paths
}

func (s *CausalService) neighbours(id string, dir domain.Direction) []string {
	node, ok := s.store.Node(id)
	if !ok {
		return nil
	}
	if dir == domain.DirectionBackward {
		return node.Causes
	}
	return node.Effects
}

// orderPath copies path, reversing backward walks into causal order.
func orderPath(path []string, dir domain.Direction) []string {
	out := make([]string, len(path))
	if dir == domain.DirectionBackward {
		for i, id := range path {
			out[len(path)-1-i] = id
		}
		return out
	}
	copy(out, path)
	return out
}

func maxPathLength(paths [][]string) int {
	longest := 0
	for _, p := range paths {
		if len(p) > longest {
			longest = len(p)
		}
	}
	return longest
}
