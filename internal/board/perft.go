package board

// PerftCache stores node counts keyed by position hash and depth. Perft only
// consults it for depths of two or more.
type PerftCache interface {
	Lookup(hash uint64, depth int) (uint64, bool)
	Store(hash uint64, depth int, nodes uint64)
}

// Perft counts the leaf nodes of the legal move tree at the given depth.
// This is the standard way to verify move generation correctness.
func Perft(p *Position, depth int, cache PerftCache) uint64 {
	if depth <= 0 {
		return 1
	}

	moves := p.LegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}

	if cache != nil {
		if nodes, ok := cache.Lookup(p.Hash, depth); ok {
			return nodes
		}
	}

	var nodes uint64
	for _, m := range moves {
		p.MakeMove(m)
		nodes += Perft(p, depth-1, cache)
		p.UndoMove()
	}

	if cache != nil {
		cache.Store(p.Hash, depth, nodes)
	}
	return nodes
}

// Divide runs Perft below every root move and returns the count per move in
// UCI notation. Visit, when not nil, is called after each root move.
func Divide(p *Position, depth int, cache PerftCache, visit func(m Move, nodes uint64)) map[string]uint64 {
	result := make(map[string]uint64)
	if depth <= 0 {
		return result
	}

	for _, m := range p.LegalMoves() {
		p.MakeMove(m)
		nodes := Perft(p, depth-1, cache)
		p.UndoMove()

		result[m.String()] = nodes
		if visit != nil {
			visit(m, nodes)
		}
	}
	return result
}
