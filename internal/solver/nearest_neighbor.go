package solver

// nearestNeighbor greedily extends the tour with the unvisited node
// scoring highest on closeness plus weighted priority. Deterministic
// O(n^2) baseline; also the fallback for degenerate inputs.
func (r *run) nearestNeighbor() []int {
	n := len(r.nodes)
	order := make([]int, 0, n)
	visited := make([]bool, n)
	cur := -1 // -1 marks the start position
	for len(order) < n {
		best := -1
		bestScore := 0.0
		for i := 0; i < n; i++ {
			if visited[i] {
				continue
			}
			d := 0.0
			if cur < 0 {
				d = r.startDist[i]
			} else {
				d = r.matrix.Dist[cur][i]
			}
			score := 1e6/(d+1) + float64(r.nodes[i].Priority)*r.pw*1e4
			if best < 0 || score > bestScore {
				best = i
				bestScore = score
			}
		}
		visited[best] = true
		order = append(order, best)
		cur = best
	}
	return order
}
