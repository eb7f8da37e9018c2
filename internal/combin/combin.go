// Package combin enumerates the card subsets offered by selection prompts.
package combin

// Combinations returns every r-subset of {0..n-1} as ascending index lists,
// in lexicographic order: [0 1] [0 2] [0 3] [1 2] ... for n=4, r=2.
func Combinations(n, r int) [][]int {
	if r < 0 || r > n {
		return nil
	}
	idx := make([]int, r)
	for i := range idx {
		idx[i] = i
	}
	var out [][]int
	for {
		c := make([]int, r)
		copy(c, idx)
		out = append(out, c)

		// Advance the rightmost index that still has room.
		i := r - 1
		for i >= 0 && idx[i] == n-r+i {
			i--
		}
		if i < 0 {
			return out
		}
		idx[i]++
		for j := i + 1; j < r; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// WithWeight returns every non-empty subset, smallest first, that can pay a
// cost of exactly r when each chosen card counts either as one or as its
// weight. Subsets of equal size keep Combinations order.
func WithWeight(weights []int, r int) [][]int {
	var out [][]int
	for k := 1; k <= len(weights); k++ {
		for _, comb := range Combinations(len(weights), k) {
			if sumTo(weights, comb, 0, r) {
				out = append(out, comb)
			}
		}
	}
	return out
}

func sumTo(w, ind []int, i, r int) bool {
	if r <= 0 {
		return false
	}
	if i == len(ind)-1 {
		return r == 1 || w[ind[i]] == r
	}
	return sumTo(w, ind, i+1, r-1) || sumTo(w, ind, i+1, r-w[ind[i]])
}
