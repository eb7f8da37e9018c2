package combin

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func binomial(n, r int) int {
	if r < 0 || r > n {
		return 0
	}
	c := 1
	for i := 0; i < r; i++ {
		c = c * (n - i) / (i + 1)
	}
	return c
}

func TestCombinationsOrder(t *testing.T) {
	got := Combinations(4, 2)
	assert.Equal(t, [][]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}, got)
}

func TestCombinationsCounts(t *testing.T) {
	for n := 0; n <= 8; n++ {
		for r := 0; r <= n; r++ {
			got := Combinations(n, r)
			assert.Len(t, got, binomial(n, r), "C(%d,%d)", n, r)

			seen := map[string]bool{}
			for _, c := range got {
				assert.Len(t, c, r)
				for i := 1; i < len(c); i++ {
					assert.Less(t, c[i-1], c[i])
				}
				key := fmt.Sprint(c)
				assert.False(t, seen[key], "duplicate %v", c)
				seen[key] = true
			}
		}
	}
}

func TestCombinationsOutOfRange(t *testing.T) {
	assert.Nil(t, Combinations(2, 3))
	assert.Nil(t, Combinations(2, -1))
	assert.Equal(t, [][]int{{}}, Combinations(3, 0))
}

func TestWithWeight(t *testing.T) {
	got := WithWeight([]int{1, 1, 2, 1}, 2)

	assert.Contains(t, got, []int{2}, "double-tribute card alone")
	assert.Contains(t, got, []int{0, 1})
	assert.Contains(t, got, []int{0, 3})
	assert.Contains(t, got, []int{1, 3})
	for _, c := range got {
		assert.LessOrEqual(t, len(c), 2, "no subset pays more than 2: %v", c)
	}
	assert.NotContains(t, got, []int{0})
	assert.NotContains(t, got, []int{0, 1, 3})
}

func TestWithWeightUniform(t *testing.T) {
	// With all weights 1 the result is exactly the r-subsets.
	assert.Equal(t, Combinations(4, 2), WithWeight([]int{1, 1, 1, 1}, 2))
}
