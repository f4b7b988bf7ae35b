package finder

import (
	"math"
	"math/bits"
)

// Generator lazily enumerates column combinations of the working set,
// ordered by size (1..k) and lexicographically within a size.
// A Generator is single use.
type Generator struct {
	working []int
	k       int
	size    int
	pos     []int // positions into working for the current combination
	done    bool
}

// Combinations returns a generator over all subsets of working with
// 1 to k members. k is clamped to len(working).
func Combinations(working []int, k int) *Generator {
	if k > len(working) {
		k = len(working)
	}
	return &Generator{
		working: working,
		k:       k,
		done:    k < 1,
	}
}

// Size returns the size of the last candidate produced, 0 before the first.
func (g *Generator) Size() int {
	return g.size
}

// Next returns the next candidate. The returned slice is freshly allocated.
func (g *Generator) Next() (Candidate, bool) {
	if g.done {
		return nil, false
	}

	if !g.advance() {
		g.size++
		if g.size > g.k {
			g.done = true
			return nil, false
		}
		g.pos = make([]int, g.size)
		for i := range g.pos {
			g.pos[i] = i
		}
	}

	c := make(Candidate, g.size)
	for i, p := range g.pos {
		c[i] = g.working[p]
	}
	return c, true
}

// advance moves pos to the next combination of the current size.
func (g *Generator) advance() bool {
	if g.pos == nil {
		return false
	}
	n, s := len(g.working), len(g.pos)
	i := s - 1
	for i >= 0 && g.pos[i] == n-s+i {
		i--
	}
	if i < 0 {
		return false
	}
	g.pos[i]++
	for j := i + 1; j < s; j++ {
		g.pos[j] = g.pos[j-1] + 1
	}
	return true
}

// TotalCombinations returns C(n,1)+C(n,2)+...+C(n,k) without enumerating.
// k is clamped to n. The result saturates at math.MaxInt64.
func TotalCombinations(n, k int) int64 {
	if k > n {
		k = n
	}
	var total uint64
	for i := 1; i <= k; i++ {
		b, ok := binomial(n, i)
		if !ok {
			return math.MaxInt64
		}
		sum, carry := bits.Add64(total, b, 0)
		if carry != 0 || sum > math.MaxInt64 {
			return math.MaxInt64
		}
		total = sum
	}
	return int64(total)
}

// binomial computes C(n,k) exactly, reporting false on overflow.
func binomial(n, k int) (uint64, bool) {
	if k < 0 || k > n {
		return 0, true
	}
	if k > n-k {
		k = n - k
	}
	r := uint64(1)
	for i := 0; i < k; i++ {
		hi, lo := bits.Mul64(r, uint64(n-i))
		if hi != 0 {
			return 0, false
		}
		r = lo / uint64(i+1)
	}
	return r, true
}
