package compose

// Multisets returns every multiset of size n drawn with repetition from pool,
// as slices in lexicographic order of pool index. For pool {a, b} and n=2 the
// result is {a,a}, {a,b}, {b,b}.
func Multisets[T any](pool []T, n int) [][]T {
	if n < 0 || (len(pool) == 0 && n > 0) {
		return nil
	}
	if n == 0 {
		return [][]T{{}}
	}

	var out [][]T
	idx := make([]int, n)
	for {
		combo := make([]T, n)
		for i, j := range idx {
			combo[i] = pool[j]
		}
		out = append(out, combo)

		// advance the rightmost index that can still grow, then reset the
		// tail to it so indices stay non-decreasing
		i := n - 1
		for i >= 0 && idx[i] == len(pool)-1 {
			i--
		}
		if i < 0 {
			return out
		}
		idx[i]++
		for k := i + 1; k < n; k++ {
			idx[k] = idx[i]
		}
	}
}

// MultisetCount returns the number of multisets of size n over k elements,
// C(k+n-1, n).
func MultisetCount(k, n int) int {
	if n < 0 || (k == 0 && n > 0) {
		return 0
	}
	count := 1
	for i := 1; i <= n; i++ {
		count = count * (k + i - 1) / i
	}
	return count
}

// CrossProduct visits each tuple of the cartesian product of axes in
// lexicographic order, one element per axis. The visitor returns false to
// stop early. The tuple slice is reused between calls.
func CrossProduct[T any](axes [][]T, visit func(tuple []T) bool) {
	for _, axis := range axes {
		if len(axis) == 0 {
			return
		}
	}

	idx := make([]int, len(axes))
	tuple := make([]T, len(axes))
	for {
		for i, j := range idx {
			tuple[i] = axes[i][j]
		}
		if !visit(tuple) {
			return
		}

		i := len(axes) - 1
		for i >= 0 {
			idx[i]++
			if idx[i] < len(axes[i]) {
				break
			}
			idx[i] = 0
			i--
		}
		if i < 0 {
			return
		}
	}
}

// Flatten concatenates ordered groups into one ordered list.
func Flatten[T any](groups [][]T) []T {
	n := 0
	for _, g := range groups {
		n += len(g)
	}
	out := make([]T, 0, n)
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
