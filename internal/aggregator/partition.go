package aggregator

// Partition maps a composite key to the indices of the rows that share it.
// Keys are kept in first-seen order so iteration is deterministic for a given
// input ordering.
type Partition[K comparable] struct {
	keys []K
	rows map[K][]int
}

// PartitionBy groups rows by key. Rows for which key reports false are left
// out of every group.
func PartitionBy[T any, K comparable](rows []T, key func(T) (K, bool)) *Partition[K] {
	p := &Partition[K]{rows: make(map[K][]int)}
	for i, r := range rows {
		k, ok := key(r)
		if !ok {
			continue
		}
		if _, seen := p.rows[k]; !seen {
			p.keys = append(p.keys, k)
		}
		p.rows[k] = append(p.rows[k], i)
	}
	return p
}

// Keys returns the group keys in first-seen order.
func (p *Partition[K]) Keys() []K { return p.keys }

// Rows returns the row indices belonging to k.
func (p *Partition[K]) Rows(k K) []int { return p.rows[k] }

// Len returns the number of groups.
func (p *Partition[K]) Len() int { return len(p.keys) }

// Broadcast evaluates reduce once per group and hands the result back to every
// row of that group, which is the window semantic: the output is indexed like
// rows. ok[i] is false for rows that belong to no group. The group slice is
// reused between calls, so reduce must not retain it.
func Broadcast[T any, K comparable, V any](p *Partition[K], rows []T, reduce func(group []T) V) (vals []V, ok []bool) {
	vals = make([]V, len(rows))
	ok = make([]bool, len(rows))
	group := make([]T, 0)
	for _, k := range p.keys {
		idx := p.rows[k]
		group = group[:0]
		for _, i := range idx {
			group = append(group, rows[i])
		}
		v := reduce(group)
		for _, i := range idx {
			vals[i] = v
			ok[i] = true
		}
	}
	return vals, ok
}
