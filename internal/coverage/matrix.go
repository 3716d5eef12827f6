// Package coverage turns a combination into a key-by-package coverage grid.
package coverage

import (
	"sort"
	"sync"

	"github.com/adrior11/check24-best-combination-submission/internal/combo"
)

// Keys returns the sorted union of coverage keys across packages.
func Keys(packages []combo.Package) []string {
	seen := make(map[string]struct{})
	for _, p := range packages {
		for k := range p.Coverage {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Matrix is the coverage grid of one combination. Rows are coverage keys,
// columns are packages in combination order.
type Matrix struct {
	Rows    []string
	Columns []string
	cells   [][]combo.CoverageValue
}

// Build computes the matrix for c.
func Build(c combo.Combination) Matrix {
	rows := Keys(c.Packages)
	cols := make([]string, len(c.Packages))
	for j, p := range c.Packages {
		cols[j] = p.Name
	}

	cells := make([][]combo.CoverageValue, len(rows))
	for i, key := range rows {
		cells[i] = make([]combo.CoverageValue, len(c.Packages))
		for j, p := range c.Packages {
			if v, ok := p.Coverage[key]; ok {
				cells[i][j] = v
			}
		}
	}
	return Matrix{Rows: rows, Columns: cols, cells: cells}
}

// Cell returns the value at (row, col), or combo.NoCoverage when either is
// out of range.
func (m Matrix) Cell(row, col int) combo.CoverageValue {
	if row < 0 || row >= len(m.cells) || col < 0 || col >= len(m.cells[row]) {
		return combo.NoCoverage
	}
	return m.cells[row][col]
}

// Lookup returns the value for a key and package name.
func (m Matrix) Lookup(key, pkg string) combo.CoverageValue {
	row := sort.SearchStrings(m.Rows, key)
	if row >= len(m.Rows) || m.Rows[row] != key {
		return combo.NoCoverage
	}
	for col, name := range m.Columns {
		if name == pkg {
			return m.Cell(row, col)
		}
	}
	return combo.NoCoverage
}

// Memo caches matrices by position in one result set. Create a
// new Memo whenever the result set is replaced.
type Memo struct {
	mu  sync.Mutex
	set []combo.Combination
	m   map[int]Matrix
}

// NewMemo returns a Memo bound to set.
func NewMemo(set []combo.Combination) *Memo {
	return &Memo{set: set, m: make(map[int]Matrix, len(set))}
}

// Matrix returns the matrix of the combination at position i of the set.
func (m *Memo) Matrix(i int) (Matrix, bool) {
	if i < 0 || i >= len(m.set) {
		return Matrix{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if mx, ok := m.m[i]; ok {
		return mx, true
	}
	mx := Build(m.set[i])
	m.m[i] = mx
	return mx, true
}

// Len returns the number of cached matrices.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.m)
}
