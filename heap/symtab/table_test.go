package symtab

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/lispheap/heap"
	"github.com/joshuapare/lispheap/heap/alloc"
	"github.com/joshuapare/lispheap/heap/roots"
	"github.com/joshuapare/lispheap/internal/format"
)

func newTestTable(t *testing.T, cells int) (*Table, *alloc.Allocator) {
	t.Helper()
	h, err := heap.New(heap.Config{CellsPerSegment: cells, MinSegments: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	a := alloc.New(h, roots.New(), alloc.DefaultOptions)
	return New(a), a
}

func TestInternReturnsSameSymbol(t *testing.T) {
	tab, _ := newTestTable(t, 64)

	a, err := tab.Intern("car")
	require.NoError(t, err)
	b, err := tab.Intern("car")
	require.NoError(t, err)
	c, err := tab.Intern("cdr")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	perm, trans := tab.Len()
	assert.Equal(t, 2, perm)
	assert.Equal(t, 0, trans)
}

func TestNewSymbolIsUnbound(t *testing.T) {
	tab, a := newTestTable(t, 64)
	sym, err := tab.Intern("x")
	require.NoError(t, err)
	assert.Equal(t, sym, a.Heap().Val(sym))
}

func TestShortNameIsInline(t *testing.T) {
	tab, a := newTestTable(t, 64)
	sym, err := tab.Intern("abcdefg")
	require.NoError(t, err)

	tail := a.Heap().Tail(sym)
	require.True(t, format.IsText(tail))
	assert.Equal(t, []byte("abcdefg"), format.UnpackText(tail))
	// symbol + table pair
	assert.Equal(t, 62, a.Heap().FreeCount())
}

func TestLongNameRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
		cells int // name fragment cells
	}{
		{"eight bytes", "abcdefgh", 1},
		{"fourteen bytes", "abcdefghijklmn", 1},
		{"fifteen bytes", "abcdefghijklmno", 2},
		{"latin1", "résumé-über-café", 2},
		{"long", strings.Repeat("x", 50), 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tab, a := newTestTable(t, 64)
			sym, err := tab.Intern(tt.input)
			require.NoError(t, err)

			got, err := tab.Name(sym)
			require.NoError(t, err)
			assert.Equal(t, tt.input, got)

			n := 0
			for v := a.Heap().Tail(sym); format.IsName(v); v = a.Heap().Val(v) {
				n++
			}
			assert.Equal(t, tt.cells, n)
			assert.Equal(t, tt.cells, a.Stats().Names)
		})
	}
}

func TestNameOutsideLatin1(t *testing.T) {
	tab, _ := newTestTable(t, 64)
	_, err := tab.Intern("日本")
	require.ErrorIs(t, err, ErrEncoding)
	_, ok := tab.Lookup("日本")
	assert.False(t, ok)
}

func TestNameRequiresSymbol(t *testing.T) {
	tab, _ := newTestTable(t, 64)
	_, err := tab.Name(format.Int(3))
	require.ErrorIs(t, err, ErrNotSymbol)
	_, err = tab.Get(format.Nil, format.Nil)
	require.ErrorIs(t, err, ErrNotSymbol)
	require.ErrorIs(t, tab.Put(format.Int(1), format.Nil, format.Nil), ErrNotSymbol)
}

func TestTransientIsSeparate(t *testing.T) {
	tab, _ := newTestTable(t, 64)
	p, err := tab.Intern("file")
	require.NoError(t, err)
	tr, err := tab.Transient("file")
	require.NoError(t, err)
	again, err := tab.Transient("file")
	require.NoError(t, err)

	assert.NotEqual(t, p, tr)
	assert.Equal(t, tr, again)
	got, ok := tab.Lookup("file")
	require.True(t, ok)
	assert.Equal(t, p, got)
}

func TestClearTransientFreesSymbols(t *testing.T) {
	tab, a := newTestTable(t, 64)
	for i := range 5 {
		_, err := tab.Transient(fmt.Sprintf("local-symbol-%d", i))
		require.NoError(t, err)
	}
	require.Less(t, a.Heap().FreeCount(), 64)

	tab.ClearTransient()
	_, trans := tab.Len()
	assert.Equal(t, 0, trans)
	assert.Equal(t, format.Nil, a.Roots().Transient)

	a.CollectExplicit(1)
	assert.Equal(t, 64, a.Heap().FreeCount())
}

func TestInternedSymbolsSurviveCollection(t *testing.T) {
	// Four-cell segments force collections in the middle of building name
	// chains.
	tab, a := newTestTable(t, 4)

	names := make([]string, 40)
	syms := make([]format.Value, len(names))
	for i := range names {
		names[i] = fmt.Sprintf("interned-symbol-number-%02d", i)
		sym, err := tab.Intern(names[i])
		require.NoError(t, err)
		syms[i] = sym

		// unrooted garbage between interns
		a.MakePair(format.Int(int64(i)), format.Nil)
		a.MakePair(format.Int(int64(i)), format.Nil)
	}
	a.CollectExplicit(0)
	require.NotZero(t, a.Stats().Collections)

	for i, name := range names {
		got, err := tab.Name(syms[i])
		require.NoError(t, err)
		assert.Equal(t, name, got)

		sym, ok := tab.Lookup(name)
		require.True(t, ok)
		assert.Equal(t, syms[i], sym)
	}
}

func TestProperties(t *testing.T) {
	tab, a := newTestTable(t, 8)
	sym, err := tab.Intern("a-symbol-with-props")
	require.NoError(t, err)
	key, err := tab.Intern("color")
	require.NoError(t, err)

	v, err := tab.Get(sym, key)
	require.NoError(t, err)
	assert.Equal(t, format.Nil, v)

	require.NoError(t, tab.Put(sym, key, format.Int(1)))
	require.NoError(t, tab.Put(sym, format.Int(9), format.Int(2)))
	require.NoError(t, tab.Put(sym, key, format.Int(3)))

	for range 20 {
		a.MakePair(format.Nil, format.Nil)
	}
	a.CollectExplicit(0)

	v, err = tab.Get(sym, key)
	require.NoError(t, err)
	assert.Equal(t, format.Int(3), v)
	v, err = tab.Get(sym, format.Int(9))
	require.NoError(t, err)
	assert.Equal(t, format.Int(2), v)

	name, err := tab.Name(sym)
	require.NoError(t, err)
	assert.Equal(t, "a-symbol-with-props", name)
}

func TestNewIndexesExistingTables(t *testing.T) {
	tab, a := newTestTable(t, 64)
	sym, err := tab.Intern("a-long-shared-name")
	require.NoError(t, err)
	tr, err := tab.Transient("t")
	require.NoError(t, err)

	other := New(a)
	got, ok := other.Lookup("a-long-shared-name")
	require.True(t, ok)
	assert.Equal(t, sym, got)
	again, err := other.Transient("t")
	require.NoError(t, err)
	assert.Equal(t, tr, again)
}
