package mark

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/lispheap/heap/roots"
	"github.com/joshuapare/lispheap/internal/format"
)

var layouts = []Layout{LayoutLoop, LayoutSplit}

func TestLayoutNames(t *testing.T) {
	for _, l := range layouts {
		got, ok := ParseLayout(l.String())
		require.True(t, ok)
		assert.Equal(t, l, got)
	}
	_, ok := ParseLayout("bogus")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Layout(9).String())
}

func TestMarkInlineIsNoop(t *testing.T) {
	for _, l := range layouts {
		t.Run(l.String(), func(t *testing.T) {
			b := newBuilder(t, 16)
			b.h.FlagAll()
			m := New(b.h, l)
			m.Mark(format.Int(5))
			m.Mark(format.Nil)
			m.Mark(format.Void)
			assert.Equal(t, 0, m.Stats().Marked)
			assert.Len(t, garbageSet(b.h), 16)
		})
	}
}

func TestMarkListAndGarbage(t *testing.T) {
	for _, l := range layouts {
		t.Run(l.String(), func(t *testing.T) {
			b := newBuilder(t, 64)
			live := b.list(10)
			dead := b.list(5)

			b.h.FlagAll()
			m := New(b.h, l)
			m.Mark(live)

			assert.Equal(t, 10, m.Stats().Marked)
			assert.False(t, b.h.IsGarbage(live))
			assert.True(t, b.h.IsGarbage(dead))
			assert.Len(t, garbageSet(b.h), 54)
		})
	}
}

func TestMarkCycles(t *testing.T) {
	for _, l := range layouts {
		t.Run(l.String(), func(t *testing.T) {
			b := newBuilder(t, 16)
			a := b.cons(format.Int(1), format.Nil)
			c := b.cons(a, a)
			b.h.SetCdr(a, c) // a -> c -> a
			b.h.SetCar(a, a) // self loop in head

			sym := b.symbol(format.Void, format.Nil)
			b.h.SetVal(sym, sym) // self-bound symbol

			b.h.FlagAll()
			m := New(b.h, l)
			m.Mark(c)
			m.Mark(sym)
			m.Mark(c)

			assert.Equal(t, 3, m.Stats().Marked)
			assert.False(t, b.h.IsGarbage(a))
			assert.False(t, b.h.IsGarbage(c))
			assert.False(t, b.h.IsGarbage(sym))
		})
	}
}

func TestMarkSymbolBindingAndNames(t *testing.T) {
	for _, l := range layouts {
		t.Run(l.String(), func(t *testing.T) {
			b := newBuilder(t, 32)
			text, _ := format.PackText([]byte("tail"))
			names := b.name("abcdefg", b.name("hijklmn", text))
			prop := b.cons(b.list(2), names)
			binding := b.list(3)
			sym := b.symbol(binding, prop)
			unrelated := b.list(4)

			b.h.FlagAll()
			m := New(b.h, l)
			m.MarkRoots(roots.Values{sym})

			// sym + 3 binding + prop pair + 2 prop list + 2 names
			assert.Equal(t, 9, m.Stats().Marked)
			assert.Equal(t, 1, m.Stats().Roots)
			assert.False(t, b.h.IsGarbage(names))
			assert.True(t, b.h.IsGarbage(unrelated))
		})
	}
}

func TestMarkLongListHasConstantDepth(t *testing.T) {
	const length = 100_000
	for _, l := range layouts {
		t.Run(l.String(), func(t *testing.T) {
			b := newBuilder(t, 4096)
			list := b.list(length)

			b.h.FlagAll()
			m := New(b.h, l)
			m.Mark(list)

			assert.Equal(t, length, m.Stats().Marked)
			assert.LessOrEqual(t, m.Stats().MaxDepth, 2, "tail walk must not recurse")
		})
	}
}

func TestMarkLongSymbolChainHasConstantDepth(t *testing.T) {
	const length = 10_000
	for _, l := range layouts {
		t.Run(l.String(), func(t *testing.T) {
			b := newBuilder(t, 1024)
			v := format.Nil
			for i := range length {
				v = b.symbol(format.Int(int64(i)), v)
			}

			b.h.FlagAll()
			m := New(b.h, l)
			m.Mark(v)

			assert.Equal(t, length, m.Stats().Marked)
			assert.LessOrEqual(t, m.Stats().MaxDepth, 2)
		})
	}
}

func TestMarkDepthFollowsHeadNesting(t *testing.T) {
	for _, l := range layouts {
		t.Run(l.String(), func(t *testing.T) {
			b := newBuilder(t, 64)
			v := format.Nil
			for range 20 {
				v = b.cons(v, format.Nil)
			}

			b.h.FlagAll()
			m := New(b.h, l)
			m.Mark(v)
			assert.Equal(t, 20, m.Stats().MaxDepth)

			m.Reset()
			assert.Equal(t, Stats{}, m.Stats())
		})
	}
}

// TestLayoutsAgree builds random graphs with shared structure and cycles and
// checks both layouts leave exactly the same cells flagged.
func TestLayoutsAgree(t *testing.T) {
	for seed := range uint64(20) {
		rng := rand.New(rand.NewPCG(seed, 0x5eed))
		b := newBuilder(t, 128)

		var nodes []format.Value
		pick := func() format.Value {
			if len(nodes) == 0 || rng.IntN(4) == 0 {
				return format.Int(int64(rng.IntN(100)))
			}
			return nodes[rng.IntN(len(nodes))]
		}
		for range 300 {
			var v format.Value
			switch rng.IntN(3) {
			case 0:
				v = b.cons(pick(), pick())
			case 1:
				v = b.symbol(pick(), pick())
			default:
				v = b.name("x", pick())
			}
			nodes = append(nodes, v)
		}
		// Rewire some Pair tails backwards and forwards to create cycles.
		for range 60 {
			v := nodes[rng.IntN(len(nodes))]
			if format.IsPair(v) {
				b.h.SetCdr(v, nodes[rng.IntN(len(nodes))])
			}
		}
		rootSet := roots.Values{nodes[rng.IntN(len(nodes))], nodes[rng.IntN(len(nodes))]}

		b.h.FlagAll()
		loop := New(b.h, LayoutLoop)
		loop.MarkRoots(rootSet)
		afterLoop := garbageSet(b.h)

		b.h.FlagAll()
		split := New(b.h, LayoutSplit)
		split.MarkRoots(rootSet)
		afterSplit := garbageSet(b.h)

		require.Equal(t, afterLoop, afterSplit, "seed %d", seed)
		require.Equal(t, loop.Stats().Marked, split.Stats().Marked, "seed %d", seed)
	}
}

func BenchmarkMarkList(b *testing.B) {
	for _, l := range layouts {
		b.Run(l.String(), func(b *testing.B) {
			bld := newBuilder(b, 4096)
			list := bld.list(10_000)
			m := New(bld.h, l)
			b.ResetTimer()
			for b.Loop() {
				bld.h.FlagAll()
				m.Reset()
				m.Mark(list)
			}
		})
	}
}
