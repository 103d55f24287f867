package abstract

import (
	"cmp"
	"math/rand"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type intMap = Map[int, int]

func makeIntMap() intMap {
	return MakeMap[int, int](cmp.Compare[int])
}

// verify checks the structural invariants of the tree and that its contents
// match exp.
func verify(t *testing.T, m *intMap, exp map[int]int) {
	t.Helper()
	require.Equal(t, len(exp), m.Len())
	if m.root == nil {
		require.Empty(t, exp)
		return
	}
	leafDepth := -1
	var walk func(n *node[int, int], depth int, isRoot bool)
	walk = func(n *node[int, int], depth int, isRoot bool) {
		require.LessOrEqual(t, int(n.count), MaxEntries)
		if !isRoot {
			require.GreaterOrEqual(t, int(n.count), MinEntries)
		}
		if n.leaf {
			if leafDepth == -1 {
				leafDepth = depth
			}
			require.Equal(t, leafDepth, depth, "leaves at unequal depth")
			return
		}
		for i := int16(0); i <= n.count; i++ {
			walk(n.children[i], depth+1, false)
		}
	}
	walk(m.root, 1, true)
	require.Equal(t, leafDepth, m.Height())

	keys := make([]int, 0, len(exp))
	for k := range exp {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	it := m.MakeIter()
	var got []int
	for it.First(); it.Valid(); it.Next() {
		require.Equal(t, exp[it.Key()], it.Value())
		got = append(got, it.Key())
	}
	require.Equal(t, keys, got)
}

func TestMapBasic(t *testing.T) {
	m := makeIntMap()
	require.Equal(t, ";", m.String())
	require.Equal(t, 0, m.Height())

	it := m.MakeIter()
	it.First()
	require.False(t, it.Valid())
	it.Last()
	require.False(t, it.Valid())
	it.SeekGE(1)
	require.False(t, it.Valid())

	_, replaced := m.Upsert(2, 20)
	require.False(t, replaced)
	m.Upsert(12, 120)
	m.Upsert(1, 10)
	old, replaced := m.Upsert(2, 21)
	require.True(t, replaced)
	require.Equal(t, 20, old)
	require.Equal(t, 3, m.Len())
	require.Equal(t, "1:10,2:21,12:120", m.String())

	k, v, ok := m.Get(12)
	require.True(t, ok)
	require.Equal(t, 12, k)
	require.Equal(t, 120, v)
	_, _, ok = m.Get(3)
	require.False(t, ok)

	_, _, ok = m.Delete(3)
	require.False(t, ok)
	k, v, ok = m.Delete(1)
	require.True(t, ok)
	require.Equal(t, 1, k)
	require.Equal(t, 10, v)
	verify(t, &m, map[int]int{2: 21, 12: 120})
}

func TestMapRandom(t *testing.T) {
	seed := time.Now().UnixNano()
	t.Logf("seed %d", seed)
	rng := rand.New(rand.NewSource(seed))

	m := makeIntMap()
	exp := make(map[int]int)
	const N = 2000
	for i := 0; i < N; i++ {
		k := rng.Intn(N)
		_, replaced := m.Upsert(k, i)
		_, had := exp[k]
		require.Equal(t, had, replaced)
		exp[k] = i
	}
	verify(t, &m, exp)
	require.Greater(t, m.Height(), 1)

	for i := 0; i < N; i++ {
		k := rng.Intn(N)
		_, v, found := m.Delete(k)
		expV, had := exp[k]
		require.Equal(t, had, found)
		if had {
			require.Equal(t, expV, v)
		}
		delete(exp, k)
		if i%100 == 0 {
			verify(t, &m, exp)
		}
	}
	verify(t, &m, exp)

	for k := range exp {
		_, _, found := m.Delete(k)
		require.True(t, found)
	}
	verify(t, &m, nil)
	require.Nil(t, m.root)
}

func TestIteratorSeek(t *testing.T) {
	m := makeIntMap()
	// Even keys only so that odd probes fall between entries.
	for i := 0; i < 200; i += 2 {
		m.Upsert(i, i)
	}
	it := m.MakeIter()
	for probe := -1; probe <= 200; probe++ {
		it.SeekGE(probe)
		expGE := probe
		if expGE < 0 {
			expGE = 0
		}
		if expGE%2 != 0 {
			expGE++
		}
		if expGE >= 200 {
			require.False(t, it.Valid(), "SeekGE(%d)", probe)
		} else {
			require.True(t, it.Valid(), "SeekGE(%d)", probe)
			require.Equal(t, expGE, it.Key(), "SeekGE(%d)", probe)
		}

		it.SeekLT(probe)
		expLT := probe - 1
		if expLT > 198 {
			expLT = 198
		}
		if expLT >= 0 && expLT%2 != 0 {
			expLT--
		}
		if expLT < 0 {
			require.False(t, it.Valid(), "SeekLT(%d)", probe)
		} else {
			require.True(t, it.Valid(), "SeekLT(%d)", probe)
			require.Equal(t, expLT, it.Key(), "SeekLT(%d)", probe)
		}
	}
}

func TestIteratorReverse(t *testing.T) {
	m := makeIntMap()
	const N = 500
	for _, k := range rand.Perm(N) {
		m.Upsert(k, -k)
	}
	it := m.MakeIter()
	exp := N - 1
	for it.Last(); it.Valid(); it.Prev() {
		require.Equal(t, exp, it.Key())
		require.Equal(t, -exp, it.Value())
		exp--
	}
	require.Equal(t, -1, exp)
}

func TestClone(t *testing.T) {
	m := makeIntMap()
	exp := make(map[int]int)
	for i := 0; i < 300; i++ {
		m.Upsert(i, i)
		exp[i] = i
	}
	c := m.Clone()
	cExp := make(map[int]int, len(exp))
	for k, v := range exp {
		cExp[k] = v
	}

	for i := 0; i < 300; i += 3 {
		c.Delete(i)
		delete(cExp, i)
	}
	for i := 300; i < 400; i++ {
		c.Upsert(i, i)
		cExp[i] = i
	}
	m.Upsert(0, 1000)
	exp[0] = 1000

	verify(t, &m, exp)
	verify(t, &c, cExp)

	c.Reset()
	verify(t, &c, nil)
	verify(t, &m, exp)
}

func TestReset(t *testing.T) {
	m := makeIntMap()
	for i := 0; i < 100; i++ {
		m.Upsert(i, i)
	}
	m.Reset()
	verify(t, &m, nil)
	require.Equal(t, ";", m.String())

	// Nodes come back from the pool zeroed.
	for i := 0; i < 100; i++ {
		m.Upsert(i, i*2)
	}
	exp := make(map[int]int)
	for i := 0; i < 100; i++ {
		exp[i] = i * 2
	}
	verify(t, &m, exp)
}
