package mono

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/ariac/internal/types"
)

func TestMangleKeyIncludesEachTypeArg(t *testing.T) {
	k1 := MangleKey("max", []*types.Type{types.Int(32), types.Int(32)})
	k2 := MangleKey("max", []*types.Type{types.Int(64), types.Int(32)})
	assert.NotEqual(t, k1, k2)
	assert.Contains(t, k1, "max")
}

func TestGetOrCreateReusesExistingInstantiation(t *testing.T) {
	r := NewRegistry()
	calls := 0
	resolve := func() *types.Type {
		calls++
		return types.Int(32)
	}
	args := []*types.Type{types.Int(32)}

	first := r.GetOrCreate("identity", args, resolve)
	second := r.GetOrCreate("identity", args, resolve)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestGetOrCreateDistinctArgsProduceDistinctInstantiations(t *testing.T) {
	r := NewRegistry()
	resolve := func() *types.Type { return types.Int(32) }

	a := r.GetOrCreate("box", []*types.Type{types.Int(32)}, resolve)
	b := r.GetOrCreate("box", []*types.Type{types.Flt(64)}, resolve)

	assert.NotSame(t, a, b)
	assert.NotEqual(t, a.Key, b.Key)
}

func TestGetOrCreateConcurrentCallsDeduplicateViaSingleflight(t *testing.T) {
	r := NewRegistry()
	var calls int
	var mu sync.Mutex
	resolve := func() *types.Type {
		mu.Lock()
		calls++
		mu.Unlock()
		return types.Int(32)
	}
	args := []*types.Type{types.Int(32)}

	var wg sync.WaitGroup
	results := make([]*Instantiation, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.GetOrCreate("concurrent", args, resolve)
		}(i)
	}
	wg.Wait()

	for _, inst := range results {
		assert.Same(t, results[0], inst)
	}
}

func TestAllReturnsEveryRegisteredInstantiation(t *testing.T) {
	r := NewRegistry()
	resolve := func() *types.Type { return types.Int(32) }
	r.GetOrCreate("a", []*types.Type{types.Int(32)}, resolve)
	r.GetOrCreate("b", []*types.Type{types.Int(64)}, resolve)

	all := r.All()
	require.Len(t, all, 2)
}
