package vtable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/ariac/internal/diag"
	"github.com/aria-lang/ariac/internal/source"
	"github.com/aria-lang/ariac/internal/types"
)

func TestBuildLaysOutSlotsInTraitOrder(t *testing.T) {
	r := NewRegistry()
	bag := diag.NewBag()
	impls := map[string]*types.Type{
		"area":      {Cat: types.Function, Return: types.Flt(64)},
		"perimeter": {Cat: types.Function, Return: types.Flt(64)},
	}
	d := r.Build(bag, source.NoPos, "Circle", "Shape", []string{"area", "perimeter"}, impls)

	require.False(t, bag.HasErrors())
	require.Len(t, d.Slots, 2)
	assert.Equal(t, "area", d.Slots[0].Name)
	assert.Equal(t, 0, d.Slots[0].Index)
	assert.Equal(t, "perimeter", d.Slots[1].Name)
	assert.Equal(t, 1, d.Slots[1].Index)
}

func TestBuildMissingImplReportsDiagnosticAndSkipsSlot(t *testing.T) {
	r := NewRegistry()
	bag := diag.NewBag()
	impls := map[string]*types.Type{
		"area": {Cat: types.Function},
	}
	d := r.Build(bag, source.NoPos, "Circle", "Shape", []string{"area", "perimeter"}, impls)

	assert.True(t, bag.HasErrors())
	require.Len(t, d.Slots, 1)
	assert.Equal(t, "area", d.Slots[0].Name)
}

func TestLookupFindsBuiltDescriptor(t *testing.T) {
	r := NewRegistry()
	bag := diag.NewBag()
	r.Build(bag, source.NoPos, "Circle", "Shape", nil, nil)

	d, ok := r.Lookup("Circle", "Shape")
	require.True(t, ok)
	assert.Equal(t, "Circle", d.TypeName)

	_, ok = r.Lookup("Square", "Shape")
	assert.False(t, ok)
}

func TestSlotIndexResolvesMethodName(t *testing.T) {
	r := NewRegistry()
	bag := diag.NewBag()
	impls := map[string]*types.Type{"area": {Cat: types.Function}}
	d := r.Build(bag, source.NoPos, "Circle", "Shape", []string{"area"}, impls)

	idx, err := d.SlotIndex("area")
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	_, err = d.SlotIndex("missing")
	assert.Error(t, err)
}
