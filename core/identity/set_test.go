package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSetDifference(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	storage := NewSet(a, b, c)
	db := NewSet(b)

	diff := storage.Difference(db)
	assert.Equal(t, 2, diff.Len())
	assert.True(t, diff.Has(a))
	assert.True(t, diff.Has(c))
	assert.False(t, diff.Has(b))

	// Operands are left untouched
	assert.Equal(t, 3, storage.Len())
	assert.Equal(t, 1, db.Len())

	assert.Empty(t, NewSet().Difference(storage))
	assert.Equal(t, storage, storage.Difference(NewSet()))
}

func TestSetSorted(t *testing.T) {
	low := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	mid := uuid.MustParse("7fffffff-0000-0000-0000-000000000000")
	high := uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff")

	s := NewSet(high, low, mid)
	assert.Equal(t, []uuid.UUID{low, mid, high}, s.Sorted())
	assert.Empty(t, NewSet().Sorted())
}
