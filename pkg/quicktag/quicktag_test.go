package quicktag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasWithWithout(t *testing.T) {
	flags := []Tag{Pending, Approved, Rejected, Deleted, Video}
	states := []Tag{0, Pending, Approved | Video, Rejected | Deleted, Lifecycle | Video | Deleted}

	for _, s := range states {
		for _, f := range flags {
			assert.True(t, s.With(f).Has(f))
			assert.False(t, s.Without(f).Has(f))

			// 幂等性
			assert.Equal(t, s.With(f), s.With(f).With(f))
			assert.Equal(t, s.Without(f), s.Without(f).Without(f))
		}
	}
}

func TestFlagsAreDistinctPowersOfTwo(t *testing.T) {
	flags := []Tag{Pending, Approved, Rejected, Deleted, Video}
	seen := Tag(0)
	for _, f := range flags {
		assert.NotZero(t, f)
		assert.Zero(t, f&(f-1), "flag must be a power of two")
		assert.Zero(t, seen&f, "flags must not overlap")
		seen |= f
	}
}

func TestInitial(t *testing.T) {
	t.Run("without video", func(t *testing.T) {
		s := Initial(false)
		assert.True(t, s.Has(Pending))
		assert.False(t, s.Has(Video))
		assert.Equal(t, Pending, s&Lifecycle)
	})

	t.Run("with video", func(t *testing.T) {
		s := Initial(true)
		assert.True(t, s.Has(Pending))
		assert.True(t, s.Has(Video))
		assert.Equal(t, Pending, s&Lifecycle)
	})
}
