package selection

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomPoints returns n points spread over NDC space, with a few outside
// the depth range.
func randomPoints(n int, seed uint64) []float32 {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	pts := make([]float32, 3*n)
	for i := range pts {
		pts[i] = rng.Float32()*2.4 - 1.2
	}
	return pts
}

func TestShardOptions_ShardCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts ShardOptions
		n    int
		want int
	}{
		{"sequential", ShardOptions{Shards: 1}, 1000, 1},
		{"non-positive shards", ShardOptions{Shards: 0}, 1000, 1},
		{"no minimum", ShardOptions{Shards: 8}, 1000, 8},
		{"capped by minimum", ShardOptions{Shards: 8, MinShardPoints: 300}, 1000, 3},
		{"fewer points than minimum", ShardOptions{Shards: 8, MinShardPoints: 5000}, 1000, 1},
		{"more shards than points", ShardOptions{Shards: 8}, 3, 3},
		{"empty", ShardOptions{Shards: 8}, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.shardCount(tt.n))
		})
	}
}

func TestSelectSharded_MatchesSequential(t *testing.T) {
	t.Parallel()

	points := randomPoints(10007, 1)
	poly, err := PolygonRegionFromSlice([]float32{50, 40, 760, 90, 700, 580, 420, 300, 60, 520})
	require.NoError(t, err)

	for _, region := range []Region{RectRegion(120, 80, 640, 410), poly} {
		req := identityRequest(points, region)
		want, err := req.Select()
		require.NoError(t, err)

		for _, shards := range []int{1, 2, 3, 7, 16} {
			got, err := req.SelectSharded(context.Background(), ShardOptions{Shards: shards})
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("%s with %d shards differs (-want +got):\n%s", region.Kind, shards, diff)
			}
		}
	}
}

func TestSelectSharded_CancelledBeforeStart(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := identityRequest(randomPoints(1000, 3), RectRegion(0, 0, 800, 600))
	for _, shards := range []int{1, 4} {
		mask, err := req.SelectSharded(ctx, ShardOptions{Shards: shards})
		assert.True(t, errors.Is(err, context.Canceled), "shards=%d err=%v", shards, err)
		assert.Nil(t, mask)
	}
}

func TestSelectSharded_InvalidInput(t *testing.T) {
	t.Parallel()

	req := identityRequest([]float32{1, 2}, RectRegion(0, 0, 1, 1))
	_, err := req.SelectSharded(context.Background(), DefaultShardOptions())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDefaultShardOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultShardOptions()
	assert.GreaterOrEqual(t, opts.Shards, 1)
	assert.Equal(t, 64*1024, opts.MinShardPoints)
}
