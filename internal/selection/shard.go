package selection

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ShardOptions controls how SelectSharded splits the per-point loop.
type ShardOptions struct {
	// Shards is the maximum number of concurrent shards. Values below 1
	// run sequentially.
	Shards int

	// MinShardPoints is the smallest number of points worth a shard of its
	// own. Zero disables the limit.
	MinShardPoints int
}

// DefaultShardOptions uses one shard per available CPU, each at least 64k
// points.
func DefaultShardOptions() ShardOptions {
	return ShardOptions{
		Shards:         runtime.GOMAXPROCS(0),
		MinShardPoints: 64 * 1024,
	}
}

// shardCount returns how many shards to use for n points.
func (o ShardOptions) shardCount(n int) int {
	shards := o.Shards
	if shards < 1 {
		shards = 1
	}
	if o.MinShardPoints > 0 {
		if limit := n / o.MinShardPoints; shards > limit {
			shards = limit
		}
	}
	if shards > n {
		shards = n
	}
	if shards < 1 {
		shards = 1
	}
	return shards
}

// SelectSharded classifies the points of r across contiguous index ranges
// in parallel. The mask is identical to the one Request.Select returns.
func (r *Request) SelectSharded(ctx context.Context, opts ShardOptions) (Mask, error) {
	mask := make(Mask, r.PointCount())
	if err := r.SelectShardedInto(ctx, mask, opts); err != nil {
		return nil, err
	}
	return mask, nil
}

// SelectShardedInto is SelectSharded writing into a caller-supplied mask.
// A shard that has started always runs to completion; ctx only prevents
// shards that have not yet started.
func (r *Request) SelectShardedInto(ctx context.Context, mask Mask, opts ShardOptions) error {
	p, err := r.prepare()
	if err != nil {
		return err
	}
	n := r.PointCount()
	if len(mask) != n {
		return fmt.Errorf("%w: mask length %d, want %d", ErrInvalidInput, len(mask), n)
	}

	shards := opts.shardCount(n)
	if shards == 1 {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.classify(r.Points, mask, 0, n)
		return nil
	}

	chunk := (n + shards - 1) / shards
	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p.classify(r.Points, mask, start, end)
			return nil
		})
	}
	return g.Wait()
}
