// Command select-bench times point selection on a synthetic cloud.
//
// Without -addr the selection runs in-process on a worker pool; with -addr
// it is sent to a running selectd.
//
// Usage:
//
//	go run ./cmd/tools/select-bench [flags]
//
// Flags:
//
//	-addr        selectd address; empty runs in-process
//	-points      Points per cloud (default: 500000)
//	-shape       disc or sphere (default: disc)
//	-mode        rect or polygon (default: rect)
//	-iterations  Number of selections to time (default: 20)
//	-workers     In-process workers (default: 2)
//	-seed        Generator seed (default: 1)
//	-plot        Write a PNG of the last result to this path
//	-html        Write an interactive HTML chart of the last result to this path
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/banshee-data/pointselect/internal/security"
	"github.com/banshee-data/pointselect/internal/selection"
	"github.com/banshee-data/pointselect/internal/selection/debugplot"
	"github.com/banshee-data/pointselect/internal/selection/rpc"
	"github.com/banshee-data/pointselect/internal/selection/synthetic"
	"github.com/banshee-data/pointselect/internal/selection/worker"
	"github.com/banshee-data/pointselect/internal/version"
)

// selector runs one selection and returns its mask.
type selector func(ctx context.Context, req *selection.Request) (selection.Mask, error)

func main() {
	addr := flag.String("addr", "", "selectd address (empty runs in-process)")
	points := flag.Int("points", 500000, "Points per cloud")
	shapeName := flag.String("shape", "disc", "Cloud shape: disc or sphere")
	mode := flag.String("mode", "rect", "Region mode: rect or polygon")
	iterations := flag.Int("iterations", 20, "Number of selections to time")
	workers := flag.Int("workers", 2, "In-process workers")
	seed := flag.Int64("seed", 1, "Generator seed")
	width := flag.Uint("width", 1280, "Viewport width")
	height := flag.Uint("height", 720, "Viewport height")
	plotPath := flag.String("plot", "", "Write a PNG of the last result to this path")
	htmlPath := flag.String("html", "", "Write an HTML chart of the last result to this path")
	flag.Parse()

	log.Printf("%s", version.String("select-bench"))

	for _, out := range []string{*plotPath, *htmlPath} {
		if out == "" {
			continue
		}
		if err := security.ValidateOutputPath(out); err != nil {
			log.Fatalf("Invalid output path: %v", err)
		}
	}

	shape, err := synthetic.ParseShape(*shapeName)
	if err != nil {
		log.Fatalf("Invalid -shape: %v", err)
	}
	kind, err := selection.ParseRegionKind(*mode)
	if err != nil {
		log.Fatalf("Invalid -mode: %v", err)
	}

	gen := synthetic.NewGenerator(*seed)
	gen.PointCount = *points
	gen.Shape = shape
	cloud := gen.Cloud()

	vp := selection.Viewport{Width: uint32(*width), Height: uint32(*height)}
	cam := synthetic.DefaultCamera(vp)
	region, err := buildRegion(kind, vp)
	if err != nil {
		log.Fatalf("Failed to build region: %v", err)
	}

	run, cleanup, err := newSelector(*addr, *workers)
	if err != nil {
		log.Fatalf("Failed to set up selector: %v", err)
	}
	defer cleanup()

	log.Printf("Configuration: %d %s points, %s region, %d iterations, target=%s",
		*points, shape, kind, *iterations, target(*addr))

	var (
		durations []time.Duration
		last      selection.Mask
		lastReq   *selection.Request
	)
	for i := 0; i < *iterations; i++ {
		// Each request owns its buffer once submitted.
		req := cam.Request(append([]float32(nil), cloud...), region)
		start := time.Now()
		mask, err := run(context.Background(), req)
		if err != nil {
			log.Fatalf("Selection %d failed: %v", i, err)
		}
		durations = append(durations, time.Since(start))
		last, lastReq = mask, cam.Request(cloud, region)
	}

	if len(durations) > 0 {
		report(durations, *points, last.Count())
	}

	if last != nil && (*plotPath != "" || *htmlPath != "") {
		snap, err := debugplot.NewSnapshot(fmt.Sprintf("%s selection, %d points", kind, *points), lastReq, last, 0)
		if err != nil {
			log.Fatalf("Failed to build snapshot: %v", err)
		}
		if *plotPath != "" {
			if err := snap.SavePNG(*plotPath); err != nil {
				log.Fatalf("Failed to write plot: %v", err)
			}
			log.Printf("Wrote %s", *plotPath)
		}
		if *htmlPath != "" {
			if err := snap.SaveHTML(*htmlPath); err != nil {
				log.Fatalf("Failed to write chart: %v", err)
			}
			log.Printf("Wrote %s", *htmlPath)
		}
	}
}

func target(addr string) string {
	if addr == "" {
		return "in-process"
	}
	return addr
}

func buildRegion(kind selection.RegionKind, vp selection.Viewport) (selection.Region, error) {
	if kind == selection.RegionPolygon {
		return synthetic.CentredPolygon(vp, 7, 0.6)
	}
	return synthetic.CentredRect(vp, 0.4), nil
}

func newSelector(addr string, workers int) (selector, func(), error) {
	if addr != "" {
		client, err := rpc.Dial(addr, 0)
		if err != nil {
			return nil, nil, err
		}
		return client.Select, func() { client.Close() }, nil
	}

	pool := worker.NewPool(worker.PoolConfig{
		Workers: workers,
		Worker:  worker.Options{Shards: selection.DefaultShardOptions()},
	})
	run := func(ctx context.Context, req *selection.Request) (selection.Mask, error) {
		resp, err := pool.Do(ctx, &worker.Request{Selection: *req})
		if err != nil {
			return nil, err
		}
		mask := append(selection.Mask(nil), resp.Mask...)
		resp.Release()
		return mask, nil
	}
	return run, pool.Close, nil
}

func report(durations []time.Duration, points, selected int) {
	sorted := append([]time.Duration(nil), durations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, d := range sorted {
		total += d
	}
	mean := total / time.Duration(len(sorted))
	p50 := sorted[len(sorted)/2]
	p95 := sorted[(len(sorted)*95)/100]
	mpps := float64(points) / mean.Seconds() / 1e6

	log.Printf("Selected %d of %d points", selected, points)
	log.Printf("Latency: mean=%v p50=%v p95=%v max=%v (%.1f Mpoints/s)",
		mean, p50, p95, sorted[len(sorted)-1], mpps)
}
