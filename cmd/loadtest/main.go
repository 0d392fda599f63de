// Command loadtest drives a single in-process Book with a sustained,
// rate-limited stream of synthetic orders, mirroring the shape of the
// teacher's cmd/loadtest (worker pool plus golang.org/x/time/rate) but
// against the library directly rather than over gRPC — this module has
// no network surface (spec.md non-goals).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/erain9/limitbook/pkg/book"
	"github.com/erain9/limitbook/pkg/telemetry"
)

func main() {
	workers := flag.Int("workers", 50, "number of concurrent order-submitting goroutines")
	ordersPerWorker := flag.Int("orders-per-worker", 2000, "orders submitted by each worker")
	ratePerSec := flag.Int("rate", 5000, "aggregate orders/sec ceiling")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		log.Println("interrupt received, winding down")
		cancel()
	}()

	b := book.NewBook(book.WithTelemetry(telemetry.NewRecorder()))
	defer b.Close()

	limiter := rate.NewLimiter(rate.Limit(*ratePerSec), *ratePerSec)
	var wg sync.WaitGroup
	var submitted, matched, rejected int64

	start := time.Now()
	log.Printf("starting %d workers, %d orders each, capped at %d/s", *workers, *ordersPerWorker, *ratePerSec)

	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			src := rand.New(rand.NewSource(int64(workerID) + 1))
			for j := 0; j < *ordersPerWorker; j++ {
				if err := limiter.Wait(ctx); err != nil {
					return
				}
				id := book.OrderID(workerID)*1_000_000 + book.OrderID(j)
				order := generateOrder(src, id)
				trades := b.AddOrder(order)
				atomic.AddInt64(&submitted, 1)
				if len(trades) == 0 {
					atomic.AddInt64(&rejected, 1)
				} else {
					atomic.AddInt64(&matched, int64(len(trades)))
				}
			}
		}(w)
	}

	wg.Wait()
	duration := time.Since(start)

	stats := b.Stats()
	fmt.Printf("load test completed in %v\n", duration)
	fmt.Printf("orders submitted: %d, trades produced: %d, non-matching/rejected: %d\n",
		submitted, matched, rejected)
	fmt.Printf("resting book size: %d\n", b.Size())
	fmt.Printf("match-loop latency: n=%d mean=%.0fns p50=%dns p95=%dns p99=%dns\n",
		stats.Count, stats.Mean, stats.P50, stats.P95, stats.P99)
}

// generateOrder produces a synthetic limit order clustered tightly
// around a fixed mid price, chosen to keep the matching probability
// high under sustained load, mirroring the teacher's fixed-price
// generateRandomOrder helper.
func generateOrder(src *rand.Rand, id book.OrderID) *book.Order {
	const mid = 10_000

	side := book.Buy
	if src.Float64() < 0.5 {
		side = book.Sell
	}

	spread := book.Price(src.Intn(5) - 2)
	price := book.Price(mid) + spread
	qty := book.Quantity(1 + src.Intn(20))

	types := []book.OrderType{book.GoodTillCancel, book.GoodForDay, book.FillAndKill}
	orderType := types[src.Intn(len(types))]

	order, err := book.NewOrder(id, side, orderType, price, qty)
	if err != nil {
		panic(err)
	}
	return order
}
