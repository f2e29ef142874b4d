package orchestration

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// flightGroup runs one calibration per key for all concurrent callers. The
// shared run gets its own context, cancelled only when every caller waiting
// on the key has returned, so each caller's deadline bounds its own wait and
// nothing else.
type flightGroup struct {
	group singleflight.Group

	mu   sync.Mutex
	live map[string]*flight
}

type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// do waits for the shared result of fn or for ctx to end, whichever comes
// first. led reports whether this caller's fn was the one executed.
func (g *flightGroup) do(ctx context.Context, key string, fn func(context.Context) (any, error)) (v any, shared, led bool, err error) {
	fctx := g.join(ctx, key)
	defer g.leave(key)

	var ran bool
	ch := g.group.DoChan(key, func() (any, error) {
		ran = true
		return fn(fctx)
	})
	select {
	case <-ctx.Done():
		return nil, false, false, ctx.Err()
	case r := <-ch:
		return r.Val, r.Shared, ran, r.Err
	}
}

func (g *flightGroup) join(ctx context.Context, key string) context.Context {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.live == nil {
		g.live = make(map[string]*flight)
	}
	f, ok := g.live[key]
	if !ok {
		// Values such as the trace span survive; cancellation does not.
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		g.live[key] = f
	}
	f.waiters++
	return f.ctx
}

func (g *flightGroup) leave(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	f := g.live[key]
	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	delete(g.live, key)
	// A run abandoned by everyone must not absorb the next caller.
	g.group.Forget(key)
}
