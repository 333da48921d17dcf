package player

import (
	"context"
	"time"
)

// Window returns the indices to keep warm for current in a feed of feedLen
// items: current+1 .. current+count with count = min(size, feedLen-current-1).
// The result is empty when nothing follows current.
func Window(current, feedLen, size int) []int {
	count := feedLen - current - 1
	if size < count {
		count = size
	}
	if count <= 0 {
		return nil
	}
	out := make([]int, count)
	for i := range out {
		out[i] = current + 1 + i
	}
	return out
}

// RecomputeWindow anchors the preload window at current. Missing entries are
// opened in the background; entries outside the window are released. Calling it
// again with an unchanged position and feed starts no new opens.
func (p *Player) RecomputeWindow(current int) []int {
	targets := Window(current, p.feed.Len(), p.windowSize)

	want := make(map[string]int, len(targets))
	for _, i := range targets {
		item, ok := p.feed.At(i)
		if !ok || item.Locator == p.active.locator {
			continue
		}
		if _, dup := want[item.Locator]; !dup {
			want[item.Locator] = i
		}
	}

	for loc, e := range p.entries {
		if _, keep := want[loc]; keep {
			continue
		}
		delete(p.entries, loc)
		closeQuietly(e.resource, p.logger)
		p.logger.Debug().Int("index", e.index).Str("locator", loc).Bool("ready", e.resource != nil).Msg("preload evicted")
		p.publish(EventPreloadEvicted, e.index, loc, map[string]any{"ready": e.resource != nil})
	}

	for _, i := range targets {
		item, _ := p.feed.At(i)
		loc := item.Locator
		if j, ok := want[loc]; !ok || j != i {
			continue
		}
		if e, ok := p.entries[loc]; ok {
			e.index = i
			continue
		}
		r := &request{index: i, locator: loc, started: time.Now()}
		p.entries[loc] = r
		p.publish(EventPreloadStart, i, loc, nil)
		p.open(r)
	}

	p.window = targets
	return targets
}

// open starts the background open for r. The result is handed back through
// the queue; no Player state is touched off the queue goroutine.
func (p *Player) open(r *request) {
	go func() {
		ctx, cancel := context.WithTimeout(p.ctx, p.openTimeout)
		defer cancel()
		res, err := p.provider.Open(ctx, r.locator)
		p.queue.Post(func() { p.complete(r, res, err) })
	}()
}

// complete routes an open result to whoever still wants it: the active
// playback, the preload entry, or nobody (stale, released).
func (p *Player) complete(r *request, res Resource, err error) {
	if p.closed {
		closeQuietly(res, p.logger)
		return
	}
	dur := time.Since(r.started)

	if p.active.req == r {
		if err != nil {
			err = resourceOpenError{locator: r.locator, err: err}
			p.logger.Warn().Err(err).Int("index", r.index).Msg("open failed")
			p.publish(EventOpenFailed, p.active.position, r.locator, map[string]any{"error": err.Error()})
			p.active.req = nil
			return
		}
		r.resource = res
		p.attach(res)
		p.logger.Debug().Int("index", p.active.position).Dur("dur", dur).Msg("active resource ready")
		return
	}

	if cur, ok := p.entries[r.locator]; ok && cur == r {
		if err != nil {
			err = resourceOpenError{locator: r.locator, err: err}
			// dropped so the next recompute retries
			delete(p.entries, r.locator)
			p.logger.Warn().Err(err).Int("index", r.index).Msg("preload failed")
			p.publish(EventPreloadFailed, r.index, r.locator, map[string]any{"error": err.Error()})
			return
		}
		r.resource = res
		p.logger.Debug().Int("index", r.index).Str("locator", r.locator).Dur("dur", dur).Msg("video preloaded")
		p.publish(EventPreloaded, r.index, r.locator, map[string]any{"dur_ms": int(dur / time.Millisecond)})
		return
	}

	closeQuietly(res, p.logger)
	p.logger.Debug().Int("index", r.index).Str("locator", r.locator).Msg("stale completion discarded")
	p.publish(EventStaleDiscarded, r.index, r.locator, map[string]any{"failed": err != nil})
}

// FeedGrew recomputes the window after items were appended to the feed.
func (p *Player) FeedGrew() []int {
	if p.anchor < 0 {
		return nil
	}
	return p.RecomputeWindow(p.anchor)
}
