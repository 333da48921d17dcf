package player

import (
	"context"
	"time"
)

// subscribe forwards periodic progress ticks and end-of-stream signals of an
// attached resource to the queue until ctx is cancelled by the next handoff.
// Signals that arrive after the handoff are dropped by the att check.
func (p *Player) subscribe(ctx context.Context, att *attachment) {
	ended := att.res.EndOfStream()
	go func() {
		t := time.NewTicker(p.tickInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				p.queue.Post(func() { p.tick(att) })
			case _, ok := <-ended:
				if !ok {
					ended = nil
					continue
				}
				p.queue.Post(func() { p.handleEnd(att) })
			}
		}
	}()
}

func (p *Player) tick(att *attachment) {
	if p.active.att != att {
		return
	}
	if frac, ok := progress(att.res); ok {
		p.presenter.Progress(p.active.position, frac)
	}
}

// handleEnd loops the active resource: rewind and play again. The position
// and the window stay as they are.
func (p *Player) handleEnd(att *attachment) {
	if p.active.att != att {
		return
	}
	if err := att.res.Seek(0); err != nil {
		p.logger.Debug().Err(err).Msg("rewind on end")
	}
	p.active.playing = true
	if err := att.res.Play(); err != nil {
		p.logger.Warn().Err(err).Int("index", p.active.position).Msg("replay failed")
	}
	p.presenter.PlayState(p.active.position, true)
	p.publish(EventLoop, p.active.position, p.active.locator, nil)
}

// progress returns position/duration clamped to [0,1]; false when the
// duration is zero or unknown.
func progress(res Resource) (float64, bool) {
	total := res.Duration()
	if total <= 0 {
		return 0, false
	}
	f := float64(res.Position()) / float64(total)
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	return f, true
}
