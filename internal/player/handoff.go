package player

import (
	"context"
	"time"
)

// Settle hands playback to position. The previous position is paused and
// detached, the resource for position is taken from the preload window (or
// opened on demand), playback starts from zero and the window is re-anchored.
// Settling on the position that already holds playback resumes it.
func (p *Player) Settle(position int) error {
	if p.closed {
		return ErrPlayerClosed
	}
	item, ok := p.feed.At(position)
	if !ok {
		return indexOutOfRangeError{index: position, length: p.feed.Len()}
	}

	if p.active.position == position {
		p.resume()
		p.RecomputeWindow(position)
		return nil
	}

	prev := p.detachActive()
	p.anchor = position
	p.active = activePlayback{position: position, locator: item.Locator, playing: true}

	var source string
	if prev.req != nil && prev.locator == item.Locator {
		// same media listed at another index
		p.active.req = prev.req
		prev.req = nil
		source = "reused"
	} else if e, ok := p.entries[item.Locator]; ok {
		delete(p.entries, item.Locator)
		e.index = position
		p.active.req = e
		source = "preloaded"
		if e.resource == nil {
			source = "inflight"
		}
	} else {
		r := &request{index: position, locator: item.Locator, started: time.Now()}
		p.active.req = r
		source = "fallback"
		p.open(r)
	}

	p.demote(prev, position)
	if res := p.active.req.resource; res != nil {
		p.attach(res)
	}
	p.RecomputeWindow(position)

	p.logger.Debug().Int("from", prev.position).Int("to", position).Str("source", source).Msg("handoff")
	p.publish(EventHandoff, position, item.Locator, map[string]any{"from": prev.position, "source": source})
	return nil
}

// Hold pauses the active resource without rewinding it. Used when a drag
// begins and the user may be mid-transition.
func (p *Player) Hold() {
	if !p.active.occupied() {
		return
	}
	p.active.playing = false
	if p.active.att != nil {
		if err := p.active.att.res.Pause(); err != nil {
			p.logger.Debug().Err(err).Msg("pause")
		}
	}
	p.presenter.PlayState(p.active.position, false)
	p.publish(EventHold, p.active.position, p.active.locator, nil)
}

// ToggleHold flips play/pause of the active resource and returns whether it
// is now playing. Without an active position it is a no-op returning false.
func (p *Player) ToggleHold() bool {
	if !p.active.occupied() {
		return false
	}
	p.active.playing = !p.active.playing
	if att := p.active.att; att != nil {
		var err error
		if p.active.playing {
			err = att.res.Play()
		} else {
			err = att.res.Pause()
		}
		if err != nil {
			p.logger.Debug().Err(err).Bool("playing", p.active.playing).Msg("toggle")
		}
	}
	p.presenter.PlayState(p.active.position, p.active.playing)
	p.publish(EventToggle, p.active.position, p.active.locator, map[string]any{"playing": p.active.playing})
	return p.active.playing
}

// Scrub seeks the active resource to fraction of its duration. fraction is
// clamped to [0,1]. It reports false when there is nothing to seek: no
// attached resource, or a zero or unknown duration.
func (p *Player) Scrub(fraction float64) bool {
	att := p.active.att
	if att == nil {
		return false
	}
	total := att.res.Duration()
	if total <= 0 {
		p.logger.Debug().Int("index", p.active.position).Msg("scrub ignored: duration unavailable")
		return false
	}
	if fraction < 0 {
		fraction = 0
	} else if fraction > 1 {
		fraction = 1
	}
	target := time.Duration(fraction * float64(total))
	if err := att.res.Seek(target); err != nil {
		p.logger.Debug().Err(err).Dur("target", target).Msg("scrub seek")
		return false
	}
	p.presenter.Progress(p.active.position, fraction)
	p.publish(EventScrub, p.active.position, p.active.locator, map[string]any{"fraction": fraction})
	return true
}

// Exit leaves the feed: the active resource is paused and rewound, and every
// resource held by the player is released. A later Settle starts over.
func (p *Player) Exit() {
	prev := p.detachActive()
	if prev.att != nil {
		if err := prev.att.res.Seek(0); err != nil {
			p.logger.Debug().Err(err).Msg("rewind on exit")
		}
	}
	if prev.req != nil {
		closeQuietly(prev.req.resource, p.logger)
	}
	for loc, e := range p.entries {
		delete(p.entries, loc)
		closeQuietly(e.resource, p.logger)
	}
	p.anchor = -1
	p.window = nil
	if prev.occupied() {
		p.publish(EventExit, prev.position, prev.locator, nil)
	}
}

// resume restarts playback at the already active position, retrying the
// open when the previous attempt failed.
func (p *Player) resume() {
	p.active.playing = true
	switch {
	case p.active.att != nil:
		if err := p.active.att.res.Play(); err != nil {
			p.logger.Debug().Err(err).Msg("resume")
		}
	case p.active.req == nil:
		r := &request{index: p.active.position, locator: p.active.locator, started: time.Now()}
		p.active.req = r
		p.open(r)
	}
	p.presenter.PlayState(p.active.position, true)
	p.publish(EventResume, p.active.position, p.active.locator, nil)
}

// detachActive stops the active playback and clears the slot, returning what
// was there. The resource itself is not released.
func (p *Player) detachActive() activePlayback {
	prev := p.active
	if prev.att != nil {
		prev.att.cancel()
		if err := prev.att.res.Pause(); err != nil {
			p.logger.Debug().Err(err).Msg("pause on detach")
		}
		p.presenter.PlayState(prev.position, false)
		p.presenter.Detach(prev.position)
	}
	p.active = activePlayback{position: -1}
	return prev
}

// demote returns the previous request to the preload entries when its index
// is inside the window anchored at position; otherwise it is released.
// In-flight requests that are not kept are left to be discarded on arrival.
func (p *Player) demote(prev activePlayback, position int) {
	if prev.req == nil {
		return
	}
	if prev.locator != p.active.locator && inWindow(prev.position, position, p.feed.Len(), p.windowSize) {
		if _, taken := p.entries[prev.locator]; !taken {
			if res := prev.req.resource; res != nil {
				if err := res.Seek(0); err != nil {
					p.logger.Debug().Err(err).Msg("rewind on demote")
				}
			}
			prev.req.index = prev.position
			p.entries[prev.locator] = prev.req
			return
		}
	}
	closeQuietly(prev.req.resource, p.logger)
}

func inWindow(index, current, feedLen, size int) bool {
	for _, i := range Window(current, feedLen, size) {
		if i == index {
			return true
		}
	}
	return false
}

// attach binds res to the presentation surface for the active position and
// starts it from zero when playback is wanted.
func (p *Player) attach(res Resource) {
	pos := p.active.position
	if err := res.Seek(0); err != nil {
		p.logger.Debug().Err(err).Msg("rewind on attach")
	}
	if p.active.playing {
		if err := res.Play(); err != nil {
			p.logger.Warn().Err(err).Int("index", pos).Msg("play failed")
		}
	}
	ctx, cancel := context.WithCancel(p.ctx)
	att := &attachment{res: res, cancel: cancel}
	p.active.att = att
	p.presenter.Attach(pos, res)
	p.presenter.PlayState(pos, p.active.playing)
	p.subscribe(ctx, att)
}
