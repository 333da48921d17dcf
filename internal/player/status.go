package player

import (
	"sort"

	"feedplay/pkg/types"
)

// Snapshot is a read-only projection of the player state.
type Snapshot struct {
	Position int
	Locator  string
	Playing  bool
	Loading  bool
	Progress float64
	Window   []int
	Ready    []int
}

// Snapshot returns a read-only view of the player state.
func (p *Player) Snapshot() Snapshot {
	s := Snapshot{
		Position: p.active.position,
		Locator:  p.active.locator,
		Playing:  p.active.occupied() && p.active.playing,
		Loading:  p.active.req != nil && p.active.att == nil,
		Window:   append([]int(nil), p.window...),
	}
	if p.active.att != nil {
		s.Progress, _ = progress(p.active.att.res)
	}
	for _, e := range p.entries {
		if e.resource != nil {
			s.Ready = append(s.Ready, e.index)
		}
	}
	sort.Ints(s.Ready)
	return s
}

// Display projects an item and the player snapshot to the state a UI host
// renders in the item's cell.
func Display(item types.MediaItem, snap Snapshot) types.DisplayState {
	ds := types.DisplayState{Index: item.Index, Caption: item.Caption, PlayIcon: "play"}
	if snap.Position != item.Index {
		return ds
	}
	ds.ShowPlayer = true
	ds.Progress = snap.Progress
	if snap.Playing {
		ds.PlayIcon = "pause"
	}
	return ds
}
