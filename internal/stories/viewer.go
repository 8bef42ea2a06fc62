package stories

import (
	"time"

	"github.com/timepass/backend/internal/models"
)

// StoryDuration is how long each story plays before auto-advancing
const StoryDuration = 5000 * time.Millisecond

// Viewer phases
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseViewing
	PhasePaused
	PhaseClosed
)

// ViewerHooks are the side effects a viewing session triggers. All are
// optional; nil hooks are skipped.
type ViewerHooks struct {
	// RecordView fires once per story the first time it is shown
	RecordView func(storyID string)
	// Prefetch fires with the next story's media URL when a story starts
	Prefetch func(mediaURL string)
	// OnClose fires exactly once when the session ends
	OnClose func()
}

// Viewer is the story playback state machine. It owns no timers:
// callers drive it with Tick and read Progress, which makes every
// transition deterministic under an injected clock.
//
// Transitions:
//
//	Idle    --Start-->   Viewing(0)
//	Viewing --Tick-->    Viewing (or next story once progress hits 1)
//	Viewing --Pause-->   Paused (progress frozen)
//	Paused  --Resume-->  Viewing (timer re-based, remaining time kept)
//	any     --Close-->   Closed
//
// Next past the last story and Previous at the first story both close
// the session.
type Viewer struct {
	stories []models.Story
	hooks   ViewerHooks
	now     func() time.Time

	phase    Phase
	index    int
	startAt  time.Time // playback base for the current story
	frozen   float64   // progress captured at Pause
	viewed   map[string]bool
	closedFn bool // OnClose already fired
}

// NewViewer creates a session over the given stories. nowFn defaults to
// time.Now.
func NewViewer(stories []models.Story, hooks ViewerHooks, nowFn func() time.Time) *Viewer {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Viewer{
		stories: stories,
		hooks:   hooks,
		now:     nowFn,
		phase:   PhaseIdle,
		viewed:  make(map[string]bool),
	}
}

// Phase returns the current phase
func (v *Viewer) Phase() Phase {
	return v.phase
}

// Index returns the current story index
func (v *Viewer) Index() int {
	return v.index
}

// Current returns the story on screen, or nil outside a session
func (v *Viewer) Current() *models.Story {
	if v.phase != PhaseViewing && v.phase != PhasePaused {
		return nil
	}
	return &v.stories[v.index]
}

// Progress reports playback progress of the current story in [0, 1]
func (v *Viewer) Progress() float64 {
	switch v.phase {
	case PhaseViewing:
		p := float64(v.now().Sub(v.startAt)) / float64(StoryDuration)
		if p > 1 {
			return 1
		}
		if p < 0 {
			return 0
		}
		return p
	case PhasePaused:
		return v.frozen
	default:
		return 0
	}
}

// Start begins playback at the first story. Starting with no stories
// closes immediately.
func (v *Viewer) Start() {
	if v.phase != PhaseIdle {
		return
	}
	if len(v.stories) == 0 {
		v.close()
		return
	}
	v.phase = PhaseViewing
	v.enter(0)
}

// Tick advances the machine against the clock: once the current story
// has played for its full duration it auto-advances to the next one.
// Ticks while paused or closed do nothing.
func (v *Viewer) Tick() {
	if v.phase != PhaseViewing {
		return
	}
	if v.Progress() >= 1 {
		v.Next()
	}
}

// Pause freezes progress where it is
func (v *Viewer) Pause() {
	if v.phase != PhaseViewing {
		return
	}
	v.frozen = v.Progress()
	v.phase = PhasePaused
}

// Resume continues playback from the frozen progress: the timer is
// re-based so exactly (1-progress) x duration remains
func (v *Viewer) Resume() {
	if v.phase != PhasePaused {
		return
	}
	elapsed := time.Duration(v.frozen * float64(StoryDuration))
	v.startAt = v.now().Add(-elapsed)
	v.phase = PhaseViewing
}

// Next moves to the following story; past the last one the session
// closes
func (v *Viewer) Next() {
	if v.phase != PhaseViewing && v.phase != PhasePaused {
		return
	}
	if v.index+1 >= len(v.stories) {
		v.close()
		return
	}
	v.phase = PhaseViewing
	v.enter(v.index + 1)
}

// Previous moves back one story; at the first story the session closes
func (v *Viewer) Previous() {
	if v.phase != PhaseViewing && v.phase != PhasePaused {
		return
	}
	if v.index == 0 {
		v.close()
		return
	}
	v.phase = PhaseViewing
	v.enter(v.index - 1)
}

// Close ends the session
func (v *Viewer) Close() {
	if v.phase == PhaseClosed {
		return
	}
	v.close()
}

func (v *Viewer) close() {
	v.phase = PhaseClosed
	if !v.closedFn {
		v.closedFn = true
		if v.hooks.OnClose != nil {
			v.hooks.OnClose()
		}
	}
}

// enter starts playback of story i, firing the view side effect the
// first time this session shows it and prefetching the next media
func (v *Viewer) enter(i int) {
	v.index = i
	v.startAt = v.now()
	v.frozen = 0

	story := v.stories[i]
	if !v.viewed[story.ID] {
		v.viewed[story.ID] = true
		if v.hooks.RecordView != nil {
			v.hooks.RecordView(story.ID)
		}
	}

	if v.hooks.Prefetch != nil && i+1 < len(v.stories) {
		v.hooks.Prefetch(v.stories[i+1].MediaURL)
	}
}
