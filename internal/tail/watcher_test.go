package tail

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tessro/chime/internal/core"
)

// scriptedPlayer returns a fixed first state, then a second state for every
// later poll. Only GetState is implemented.
type scriptedPlayer struct {
	core.Player

	mu     sync.Mutex
	calls  int
	first  *core.PlaybackState
	second *core.PlaybackState
}

func (p *scriptedPlayer) GetState(ctx context.Context) (*core.PlaybackState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls == 1 {
		return p.first, nil
	}
	return p.second, nil
}

func playingState(title string, progress time.Duration) *core.PlaybackState {
	return &core.PlaybackState{
		Device: core.Device{GUID: "guid-1", Name: "Living Room"},
		State:  core.StatePlaying,
		Track: &core.Track{
			Title:    title,
			Artist:   "Artist",
			Duration: 3 * time.Minute,
		},
		Progress: progress,
		Volume:   30,
		Source:   "SPOTIFY",
	}
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}

func containsType(events []Event, t EventType) bool {
	for _, e := range events {
		if e.Type == t {
			return true
		}
	}
	return false
}

func TestWatcherNotifyPollsImmediately(t *testing.T) {
	second := playingState("Breathe", time.Minute)
	second.Volume = 45

	player := &scriptedPlayer{
		first:  playingState("Breathe", time.Minute),
		second: second,
	}

	// Interval long enough that only Notify can trigger the poll.
	w := NewWatcher(player, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()

	w.Notify()

	select {
	case e := <-w.Events():
		if e.Type != EventVolumeChange {
			t.Fatalf("event type = %v, want volume change", e.Type)
		}
		if e.Current.Volume != 45 {
			t.Fatalf("Current.Volume = %d, want 45", e.Current.Volume)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event after Notify; watcher did not wake")
	}
}

func TestDiffStatesFirstPoll(t *testing.T) {
	events := diffStates(nil, playingState("Breathe", time.Minute))
	if len(events) != 1 || events[0].Type != EventTrackChange {
		t.Fatalf("diffStates(nil, playing) = %v, want single track change", eventTypes(events))
	}

	if events := diffStates(nil, &core.PlaybackState{State: core.StateIdle}); len(events) != 0 {
		t.Errorf("diffStates(nil, idle) = %v, want none", eventTypes(events))
	}
}

func TestDiffStatesTrackComplete(t *testing.T) {
	prev := playingState("Breathe", 2*time.Minute+55*time.Second) // past 95%
	curr := playingState("Time", 0)

	events := diffStates(prev, curr)
	if !containsType(events, EventTrackComplete) {
		t.Errorf("diffStates() = %v, want track complete", eventTypes(events))
	}
}

func TestDiffStatesTrackSkip(t *testing.T) {
	prev := playingState("Breathe", 30*time.Second)
	curr := playingState("Time", 0)

	events := diffStates(prev, curr)
	if !containsType(events, EventTrackSkip) {
		t.Errorf("diffStates() = %v, want track skip", eventTypes(events))
	}
}

func TestDiffStatesPauseResume(t *testing.T) {
	playing := playingState("Breathe", time.Minute)
	paused := playingState("Breathe", time.Minute)
	paused.State = core.StatePaused

	if events := diffStates(playing, paused); !containsType(events, EventPause) {
		t.Errorf("playing->paused = %v, want pause", eventTypes(events))
	}
	if events := diffStates(paused, playing); !containsType(events, EventResume) {
		t.Errorf("paused->playing = %v, want resume", eventTypes(events))
	}
}

func TestDiffStatesVolumeAndMute(t *testing.T) {
	prev := playingState("Breathe", time.Minute)
	curr := playingState("Breathe", time.Minute)
	curr.Volume = 50
	curr.Muted = true

	events := diffStates(prev, curr)
	if !containsType(events, EventVolumeChange) {
		t.Errorf("diffStates() = %v, want volume change", eventTypes(events))
	}
	if !containsType(events, EventMuteChange) {
		t.Errorf("diffStates() = %v, want mute change", eventTypes(events))
	}
}

func TestDiffStatesSourceChange(t *testing.T) {
	prev := playingState("Breathe", time.Minute)
	curr := playingState("Breathe", time.Minute)
	curr.Source = "BLUETOOTH"

	events := diffStates(prev, curr)
	if !containsType(events, EventSourceChange) {
		t.Errorf("diffStates() = %v, want source change", eventTypes(events))
	}
}

func TestDiffStatesGroupChange(t *testing.T) {
	prev := playingState("Breathe", time.Minute)
	curr := playingState("Breathe", time.Minute)
	curr.GroupMembers = []string{"guid-1", "guid-2"}

	events := diffStates(prev, curr)
	if !containsType(events, EventGroupChange) {
		t.Errorf("diffStates() = %v, want group change", eventTypes(events))
	}

	// Dissolving the group is also a change.
	events = diffStates(curr, prev)
	if !containsType(events, EventGroupChange) {
		t.Errorf("diffStates() after dissolve = %v, want group change", eventTypes(events))
	}
}

func TestDiffStatesPowerChange(t *testing.T) {
	on := playingState("Breathe", time.Minute)
	off := &core.PlaybackState{
		Device: on.Device,
		State:  core.StateOff,
	}

	events := diffStates(on, off)
	if !containsType(events, EventPowerChange) {
		t.Errorf("diffStates() = %v, want power change", eventTypes(events))
	}
}

func TestFormatterDescriptions(t *testing.T) {
	f := NewFormatter(WithEmoji(false))

	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			name: "track change",
			event: Event{
				Type:    EventTrackChange,
				Current: playingState("Breathe", 0),
			},
			want: "Now playing: Artist - Breathe",
		},
		{
			name:  "pause",
			event: Event{Type: EventPause},
			want:  "Paused",
		},
		{
			name: "volume",
			event: Event{
				Type:    EventVolumeChange,
				Current: playingState("Breathe", 0),
			},
			want: "Volume: 30%",
		},
		{
			name: "group dissolved",
			event: Event{
				Type:    EventGroupChange,
				Current: &core.PlaybackState{},
			},
			want: "Left group",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Format(tt.event); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatterTemplate(t *testing.T) {
	f := NewFormatter(WithTemplate("{{.Type}}: {{.Title}} on {{.Device}}"))

	got := f.Format(Event{
		Type:    EventTrackChange,
		Current: playingState("Breathe", 0),
	})
	want := "track_change: Breathe on Living Room"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}
