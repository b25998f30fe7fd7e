// Package animation drives the short celebration sequences shown when the
// watched tree changes, falling back to a looping idle sequence.
package animation

import (
	"sync"
	"time"
)

type Frame struct {
	Text     string
	Duration time.Duration
}

type Sequence struct {
	Name   string
	Frames []Frame
	Loop   bool
}

// TotalDuration is the wall time a non-looping sequence plays before the
// scheduler reverts to idle.
func (s Sequence) TotalDuration() time.Duration {
	var total time.Duration
	for _, f := range s.Frames {
		total += f.Duration
	}
	return total
}

const (
	SeqIdle     = "idle"
	SeqModified = "file-modified"
	SeqCreated  = "file-created"
	SeqCommit   = "commit"
)

func defaultSequences() map[string]Sequence {
	return map[string]Sequence{
		SeqIdle: {
			Name: SeqIdle,
			Loop: true,
			Frames: []Frame{
				{Text: "Watching...\n   (-_-) . z Z", Duration: 2 * time.Second},
				{Text: "Watching...\n   (-_-) . z Z\n\n   monitoring for changes", Duration: 2 * time.Second},
				{Text: "Watching...\n   (-.-) Zzz", Duration: 2 * time.Second},
			},
		},
		SeqModified: {
			Name: SeqModified,
			Frames: []Frame{
				{Text: "FILE CHANGED!\n   (*)>", Duration: 500 * time.Millisecond},
				{Text: "FILE CHANGED!\n   (*)>\n\n   file modified", Duration: 500 * time.Millisecond},
				{Text: "FILE CHANGED!\n   (*)>\n\n   file modified\n      \\(^-^)/", Duration: 500 * time.Millisecond},
				{Text: "FILE CHANGED!\n   (*)>\n\n   file modified\n      \\(^-^)/", Duration: time.Second},
			},
		},
		SeqCreated: {
			Name: SeqCreated,
			Frames: []Frame{
				{Text: "NEW FILE!\n   (o)/", Duration: 400 * time.Millisecond},
				{Text: "NEW FILE!\n   (o)/\n\n   file created", Duration: 400 * time.Millisecond},
				{Text: "NEW FILE!\n   (o)/\n\n   file created\n      \\(^o^)/", Duration: 800 * time.Millisecond},
			},
		},
		SeqCommit: {
			Name: SeqCommit,
			Frames: []Frame{
				{Text: "COMMIT!\n\n   [x] changes landed", Duration: 600 * time.Millisecond},
				{Text: "COMMIT!\n\n   [x] changes landed\n      \\(^o^)/", Duration: 600 * time.Millisecond},
				{Text: "COMMIT!\n\n   [x] changes landed\n      \\(^o^)/\n\n   keep going!", Duration: 600 * time.Millisecond},
			},
		},
	}
}

// Scheduler is a frame clock over the sequence set. It starts looping the
// idle sequence and plays one finite sequence at a time on trigger. Tick is
// the only operation that advances frames; Trigger the only external state
// change. Both are safe for concurrent use, but the engine drives Tick from
// a single goroutine.
type Scheduler struct {
	mu        sync.Mutex
	sequences map[string]Sequence
	current   Sequence
	frame     int
	enteredAt time.Time
}

func NewScheduler() *Scheduler {
	s := &Scheduler{sequences: defaultSequences()}
	s.current = s.sequences[SeqIdle]
	s.enteredAt = time.Now()
	return s
}

// Trigger starts the sequence mapped to the given change kind, from any
// state, resetting to its first frame. Unknown kinds are ignored.
func (s *Scheduler) Trigger(kind string) {
	name, ok := map[string]string{
		"created":  SeqCreated,
		"modified": SeqModified,
		"deleted":  SeqModified,
		"commit":   SeqCommit,
	}[kind]
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.sequences[name]
	s.frame = 0
	s.enteredAt = time.Now()
}

// Tick advances the frame index once the current frame's duration has fully
// elapsed, never earlier. A finished non-looping sequence reverts to idle.
func (s *Scheduler) Tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.current.Frames) == 0 {
		return
	}
	if now.Sub(s.enteredAt) < s.current.Frames[s.frame].Duration {
		return
	}

	s.frame++
	s.enteredAt = now
	if s.frame < len(s.current.Frames) {
		return
	}
	if s.current.Loop {
		s.frame = 0
		return
	}
	s.current = s.sequences[SeqIdle]
	s.frame = 0
}

// Frame returns the text of the frame currently on display.
func (s *Scheduler) Frame() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.current.Frames) == 0 {
		return ""
	}
	return s.current.Frames[s.frame].Text
}

// Playing returns the active sequence name, for the status surface.
func (s *Scheduler) Playing() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Name
}
