package watch

import "time"

type Op int

const (
	OpCreated Op = iota
	OpModified
	OpDeleted
	OpMoved
)

func (o Op) String() string {
	switch o {
	case OpCreated:
		return "created"
	case OpModified:
		return "modified"
	case OpDeleted:
		return "deleted"
	case OpMoved:
		return "moved"
	}
	return "unknown"
}

// Event is a normalized filesystem change. Events are ephemeral: they are
// produced by a watcher, filtered by the limiter and discarded.
type Event struct {
	Op    Op
	Path  string
	IsDir bool
	At    time.Time
}

// Key identifies an event for debouncing. Two events share a key when they
// describe the same operation on the same path.
func (e Event) Key() string {
	return e.Op.String() + ":" + e.Path
}
