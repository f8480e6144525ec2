package todotxt

import (
	"strings"
	"time"
)

// Completion-state selectors for Filter.State. The empty string matches any
// state.
const (
	StatePending = "pending"
	StateDone    = "done"
)

// Priority selectors beyond an exact letter.
const (
	PriorityAny  = "any"
	PriorityNone = "none"
)

// Filter is a conjunction of predicates: a task matches only when every set
// field matches. Zero values leave a predicate inactive. Unmatched filters
// produce empty selections, never errors.
type Filter struct {
	Terms []string // case-insensitive substring match against the description

	State    string // "", StatePending or StateDone
	Priority string // "", PriorityAny, PriorityNone, or a single letter A-Z

	Project string // project tag present
	Context string // context tag present

	MetaKey   string // metadata key present
	MetaValue string // exact value, checked only when MetaKey is set

	CreatedBefore time.Time
	CreatedAfter  time.Time
	CreatedOn     time.Time

	CompletedBefore time.Time
	CompletedAfter  time.Time
	CompletedOn     time.Time
}

// Match reports whether the task satisfies every active predicate.
func (f Filter) Match(t *Task) bool {
	switch f.State {
	case StatePending:
		if t.Completed {
			return false
		}
	case StateDone:
		if !t.Completed {
			return false
		}
	}

	switch f.Priority {
	case "":
	case PriorityAny:
		if t.Priority == 0 {
			return false
		}
	case PriorityNone:
		if t.Priority != 0 {
			return false
		}
	default:
		if t.Priority == 0 || string(t.Priority) != f.Priority {
			return false
		}
	}

	if f.Project != "" && !containsString(t.Projects, f.Project) {
		return false
	}
	if f.Context != "" && !containsString(t.Contexts, f.Context) {
		return false
	}

	if f.MetaKey != "" {
		v, ok := t.Metadata[f.MetaKey]
		if !ok {
			return false
		}
		if f.MetaValue != "" && v != f.MetaValue {
			return false
		}
	}

	desc := strings.ToLower(t.Description)
	for _, term := range f.Terms {
		if !strings.Contains(desc, strings.ToLower(term)) {
			return false
		}
	}

	if !matchDate(t.CreationDate, f.CreatedBefore, f.CreatedAfter, f.CreatedOn) {
		return false
	}
	if !matchDate(t.CompletionDate, f.CompletedBefore, f.CompletedAfter, f.CompletedOn) {
		return false
	}
	return true
}

// Select returns references to the matching tasks in collection order. The
// collection and its records are never mutated.
func (l *List) Select(f Filter) []*Task {
	var out []*Task
	for _, t := range l.Tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

func matchDate(d, before, after, on time.Time) bool {
	if !before.IsZero() && (d.IsZero() || !d.Before(before)) {
		return false
	}
	if !after.IsZero() && (d.IsZero() || !d.After(after)) {
		return false
	}
	if !on.IsZero() && (d.IsZero() || !d.Equal(on)) {
		return false
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, have := range list {
		if have == s {
			return true
		}
	}
	return false
}
