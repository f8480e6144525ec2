package todotxt

import (
	"fmt"
	"sort"
	"strings"
)

// Outcome reports what happened to one target of a mutation. Idempotent
// no-ops (already done, already pending, no priority to clear) are outcomes,
// not errors.
type Outcome string

const (
	Applied        Outcome = "applied"
	AlreadyDone    Outcome = "already done"
	AlreadyPending Outcome = "already pending"
	Unchanged      Outcome = "unchanged"
	NotFound       Outcome = "not found"
)

// Result is the per-target report of a batch mutation. Task is nil when the
// target number did not resolve.
type Result struct {
	Nr      int
	Task    *Task
	Outcome Outcome
}

// Changed reports whether the target record was actually modified.
func (r Result) Changed() bool { return r.Outcome == Applied }

// List is an ordered task collection. Order is the on-disk line order and
// identity is positional: Tasks[i].Nr == i+1 at all times.
type List struct {
	Tasks []*Task

	// noFinalNewline preserves the source file's newline convention; a
	// fresh list saves with a trailing newline.
	noFinalNewline bool
}

func NewList() *List { return &List{} }

// ParseTasks builds a List from raw file text, collecting parse anomalies
// on the side. A final empty fragment after a trailing newline is the
// newline convention, not a record.
func ParseTasks(text string) (*List, []Anomaly) {
	l := &List{}
	if text == "" {
		return l, nil
	}
	l.noFinalNewline = !strings.HasSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\n")

	var anomalies []Anomaly
	for i, line := range strings.Split(text, "\n") {
		t, an := parseTask(i+1, line)
		l.Tasks = append(l.Tasks, t)
		anomalies = append(anomalies, an...)
	}
	return l, anomalies
}

func (l *List) Len() int { return len(l.Tasks) }

func (l *List) byNr(nr int) *Task {
	if nr < 1 || nr > len(l.Tasks) {
		return nil
	}
	return l.Tasks[nr-1]
}

func (l *List) renumber() {
	for i, t := range l.Tasks {
		t.Nr = i + 1
	}
}

// Add parses one new line and appends it with the next task number. When
// stampDate is set and the line carries no creation date, today's date is
// stamped in.
func (l *List) Add(line string, stampDate bool) (*Task, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, fmt.Errorf("%w: task text is empty", ErrInvalid)
	}
	t := ParseTask(len(l.Tasks)+1, line)
	if stampDate && t.CreationDate.IsZero() {
		t.CreationDate = today()
		t.rebuild()
	}
	l.Tasks = append(l.Tasks, t)
	return t, nil
}

// AddMany adds one task per non-blank line of text, preserving order.
func (l *List) AddMany(text string, stampDate bool) ([]*Task, error) {
	var added []*Task
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		t, err := l.Add(line, stampDate)
		if err != nil {
			return added, err
		}
		added = append(added, t)
	}
	if len(added) == 0 {
		return nil, fmt.Errorf("%w: no task text given", ErrInvalid)
	}
	return added, nil
}

// AppendText appends text to an existing task's description.
func (l *List) AppendText(nr int, text string) (*Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: nothing to append", ErrInvalid)
	}
	t := l.byNr(nr)
	if t == nil {
		return nil, &NotFoundError{Nr: nr}
	}
	t.AppendText(text)
	return t, nil
}

// RemoveTerm deletes a literal term from one task's description, collapsing
// the whitespace left behind.
func (l *List) RemoveTerm(nr int, term string) (*Task, error) {
	if strings.TrimSpace(term) == "" {
		return nil, fmt.Errorf("%w: term is empty", ErrInvalid)
	}
	t := l.byNr(nr)
	if t == nil {
		return nil, &NotFoundError{Nr: nr}
	}
	if !strings.Contains(t.Description, term) {
		return nil, fmt.Errorf("%w: %q in task %d", ErrNotFound, term, nr)
	}
	desc := strings.ReplaceAll(t.Description, term, "")
	t.SetDescription(strings.Join(strings.Fields(desc), " "))
	return t, nil
}

// Complete marks the targets done, stamping today's completion date.
// Numbers resolve against the current collection; each target reports its
// own outcome and an unresolved number never blocks the rest.
func (l *List) Complete(nrs []int) []Result {
	results := make([]Result, 0, len(nrs))
	for _, nr := range nrs {
		t := l.byNr(nr)
		switch {
		case t == nil:
			results = append(results, Result{Nr: nr, Outcome: NotFound})
		case t.Completed:
			results = append(results, Result{Nr: nr, Task: t, Outcome: AlreadyDone})
		default:
			t.markDone(today())
			results = append(results, Result{Nr: nr, Task: t, Outcome: Applied})
		}
	}
	return results
}

// Uncomplete clears the completed flag and completion date of the targets.
func (l *List) Uncomplete(nrs []int) []Result {
	results := make([]Result, 0, len(nrs))
	for _, nr := range nrs {
		t := l.byNr(nr)
		switch {
		case t == nil:
			results = append(results, Result{Nr: nr, Outcome: NotFound})
		case !t.Completed:
			results = append(results, Result{Nr: nr, Task: t, Outcome: AlreadyPending})
		default:
			t.markPending()
			results = append(results, Result{Nr: nr, Task: t, Outcome: Applied})
		}
	}
	return results
}

// Prioritize sets a task's priority letter. Lowercase input is accepted and
// uppercased; anything else outside A-Z is rejected.
func (l *List) Prioritize(nr int, pri string) (*Task, error) {
	p, err := normalizePriority(pri)
	if err != nil {
		return nil, err
	}
	t := l.byNr(nr)
	if t == nil {
		return nil, &NotFoundError{Nr: nr}
	}
	t.setPriority(p)
	return t, nil
}

// Deprioritize clears the targets' priorities.
func (l *List) Deprioritize(nrs []int) []Result {
	results := make([]Result, 0, len(nrs))
	for _, nr := range nrs {
		t := l.byNr(nr)
		switch {
		case t == nil:
			results = append(results, Result{Nr: nr, Outcome: NotFound})
		case t.Priority == 0:
			results = append(results, Result{Nr: nr, Task: t, Outcome: Unchanged})
		default:
			t.setPriority(0)
			results = append(results, Result{Nr: nr, Task: t, Outcome: Applied})
		}
	}
	return results
}

// Delete removes the targets from the collection. All numbers resolve
// against the pre-delete numbering before anything is removed, then removal
// applies in descending index order so earlier splices cannot shift later
// targets. The survivors renumber from 1.
func (l *List) Delete(nrs []int) []Result {
	results := make([]Result, 0, len(nrs))
	indexes := make([]int, 0, len(nrs))
	seen := make(map[int]bool, len(nrs))
	for _, nr := range nrs {
		t := l.byNr(nr)
		if t == nil {
			results = append(results, Result{Nr: nr, Outcome: NotFound})
			continue
		}
		results = append(results, Result{Nr: nr, Task: t, Outcome: Applied})
		if !seen[nr] {
			seen[nr] = true
			indexes = append(indexes, nr-1)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(indexes)))
	for _, i := range indexes {
		l.Tasks = append(l.Tasks[:i], l.Tasks[i+1:]...)
	}
	l.renumber()
	return results
}

// Archive moves every completed task into the returned slice, preserving
// their relative order, and renumbers the remainder from 1.
func (l *List) Archive() []*Task {
	var moved []*Task
	kept := l.Tasks[:0]
	for _, t := range l.Tasks {
		if t.Completed {
			moved = append(moved, t)
			continue
		}
		kept = append(kept, t)
	}
	l.Tasks = kept
	l.renumber()
	return moved
}

// AddTasks appends already-parsed tasks, renumbering them to continue this
// collection. Used to extend the archive with freshly archived records.
func (l *List) AddTasks(ts []*Task) {
	for _, t := range ts {
		t.Nr = len(l.Tasks) + 1
		l.Tasks = append(l.Tasks, t)
	}
}

// DropBlank removes blank-line records, renumbering the rest. Blank lines
// are otherwise preserved positionally so task numbers stay stable.
func (l *List) DropBlank() int {
	kept := l.Tasks[:0]
	dropped := 0
	for _, t := range l.Tasks {
		if t.IsBlank() {
			dropped++
			continue
		}
		kept = append(kept, t)
	}
	l.Tasks = kept
	if dropped > 0 {
		l.renumber()
	}
	return dropped
}

func normalizePriority(pri string) (byte, error) {
	if len(pri) != 1 {
		return 0, fmt.Errorf("%w: priority must be a single letter A-Z, got %q", ErrInvalid, pri)
	}
	p := pri[0]
	if p >= 'a' && p <= 'z' {
		p -= 'a' - 'A'
	}
	if p < 'A' || p > 'Z' {
		return 0, fmt.Errorf("%w: priority must be a single letter A-Z, got %q", ErrInvalid, pri)
	}
	return p, nil
}
