// Package todotxt implements the todo.txt task model: parsing single lines
// into structured records, filtering and sorting collections of them,
// mutating the collection, and persisting it back to disk without losing
// anything the parser did not understand.
package todotxt

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date form todo.txt uses throughout.
const DateLayout = "2006-01-02"

var timeNow = func() time.Time { return time.Now() }

// today returns the current local calendar date, normalized to UTC midnight
// so it compares equal to dates produced by parsing.
func today() time.Time {
	n := timeNow()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// Task is one logical line of a todo.txt file. Nr is the 1-based position
// in the file at load time and acts as the external task identifier until
// the file is rewritten. Projects, Contexts and Metadata are derived from
// Description and recomputed whenever it changes; they are never mutated
// independently.
type Task struct {
	Nr             int
	Completed      bool
	CompletionDate time.Time // zero when absent
	CreationDate   time.Time // zero when absent
	Priority       byte      // 'A'..'Z', 0 when absent
	Description    string

	Projects []string
	Contexts []string
	Metadata map[string]string

	// raw is the original unparsed line. It is returned verbatim by
	// String until a mutation rebuilds it, so unknown or malformed
	// content round-trips byte for byte.
	raw string
}

// ParseTask parses one line into a Task. It is total: arbitrary input never
// fails, unparseable structural tokens simply stay in the description.
func ParseTask(nr int, line string) *Task {
	t, _ := parseTask(nr, line)
	return t
}

func parseTask(nr int, line string) (*Task, []Anomaly) {
	t := &Task{Nr: nr, raw: line}
	var anomalies []Anomaly
	rest := line
	flaggedDate := false

	if strings.HasPrefix(rest, "x ") {
		t.Completed = true
		rest = rest[2:]
		if d, r, ok := leadingDate(rest); ok {
			t.CompletionDate = d
			rest = r
		} else if w := firstWord(rest); dateShaped(w) {
			anomalies = append(anomalies, Anomaly{Nr: nr, Msg: fmt.Sprintf("malformed completion date %q kept as text", w)})
			flaggedDate = true
		}
	}

	if len(rest) >= 4 && rest[0] == '(' && rest[2] == ')' && rest[3] == ' ' {
		switch c := rest[1]; {
		case c >= 'A' && c <= 'Z':
			t.Priority = c
			rest = rest[4:]
		case c >= 'a' && c <= 'z':
			anomalies = append(anomalies, Anomaly{Nr: nr, Msg: fmt.Sprintf("lowercase priority %q kept as text", rest[:3])})
		}
	}

	if d, r, ok := leadingDate(rest); ok {
		t.CreationDate = d
		rest = r
	} else if w := firstWord(rest); dateShaped(w) && !flaggedDate {
		anomalies = append(anomalies, Anomaly{Nr: nr, Msg: fmt.Sprintf("malformed date %q kept as text", w)})
	}

	t.Description = rest
	t.scanTags()
	return t, anomalies
}

// String returns the on-disk form of the task: the original line while the
// task is unmutated, the canonical serialization afterwards.
func (t *Task) String() string {
	return t.raw
}

// IsBlank reports whether the record is an empty placeholder line rather
// than a task.
func (t *Task) IsBlank() bool {
	return strings.TrimSpace(t.raw) == ""
}

// SetDescription replaces the free text and recomputes the derived
// projects, contexts and metadata.
func (t *Task) SetDescription(desc string) {
	t.Description = desc
	t.scanTags()
	t.rebuild()
}

// AppendText appends text to the description with a single space separator.
func (t *Task) AppendText(text string) {
	if t.Description == "" {
		t.SetDescription(text)
		return
	}
	t.SetDescription(t.Description + " " + text)
}

func (t *Task) markDone(date time.Time) {
	t.Completed = true
	t.CompletionDate = date
	t.rebuild()
}

func (t *Task) markPending() {
	t.Completed = false
	t.CompletionDate = time.Time{}
	t.rebuild()
}

func (t *Task) setPriority(p byte) {
	t.Priority = p
	t.rebuild()
}

// rebuild regenerates raw from the structured fields. Whitespace between
// prefix tokens normalizes to a single space; the description is kept
// verbatim.
func (t *Task) rebuild() {
	var b strings.Builder
	if t.Completed {
		b.WriteString("x ")
		if !t.CompletionDate.IsZero() {
			b.WriteString(t.CompletionDate.Format(DateLayout))
			b.WriteByte(' ')
		}
	}
	if t.Priority != 0 {
		b.WriteByte('(')
		b.WriteByte(t.Priority)
		b.WriteString(") ")
	}
	if !t.CreationDate.IsZero() {
		b.WriteString(t.CreationDate.Format(DateLayout))
		b.WriteByte(' ')
	}
	b.WriteString(t.Description)
	t.raw = strings.TrimRight(b.String(), " ")
}

func (t *Task) scanTags() {
	var projects, contexts []string
	meta := map[string]string{}
	for _, w := range strings.Fields(t.Description) {
		switch {
		case len(w) > 1 && w[0] == '+':
			projects = appendUnique(projects, w[1:])
		case len(w) > 1 && w[0] == '@':
			contexts = appendUnique(contexts, w[1:])
		default:
			k, v, ok := strings.Cut(w, ":")
			if ok && k != "" && v != "" {
				if _, dup := meta[k]; !dup {
					meta[k] = v
				}
			}
		}
	}
	t.Projects = projects
	t.Contexts = contexts
	t.Metadata = meta
}

// metaDate parses a metadata value (due:, t:) as a calendar date.
func (t *Task) metaDate(key string) (time.Time, bool) {
	v, ok := t.Metadata[key]
	if !ok {
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func appendUnique(list []string, s string) []string {
	for _, have := range list {
		if have == s {
			return list
		}
	}
	return append(list, s)
}

func firstWord(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

// dateShaped reports whether s has the YYYY-MM-DD shape, whether or not the
// digits form a real calendar date.
func dateShaped(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if i == 4 || i == 7 {
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// leadingDate cuts a YYYY-MM-DD prefix followed by a space or end of input.
func leadingDate(s string) (time.Time, string, bool) {
	if len(s) < 10 || !dateShaped(s[:10]) {
		return time.Time{}, s, false
	}
	d, err := time.Parse(DateLayout, s[:10])
	if err != nil {
		return time.Time{}, s, false
	}
	if len(s) == 10 {
		return d, "", true
	}
	if s[10] != ' ' {
		return time.Time{}, s, false
	}
	return d, s[11:], true
}
