package todotxt

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Field names one sortable property of a task.
type Field string

const (
	FieldBody          Field = "body"
	FieldCompleteDate  Field = "complete_date"
	FieldCompleted     Field = "completed"
	FieldContext       Field = "context" // first context tag
	FieldCreateDate    Field = "create_date"
	FieldDueDate       Field = "due_date" // metadata due:
	FieldNr            Field = "nr"
	FieldPriority      Field = "priority"
	FieldProject       Field = "project" // first project tag
	FieldRaw           Field = "raw"
	FieldThresholdDate Field = "threshold_date" // metadata t:
)

var sortFields = map[Field]bool{
	FieldBody:          true,
	FieldCompleteDate:  true,
	FieldCompleted:     true,
	FieldContext:       true,
	FieldCreateDate:    true,
	FieldDueDate:       true,
	FieldNr:            true,
	FieldPriority:      true,
	FieldProject:       true,
	FieldRaw:           true,
	FieldThresholdDate: true,
}

// SortKey is one step of a multi-key sort.
type SortKey struct {
	Field Field
	Desc  bool
}

// ParseSortKeys parses a comma-separated key list; a leading '-' marks a
// key descending (e.g. "priority,-create_date").
func ParseSortKeys(spec string) ([]SortKey, error) {
	var parts []string
	for _, p := range strings.Split(spec, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return ParseSortKeyList(parts)
}

// ParseSortKeyList parses one key per element, as configured in TOML.
func ParseSortKeyList(items []string) ([]SortKey, error) {
	keys := make([]SortKey, 0, len(items))
	for _, item := range items {
		k := SortKey{}
		name := strings.TrimSpace(item)
		if strings.HasPrefix(name, "-") {
			k.Desc = true
			name = name[1:]
		}
		k.Field = Field(name)
		if !sortFields[k.Field] {
			return nil, fmt.Errorf("%w: unknown sort key %q", ErrInvalid, name)
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// SortTasks orders tasks by the given keys in place. Ties break by the next
// key and ultimately by original line order. A task without a value for a
// key sorts after every task that has one, regardless of the key's
// direction, so "most urgent first" stays consistent.
func SortTasks(tasks []*Task, keys []SortKey) {
	if len(keys) == 0 {
		return
	}
	sort.Slice(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		for _, k := range keys {
			if c := compareKey(a, b, k); c != 0 {
				return c < 0
			}
		}
		return a.Nr < b.Nr
	})
}

func compareKey(a, b *Task, k SortKey) int {
	ap, bp := hasField(a, k.Field), hasField(b, k.Field)
	switch {
	case !ap && !bp:
		return 0
	case !ap:
		return 1
	case !bp:
		return -1
	}
	c := compareField(a, b, k.Field)
	if k.Desc {
		c = -c
	}
	return c
}

func hasField(t *Task, f Field) bool {
	switch f {
	case FieldPriority:
		return t.Priority != 0
	case FieldCreateDate:
		return !t.CreationDate.IsZero()
	case FieldCompleteDate:
		return !t.CompletionDate.IsZero()
	case FieldProject:
		return len(t.Projects) > 0
	case FieldContext:
		return len(t.Contexts) > 0
	case FieldDueDate:
		_, ok := t.metaDate("due")
		return ok
	case FieldThresholdDate:
		_, ok := t.metaDate("t")
		return ok
	default:
		return true
	}
}

func compareField(a, b *Task, f Field) int {
	switch f {
	case FieldBody:
		return strings.Compare(a.Description, b.Description)
	case FieldCompleteDate:
		return compareTime(a.CompletionDate, b.CompletionDate)
	case FieldCompleted:
		return compareBool(a.Completed, b.Completed)
	case FieldContext:
		return strings.Compare(a.Contexts[0], b.Contexts[0])
	case FieldCreateDate:
		return compareTime(a.CreationDate, b.CreationDate)
	case FieldDueDate:
		ad, _ := a.metaDate("due")
		bd, _ := b.metaDate("due")
		return compareTime(ad, bd)
	case FieldNr:
		return compareInt(a.Nr, b.Nr)
	case FieldPriority:
		return compareInt(int(a.Priority), int(b.Priority))
	case FieldProject:
		return strings.Compare(a.Projects[0], b.Projects[0])
	case FieldRaw:
		return strings.Compare(a.String(), b.String())
	case FieldThresholdDate:
		ad, _ := a.metaDate("t")
		bd, _ := b.metaDate("t")
		return compareTime(ad, bd)
	}
	return 0
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
