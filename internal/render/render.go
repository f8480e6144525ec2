// Package render turns task collections into terminal lines and into
// machine-readable JSON, NDJSON and YAML documents.
package render

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/comfortablynick/todors/internal/config"
	"github.com/comfortablynick/todors/internal/todotxt"
)

// Palette maps style slots (pri_a..pri_z, project, context, done) to
// terminal styles. Slots without an entry render unstyled.
type Palette struct {
	styles map[string]lipgloss.Style
}

func defaultStyles() map[string]lipgloss.Style {
	styles := map[string]lipgloss.Style{
		"pri_a":   lipgloss.NewStyle().Foreground(lipgloss.Color("198")),
		"pri_b":   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"pri_c":   lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"pri_d":   lipgloss.NewStyle().Foreground(lipgloss.Color("37")),
		"project": lipgloss.NewStyle().Foreground(lipgloss.Color("154")),
		"context": lipgloss.NewStyle().Foreground(lipgloss.Color("215")),
	}
	for c := 'e'; c <= 'z'; c++ {
		styles["pri_"+string(c)] = lipgloss.NewStyle().Foreground(lipgloss.Color("179"))
	}
	return styles
}

// KnownStyle reports whether name is a slot the renderer consults.
func KnownStyle(name string) bool {
	switch name {
	case "project", "context", "done":
		return true
	}
	return len(name) == 5 && strings.HasPrefix(name, "pri_") &&
		name[4] >= 'a' && name[4] <= 'z'
}

// NewPalette builds the display palette with overrides applied on top of
// the defaults. Overrides with unknown names are skipped; the caller is
// expected to have warned about them already.
func NewPalette(overrides []config.Style) *Palette {
	styles := defaultStyles()
	for _, s := range overrides {
		name := strings.ToLower(strings.TrimSpace(s.Name))
		if !KnownStyle(name) {
			continue
		}
		styles[name] = styleFrom(s)
	}
	return &Palette{styles: styles}
}

func styleFrom(s config.Style) lipgloss.Style {
	st := lipgloss.NewStyle()
	if fg, ok := colorIndex(s.ColorFG, s.Intense); ok {
		st = st.Foreground(lipgloss.Color(strconv.Itoa(fg)))
	}
	if bg, ok := colorIndex(s.ColorBG, s.Intense); ok {
		st = st.Background(lipgloss.Color(strconv.Itoa(bg)))
	}
	if s.Bold {
		st = st.Bold(true)
	}
	if s.Underline {
		st = st.Underline(true)
	}
	return st
}

// colorIndex resolves an ANSI-256 color. Missing pointers and out-of-range
// values (the config uses -1 for "unset") yield no color. Intense promotes
// the 8 base colors to their bright variants.
func colorIndex(v *int, intense bool) (int, bool) {
	if v == nil || *v < 0 || *v > 255 {
		return 0, false
	}
	n := *v
	if intense && n < 8 {
		n += 8
	}
	return n, true
}

func (p *Palette) lookup(name string) (lipgloss.Style, bool) {
	st, ok := p.styles[name]
	return st, ok
}

// taskStyle picks the base style for a task: done for completed tasks,
// the priority slot for prioritized ones, nothing otherwise.
func (p *Palette) taskStyle(t *todotxt.Task) (lipgloss.Style, bool) {
	if t.Completed {
		return p.lookup("done")
	}
	if t.Priority != 0 {
		return p.lookup("pri_" + string(rune(t.Priority-'A'+'a')))
	}
	return lipgloss.Style{}, false
}

// Options control list rendering.
type Options struct {
	Plain        bool // no styling at all
	HidePriority bool
	HideProjects bool
	HideContexts bool
	Width        int // zero-pad task numbers to this many digits
}

// Line renders one task, number first. The base style covers the whole
// line; project and context words get their own slots unless the task is
// completed, which paints everything in the done style.
func (p *Palette) Line(t *todotxt.Task, o Options) string {
	words := append([]string{fmt.Sprintf("%0*d", o.Width, t.Nr)}, bodyWords(t, o)...)
	if o.Plain {
		return strings.Join(words, " ")
	}
	base, hasBase := p.taskStyle(t)
	var b strings.Builder
	for i, w := range words {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch {
		case i == 0 || t.Completed:
			b.WriteString(apply(w, base, hasBase))
		case len(w) > 1 && w[0] == '+':
			b.WriteString(p.applySlot(w, "project"))
		case len(w) > 1 && w[0] == '@':
			b.WriteString(p.applySlot(w, "context"))
		default:
			b.WriteString(apply(w, base, hasBase))
		}
	}
	return b.String()
}

func (p *Palette) applySlot(s, name string) string {
	st, ok := p.lookup(name)
	return apply(s, st, ok)
}

func apply(s string, st lipgloss.Style, styled bool) string {
	if !styled {
		return s
	}
	return st.Render(s)
}

// bodyWords reassembles the display form of a task from its parsed fields,
// honoring the hide options.
func bodyWords(t *todotxt.Task, o Options) []string {
	words := make([]string, 0, 8)
	if t.Completed {
		words = append(words, "x")
		if !t.CompletionDate.IsZero() {
			words = append(words, t.CompletionDate.Format(todotxt.DateLayout))
		}
	}
	if t.Priority != 0 && !o.HidePriority {
		words = append(words, "("+string(t.Priority)+")")
	}
	if !t.CreationDate.IsZero() {
		words = append(words, t.CreationDate.Format(todotxt.DateLayout))
	}
	for _, w := range strings.Fields(t.Description) {
		if o.HideProjects && len(w) > 1 && w[0] == '+' {
			continue
		}
		if o.HideContexts && len(w) > 1 && w[0] == '@' {
			continue
		}
		words = append(words, w)
	}
	return words
}

// NumberWidth returns the digit count needed to display n.
func NumberWidth(n int) int {
	w := 1
	for n >= 10 {
		n /= 10
		w++
	}
	return w
}

// Separator sits between a listing and its summary lines.
const Separator = "--"

// Summary is one summary line of the listing footer.
func Summary(label string, shown, total int) string {
	return fmt.Sprintf("%s: %d of %d tasks shown", label, shown, total)
}

// TaskView is the machine-readable projection of a task. Dates are
// rendered in the todo.txt calendar form, absent fields are omitted.
type TaskView struct {
	Nr             int               `json:"nr" yaml:"nr"`
	Completed      bool              `json:"completed" yaml:"completed"`
	CompletionDate string            `json:"completion_date,omitempty" yaml:"completion_date,omitempty"`
	Priority       string            `json:"priority,omitempty" yaml:"priority,omitempty"`
	CreationDate   string            `json:"creation_date,omitempty" yaml:"creation_date,omitempty"`
	Description    string            `json:"description" yaml:"description"`
	Projects       []string          `json:"projects,omitempty" yaml:"projects,omitempty"`
	Contexts       []string          `json:"contexts,omitempty" yaml:"contexts,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Raw            string            `json:"raw" yaml:"raw"`
}

// View projects one task.
func View(t *todotxt.Task) TaskView {
	v := TaskView{
		Nr:          t.Nr,
		Completed:   t.Completed,
		Description: t.Description,
		Projects:    t.Projects,
		Contexts:    t.Contexts,
		Metadata:    t.Metadata,
		Raw:         t.String(),
	}
	if !t.CompletionDate.IsZero() {
		v.CompletionDate = t.CompletionDate.Format(todotxt.DateLayout)
	}
	if !t.CreationDate.IsZero() {
		v.CreationDate = t.CreationDate.Format(todotxt.DateLayout)
	}
	if t.Priority != 0 {
		v.Priority = string(t.Priority)
	}
	return v
}

// Views projects a slice of tasks. The result is never nil so an empty
// selection encodes as an empty array, not null.
func Views(tasks []*todotxt.Task) []TaskView {
	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, View(t))
	}
	return views
}

// JSON encodes tasks as one indented JSON array.
func JSON(tasks []*todotxt.Task) (string, error) {
	data, err := json.MarshalIndent(Views(tasks), "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// NDJSON encodes tasks as one JSON object per line.
func NDJSON(tasks []*todotxt.Task) (string, error) {
	var b strings.Builder
	for _, t := range tasks {
		data, err := json.Marshal(View(t))
		if err != nil {
			return "", err
		}
		b.Write(data)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// YAML encodes tasks as a single YAML document.
func YAML(tasks []*todotxt.Task) (string, error) {
	data, err := yaml.Marshal(Views(tasks))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
