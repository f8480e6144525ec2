package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/comfortablynick/todors/internal/config"
	"github.com/comfortablynick/todors/internal/render"
	"github.com/comfortablynick/todors/internal/todotxt"
)

// listValueFlags names the list flags that take a value, in both single-
// and double-dash spellings, so reorderFlags can move them ahead of the
// search terms.
var listValueFlags = func() map[string]bool {
	m := make(map[string]bool)
	for _, name := range []string{
		"pri", "project", "context", "meta",
		"created-before", "created-after", "created-on",
		"completed-before", "completed-after", "completed-on",
	} {
		m["-"+name] = true
		m["--"+name] = true
	}
	return m
}()

// parseListArgs separates filter flags from search terms and builds the
// selection predicate. Diagnostics go to stderr; the second return value is
// the exit code to propagate when it is not ExitOK.
func parseListArgs(name string, args []string) (todotxt.Filter, int) {
	args = reorderFlags(args, listValueFlags)
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	pri := fs.String("pri", "", "Priority letter, 'any' or 'none'")
	project := fs.String("project", "", "Tasks tagged +NAME")
	context := fs.String("context", "", "Tasks tagged @NAME")
	meta := fs.String("meta", "", "Tasks carrying KEY or KEY:VALUE")
	done := fs.Bool("done", false, "Completed tasks only")
	pending := fs.Bool("pending", false, "Pending tasks only")
	createdBefore := fs.String("created-before", "", "Created before DATE (YYYY-MM-DD)")
	createdAfter := fs.String("created-after", "", "Created after DATE")
	createdOn := fs.String("created-on", "", "Created on DATE")
	completedBefore := fs.String("completed-before", "", "Completed before DATE")
	completedAfter := fs.String("completed-after", "", "Completed after DATE")
	completedOn := fs.String("completed-on", "", "Completed on DATE")

	var f todotxt.Filter
	if err := fs.Parse(args); err != nil {
		return f, ExitUsage
	}
	f.Terms = fs.Args()

	switch p := strings.ToLower(strings.TrimSpace(*pri)); {
	case p == "":
	case p == todotxt.PriorityAny || p == todotxt.PriorityNone:
		f.Priority = p
	case len(p) == 1 && p[0] >= 'a' && p[0] <= 'z':
		f.Priority = strings.ToUpper(p)
	default:
		fmt.Fprintf(os.Stderr, "%s: invalid priority %q (want A-Z, 'any' or 'none')\n", name, *pri)
		return f, ExitUsage
	}

	if *done && *pending {
		fmt.Fprintf(os.Stderr, "%s: --done and --pending are mutually exclusive\n", name)
		return f, ExitUsage
	}
	if *done {
		f.State = todotxt.StateDone
	}
	if *pending {
		f.State = todotxt.StatePending
	}

	f.Project = strings.TrimPrefix(*project, "+")
	f.Context = strings.TrimPrefix(*context, "@")
	if *meta != "" {
		f.MetaKey, f.MetaValue = cutMeta(*meta)
	}

	dates := []struct {
		flag string
		val  string
		dst  *time.Time
	}{
		{"created-before", *createdBefore, &f.CreatedBefore},
		{"created-after", *createdAfter, &f.CreatedAfter},
		{"created-on", *createdOn, &f.CreatedOn},
		{"completed-before", *completedBefore, &f.CompletedBefore},
		{"completed-after", *completedAfter, &f.CompletedAfter},
		{"completed-on", *completedOn, &f.CompletedOn},
	}
	for _, d := range dates {
		if d.val == "" {
			continue
		}
		parsed, err := time.Parse(todotxt.DateLayout, d.val)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: invalid --%s date %q (want YYYY-MM-DD)\n", name, d.flag, d.val)
			return f, ExitUsage
		}
		*d.dst = parsed
	}
	return f, ExitOK
}

func cutMeta(meta string) (key, value string) {
	key, value, _ = strings.Cut(meta, ":")
	return key, value
}

// visible drops blank placeholder records from a selection.
func visible(tasks []*todotxt.Task) []*todotxt.Task {
	out := make([]*todotxt.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsBlank() {
			continue
		}
		out = append(out, t)
	}
	return out
}

// countTasks counts the real tasks in a collection, ignoring blank records.
func countTasks(l *todotxt.List) int {
	n := 0
	for _, t := range l.Tasks {
		if !t.IsBlank() {
			n++
		}
	}
	return n
}

func resolveSortKeys(cfg *config.Config, gf GlobalFlags) ([]todotxt.SortKey, error) {
	if gf.SortSpec != "" {
		return todotxt.ParseSortKeys(gf.SortSpec)
	}
	if len(cfg.General.Sort) > 0 {
		return todotxt.ParseSortKeyList(cfg.General.Sort)
	}
	return nil, nil
}

func renderOptions(gf GlobalFlags, width int) render.Options {
	return render.Options{
		Plain:        gf.Plain,
		HidePriority: gf.HidePriority == 1,
		HideProjects: gf.HideProjects == 1,
		HideContexts: gf.HideContexts == 1,
		Width:        width,
	}
}

func emitMachine(gf GlobalFlags, name string, tasks []*todotxt.Task) int {
	var out string
	var err error
	switch {
	case gf.JSON:
		out, err = render.JSON(tasks)
	case gf.NDJSON:
		out, err = render.NDJSON(tasks)
	case gf.YAML:
		out, err = render.YAML(tasks)
	}
	if err != nil {
		return fail(name, err)
	}
	if gf.JSON {
		fmt.Println(out)
	} else {
		fmt.Print(out)
	}
	return ExitOK
}

// runList renders one filtered, sorted view of the todo file. The summary
// footer is suppressed in quiet mode so the output stays pipe-friendly.
func runList(cfg *config.Config, gf GlobalFlags, name string, f todotxt.Filter) int {
	l, err := loadFile(cfg.General.TodoFile)
	if err != nil {
		return fail(name, err)
	}
	view := visible(l.Select(f))
	keys, err := resolveSortKeys(cfg, gf)
	if err != nil {
		return fail(name, err)
	}
	todotxt.SortTasks(view, keys)

	if gf.JSON || gf.NDJSON || gf.YAML {
		return emitMachine(gf, name, view)
	}

	p := render.NewPalette(cfg.Styles)
	opts := renderOptions(gf, render.NumberWidth(l.Len()))
	for _, t := range view {
		fmt.Println(p.Line(t, opts))
	}
	if !gf.Quiet {
		fmt.Println(render.Separator)
		fmt.Println(render.Summary("TODO", len(view), countTasks(l)))
	}
	return ExitOK
}

func cmdList(cfg *config.Config, gf GlobalFlags, args []string) int {
	f, code := parseListArgs("list", args)
	if code != ExitOK {
		return code
	}
	return runList(cfg, gf, "list", f)
}

func cmdListPri(cfg *config.Config, gf GlobalFlags, args []string) int {
	f := todotxt.Filter{Priority: todotxt.PriorityAny}
	switch len(args) {
	case 0:
	case 1:
		p := strings.ToUpper(strings.TrimSpace(args[0]))
		if len(p) != 1 || p[0] < 'A' || p[0] > 'Z' {
			fmt.Fprintf(os.Stderr, "listpri: invalid priority %q\n", args[0])
			return ExitUsage
		}
		f.Priority = p
	default:
		fmt.Fprintln(os.Stderr, "Usage: todors listpri [PRIORITY]")
		return ExitUsage
	}
	return runList(cfg, gf, "listpri", f)
}

func cmdListAll(cfg *config.Config, gf GlobalFlags, args []string) int {
	f, code := parseListArgs("listall", args)
	if code != ExitOK {
		return code
	}
	l, err := loadFile(cfg.General.TodoFile)
	if err != nil {
		return fail("listall", err)
	}
	done, err := loadFile(cfg.General.DoneFile)
	if err != nil {
		return fail("listall", err)
	}

	// Done-file numbers continue after the todo file so every displayed
	// number is unique. The shifted numbers are display-only; nothing is
	// saved on the list path.
	offset := l.Len()
	for _, t := range done.Tasks {
		t.Nr += offset
	}

	view := append(visible(l.Select(f)), visible(done.Select(f))...)
	keys, err := resolveSortKeys(cfg, gf)
	if err != nil {
		return fail("listall", err)
	}
	todotxt.SortTasks(view, keys)

	if gf.JSON || gf.NDJSON || gf.YAML {
		return emitMachine(gf, "listall", view)
	}

	p := render.NewPalette(cfg.Styles)
	opts := renderOptions(gf, render.NumberWidth(offset+done.Len()))
	shownTodo, shownDone := 0, 0
	for _, t := range view {
		if t.Nr > offset {
			shownDone++
		} else {
			shownTodo++
		}
		fmt.Println(p.Line(t, opts))
	}
	if !gf.Quiet {
		fmt.Println(render.Separator)
		fmt.Println(render.Summary("TODO", shownTodo, countTasks(l)))
		fmt.Println(render.Summary("DONE", shownDone, countTasks(done)))
	}
	return ExitOK
}
