// Package cli implements the todors command surface: global flag
// extraction, command dispatch, and the reporting conventions around the
// task collection.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/comfortablynick/todors/internal/config"
	"github.com/comfortablynick/todors/internal/render"
	"github.com/comfortablynick/todors/internal/todotxt"
)

// Exit codes
const (
	ExitOK       = 0
	ExitUsage    = 2
	ExitNotFound = 3
	ExitInternal = 10
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: false,
	Prefix:          "todors",
})

// GlobalFlags are recognized anywhere on the command line, before or after
// the command word. The hide counters follow the original convention: one
// occurrence hides the element, two or more force-shows it.
type GlobalFlags struct {
	ConfigFile string
	Verbosity  int
	Quiet      bool
	Plain      bool

	HidePriority int
	HideProjects int
	HideContexts int

	DateOnAdd  int // 1 stamp (-t), -1 never (-T), 0 defer to config
	BlankLines int // -1 drop on save (-n), 1 keep (-N), 0 default keep

	SortSpec string

	JSON   bool
	NDJSON bool
	YAML   bool
}

// globalCluster lists the single-letter flags that may be combined into
// one token, e.g. -vq or -vv.
const globalCluster = "vqptTnNP@+"

func isGlobalCluster(a string) bool {
	if len(a) < 2 || a[0] != '-' {
		return false
	}
	for _, c := range a[1:] {
		if !strings.ContainsRune(globalCluster, c) {
			return false
		}
	}
	return true
}

func extractGlobalFlags(args []string) (GlobalFlags, []string, error) {
	// Allow flags anywhere by scanning and stripping known globals.
	gf := GlobalFlags{}
	out := make([]string, 0, len(args))
	skip := 0

	for i := 0; i < len(args); i++ {
		if skip > 0 {
			skip--
			continue
		}
		a := args[i]
		if a == "--" {
			out = append(out, args[i:]...)
			break
		}
		switch a {
		case "-d":
			if i+1 >= len(args) {
				return gf, nil, errors.New("-d requires a value")
			}
			gf.ConfigFile = args[i+1]
			skip = 1
		case "-s":
			if i+1 >= len(args) {
				return gf, nil, errors.New("-s requires a value")
			}
			gf.SortSpec = args[i+1]
			skip = 1
		case "--json":
			gf.JSON = true
		case "--ndjson":
			gf.NDJSON = true
		case "--yaml":
			gf.YAML = true
		default:
			if !isGlobalCluster(a) {
				out = append(out, a)
				continue
			}
			for _, c := range a[1:] {
				switch c {
				case 'v':
					gf.Verbosity++
				case 'q':
					gf.Quiet = true
				case 'p':
					gf.Plain = true
				case 't':
					gf.DateOnAdd = 1
				case 'T':
					gf.DateOnAdd = -1
				case 'n':
					gf.BlankLines = -1
				case 'N':
					gf.BlankLines = 1
				case 'P':
					gf.HidePriority++
				case '@':
					gf.HideContexts++
				case '+':
					gf.HideProjects++
				}
			}
		}
	}

	machine := 0
	for _, on := range []bool{gf.JSON, gf.NDJSON, gf.YAML} {
		if on {
			machine++
		}
	}
	if machine > 1 {
		return gf, nil, errors.New("--json, --ndjson and --yaml are mutually exclusive")
	}
	return gf, out, nil
}

func reorderFlags(args []string, takesValue map[string]bool) []string {
	if len(args) == 0 {
		return args
	}
	var flags []string
	var rest []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			if i+1 < len(args) {
				rest = append(rest, args[i+1:]...)
			}
			break
		}
		if strings.HasPrefix(a, "-") {
			flags = append(flags, a)
			if takesValue[a] && !strings.Contains(a, "=") {
				if i+1 < len(args) {
					flags = append(flags, args[i+1])
					i++
				}
			}
			continue
		}
		rest = append(rest, a)
	}
	return append(flags, rest...)
}

func setupLogger(gf GlobalFlags) {
	switch {
	case gf.Quiet:
		logger.SetLevel(log.ErrorLevel)
	case gf.Verbosity >= 2:
		logger.SetLevel(log.DebugLevel)
	case gf.Verbosity == 1:
		logger.SetLevel(log.InfoLevel)
	default:
		logger.SetLevel(log.WarnLevel)
	}
	if gf.Verbosity >= 3 {
		logger.SetReportCaller(true)
	}
}

func loadConfig(gf GlobalFlags) (*config.Config, error) {
	if gf.ConfigFile != "" {
		return config.Load(gf.ConfigFile)
	}
	return config.LoadDefault()
}

func Run(args []string) int {
	gf, rest, err := extractGlobalFlags(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return ExitUsage
	}
	setupLogger(gf)

	cfg, err := loadConfig(gf)
	if err != nil {
		fmt.Fprintln(os.Stderr, "todors:", err)
		return ExitInternal
	}
	for _, s := range cfg.Styles {
		if !render.KnownStyle(strings.ToLower(strings.TrimSpace(s.Name))) {
			logger.Warn("unknown style name in config", "name", s.Name)
		}
	}

	var cmd string
	var cmdArgs []string
	if len(rest) > 0 {
		cmd, cmdArgs = rest[0], rest[1:]
	} else {
		fields := strings.Fields(cfg.General.DefaultAction)
		if len(fields) == 0 {
			fields = []string{"ls"}
		}
		cmd, cmdArgs = fields[0], fields[1:]
	}
	logger.Debug("dispatching", "command", cmd, "todo_file", cfg.General.TodoFile)

	switch cmd {
	case "help", "--help", "-h":
		printHelp()
		return ExitOK
	case "add", "a":
		return cmdAdd(cfg, gf, cmdArgs)
	case "addm":
		return cmdAddm(cfg, gf, cmdArgs)
	case "append", "app":
		return cmdAppend(cfg, gf, cmdArgs)
	case "del", "rm":
		return cmdDel(cfg, gf, cmdArgs)
	case "do":
		return cmdDo(cfg, gf, cmdArgs)
	case "undo":
		return cmdUndo(cfg, gf, cmdArgs)
	case "pri", "p":
		return cmdPri(cfg, gf, cmdArgs)
	case "depri", "dp":
		return cmdDepri(cfg, gf, cmdArgs)
	case "archive":
		return cmdArchive(cfg, gf, cmdArgs)
	case "list", "ls":
		return cmdList(cfg, gf, cmdArgs)
	case "listall", "lsa":
		return cmdListAll(cfg, gf, cmdArgs)
	case "listpri", "lsp":
		return cmdListPri(cfg, gf, cmdArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printHelp()
		return ExitUsage
	}
}

func printHelp() {
	fmt.Print(`todors — command-line todo list manager for todo.txt files

Usage:
  todors [global flags] [command [args]]

Global flags:
  -d FILE     Config file (default: $TODORS_CFG_FILE or ~/.config/todors/todors.toml)
  -t / -T     Stamp / never stamp the creation date on add (overrides config)
  -v          Raise verbosity (repeatable)
  -q          Quiet: errors only
  -p          Plain output, no color
  -P -+ -@    Hide priorities / projects / contexts (give twice to force show)
  -n / -N     Drop / preserve blank lines on save (default: preserve)
  -s KEYS     Sort keys, comma separated, '-' prefix for descending
  --json / --ndjson / --yaml
              Machine-readable list output

Commands:
  add TEXT...          (a)   Add a task
  addm TEXT            Add one task per line of TEXT
  append NR TEXT...    (app) Append text to task NR
  del NR... [TERM]     (rm)  Delete tasks, or remove TERM from task NR
  do NR...             Mark tasks done
  undo NR...           Mark tasks pending again
  pri NR PRIORITY      (p)   Set priority A-Z
  depri NR...          (dp)  Remove priority
  archive              Move completed tasks to the done file
  list [TERM...]       (ls)  List tasks matching every TERM
  listall [TERM...]    (lsa) List todo and done tasks together
  listpri [PRIORITY]   (lsp) List prioritized tasks

List filter flags:
  --pri LETTER|any|none   --project NAME   --context NAME   --meta KEY[:VALUE]
  --done   --pending
  --created-before DATE   --created-after DATE   --created-on DATE
  --completed-before DATE --completed-after DATE --completed-on DATE

No command runs the configured default_action (default: ls).
`)
}

// fail reports a command error and maps it onto the exit code set.
func fail(cmd string, err error) int {
	fmt.Fprintln(os.Stderr, cmd+":", err)
	switch {
	case errors.Is(err, todotxt.ErrInvalid):
		return ExitUsage
	case errors.Is(err, todotxt.ErrNotFound):
		return ExitNotFound
	default:
		return ExitInternal
	}
}

func parseNr(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid task number %q", s)
	}
	return n, nil
}

// parseNrs accepts task numbers as separate arguments or comma-separated
// groups ("1,3 5").
func parseNrs(args []string) ([]int, error) {
	nrs := make([]int, 0, len(args))
	for _, a := range args {
		for _, piece := range strings.Split(a, ",") {
			if piece == "" {
				continue
			}
			n, err := parseNr(piece)
			if err != nil {
				return nil, err
			}
			nrs = append(nrs, n)
		}
	}
	if len(nrs) == 0 {
		return nil, errors.New("at least one task number required")
	}
	return nrs, nil
}

func isNr(s string) bool {
	_, err := parseNrs([]string{s})
	return err == nil
}

func stampDate(cfg *config.Config, gf GlobalFlags) bool {
	switch {
	case gf.DateOnAdd > 0:
		return true
	case gf.DateOnAdd < 0:
		return false
	default:
		return cfg.General.DateOnAdd
	}
}

// loadFile reads a task file, tolerating its absence: a missing file is an
// empty collection, not an error. Parse anomalies are logged and dropped.
func loadFile(path string) (*todotxt.List, error) {
	l, anomalies, err := todotxt.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("file missing, starting empty", "path", path)
			return todotxt.NewList(), nil
		}
		return nil, err
	}
	for _, a := range anomalies {
		logger.Warn(a.Msg, "line", a.Nr)
	}
	return l, nil
}

func saveTodo(cfg *config.Config, gf GlobalFlags, l *todotxt.List) error {
	if gf.BlankLines < 0 {
		if n := l.DropBlank(); n > 0 {
			logger.Debug("dropped blank lines", "count", n)
		}
	}
	return todotxt.Save(cfg.General.TodoFile, l)
}

func cmdAdd(cfg *config.Config, gf GlobalFlags, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: todors add TEXT...")
		return ExitUsage
	}
	l, err := loadFile(cfg.General.TodoFile)
	if err != nil {
		return fail("add", err)
	}
	t, err := l.Add(strings.Join(args, " "), stampDate(cfg, gf))
	if err != nil {
		return fail("add", err)
	}
	if err := saveTodo(cfg, gf, l); err != nil {
		return fail("add", err)
	}
	if !gf.Quiet {
		fmt.Printf("%d %s\n", t.Nr, t)
		fmt.Printf("TODO: %d added.\n", t.Nr)
	}
	return ExitOK
}

func cmdAddm(cfg *config.Config, gf GlobalFlags, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: todors addm TEXT")
		return ExitUsage
	}
	l, err := loadFile(cfg.General.TodoFile)
	if err != nil {
		return fail("addm", err)
	}
	added, err := l.AddMany(strings.Join(args, " "), stampDate(cfg, gf))
	if err != nil {
		return fail("addm", err)
	}
	if err := saveTodo(cfg, gf, l); err != nil {
		return fail("addm", err)
	}
	if !gf.Quiet {
		for _, t := range added {
			fmt.Printf("%d %s\n", t.Nr, t)
		}
		fmt.Printf("TODO: %d tasks added.\n", len(added))
	}
	return ExitOK
}

func cmdAppend(cfg *config.Config, gf GlobalFlags, args []string) int {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: todors append NR TEXT...")
		return ExitUsage
	}
	nr, err := parseNr(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "append:", err)
		return ExitUsage
	}
	l, err := loadFile(cfg.General.TodoFile)
	if err != nil {
		return fail("append", err)
	}
	t, err := l.AppendText(nr, strings.Join(args[1:], " "))
	if err != nil {
		return fail("append", err)
	}
	if err := saveTodo(cfg, gf, l); err != nil {
		return fail("append", err)
	}
	if !gf.Quiet {
		fmt.Printf("%d %s\n", t.Nr, t)
	}
	return ExitOK
}

func cmdDel(cfg *config.Config, gf GlobalFlags, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: todors del NR... [TERM]")
		return ExitUsage
	}
	if last := args[len(args)-1]; len(args) >= 2 && !isNr(last) {
		nrs, err := parseNrs(args[:len(args)-1])
		if err != nil || len(nrs) != 1 {
			fmt.Fprintln(os.Stderr, "Usage: todors del NR TERM")
			return ExitUsage
		}
		return delTerm(cfg, gf, nrs[0], last)
	}
	nrs, err := parseNrs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "del:", err)
		return ExitUsage
	}
	return runBatch(cfg, gf, "del", nrs, (*todotxt.List).Delete, map[todotxt.Outcome]string{
		todotxt.Applied: "deleted",
	})
}

func delTerm(cfg *config.Config, gf GlobalFlags, nr int, term string) int {
	l, err := loadFile(cfg.General.TodoFile)
	if err != nil {
		return fail("del", err)
	}
	t, err := l.RemoveTerm(nr, term)
	if err != nil {
		return fail("del", err)
	}
	if err := saveTodo(cfg, gf, l); err != nil {
		return fail("del", err)
	}
	if !gf.Quiet {
		fmt.Printf("%d %s\n", t.Nr, t)
		fmt.Printf("TODO: removed %q from task %d.\n", term, nr)
	}
	return ExitOK
}

// runBatch applies one multi-target mutation, reports each result, and
// saves only when something actually changed. Unknown task numbers are
// reported on stderr and set the exit code, but never roll back targets
// that did resolve.
func runBatch(cfg *config.Config, gf GlobalFlags, cmd string, nrs []int, apply func(*todotxt.List, []int) []todotxt.Result, messages map[todotxt.Outcome]string) int {
	l, err := loadFile(cfg.General.TodoFile)
	if err != nil {
		return fail(cmd, err)
	}
	results := apply(l, nrs)
	changed := false
	code := ExitOK
	for _, r := range results {
		if r.Outcome == todotxt.NotFound {
			fmt.Fprintf(os.Stderr, "TODO: no task %d.\n", r.Nr)
			code = ExitNotFound
			continue
		}
		if r.Changed() {
			changed = true
		}
		if !gf.Quiet {
			if msg, ok := messages[r.Outcome]; ok {
				fmt.Printf("TODO: %d %s.\n", r.Nr, msg)
			}
		}
	}
	if changed {
		if err := saveTodo(cfg, gf, l); err != nil {
			return fail(cmd, err)
		}
	}
	return code
}

func batchNrs(cfg *config.Config, gf GlobalFlags, cmd string, args []string, apply func(*todotxt.List, []int) []todotxt.Result, messages map[todotxt.Outcome]string) int {
	nrs, err := parseNrs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, cmd+":", err)
		return ExitUsage
	}
	return runBatch(cfg, gf, cmd, nrs, apply, messages)
}

func cmdDo(cfg *config.Config, gf GlobalFlags, args []string) int {
	return batchNrs(cfg, gf, "do", args, (*todotxt.List).Complete, map[todotxt.Outcome]string{
		todotxt.Applied:     "marked done",
		todotxt.AlreadyDone: "is already marked done",
	})
}

func cmdUndo(cfg *config.Config, gf GlobalFlags, args []string) int {
	return batchNrs(cfg, gf, "undo", args, (*todotxt.List).Uncomplete, map[todotxt.Outcome]string{
		todotxt.Applied:        "marked pending",
		todotxt.AlreadyPending: "is already pending",
	})
}

func cmdDepri(cfg *config.Config, gf GlobalFlags, args []string) int {
	return batchNrs(cfg, gf, "depri", args, (*todotxt.List).Deprioritize, map[todotxt.Outcome]string{
		todotxt.Applied:   "deprioritized",
		todotxt.Unchanged: "is not prioritized",
	})
}

func cmdPri(cfg *config.Config, gf GlobalFlags, args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: todors pri NR PRIORITY")
		return ExitUsage
	}
	nr, err := parseNr(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "pri:", err)
		return ExitUsage
	}
	l, err := loadFile(cfg.General.TodoFile)
	if err != nil {
		return fail("pri", err)
	}
	t, err := l.Prioritize(nr, args[1])
	if err != nil {
		return fail("pri", err)
	}
	if err := saveTodo(cfg, gf, l); err != nil {
		return fail("pri", err)
	}
	if !gf.Quiet {
		fmt.Printf("%d %s\n", t.Nr, t)
		fmt.Printf("TODO: %d prioritized (%s).\n", t.Nr, string(t.Priority))
	}
	return ExitOK
}

func cmdArchive(cfg *config.Config, gf GlobalFlags, args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "Usage: todors archive")
		return ExitUsage
	}
	l, err := loadFile(cfg.General.TodoFile)
	if err != nil {
		return fail("archive", err)
	}
	moved := l.Archive()
	if len(moved) == 0 {
		if !gf.Quiet {
			fmt.Println("TODO: no completed tasks to archive.")
		}
		return ExitOK
	}
	done, err := loadFile(cfg.General.DoneFile)
	if err != nil {
		return fail("archive", err)
	}
	done.AddTasks(moved)
	// The done file is extended before the todo file shrinks, so a failure
	// between the two writes duplicates tasks instead of losing them.
	if err := todotxt.Save(cfg.General.DoneFile, done); err != nil {
		return fail("archive", err)
	}
	if err := saveTodo(cfg, gf, l); err != nil {
		return fail("archive", err)
	}
	if !gf.Quiet {
		fmt.Printf("TODO: %d tasks archived to %s.\n", len(moved), cfg.General.DoneFile)
	}
	return ExitOK
}
