package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/comfortablynick/todors/internal/config"
	"github.com/comfortablynick/todors/internal/render"
	"github.com/comfortablynick/todors/internal/todotxt"
)

func TestExtractGlobalFlags(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want GlobalFlags
		rest []string
	}{
		{
			name: "config file",
			args: []string{"-d", "conf.toml", "ls"},
			want: GlobalFlags{ConfigFile: "conf.toml"},
			rest: []string{"ls"},
		},
		{
			name: "combined cluster",
			args: []string{"-vq", "ls"},
			want: GlobalFlags{Verbosity: 1, Quiet: true},
			rest: []string{"ls"},
		},
		{
			name: "repeated verbosity",
			args: []string{"-v", "-vv"},
			want: GlobalFlags{Verbosity: 3},
			rest: []string{},
		},
		{
			name: "flags after command",
			args: []string{"add", "-t", "milk"},
			want: GlobalFlags{DateOnAdd: 1},
			rest: []string{"add", "milk"},
		},
		{
			name: "hide twice forces show",
			args: []string{"-+", "-+", "ls"},
			want: GlobalFlags{HideProjects: 2},
			rest: []string{"ls"},
		},
		{
			name: "sort spec",
			args: []string{"-s", "priority,-create_date", "ls"},
			want: GlobalFlags{SortSpec: "priority,-create_date"},
			rest: []string{"ls"},
		},
		{
			name: "machine output",
			args: []string{"--json", "ls"},
			want: GlobalFlags{JSON: true},
			rest: []string{"ls"},
		},
		{
			name: "uppercase toggles",
			args: []string{"-T", "-N", "-P", "add", "x"},
			want: GlobalFlags{DateOnAdd: -1, BlankLines: 1, HidePriority: 1},
			rest: []string{"add", "x"},
		},
		{
			name: "unknown single dash passes through",
			args: []string{"ls", "-pri", "A"},
			want: GlobalFlags{},
			rest: []string{"ls", "-pri", "A"},
		},
		{
			name: "double dash stops scanning",
			args: []string{"add", "--", "-v"},
			want: GlobalFlags{},
			rest: []string{"add", "--", "-v"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gf, rest, err := extractGlobalFlags(tc.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gf != tc.want {
				t.Errorf("expected flags %+v, got %+v", tc.want, gf)
			}
			if len(rest) != len(tc.rest) {
				t.Fatalf("expected rest %v, got %v", tc.rest, rest)
			}
			for i := range rest {
				if rest[i] != tc.rest[i] {
					t.Fatalf("expected rest %v, got %v", tc.rest, rest)
				}
			}
		})
	}
}

func TestExtractGlobalFlagsErrors(t *testing.T) {
	if _, _, err := extractGlobalFlags([]string{"-d"}); err == nil {
		t.Error("expected error for -d without value")
	}
	if _, _, err := extractGlobalFlags([]string{"-s"}); err == nil {
		t.Error("expected error for -s without value")
	}
	if _, _, err := extractGlobalFlags([]string{"--json", "--yaml"}); err == nil {
		t.Error("expected error for conflicting output formats")
	}
}

func TestReorderFlags(t *testing.T) {
	got := reorderFlags(
		[]string{"work", "--pri", "A", "home"},
		map[string]bool{"--pri": true},
	)
	want := []string{"--pri", "A", "work", "home"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	got = reorderFlags([]string{"a", "--", "-b"}, nil)
	want = []string{"a", "-b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParseNrs(t *testing.T) {
	got, err := parseNrs([]string{"1,3", "5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []int{1, 3, 5}) {
		t.Fatalf("expected [1 3 5], got %v", got)
	}
	for _, bad := range [][]string{{"0"}, {"x"}, {}, {"-2"}} {
		if _, err := parseNrs(bad); err == nil {
			t.Errorf("expected error for %v", bad)
		}
	}
	if got, err := parseNrs([]string{"2,"}); err != nil || !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("trailing comma: expected [2], got %v (%v)", got, err)
	}
}

func TestStampDate(t *testing.T) {
	cfgOn := &config.Config{General: config.General{DateOnAdd: true}}
	cfgOff := &config.Config{}
	if !stampDate(cfgOff, GlobalFlags{DateOnAdd: 1}) {
		t.Error("-t should force stamping")
	}
	if stampDate(cfgOn, GlobalFlags{DateOnAdd: -1}) {
		t.Error("-T should suppress stamping")
	}
	if !stampDate(cfgOn, GlobalFlags{}) {
		t.Error("config date_on_add should apply without flags")
	}
	if stampDate(cfgOff, GlobalFlags{}) {
		t.Error("default should not stamp")
	}
}

func TestParseListArgs(t *testing.T) {
	f, code := parseListArgs("list", []string{"work", "--pri", "a", "--context", "home"})
	if code != ExitOK {
		t.Fatalf("unexpected exit code %d", code)
	}
	if !reflect.DeepEqual(f.Terms, []string{"work"}) {
		t.Errorf("expected terms [work], got %v", f.Terms)
	}
	if f.Priority != "A" {
		t.Errorf("expected priority A, got %q", f.Priority)
	}
	if f.Context != "home" {
		t.Errorf("expected context home, got %q", f.Context)
	}

	f, code = parseListArgs("list", []string{"--meta", "due:2026-01-01", "--project", "+house"})
	if code != ExitOK {
		t.Fatalf("unexpected exit code %d", code)
	}
	if f.MetaKey != "due" || f.MetaValue != "2026-01-01" {
		t.Errorf("expected meta due=2026-01-01, got %q=%q", f.MetaKey, f.MetaValue)
	}
	if f.Project != "house" {
		t.Errorf("expected project house, got %q", f.Project)
	}

	f, code = parseListArgs("list", []string{"--meta", "due", "--done"})
	if code != ExitOK {
		t.Fatalf("unexpected exit code %d", code)
	}
	if f.MetaKey != "due" || f.MetaValue != "" {
		t.Errorf("expected bare meta key, got %q=%q", f.MetaKey, f.MetaValue)
	}
	if f.State != todotxt.StateDone {
		t.Errorf("expected done state, got %q", f.State)
	}

	f, code = parseListArgs("list", []string{"--created-on", "2026-08-22"})
	if code != ExitOK {
		t.Fatalf("unexpected exit code %d", code)
	}
	if !f.CreatedOn.Equal(time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected created-on %v", f.CreatedOn)
	}
}

func TestParseListArgsRejects(t *testing.T) {
	bad := [][]string{
		{"--pri", "AB"},
		{"--pri", "1"},
		{"--done", "--pending"},
		{"--created-on", "yesterday"},
		{"--bogus"},
	}
	for _, args := range bad {
		if _, code := parseListArgs("list", args); code != ExitUsage {
			t.Errorf("expected usage error for %v, got %d", args, code)
		}
	}
}

// env wires a Run invocation to a throwaway config and todo file.
type env struct {
	cfg  string
	todo string
	done string
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()
	e := env{
		cfg:  filepath.Join(dir, "todors.toml"),
		todo: filepath.Join(dir, "todo.txt"),
		done: filepath.Join(dir, "done.txt"),
	}
	content := fmt.Sprintf("[general]\ntodo_file = %q\n", e.todo)
	if err := os.WriteFile(e.cfg, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return e
}

// run executes a command quietly against the test store.
func (e env) run(t *testing.T, args ...string) int {
	t.Helper()
	return Run(append([]string{"-q", "-d", e.cfg}, args...))
}

func (e env) writeTodo(t *testing.T, lines ...string) {
	t.Helper()
	if err := os.WriteFile(e.todo, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (e env) readTodo(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(e.todo)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()
	fn()
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func localToday() string {
	return time.Now().Format("2006-01-02")
}

func TestRunAdd(t *testing.T) {
	e := newEnv(t)
	if code := e.run(t, "add", "buy", "milk", "@store"); code != ExitOK {
		t.Fatalf("unexpected exit code %d", code)
	}
	if got := e.readTodo(t); got != "buy milk @store\n" {
		t.Fatalf("unexpected todo file %q", got)
	}
}

func TestRunAddStampsDate(t *testing.T) {
	e := newEnv(t)
	if code := e.run(t, "-t", "add", "buy milk"); code != ExitOK {
		t.Fatalf("unexpected exit code %d", code)
	}
	want := localToday() + " buy milk\n"
	if got := e.readTodo(t); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRunAddm(t *testing.T) {
	e := newEnv(t)
	if code := e.run(t, "addm", "first\nsecond"); code != ExitOK {
		t.Fatalf("unexpected exit code %d", code)
	}
	if got := e.readTodo(t); got != "first\nsecond\n" {
		t.Fatalf("unexpected todo file %q", got)
	}
}

func TestRunAddEmpty(t *testing.T) {
	e := newEnv(t)
	if code := e.run(t, "add", "   "); code != ExitUsage {
		t.Fatalf("expected usage exit, got %d", code)
	}
}

func TestRunDo(t *testing.T) {
	e := newEnv(t)
	e.writeTodo(t, "water plants", "call mom")
	if code := e.run(t, "do", "2"); code != ExitOK {
		t.Fatalf("unexpected exit code %d", code)
	}
	want := "water plants\nx " + localToday() + " call mom\n"
	if got := e.readTodo(t); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRunDoMissingTask(t *testing.T) {
	e := newEnv(t)
	e.writeTodo(t, "only task")
	if code := e.run(t, "do", "9"); code != ExitNotFound {
		t.Fatalf("expected exit %d, got %d", ExitNotFound, code)
	}
	if got := e.readTodo(t); got != "only task\n" {
		t.Fatalf("file should be untouched, got %q", got)
	}
}

func TestRunDoPartialBatch(t *testing.T) {
	e := newEnv(t)
	e.writeTodo(t, "alpha", "beta")
	if code := e.run(t, "do", "2", "9"); code != ExitNotFound {
		t.Fatalf("expected exit %d, got %d", ExitNotFound, code)
	}
	want := "alpha\nx " + localToday() + " beta\n"
	if got := e.readTodo(t); got != want {
		t.Fatalf("resolved target should still be saved, got %q", got)
	}
}

func TestRunUndo(t *testing.T) {
	e := newEnv(t)
	e.writeTodo(t, "x 2026-08-01 shipped already")
	if code := e.run(t, "undo", "1"); code != ExitOK {
		t.Fatalf("unexpected exit code %d", code)
	}
	if got := e.readTodo(t); got != "shipped already\n" {
		t.Fatalf("unexpected todo file %q", got)
	}
}

func TestRunDelete(t *testing.T) {
	e := newEnv(t)
	e.writeTodo(t, "one", "two", "three")
	if code := e.run(t, "del", "2"); code != ExitOK {
		t.Fatalf("unexpected exit code %d", code)
	}
	if got := e.readTodo(t); got != "one\nthree\n" {
		t.Fatalf("unexpected todo file %q", got)
	}
}

func TestRunDeleteTerm(t *testing.T) {
	e := newEnv(t)
	e.writeTodo(t, "call mom +family tomorrow")
	if code := e.run(t, "del", "1", "+family"); code != ExitOK {
		t.Fatalf("unexpected exit code %d", code)
	}
	if got := e.readTodo(t); got != "call mom tomorrow\n" {
		t.Fatalf("unexpected todo file %q", got)
	}
}

func TestRunDeleteTermMultipleTargets(t *testing.T) {
	e := newEnv(t)
	e.writeTodo(t, "a +x", "b +x")
	if code := e.run(t, "del", "1", "2", "+x"); code != ExitUsage {
		t.Fatalf("expected usage exit, got %d", code)
	}
	if got := e.readTodo(t); got != "a +x\nb +x\n" {
		t.Fatalf("file should be untouched, got %q", got)
	}
}

func TestRunPri(t *testing.T) {
	e := newEnv(t)
	e.writeTodo(t, "2026-08-01 pay rent")
	if code := e.run(t, "pri", "1", "b"); code != ExitOK {
		t.Fatalf("unexpected exit code %d", code)
	}
	if got := e.readTodo(t); got != "(B) 2026-08-01 pay rent\n" {
		t.Fatalf("unexpected todo file %q", got)
	}
	if code := e.run(t, "pri", "1", "!"); code != ExitUsage {
		t.Fatalf("expected usage exit for bad priority, got %d", code)
	}
}

func TestRunDepri(t *testing.T) {
	e := newEnv(t)
	e.writeTodo(t, "(A) urgent", "mellow")
	if code := e.run(t, "depri", "1", "2"); code != ExitOK {
		t.Fatalf("unexpected exit code %d", code)
	}
	if got := e.readTodo(t); got != "urgent\nmellow\n" {
		t.Fatalf("unexpected todo file %q", got)
	}
}

func TestRunAppendCommand(t *testing.T) {
	e := newEnv(t)
	e.writeTodo(t, "file taxes")
	if code := e.run(t, "append", "1", "due:2026-04-15"); code != ExitOK {
		t.Fatalf("unexpected exit code %d", code)
	}
	if got := e.readTodo(t); got != "file taxes due:2026-04-15\n" {
		t.Fatalf("unexpected todo file %q", got)
	}
}

func TestRunArchive(t *testing.T) {
	e := newEnv(t)
	e.writeTodo(t, "x 2026-08-01 old thing", "keep me", "x 2026-08-02 another")
	if code := e.run(t, "archive"); code != ExitOK {
		t.Fatalf("unexpected exit code %d", code)
	}
	if got := e.readTodo(t); got != "keep me\n" {
		t.Fatalf("unexpected todo file %q", got)
	}
	data, err := os.ReadFile(e.done)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != "x 2026-08-01 old thing\nx 2026-08-02 another\n" {
		t.Fatalf("unexpected done file %q", got)
	}
}

func TestRunArchiveNothingToDo(t *testing.T) {
	e := newEnv(t)
	e.writeTodo(t, "still pending")
	if code := e.run(t, "archive"); code != ExitOK {
		t.Fatalf("unexpected exit code %d", code)
	}
	if _, err := os.Stat(e.done); !os.IsNotExist(err) {
		t.Fatalf("done file should not exist, stat err %v", err)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	e := newEnv(t)
	out := captureStdout(t, func() {
		if code := e.run(t, "frobnicate"); code != ExitUsage {
			t.Errorf("expected usage exit, got %d", code)
		}
	})
	if !strings.Contains(out, "Usage:") {
		t.Errorf("expected help text, got %q", out)
	}
}

func TestRunMissingConfigFile(t *testing.T) {
	if code := Run([]string{"-q", "-d", "/nonexistent/todors.toml", "ls"}); code != ExitInternal {
		t.Fatalf("expected exit %d, got %d", ExitInternal, code)
	}
}

func TestRunListOutput(t *testing.T) {
	e := newEnv(t)
	e.writeTodo(t, "(A) urgent +work", "minor @home")
	out := captureStdout(t, func() {
		if code := Run([]string{"-d", e.cfg, "-p", "ls"}); code != ExitOK {
			t.Errorf("unexpected exit code %d", code)
		}
	})
	want := "1 (A) urgent +work\n2 minor @home\n--\nTODO: 2 of 2 tasks shown\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestRunListFiltersTerms(t *testing.T) {
	e := newEnv(t)
	e.writeTodo(t, "(A) urgent +work", "minor @home")
	out := captureStdout(t, func() {
		Run([]string{"-d", e.cfg, "-p", "ls", "urgent"})
	})
	want := "1 (A) urgent +work\n--\nTODO: 1 of 2 tasks shown\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestRunListMissingFile(t *testing.T) {
	e := newEnv(t)
	out := captureStdout(t, func() {
		if code := Run([]string{"-d", e.cfg, "-p", "ls"}); code != ExitOK {
			t.Errorf("unexpected exit code %d", code)
		}
	})
	want := "--\nTODO: 0 of 0 tasks shown\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestRunListBlankLinesKeepNumbers(t *testing.T) {
	e := newEnv(t)
	e.writeTodo(t, "first", "", "third")
	out := captureStdout(t, func() {
		Run([]string{"-d", e.cfg, "-p", "ls"})
	})
	want := "1 first\n3 third\n--\nTODO: 2 of 2 tasks shown\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestRunBlankLinesDroppedOnSave(t *testing.T) {
	e := newEnv(t)
	e.writeTodo(t, "first", "", "third")
	if code := e.run(t, "-n", "do", "3"); code != ExitOK {
		t.Fatalf("unexpected exit code %d", code)
	}
	want := "first\nx " + localToday() + " third\n"
	if got := e.readTodo(t); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRunListSortFlag(t *testing.T) {
	e := newEnv(t)
	e.writeTodo(t, "(B) second", "(A) first", "unranked")
	out := captureStdout(t, func() {
		Run([]string{"-d", e.cfg, "-p", "-s", "priority", "ls"})
	})
	want := "2 (A) first\n1 (B) second\n3 unranked\n--\nTODO: 3 of 3 tasks shown\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestRunListHideFlags(t *testing.T) {
	e := newEnv(t)
	e.writeTodo(t, "(A) plan trip +travel @laptop")
	out := captureStdout(t, func() {
		Run([]string{"-d", e.cfg, "-p", "-q", "-+", "-P", "ls"})
	})
	want := "1 plan trip @laptop\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestRunListJSON(t *testing.T) {
	e := newEnv(t)
	e.writeTodo(t, "(A) urgent +work", "x 2026-08-10 finished")
	out := captureStdout(t, func() {
		if code := Run([]string{"-d", e.cfg, "--json", "ls"}); code != ExitOK {
			t.Errorf("unexpected exit code %d", code)
		}
	})
	var views []render.TaskView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("output does not parse: %v\n%s", err, out)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(views))
	}
	if views[0].Priority != "A" || !views[1].Completed {
		t.Fatalf("unexpected views: %+v", views)
	}
}

func TestRunListNDJSON(t *testing.T) {
	e := newEnv(t)
	e.writeTodo(t, "one", "two")
	out := captureStdout(t, func() {
		Run([]string{"-d", e.cfg, "--ndjson", "ls"})
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out)
	}
}

func TestRunListAll(t *testing.T) {
	e := newEnv(t)
	e.writeTodo(t, "pending one", "pending two")
	if err := os.WriteFile(e.done, []byte("x 2026-08-01 finished\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out := captureStdout(t, func() {
		if code := Run([]string{"-d", e.cfg, "-p", "lsa"}); code != ExitOK {
			t.Errorf("unexpected exit code %d", code)
		}
	})
	want := "1 pending one\n2 pending two\n3 x 2026-08-01 finished\n" +
		"--\nTODO: 2 of 2 tasks shown\nDONE: 1 of 1 tasks shown\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestRunListPri(t *testing.T) {
	e := newEnv(t)
	e.writeTodo(t, "(A) first", "(B) second", "none here")
	out := captureStdout(t, func() {
		Run([]string{"-d", e.cfg, "-p", "lsp"})
	})
	want := "1 (A) first\n2 (B) second\n--\nTODO: 2 of 3 tasks shown\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}

	out = captureStdout(t, func() {
		Run([]string{"-d", e.cfg, "-p", "lsp", "b"})
	})
	want = "2 (B) second\n--\nTODO: 1 of 3 tasks shown\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}

	if code := e.run(t, "lsp", "!"); code != ExitUsage {
		t.Fatalf("expected usage exit, got %d", code)
	}
}

func TestRunListFilterFlags(t *testing.T) {
	e := newEnv(t)
	e.writeTodo(t,
		"2026-08-01 early +home",
		"2026-08-20 late +work due:2026-09-01",
		"x 2026-08-10 2026-08-02 finished +work",
	)
	out := captureStdout(t, func() {
		Run([]string{"-d", e.cfg, "-p", "ls", "--project", "work", "--pending"})
	})
	want := "2 2026-08-20 late +work due:2026-09-01\n--\nTODO: 1 of 3 tasks shown\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}

	out = captureStdout(t, func() {
		Run([]string{"-d", e.cfg, "-p", "ls", "--created-before", "2026-08-10"})
	})
	want = "1 2026-08-01 early +home\n3 x 2026-08-10 2026-08-02 finished +work\n--\nTODO: 2 of 3 tasks shown\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestRunDefaultAction(t *testing.T) {
	e := newEnv(t)
	content := fmt.Sprintf("[general]\ntodo_file = %q\ndefault_action = \"lsp\"\n", e.todo)
	if err := os.WriteFile(e.cfg, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	e.writeTodo(t, "(A) ranked", "plain")
	out := captureStdout(t, func() {
		if code := Run([]string{"-d", e.cfg, "-p"}); code != ExitOK {
			t.Errorf("unexpected exit code %d", code)
		}
	})
	want := "1 (A) ranked\n--\nTODO: 1 of 2 tasks shown\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestRunConfigSortApplies(t *testing.T) {
	e := newEnv(t)
	content := fmt.Sprintf("[general]\ntodo_file = %q\nsort = [\"priority\"]\n", e.todo)
	if err := os.WriteFile(e.cfg, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	e.writeTodo(t, "(C) low", "(A) high")
	out := captureStdout(t, func() {
		Run([]string{"-d", e.cfg, "-p", "ls"})
	})
	want := "2 (A) high\n1 (C) low\n--\nTODO: 2 of 2 tasks shown\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestRunRoundTripPreservesUnknownLines(t *testing.T) {
	e := newEnv(t)
	e.writeTodo(t, "(a) lowercase stays", "x2026 not a marker", "normal task")
	if code := e.run(t, "do", "3"); code != ExitOK {
		t.Fatalf("unexpected exit code %d", code)
	}
	want := "(a) lowercase stays\nx2026 not a marker\nx " + localToday() + " normal task\n"
	if got := e.readTodo(t); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
