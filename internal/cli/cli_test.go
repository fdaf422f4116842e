package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"devops-topics/internal/model"
	"devops-topics/internal/store"
	"devops-topics/internal/viewmodel"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func mustRun(t *testing.T, args ...string) []byte {
	t.Helper()
	stdout, stderr, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("topics %v: %v\nstderr:\n%s", args, err, stderr)
	}
	return stdout
}

type envelope[T any] struct {
	Data T              `json:"data"`
	Meta map[string]any `json:"meta"`
}

func decodeEnv[T any](t *testing.T, b []byte) envelope[T] {
	t.Helper()
	var env envelope[T]
	if err := json.Unmarshal(b, &env); err != nil {
		t.Fatalf("decode: %v\n%s", err, b)
	}
	return env
}

func TestCLI_MutationsPersistAcrossInvocations(t *testing.T) {
	t.Setenv("TOPICS_CONFIG_DIR", t.TempDir())

	added := decodeEnv[model.Topic](t, mustRun(t, "add", "  Helm  "))
	if added.Data.Name != "Helm" || added.Data.Number != "11" {
		t.Fatalf("unexpected topic: %+v", added.Data)
	}
	if added.Meta["page"] != float64(3) {
		t.Fatalf("expected add to jump to last page; meta=%v", added.Meta)
	}

	sub := decodeEnv[model.Topic](t, mustRun(t, "add-sub", added.Data.ID, "Charts"))
	if sub.Data.Number != "11.1" || sub.Data.ParentID != added.Data.ID {
		t.Fatalf("unexpected subtopic: %+v", sub.Data)
	}
	if !strings.HasPrefix(sub.Data.ID, added.Data.ID+"-") {
		t.Fatalf("expected subtopic id prefixed by parent; got %q", sub.Data.ID)
	}

	mustRun(t, "toggle", added.Data.ID, "--with-children")

	shown := decodeEnv[model.Topic](t, mustRun(t, "show", added.Data.ID))
	if !shown.Data.Completed || !shown.Data.Expanded || !shown.Data.Subtopics[0].Completed {
		t.Fatalf("expected persisted cascade + expansion: %+v", shown.Data)
	}

	progress := decodeEnv[map[string]int](t, mustRun(t, "progress"))
	want := map[string]int{"completed": 2, "total": 12, "percentage": 17}
	if diff := cmp.Diff(want, progress.Data); diff != "" {
		t.Fatalf("progress mismatch (-want +got):\n%s", diff)
	}
}

func TestCLI_ListPagesAndClamps(t *testing.T) {
	t.Setenv("TOPICS_CONFIG_DIR", t.TempDir())

	env := decodeEnv[[]model.Topic](t, mustRun(t, "list", "--page", "2"))
	var ids []string
	for _, tp := range env.Data {
		ids = append(ids, tp.ID)
	}
	if diff := cmp.Diff([]string{"6", "7", "8", "9", "10"}, ids); diff != "" {
		t.Fatalf("page 2 ids (-want +got):\n%s", diff)
	}

	env = decodeEnv[[]model.Topic](t, mustRun(t, "--page-size", "3", "list", "--page", "99"))
	if env.Meta["page"] != float64(4) || len(env.Data) != 1 || env.Data[0].ID != "10" {
		t.Fatalf("expected clamp to last page of 4; meta=%v data=%v", env.Meta, env.Data)
	}

	pages := decodeEnv[map[string]any](t, mustRun(t, "--page-size", "1", "pages", "--page", "5"))
	if diff := cmp.Diff([]any{float64(3), float64(4), float64(5), float64(6), float64(7)}, pages.Data["window"]); diff != "" {
		t.Fatalf("window (-want +got):\n%s", diff)
	}
}

func TestCLI_Errors(t *testing.T) {
	t.Setenv("TOPICS_CONFIG_DIR", t.TempDir())

	_, stderr, err := runCLI(t, []string{"show", "nope"})
	if err == nil || !strings.Contains(string(stderr), "topic not found: nope") {
		t.Fatalf("expected not found; err=%v stderr=%s", err, stderr)
	}

	_, _, err = runCLI(t, []string{"rename", "1", "   "})
	if !errors.As(err, new(blankNameError)) {
		t.Fatalf("expected blank name error; got %v", err)
	}

	_, _, err = runCLI(t, []string{"add", " "})
	if err == nil {
		t.Fatalf("expected blank add to fail")
	}

	_, _, err = runCLI(t, []string{"--format", "edn", "list"})
	if err == nil {
		t.Fatalf("expected unknown format error")
	}
}

func TestCLI_DeleteSubIsStub(t *testing.T) {
	t.Setenv("TOPICS_CONFIG_DIR", t.TempDir())

	sub := decodeEnv[model.Topic](t, mustRun(t, "add-sub", "1", "Shell"))

	_, stderr, err := runCLI(t, []string{"delete-sub", "1", sub.Data.ID})
	if !errors.Is(err, viewmodel.ErrPermissionRequired) {
		t.Fatalf("expected permission error; got %v", err)
	}
	if !strings.Contains(string(stderr), "permission required") {
		t.Fatalf("expected stderr message; got %q", stderr)
	}

	shown := decodeEnv[model.Topic](t, mustRun(t, "show", "1"))
	if len(shown.Data.Subtopics) != 1 {
		t.Fatalf("delete must not mutate; got %+v", shown.Data.Subtopics)
	}
}

func TestCLI_BackendSelection(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("TOPICS_CONFIG_DIR", cfgDir)
	dataDir := filepath.Join(t.TempDir(), "data")

	mustRun(t, "--backend", "json", "--data-dir", dataDir, "add", "Helm")
	b, err := os.ReadFile(filepath.Join(dataDir, "topics.json"))
	if err != nil {
		t.Fatalf("expected json backend file: %v", err)
	}
	var kv map[string]string
	if err := json.Unmarshal(b, &kv); err != nil {
		t.Fatalf("decode backend file: %v", err)
	}
	topics, err := store.DecodeTopics(kv[store.StorageKey])
	if err != nil || len(topics) != 11 {
		t.Fatalf("expected 11 persisted roots; err=%v n=%d", err, len(topics))
	}

	// "none" never reads or writes: defaults every time.
	mustRun(t, "--backend", "none", "add", "Ghost")
	env := decodeEnv[map[string]int](t, mustRun(t, "--backend", "none", "progress"))
	if env.Data["total"] != 10 {
		t.Fatalf("expected defaults without persistence; got %v", env.Data)
	}

	// Default sqlite lives under <config>/data.
	mustRun(t, "add", "Helm")
	if _, err := os.Stat(filepath.Join(cfgDir, "data", "topics.sqlite")); err != nil {
		t.Fatalf("expected sqlite file: %v", err)
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	t.Setenv("TOPICS_CONFIG_DIR", t.TempDir())

	mustRun(t, "config", "set", "pageSize", "3")
	mustRun(t, "config", "set", "tui.glyphs", "ascii")
	if _, _, err := runCLI(t, []string{"config", "set", "backend", "postgres"}); err == nil {
		t.Fatalf("expected invalid backend error")
	}

	env := decodeEnv[store.Config](t, mustRun(t, "config", "show"))
	if env.Data.PageSize != 3 || env.Data.TUI == nil || env.Data.TUI.Glyphs != "ascii" {
		t.Fatalf("unexpected saved config: %+v", env.Data)
	}
	resolved, _ := env.Meta["resolved"].(map[string]any)
	if resolved["backend"] != "sqlite" || resolved["pageSize"] != float64(3) {
		t.Fatalf("unexpected resolved config: %v", resolved)
	}

	list := decodeEnv[[]model.Topic](t, mustRun(t, "list"))
	if len(list.Data) != 3 || list.Meta["totalPages"] != float64(4) {
		t.Fatalf("expected configured page size; meta=%v", list.Meta)
	}
}

func TestCLI_YAMLOutput(t *testing.T) {
	t.Setenv("TOPICS_CONFIG_DIR", t.TempDir())

	out := mustRun(t, "--format", "yaml", "show", "2")
	var env struct {
		Data map[string]any `yaml:"data"`
	}
	if err := yaml.Unmarshal(out, &env); err != nil {
		t.Fatalf("yaml: %v\n%s", err, out)
	}
	if env.Data["name"] != "Networking" || env.Data["number"] != "2" {
		t.Fatalf("unexpected yaml data: %v", env.Data)
	}
}

func TestCLI_TreeRawAndRendered(t *testing.T) {
	t.Setenv("TOPICS_CONFIG_DIR", t.TempDir())

	mustRun(t, "toggle", "1")
	raw := string(mustRun(t, "tree", "--raw"))
	if !strings.Contains(raw, "- [x] 1 Linux") || !strings.Contains(raw, "Progress: 1/10 (10%)") {
		t.Fatalf("unexpected raw tree:\n%s", raw)
	}

	rendered := string(mustRun(t, "tree", "--style", "notty"))
	if !strings.Contains(rendered, "Linux") || !strings.Contains(rendered, "Kubernetes") {
		t.Fatalf("unexpected rendered tree:\n%s", rendered)
	}
}

func TestCLI_ExportMarkdown(t *testing.T) {
	t.Setenv("TOPICS_CONFIG_DIR", t.TempDir())
	out := t.TempDir()

	env := decodeEnv[map[string][]string](t, mustRun(t, "export", "--to", out, "--include-ids"))
	if got := len(env.Data["written"]); got != 11 {
		t.Fatalf("expected index + 10 pages; got %d", got)
	}
	b, err := os.ReadFile(filepath.Join(out, "checklist.md"))
	if err != nil {
		t.Fatalf("read checklist: %v", err)
	}
	if !strings.Contains(string(b), "# DevOps Topics") || !strings.Contains(string(b), "`10`") {
		t.Fatalf("unexpected checklist:\n%s", b)
	}

	if _, _, err := runCLI(t, []string{"export", "--to", out}); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
}

func TestCLI_LogLevelWritesLogFile(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("TOPICS_CONFIG_DIR", cfgDir)

	mustRun(t, "--log-level", "debug", "add", "Helm")
	entries, err := os.ReadDir(filepath.Join(cfgDir, "logs"))
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one log file; err=%v entries=%v", err, entries)
	}
	b, _ := os.ReadFile(filepath.Join(cfgDir, "logs", entries[0].Name()))
	if !strings.Contains(string(b), "store opened") {
		t.Fatalf("expected debug record; got:\n%s", b)
	}

	if _, _, err := runCLI(t, []string{"--log-level", "loud", "progress"}); err == nil {
		t.Fatalf("expected invalid log level error")
	}
}

func TestCLI_Docs(t *testing.T) {
	t.Setenv("TOPICS_CONFIG_DIR", t.TempDir())

	env := decodeEnv[map[string][]string](t, mustRun(t, "docs"))
	if len(env.Data["pages"]) == 0 {
		t.Fatalf("expected docs pages")
	}
	raw := string(mustRun(t, "docs", "mcp", "--raw"))
	if !strings.Contains(raw, "topics_toggle") {
		t.Fatalf("unexpected mcp doc:\n%s", raw)
	}
	if _, _, err := runCLI(t, []string{"docs", "nope"}); err == nil {
		t.Fatalf("expected unknown page error")
	}
}
