package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/shoplist/internal/model"
	"github.com/Makepad-fr/shoplist/internal/ui"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "shoplist", cmd.Use)
	assert.Contains(t, cmd.Long, "newest first")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"add", "ls", "toggle", "edit", "rm", "tui"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	colorFlag := cmd.PersistentFlags().Lookup("color")
	require.NotNil(t, colorFlag)
	assert.Equal(t, "auto", colorFlag.DefValue)

	for _, name := range []string{"config", "db", "backend", "theme"} {
		f := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, f, name)
		assert.Equal(t, "", f.DefValue, name)
	}
}

func TestTargetCommandsHaveIDFlag(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"toggle", "edit", "rm"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.NotNil(t, sub.Flags().Lookup("id"), name)
	}
}

// harness runs CLI invocations against one temporary database.
type harness struct {
	t    *testing.T
	args []string
}

func newHarness(t *testing.T, backend string) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	for _, k := range []string{"SHOPLIST_DB", "SHOPLIST_BACKEND", "SHOPLIST_THEME", "SHOPLIST_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	t.Setenv("NO_COLOR", "")
	t.Cleanup(func() {
		ui.SetTheme("classic")
		ui.SetColorForcing(false, false)
	})

	ext := "db"
	if backend == "json" {
		ext = "json"
	}
	return &harness{t: t, args: []string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"--db", filepath.Join(dir, "data", "shop."+ext),
		"--backend", backend,
		"--theme", "mono",
	}}
}

func (h *harness) run(args ...string) (code int, stdout, stderr string) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	code = Execute(context.Background(), append(append([]string{}, h.args...), args...), &out, &errOut)
	return code, out.String(), errOut.String()
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	code, out, errOut := h.run(args...)
	require.Equal(h.t, ExitSuccess, code, "stderr: %s", errOut)
	return out
}

func (h *harness) items() []model.Item {
	h.t.Helper()
	out := h.mustRun("--format", "json", "ls")
	var resp struct {
		Status string       `json:"status"`
		Data   []model.Item `json:"data"`
	}
	require.NoError(h.t, json.Unmarshal([]byte(out), &resp))
	require.Equal(h.t, "ok", resp.Status)
	return resp.Data
}

func TestAddAndList(t *testing.T) {
	h := newHarness(t, "sqlite")

	out := h.mustRun("add", "Oat", "milk")
	assert.Contains(t, out, `added "Oat milk"`)
	h.mustRun("add", "Bread")

	out = h.mustRun("ls")
	assert.Contains(t, out, " 1. [ ] Bread")
	assert.Contains(t, out, " 2. [ ] Oat milk")
	assert.Contains(t, out, "Total 2")
}

func TestListGrouped(t *testing.T) {
	h := newHarness(t, "sqlite")
	h.mustRun("add", "Milk")
	h.mustRun("add", "Bread")
	h.mustRun("toggle", "2")

	out := h.mustRun("ls", "--group")
	assert.Contains(t, out, "To buy")
	assert.Contains(t, out, " 2. [x] Milk")
}

func TestToggleEditRemove_ByPosition(t *testing.T) {
	h := newHarness(t, "sqlite")
	h.mustRun("add", "Milk")
	h.mustRun("add", "Bread")

	h.mustRun("toggle", "2")
	h.mustRun("edit", "1", "Rye", "bread")

	items := h.items()
	require.Len(t, items, 2)
	assert.Equal(t, model.Item{ID: 2, Name: "Rye bread"}, items[0])
	assert.Equal(t, model.Item{ID: 1, Name: "Milk", IsBought: true}, items[1])

	h.mustRun("rm", "1")
	assert.Equal(t, []model.Item{{ID: 1, Name: "Milk", IsBought: true}}, h.items())
}

func TestToggle_ByID(t *testing.T) {
	h := newHarness(t, "sqlite")
	h.mustRun("add", "Milk")
	h.mustRun("add", "Bread")

	h.mustRun("toggle", "--id", "1")
	items := h.items()
	assert.True(t, items[1].IsBought)
	assert.False(t, items[0].IsBought)

	code, _, errOut := h.run("rm", "--id", "9")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, errOut, "item not in list")
}

func TestJSONBackend(t *testing.T) {
	h := newHarness(t, "json")
	h.mustRun("add", "Milk")
	h.mustRun("add", "Bread")
	h.mustRun("toggle", "1")

	items := h.items()
	require.Len(t, items, 2)
	assert.Equal(t, "Bread", items[0].Name)
	assert.True(t, items[0].IsBought)
}

func TestBackendFlag_CaseInsensitive(t *testing.T) {
	h := newHarness(t, "json")
	h.mustRun("--backend", "JSON", "add", "Milk")
	h.mustRun("--theme", "MONO", "add", "Bread")

	items := h.items()
	require.Len(t, items, 2)
	assert.Equal(t, "Bread", items[0].Name)
}

func TestColorFlag(t *testing.T) {
	h := newHarness(t, "sqlite")

	out := h.mustRun("--theme", "classic", "--color", "always", "add", "Milk")
	assert.Contains(t, out, "\033[", "forced colour on a non-terminal writer")

	out = h.mustRun("--theme", "classic", "--color", "never", "add", "Bread")
	assert.NotContains(t, out, "\033[")

	out = h.mustRun("--theme", "classic", "--color", "always", "--theme", "mono", "add", "Eggs")
	assert.NotContains(t, out, "\033[", "mono stays plain")
}

func TestNoColorEnv(t *testing.T) {
	h := newHarness(t, "sqlite")
	t.Setenv("NO_COLOR", "1")

	out := h.mustRun("--theme", "classic", "add", "Milk")
	assert.NotContains(t, out, "\033[")

	out = h.mustRun("--theme", "classic", "--color", "always", "add", "Bread")
	assert.Contains(t, out, "\033[", "explicit --color beats NO_COLOR")
}

func TestUsageErrors(t *testing.T) {
	h := newHarness(t, "sqlite")
	h.mustRun("add", "Milk")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"blank add", []string{"add", "  "}, "name cannot be blank"},
		{"blank edit", []string{"edit", "1", " "}, "name cannot be blank"},
		{"missing name", []string{"add"}, "usage"},
		{"not a number", []string{"toggle", "x"}, "not a number"},
		{"out of range", []string{"toggle", "3"}, "index out of range"},
		{"zero position", []string{"rm", "0"}, "index out of range"},
		{"bad format", []string{"--format", "yaml", "ls"}, "invalid format"},
		{"bad backend", []string{"--backend", "mongo", "ls"}, "invalid backend"},
		{"bad color", []string{"--color", "sometimes", "ls"}, "invalid color"},
		{"unknown flag", []string{"ls", "--nope"}, "usage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := h.run(tt.args...)
			assert.Equal(t, ExitCommandError, code)
			assert.Contains(t, errOut, tt.want)
		})
	}

	// nothing above touched the stored item
	assert.Equal(t, []model.Item{{ID: 1, Name: "Milk"}}, h.items())
}

func TestOutOfRange_ReportsOneBasedPosition(t *testing.T) {
	h := newHarness(t, "sqlite")
	h.mustRun("add", "Milk")

	tests := []struct {
		arg  string
		want string
	}{
		{"0", "index out of range: position 0, list has 1 item"},
		{"2", "index out of range: position 2, list has 1 item"},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			code, _, errOut := h.run("toggle", tt.arg)
			assert.Equal(t, ExitCommandError, code)
			assert.Contains(t, errOut, tt.want)
			assert.NotContains(t, errOut, "got -1")
		})
	}
}

func TestOutOfRange_PrintsHint(t *testing.T) {
	h := newHarness(t, "sqlite")

	_, _, errOut := h.run("toggle", "1")
	assert.Contains(t, errOut, "shoplist ls")
}

func TestStorageFailure_ExitCode(t *testing.T) {
	h := newHarness(t, "sqlite")
	dir := t.TempDir()
	notADir := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(notADir, nil, 0o644))

	code, _, _ := h.run("--db", filepath.Join(notADir, "shop.db"), "ls")
	assert.Equal(t, ExitFailure, code)
}

func TestConfigFileSelectsStore(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("SHOPLIST_DB", "")
	t.Setenv("SHOPLIST_BACKEND", "")
	t.Setenv("SHOPLIST_THEME", "")
	t.Setenv("SHOPLIST_LOG_LEVEL", "")
	t.Cleanup(func() { ui.SetTheme("classic") })

	dbPath := filepath.Join(dir, "from-config.json")
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath,
		[]byte("backend: json\ntheme: mono\ndb_path: "+dbPath+"\n"), 0o644))

	var out, errOut bytes.Buffer
	code := Execute(context.Background(), []string{"--config", cfgPath, "add", "Milk"}, &out, &errOut)
	require.Equal(t, ExitSuccess, code, errOut.String())

	_, err := os.Stat(dbPath)
	assert.NoError(t, err, "json store written where the config file points")
}

func TestListJSON_Golden(t *testing.T) {
	h := newHarness(t, "sqlite")
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	g.Assert(t, "ls_json_empty", []byte(h.mustRun("--format", "json", "ls")))

	h.mustRun("add", "Milk")
	h.mustRun("add", "Bread")
	h.mustRun("toggle", "--id", "1")
	g.Assert(t, "ls_json", []byte(h.mustRun("--format", "json", "ls")))

	code, out, _ := h.run("--format", "json", "toggle", "5")
	assert.Equal(t, ExitCommandError, code)
	g.Assert(t, "toggle_out_of_range_json", []byte(out))
}
