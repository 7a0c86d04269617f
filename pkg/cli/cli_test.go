package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simpletasks/pkg/ui"
)

type harness struct {
	t          *testing.T
	configPath string
	terminal   bool
	tuiRuns    int
	last       *app
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, "config.json")
	cfg := fmt.Sprintf(`{
		"storage": "file",
		"data_file": %q,
		"styles_file": %q
	}`, filepath.Join(home, "tasks.json"), filepath.Join(home, "styles.json"))
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0644))
	return &harness{t: t, configPath: path}
}

func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	h.last = &app{
		isTerminal: func() bool { return h.terminal },
		runTUI: func(ui.Model) error {
			h.tuiRuns++
			return nil
		},
	}
	cmd := newRootCmd(h.last)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", h.configPath}, args...))
	err := h.last.execute(cmd)
	return buf.String(), err
}

func addedID(t *testing.T, out string) string {
	t.Helper()
	fields := strings.Fields(out)
	require.GreaterOrEqual(t, len(fields), 2, out)
	require.Equal(t, "Added", fields[0])
	return strings.TrimSuffix(fields[1], ":")
}

func TestCLI_TaskLifecycle(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("", "add", "Write report +work", "-d", "quarterly")
	require.NoError(t, err)
	id := addedID(t, out)
	_, err = h.run("", "add", "Buy milk")
	require.NoError(t, err)

	out, err = h.run("", "toggle", id)
	require.NoError(t, err)
	assert.Equal(t, "- [x] Write report\n", out)

	out, err = h.run("", "list", "--status", "active")
	require.NoError(t, err)
	assert.Contains(t, out, "- [ ] Buy milk  (General)")
	assert.NotContains(t, out, "Write report")
	assert.Contains(t, out, "2 total, 1 done, 1 active")

	out, err = h.run("", "list", "--category", "work")
	require.NoError(t, err)
	assert.Contains(t, out, "- [x] Write report  (Work)")

	// stdout is not a terminal: the root command prints the list
	out, err = h.run("")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")
	assert.Zero(t, h.tuiRuns)

	out, err = h.run("y\n", "purge", "--done")
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully deleted 1 task(s)")

	_, err = h.run("", "rm", id)
	assert.Error(t, err, "already purged")
}

func TestCLI_Categories(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "category", "add", "Health", "--color", "#84cc16")
	require.NoError(t, err)
	_, err = h.run("", "add", "Stretch +health")
	require.NoError(t, err)

	out, err := h.run("", "category", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Health")
	assert.Contains(t, out, "1 task(s)")

	_, err = h.run("", "category", "rm", "work")
	assert.ErrorContains(t, err, "protected")

	_, err = h.run("", "category", "rm", "Health")
	require.NoError(t, err)

	out, err = h.run("", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Stretch  (General)")
}

func TestCLI_ImportExport(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()

	src := filepath.Join(dir, "in.md")
	require.NoError(t, os.WriteFile(src, []byte("Work:\n- [x] Ship\n- [ ] Review\n"), 0644))
	out, err := h.run("", "import", src)
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully imported 2 task(s)")

	dst := filepath.Join(dir, "out.txt")
	_, err = h.run("", "export", dst, "--type", "txt")
	require.NoError(t, err)
	raw, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "Work:\n- [x] Ship\n- [ ] Review\n", string(raw))

	_, err = h.run("", "export", filepath.Join(dir, "out.csv"), "--type", "csv")
	assert.Error(t, err)
}

func TestCLI_RunsTUIOnTerminal(t *testing.T) {
	h := newHarness(t)
	h.terminal = true

	_, err := h.run("")
	require.NoError(t, err)
	assert.Equal(t, 1, h.tuiRuns)
}

func TestCLI_BackendOverride(t *testing.T) {
	h := newHarness(t)
	t.Setenv("SIMPLETASKS_REMOTE_DRIVER", "memory")

	out, err := h.run("", "--backend", "remote", "add", "Ping +work")
	require.NoError(t, err)
	assert.Contains(t, out, "Ping")

	_, err = h.run("", "--backend", "cloud", "list")
	assert.ErrorContains(t, err, `unknown backend "cloud"`)
}

func TestCLI_CorruptDataFileStillStarts(t *testing.T) {
	h := newHarness(t)
	data := filepath.Join(filepath.Dir(h.configPath), "tasks.json")
	require.NoError(t, os.WriteFile(data, []byte("{not json"), 0644))

	out, err := h.run("", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "0 total, 0 done, 0 active")

	_, err = h.run("", "add", "Fresh start")
	require.NoError(t, err)
	out, err = h.run("", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Fresh start")

	raw, err := os.ReadFile(data + ".corrupt")
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(raw))
}

func TestCLI_FailingCommandReleasesBackend(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "rm", "missing")
	require.Error(t, err)
	assert.Nil(t, h.last.backend)

	_, err = h.run("", "list")
	require.NoError(t, err)
	assert.Nil(t, h.last.backend)
}
