package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the command tree with fresh flag state and an isolated HOME
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	syncFlags = SyncFlags{}
	globalFlags = GlobalFlags{}

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestRunOnce(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(src, "a.txt"), "hi")
	writeFile(t, filepath.Join(src, "sub", "b.txt"), "there")
	writeFile(t, filepath.Join(src, "skip.tmp"), "x")
	writeFile(t, filepath.Join(dst, "old.txt"), "old")

	logFile := filepath.Join(t.TempDir(), "logs", "sync.log")
	stdout, _, err := execute(t, "run", "-s", src, "-r", dst, "-i", "1", "--once",
		"--exclude", "*.tmp", "--no-color", "--log-file", logFile, "--log-format", "json")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dst, "sub", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "there", string(data))
	assert.NoFileExists(t, filepath.Join(dst, "old.txt"))
	assert.NoFileExists(t, filepath.Join(dst, "skip.tmp"))

	assert.Contains(t, stdout, "a.txt was created, sub was created")
	assert.Contains(t, stdout, "old.txt was deleted")
	assert.Contains(t, stdout, "success")

	logs, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(logs), `"message":"old.txt was deleted"`)
	assert.Contains(t, string(logs), `"pass_id"`)
}

func TestRunJSONOutput(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(src, "a.txt"), "hi")

	stdout, stderr, err := execute(t, "run", "-s", src, "-r", dst, "--once", "-o", "json")
	require.NoError(t, err)

	var event struct {
		Type string `json:"type"`
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &event))
	assert.Equal(t, "pass", event.Type)
	assert.Equal(t, "success", event.Data.Status)
	assert.Contains(t, stderr, "a.txt was created")
}

func TestRunValidation(t *testing.T) {
	src := t.TempDir()

	t.Run("MissingSourceFlag", func(t *testing.T) {
		_, _, err := execute(t, "run", "-r", t.TempDir(), "--once")
		assert.ErrorContains(t, err, "source directory is required")
	})

	t.Run("SamePaths", func(t *testing.T) {
		_, _, err := execute(t, "run", "-s", src, "-r", src, "--once")
		assert.ErrorContains(t, err, "cannot be the same")
	})

	t.Run("NestedReplica", func(t *testing.T) {
		_, _, err := execute(t, "run", "-s", src, "-r", filepath.Join(src, "inner"), "--once", "--create-replica")
		assert.ErrorContains(t, err, "replica cannot be inside source")
		assert.NoDirExists(t, filepath.Join(src, "inner"))
	})

	t.Run("MissingReplica", func(t *testing.T) {
		replica := filepath.Join(t.TempDir(), "new")
		_, _, err := execute(t, "run", "-s", src, "-r", replica, "--once")
		assert.ErrorContains(t, err, "--create-replica")

		_, _, err = execute(t, "run", "-s", src, "-r", replica, "--once", "--create-replica")
		require.NoError(t, err)
		assert.DirExists(t, replica)
	})

	t.Run("BadInterval", func(t *testing.T) {
		_, _, err := execute(t, "run", "-s", src, "-r", t.TempDir(), "-i", "0")
		assert.ErrorContains(t, err, "sync.interval_seconds")
	})

	t.Run("BadBandwidth", func(t *testing.T) {
		_, _, err := execute(t, "run", "-s", src, "-r", t.TempDir(), "--bandwidth", "lots")
		assert.ErrorContains(t, err, "performance.bandwidth_limit")
	})
}

func TestDiff(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(src, "a.txt"), "new")
	writeFile(t, filepath.Join(dst, "a.txt"), "old")
	writeFile(t, filepath.Join(dst, "extra"), "x")

	stdout, _, err := execute(t, "diff", "-s", src, "-r", dst)
	assert.Equal(t, 1, ExitCode(err))
	assert.Contains(t, stdout, "Content Differences (1 entries)")
	assert.Contains(t, stdout, "Only in Replica (1 entries)")

	// Read-only
	data, err := os.ReadFile(filepath.Join(dst, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	t.Run("JSONReport", func(t *testing.T) {
		report := filepath.Join(t.TempDir(), "diff.json")
		_, _, err := execute(t, "diff", "-s", src, "-r", dst, "--diff-format", "json", "--diff-report", report)
		assert.Equal(t, 1, ExitCode(err))

		raw, err := os.ReadFile(report)
		require.NoError(t, err)
		var decoded struct {
			TotalCount int `json:"total_count"`
		}
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.Equal(t, 2, decoded.TotalCount)
	})

	t.Run("InSync", func(t *testing.T) {
		a, b := t.TempDir(), t.TempDir()
		writeFile(t, filepath.Join(a, "same"), "s")
		writeFile(t, filepath.Join(b, "same"), "s")

		_, _, err := execute(t, "diff", "-s", a, "-r", b)
		assert.NoError(t, err)
	})
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	stdout, _, err := execute(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, path)
	assert.FileExists(t, path)

	_, _, err = execute(t, "--config", path, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	stdout, _, err = execute(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "interval_seconds: 60")
}

func TestRunUsesConfigFile(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(src, "from-config"), "c")

	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "sync:\n  source: "+src+"\n  replica: "+dst+"\n  interval_seconds: 2\n")

	_, _, err := execute(t, "--config", path, "-q", "run", "--once")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dst, "from-config"))
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, currentBuild().version+"\n", stdout)

	stdout, _, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "syncreplica ")
	assert.Contains(t, stdout, "commit:")
	assert.Contains(t, stdout, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestCurrentBuildKeepsLinkerValues(t *testing.T) {
	saved := [3]string{Version, Commit, BuildDate}
	t.Cleanup(func() { Version, Commit, BuildDate = saved[0], saved[1], saved[2] })

	Version, Commit, BuildDate = "v1.2.3", "abc123", "2026-01-02"
	b := currentBuild()
	assert.Equal(t, "v1.2.3", b.version)
	assert.Equal(t, "abc123", b.commit)
	assert.Equal(t, "2026-01-02", b.date)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}), "non-file writers are never terminals")

	f, err := os.Create(filepath.Join(t.TempDir(), "out.log"))
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, isTerminal(f), "regular files are not terminals")
}

func TestVerboseAndQuietAreExclusive(t *testing.T) {
	_, _, err := execute(t, "-v", "-q", "version")
	assert.Error(t, err)
}
