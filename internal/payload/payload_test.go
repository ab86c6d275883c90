package payload

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keysim/internal/config"
)

func TestChunkString(t *testing.T) {
	chunks, err := ChunkString("ABCDEFGH", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"ABC", "DEF", "GH"}, chunks)

	chunks, err = ChunkString("", 3)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = ChunkString("ABCDEF", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"ABC", "DEF"}, chunks)

	_, err = ChunkString("ABC", 0)
	assert.Error(t, err)
}

func TestLinuxReconstructionScript(t *testing.T) {
	script, err := LinuxReconstructionScript("aGVsbG8=", "out.txt")
	require.NoError(t, err)

	assert.Equal(t, "echo -n aGVsbG8= > out.txt.b64\nbase64 -d out.txt.b64 > out.txt\nrm out.txt.b64\n", script)
	assert.True(t, strings.HasSuffix(script, "\n"))
	assert.Equal(t, 1, strings.Count(script, "base64 -d"))

	lines := strings.Split(strings.TrimSuffix(script, "\n"), "\n")
	assert.Equal(t, "rm out.txt.b64", lines[len(lines)-1])
}

func TestLinuxReconstructionScriptChunks(t *testing.T) {
	encoded := strings.Repeat("A", ChunkSizeLinux) + strings.Repeat("B", ChunkSizeLinux) + "CC"
	script, err := LinuxReconstructionScript(encoded, "f")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(script, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "echo -n "+strings.Repeat("A", ChunkSizeLinux)+" > f.b64", lines[0])
	assert.Equal(t, "echo -n "+strings.Repeat("B", ChunkSizeLinux)+" >> f.b64", lines[1])
	assert.Equal(t, "echo -n CC >> f.b64", lines[2])
}

func TestWindowsReconstructionScript(t *testing.T) {
	encoded := strings.Repeat("Q", ChunkSizeWindows+4)
	script, err := WindowsReconstructionScript(encoded, "out.exe")
	require.NoError(t, err)

	expected := "echo " + strings.Repeat("Q", ChunkSizeWindows) + ">tmp.b64\n" +
		"echo QQQQ>>tmp.b64\n" +
		"certutil -decode tmp.b64 out.exe\n" +
		"del tmp.b64\n"
	assert.Equal(t, expected, script)
}

func TestReconstructionScriptEmpty(t *testing.T) {
	_, err := LinuxReconstructionScript("", "out")
	assert.ErrorIs(t, err, ErrEmptyPayload)

	_, err = WindowsReconstructionScript("", "out")
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestBuildPlanText(t *testing.T) {
	cfg := config.NewText("abc")
	cfg.DelayBetweenKeystrokes = 0.1
	cfg.CountdownBeforeStart = 1

	plan, err := BuildPlan(cfg)
	require.NoError(t, err)
	require.Len(t, plan.Tasks, 1)
	assert.Equal(t, "abc", plan.Tasks[0].Payload)
	assert.Equal(t, 3, plan.TotalCharacters())
	assert.Equal(t, 100*time.Millisecond, plan.Delay)
	assert.Equal(t, 1, plan.Countdown)
}

func TestBuildPlanFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	plan, err := BuildPlan(config.NewFile(path, config.TargetLinux, "hello.txt"))
	require.NoError(t, err)
	require.Len(t, plan.Tasks, 1)
	assert.True(t, strings.HasPrefix(plan.Tasks[0].Description, "file transfer"))
	assert.Contains(t, plan.Tasks[0].Payload, "echo -n "+base64.StdEncoding.EncodeToString([]byte("hello")))
	assert.Contains(t, plan.Tasks[0].Payload, "base64 -d hello.txt.b64 > hello.txt")

	plan, err = BuildPlan(config.NewFile(path, config.TargetWindows, "hello.txt"))
	require.NoError(t, err)
	assert.Contains(t, plan.Tasks[0].Payload, "certutil -decode tmp.b64 hello.txt")
}

func TestBuildPlanFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := BuildPlan(config.NewFile(filepath.Join(dir, "missing"), config.TargetLinux, "x"))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ErrorIs(t, err, os.ErrNotExist)

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	_, err = BuildPlan(config.NewFile(empty, config.TargetWindows, "x"))
	require.True(t, errors.As(err, &verr))
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestBuildPlanRejectsInvalidConfig(t *testing.T) {
	cfg := config.NewText("x")
	cfg.CountdownBeforeStart = -1
	_, err := BuildPlan(cfg)

	var cfgErr *config.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}
