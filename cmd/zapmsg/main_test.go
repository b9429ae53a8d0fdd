// Integration tests for the zapmsg CLI: executed as a subprocess against
// a binary built once in TestMain, matching the stdin/stdout contract a
// shell pipeline would exercise.
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	var err error
	binaryPath, err = buildCLI()
	if err != nil {
		panic("failed to build zapmsg for testing: " + err.Error())
	}

	code := m.Run()

	if binaryPath != "" {
		os.Remove(binaryPath)
	}
	os.Exit(code)
}

func buildCLI() (string, error) {
	binName := "zapmsg-test"
	if runtime.GOOS == "windows" {
		binName += ".exe"
	}

	binPath := filepath.Join(os.TempDir(), binName)

	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = "."
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", &exec.ExitError{Stderr: output}
	}

	return binPath, nil
}

func runCLI(t *testing.T, command string, stdin []byte) ([]byte, string, int) {
	t.Helper()

	cmd := exec.Command(binaryPath, command)
	cmd.Stdin = bytes.NewReader(stdin)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		exitCode = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("failed to run zapmsg: %v", err)
	}

	return stdout.Bytes(), stderr.String(), exitCode
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	input := []byte(`{"type":"catalog.listTools","id":"abc","payload":{"certifiedOnly":false}}`)

	frame, _, exitCode := runCLI(t, "encode", input)
	require.Equal(t, 0, exitCode)
	require.Greater(t, len(frame), 4)

	decoded, _, exitCode := runCLI(t, "decode", frame)
	require.Equal(t, 0, exitCode)

	var msg struct {
		Type    string         `json:"type"`
		ID      string         `json:"id"`
		Payload map[string]any `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(decoded, &msg))
	assert.Equal(t, "catalog.listTools", msg.Type)
	assert.Equal(t, "abc", msg.ID)
	assert.Equal(t, false, msg.Payload["certifiedOnly"])
}

func TestEncodeLengthPrefixMatchesBody(t *testing.T) {
	input := []byte(`{"type":"ping","id":"1","payload":{}}`)

	frame, _, exitCode := runCLI(t, "encode", input)
	require.Equal(t, 0, exitCode)

	prefix := frame[:4]
	length := uint32(prefix[0])<<24 | uint32(prefix[1])<<16 | uint32(prefix[2])<<8 | uint32(prefix[3])
	assert.Equal(t, len(frame)-4, int(length))
}

func TestInspectReportsTypeAndID(t *testing.T) {
	input := []byte(`{"type":"ping","id":"xyz","payload":{"a":1,"b":2}}`)

	frame, _, exitCode := runCLI(t, "encode", input)
	require.Equal(t, 0, exitCode)

	stdout, _, exitCode := runCLI(t, "inspect", frame)
	require.Equal(t, 0, exitCode)

	out := string(stdout)
	assert.True(t, strings.Contains(out, "type:    ping"))
	assert.True(t, strings.Contains(out, "id:      xyz"))
	assert.True(t, strings.Contains(out, "2 field(s)"))
}

func TestEncodeRejectsInvalidJSON(t *testing.T) {
	_, stderr, exitCode := runCLI(t, "encode", []byte("not json"))

	assert.NotEqual(t, 0, exitCode)
	assert.Contains(t, stderr, "invalid JSON envelope")
}

func TestDecodeRejectsTruncatedFrame(t *testing.T) {
	_, stderr, exitCode := runCLI(t, "decode", []byte{0, 0, 0, 10})

	assert.NotEqual(t, 0, exitCode)
	assert.Contains(t, stderr, "read frame body")
}

func TestUnknownCommand(t *testing.T) {
	_, stderr, exitCode := runCLI(t, "bogus", nil)

	assert.NotEqual(t, 0, exitCode)
	assert.Contains(t, stderr, "Unknown command")
}
