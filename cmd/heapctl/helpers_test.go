package main

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default between tests.
func resetFlags(t *testing.T) {
	t.Helper()
	verbose, quiet, jsonOut, debug = false, false, false, false
	presetName, cellsPerSeg, maxSegments = "default", 0, -1
	layoutName, policyName, goMemory = "loop", "adaptive", false
	stressLists, stressLength, stressKeep, stressSymbols = 100, 1000, 10, 0
	verifyRounds, verifySeed, verifySlots = 2000, 1, 16
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	out := <-done
	r.Close()

	return string(out), fnErr
}

// decodeJSON unmarshals command output into v.
func decodeJSON(t *testing.T, output string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(output), v), "invalid JSON output:\n%s", output)
}
