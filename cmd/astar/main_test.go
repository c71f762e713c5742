package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBuiltin(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(nil, &stdout, &stderr))

	out := stdout.String()
	assert.Contains(t, out, "scenario:  five cities")
	assert.Contains(t, out, "path:      0 -> 2 -> 4")
	assert.Contains(t, out, "cost:      5592056.19")
}

func TestRunHeuristicOverride(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-heuristic", "zero"}, &stdout, &stderr))

	assert.Contains(t, stdout.String(), "heuristic: zero")
	assert.Contains(t, stdout.String(), "path:      0 -> 2 -> 4")
}

func TestRunList(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-list"}, &stdout, &stderr))
	assert.Equal(t, "five_cities\ngrid\n", stdout.String())
}

func TestRunScenarioFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "line.yaml")
	doc := `
name: line
directed: true
coordinates: planar
nodes: [{name: a, x: 0, y: 0}, {name: b, x: 2, y: 0}, {name: c, x: 1, y: 5}]
edges: [{from: a, to: b}, {from: c, to: a}]
source: b
target: a
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-scenario", path}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "path:      none")
}

func TestRunErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Error(t, run([]string{"-builtin", "nope"}, &stdout, &stderr))
	assert.Error(t, run([]string{"-heuristic", "psychic"}, &stdout, &stderr))
	assert.Error(t, run([]string{"-bogus-flag"}, &stdout, &stderr))
}
