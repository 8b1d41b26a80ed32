package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunIsSilentByDefault(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run(nil, &stdout, &stderr))
	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRunVerboseTable(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"-v"}, &stdout, &stderr))

	lines := bytes.Split(bytes.TrimSpace(stdout.Bytes()), []byte("\n"))
	require.Len(t, lines, 4)
	assert.Contains(t, string(lines[0]), "FIXING DAYS")
	assert.Contains(t, string(lines[3]), "USDLibor3M")
	assert.Contains(t, string(lines[3]), "ACT/360")
}

func TestInspectIndices(t *testing.T) {
	t.Parallel()

	rows, err := inspectIndices()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.NotEmpty(t, r.name)
		assert.GreaterOrEqual(t, r.fixingDays, 0)
		assert.True(t, r.dayCount.Valid())
		assert.NotEmpty(t, r.currency)
	}
	assert.Equal(t, 2, rows[2].fixingDays)
}

func TestRunUsage(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run([]string{"-help"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "Usage: indexinspect")
	assert.Equal(t, 2, run([]string{"now"}, &stdout, &stderr))
}
