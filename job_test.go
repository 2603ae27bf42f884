package gcodethumb

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJob_lifecycle(t *testing.T) {
	ctx := context.Background()
	j := newJob("a.gcode", "NEPTUNE4")
	assert.NotEmpty(t, j.ID)
	assert.Equal(t, StateNew, j.State())

	require.NoError(t, j.event(ctx, evParse))
	assert.Equal(t, StateParsed, j.State())
	require.NoError(t, j.event(ctx, evCompose))
	assert.Equal(t, StateComposed, j.State())
	require.NoError(t, j.event(ctx, evWrite))
	assert.Equal(t, StateWritten, j.State())

	// final state
	assert.Error(t, j.event(ctx, evParse))
	errBoom := errors.New("boom")
	assert.Equal(t, errBoom, j.fail(ctx, errBoom))
	assert.Equal(t, StateWritten, j.State())
}

func TestJob_invalidTransitions(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		events []string
		bad    string
	}{
		{"compose before parse", nil, evCompose},
		{"write before compose", []string{evParse}, evWrite},
		{"skip after compose", []string{evParse, evCompose}, evSkip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := newJob("", "")
			for _, ev := range tt.events {
				require.NoError(t, j.event(ctx, ev))
			}
			assert.Error(t, j.event(ctx, tt.bad))
		})
	}
}

func TestJob_cancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	j := newJob("", "")
	_ = j.fail(ctx, context.Canceled)
	assert.Equal(t, StateFailed, j.State())
	assert.ErrorIs(t, j.Err(), context.Canceled)
}

func TestJob_Report(t *testing.T) {
	j := newJob("model.gcode", "")
	_ = j.skip(context.Background(), ErrUnsupportedPrinter)
	var buf bytes.Buffer
	j.Report(&buf)
	assert.Contains(t, buf.String(), "job "+j.ID+": model.gcode\n")
	assert.Contains(t, buf.String(), "state:   skipped")
	assert.Contains(t, buf.String(), "error:   unsupported printer")
	assert.NotContains(t, buf.String(), "printer:")
}
