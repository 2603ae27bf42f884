package base

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommand_Name(t *testing.T) {
	tests := []struct {
		usage    string
		wantLong string
		wantName string
	}{
		{"gct", "", ""},
		{"gct embed [flags] <file.gcode>", "embed", "embed"},
		{"gct models", "models", "models"},
		{"gct preview <file>", "preview", "preview"},
		{"gct tool sub [flags]", "tool sub", "sub"},
	}
	for _, tt := range tests {
		t.Run(tt.usage, func(t *testing.T) {
			c := &Command{UsageLine: tt.usage}
			assert.Equal(t, tt.wantLong, c.LongName())
			assert.Equal(t, tt.wantName, c.Name())
			assert.False(t, c.Runnable())
		})
	}
}

func TestSetExitStatus(t *testing.T) {
	defer func() { exitStatus = SNoError }()
	SetExitStatus(SApplicationError)
	SetExitStatus(SInvalidParameters)
	assert.Equal(t, SApplicationError, ExitStatus())
}

func TestStatusCode_String(t *testing.T) {
	assert.Equal(t, "application error", SApplicationError.String())
	assert.Equal(t, "StatusCode(42)", StatusCode(42).String())
}
