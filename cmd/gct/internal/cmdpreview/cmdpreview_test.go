package cmdpreview

import (
	"fmt"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
)

func TestContentHash(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"empty", nil, "ef46db3751d8e999"},
		{"pixels", []byte{0xff, 0, 0, 0xff}, fmt.Sprintf("%016x", xxhash.Sum64([]byte{0xff, 0, 0, 0xff}))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, contentHash(tt.data))
		})
	}
}
