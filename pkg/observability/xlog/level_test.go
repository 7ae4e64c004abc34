package xlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{" INFO ", LevelInfo},
		{"warn", LevelWarn},
		{"Warning", LevelWarn},
		{"error", LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseLevel("trace")
	assert.Error(t, err)
}

func TestLevel_Text(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO+2", Level(2).String())

	data, err := LevelWarn.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "WARN", string(data))

	var l Level
	require.NoError(t, l.UnmarshalText([]byte("error")))
	assert.Equal(t, LevelError, l)
	assert.Error(t, l.UnmarshalText([]byte("nope")))
}
