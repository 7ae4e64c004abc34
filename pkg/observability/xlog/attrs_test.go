package xlog

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAttrs(t *testing.T) {
	assert.Equal(t, slog.Attr{}, Err(nil))
	assert.Equal(t, slog.String(KeyError, "x"), Err(errors.New("x")))
	assert.Equal(t, slog.String(KeyComponent, "xshm"), Component("xshm"))
	assert.Equal(t, slog.String(KeyOperation, "advance"), Operation("advance"))
	assert.Equal(t, slog.String(KeyDuration, "1.5ms"), Duration(1500*time.Microsecond))
	assert.Equal(t, slog.String(KeyVariant, "63"), Variant("63"))
	assert.Equal(t, slog.Uint64(KeyMachineID, 9), MachineID(9))
	assert.Equal(t, slog.Uint64(KeyTimeUnit, 100), TimeUnit(100))
	assert.Equal(t, slog.Uint64(KeySequence, 4), Sequence(4))
	assert.Equal(t, slog.Int(KeyAttempt, 2), Attempt(2))
	assert.Equal(t, slog.String(KeyToken, "t"), Token("t"))
	assert.Equal(t, slog.String(KeyPath, "/p"), Path("/p"))
}
