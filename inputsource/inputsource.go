// Package inputsource captures system-wide mouse input events.
//
// Start installs the OS hook on a dedicated thread and delivers events on a
// buffered channel. The channel is closed when delivery ends, after which
// Err reports why.
package inputsource

import (
	"errors"

	"kafji.net/tetikus/logging"
)

var slog = logging.New("inputsource")

// ErrUnsupported is reported on platforms without a mouse hook
// implementation.
var ErrUnsupported = errors.New("mouse capture is not supported on this platform")
