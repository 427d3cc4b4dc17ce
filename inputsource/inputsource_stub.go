//go:build !windows

package inputsource

import "kafji.net/tetikus/inputevent"

// Handle is the placeholder source on platforms without a hook
// implementation. Its channel is closed immediately and Err reports
// ErrUnsupported.
type Handle struct {
	inputs chan inputevent.Event
}

func Start() *Handle {
	slog.Warn("no mouse hook implementation for this platform")
	h := &Handle{inputs: make(chan inputevent.Event)}
	close(h.inputs)
	return h
}

func (h *Handle) Inputs() <-chan inputevent.Event {
	return h.inputs
}

func (h *Handle) Err() error {
	return ErrUnsupported
}

func (h *Handle) Stop() {}
