package renderer

import (
	"context"
	"errors"
	"sync"
)

// Sink delivers messages to one or more views.
type Sink interface {
	Init(ctx context.Context, msg InitMessage) error
	Update(ctx context.Context, msg UpdateMessage) error
}

// Multi fans every message out to all sinks. Every sink receives the message
// even when an earlier one fails; the errors are joined.
type Multi []Sink

// Init implements Sink.
func (m Multi) Init(ctx context.Context, msg InitMessage) error {
	var errs []error
	for _, s := range m {
		if err := s.Init(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Update implements Sink.
func (m Multi) Update(ctx context.Context, msg UpdateMessage) error {
	var errs []error
	for _, s := range m {
		if err := s.Update(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recorder is a Sink that keeps every message in memory.
type Recorder struct {
	mu      sync.Mutex
	inits   []InitMessage
	updates []UpdateMessage

	// Err, when set, is returned from every call after recording.
	Err error
	// OnUpdate, when set, is called after an update is recorded.
	OnUpdate func(UpdateMessage)
}

// Init implements Sink.
func (r *Recorder) Init(_ context.Context, msg InitMessage) error {
	r.mu.Lock()
	r.inits = append(r.inits, msg)
	r.mu.Unlock()
	return r.Err
}

// Update implements Sink.
func (r *Recorder) Update(_ context.Context, msg UpdateMessage) error {
	r.mu.Lock()
	r.updates = append(r.updates, msg)
	hook := r.OnUpdate
	r.mu.Unlock()
	if hook != nil {
		hook(msg)
	}
	return r.Err
}

// Inits returns a copy of the recorded init messages.
func (r *Recorder) Inits() []InitMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]InitMessage(nil), r.inits...)
}

// Updates returns a copy of the recorded update messages.
func (r *Recorder) Updates() []UpdateMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]UpdateMessage(nil), r.updates...)
}
