// Package notify formats duowatch messages and delivers them to chat sinks.
package notify

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ErrNoSinks is returned when a message is sent with nothing configured.
var ErrNoSinks = errors.New("no notification sinks configured")

// Sink delivers rendered messages to one destination.
type Sink interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Multi fans messages out to several sinks.
type Multi struct {
	sinks []Sink
}

// NewMulti returns a Multi over the given sinks; nil entries are dropped.
func NewMulti(sinks ...Sink) *Multi {
	m := &Multi{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Sinks returns the names of the configured sinks.
func (m *Multi) Sinks() []string {
	names := make([]string, 0, len(m.sinks))
	for _, s := range m.sinks {
		names = append(names, s.Name())
	}
	return names
}

// Send delivers msgs to every sink. Sinks run concurrently; each sink gets
// the messages in order and stops at its first failure. The first error
// from any sink is returned after all sinks finish.
func (m *Multi) Send(ctx context.Context, msgs ...Message) error {
	if len(m.sinks) == 0 {
		return ErrNoSinks
	}

	var g errgroup.Group
	for _, sink := range m.sinks {
		sink := sink
		g.Go(func() error {
			for _, msg := range msgs {
				if err := sink.Send(ctx, msg); err != nil {
					return fmt.Errorf("%s: %w", sink.Name(), err)
				}
			}
			return nil
		})
	}
	return g.Wait()
}
