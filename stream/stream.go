// Package stream carries archive entries from a producer goroutine to a
// consumer one at a time. A Stream is single-pass and ends exactly once,
// either cleanly or with an error.
//
//	s := stream.New(ctx, produce)
//	defer s.Close()
//	for s.Next() {
//		use(s.Entry())
//	}
//	return s.Err()
package stream

import (
	"context"

	"github.com/gofish-bot/atom-shell-fetch/models"
)

// Emit hands one entry to the consumer. It returns an error once the
// consumer has gone away; producers must stop when that happens.
type Emit func(models.FileEntry) error

// Producer writes entries through emit and returns the terminal error, or nil
// when it ran to completion.
type Producer func(ctx context.Context, emit Emit) error

// Predicate reports whether an entry should be kept.
type Predicate func(models.FileEntry) bool

type Stream struct {
	entries <-chan models.FileEntry
	errc    <-chan error
	cancel  context.CancelFunc

	cur  models.FileEntry
	err  error
	done bool
}

// New starts produce in its own goroutine and returns the consuming end.
func New(ctx context.Context, produce Producer) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	entries := make(chan models.FileEntry)
	errc := make(chan error, 1)

	go func() {
		defer close(entries)
		emit := func(e models.FileEntry) error {
			select {
			case entries <- e:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		errc <- produce(ctx, emit)
	}()

	return &Stream{entries: entries, errc: errc, cancel: cancel}
}

// Failed returns a stream that ends with err without producing entries.
func Failed(err error) *Stream {
	return New(context.Background(), func(context.Context, Emit) error {
		return err
	})
}

// Next advances to the next entry. It returns false once the stream has
// ended; Err then reports how.
func (s *Stream) Next() bool {
	if s.done {
		return false
	}
	e, ok := <-s.entries
	if !ok {
		s.finish(<-s.errc)
		return false
	}
	s.cur = e
	return true
}

// Entry returns the entry Next advanced to.
func (s *Stream) Entry() models.FileEntry {
	return s.cur
}

// Err returns the error that ended the stream, or nil if it ended cleanly or
// has not ended yet.
func (s *Stream) Err() error {
	return s.err
}

// Close abandons the stream and waits for its producer to stop. Calling it
// after the stream ended is a no-op.
func (s *Stream) Close() {
	if s.done {
		return
	}
	s.cancel()
	for range s.entries {
	}
	<-s.errc
	s.done = true
}

func (s *Stream) finish(err error) {
	s.err = err
	s.done = true
	s.cancel()
}

// Filter returns a stream of the entries of in that keep accepts, in their
// original order. A nil keep passes in through unchanged.
func Filter(in *Stream, keep Predicate) *Stream {
	if keep == nil {
		return in
	}
	return New(context.Background(), func(ctx context.Context, emit Emit) error {
		defer in.Close()
		stop := context.AfterFunc(ctx, in.cancel)
		defer stop()
		for in.Next() {
			e := in.Entry()
			if !keep(e) {
				continue
			}
			if err := emit(e); err != nil {
				return err
			}
		}
		return in.Err()
	})
}

// Collect drains s into a slice.
func Collect(s *Stream) ([]models.FileEntry, error) {
	defer s.Close()
	var out []models.FileEntry
	for s.Next() {
		out = append(out, s.Entry())
	}
	return out, s.Err()
}
