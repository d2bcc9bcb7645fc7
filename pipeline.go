package rowan

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Pipeline hands sealed command lists from a logic goroutine to a render
// goroutine. The channel send in Submit is the only synchronization point:
// once a list is submitted the producer must not touch it again, and the
// consumer may read it without locking.
type Pipeline struct {
	frames    chan *CommandList
	done      chan struct{}
	closeOnce sync.Once
}

// NewPipeline returns a pipeline buffering up to depth frames. A depth below
// one is raised to one.
func NewPipeline(depth int) *Pipeline {
	if depth < 1 {
		depth = 1
	}
	return &Pipeline{
		frames: make(chan *CommandList, depth),
		done:   make(chan struct{}),
	}
}

// Submit queues list for rendering, blocking while the pipeline is full.
// Unsealed lists are rejected with ErrInvalidState. Submitting to a closed
// pipeline fails with ErrInvalidState.
func (p *Pipeline) Submit(ctx context.Context, list *CommandList) error {
	if list == nil {
		return fmt.Errorf("rowan: pipeline submit: %w", ErrNilReference)
	}
	if !list.Sealed() {
		return fmt.Errorf("rowan: pipeline submit: unsealed command list: %w", ErrInvalidState)
	}
	select {
	case <-p.done:
		return fmt.Errorf("rowan: pipeline submit: closed: %w", ErrInvalidState)
	default:
	}
	select {
	case p.frames <- list:
		return nil
	case <-p.done:
		return fmt.Errorf("rowan: pipeline submit: closed: %w", ErrInvalidState)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next blocks until a list is available and returns it. After Close, queued
// lists are still delivered; once drained Next returns ErrStop.
func (p *Pipeline) Next(ctx context.Context) (*CommandList, error) {
	select {
	case list := <-p.frames:
		return list, nil
	default:
	}
	select {
	case list := <-p.frames:
		return list, nil
	case <-p.done:
		select {
		case list := <-p.frames:
			return list, nil
		default:
			return nil, ErrStop
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops accepting new lists. Safe to call more than once.
func (p *Pipeline) Close() {
	p.closeOnce.Do(func() { close(p.done) })
}

// ProduceFunc builds the next sealed frame. Returning ErrStop ends Run
// without error.
type ProduceFunc func(ctx context.Context) (*CommandList, error)

// Run drives produce on a logic goroutine and executes the resulting lists
// on backend from a render goroutine until produce returns ErrStop, ctx is
// cancelled, or either side fails. The first failure cancels the other side
// and is returned. Run closes the pipeline before returning.
func (p *Pipeline) Run(ctx context.Context, produce ProduceFunc, backend Backend) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer p.Close()
		for {
			list, err := produce(ctx)
			if errors.Is(err, ErrStop) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("rowan: produce frame: %w", err)
			}
			if err := p.Submit(ctx, list); err != nil {
				return err
			}
		}
	})

	g.Go(func() error {
		frame := 0
		for {
			list, err := p.Next(ctx)
			if errors.Is(err, ErrStop) {
				return nil
			}
			if err != nil {
				return err
			}
			if err := list.Execute(backend); err != nil {
				return fmt.Errorf("rowan: render frame %d: %w", frame, err)
			}
			frame++
		}
	})

	err := g.Wait()
	p.Close()
	return err
}
