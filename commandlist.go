package rowan

import (
	"fmt"
	"iter"
)

// Backend executes render commands. Each method handles one CommandType.
// CommandList.Execute calls them in list order and stops at the first error.
type Backend interface {
	Begin(cmd BeginCommand) error
	BeginWithTargetGroup(cmd BeginWithTargetGroupCommand) error
	ApplyCamera(cmd ApplyCameraCommand) error
	RenderInstance(cmd RenderInstanceCommand) error
	RestoreRenderTargetGroup(cmd RestoreRenderTargetGroupCommand) error
	End(cmd EndCommand) error
}

// CommandList is an ordered sequence of render commands with two states.
//
// While building, one goroutine appends commands. Seal freezes the list; a
// sealed list never changes again and any number of goroutines may read or
// execute it without locking, provided the sealed list was handed over
// through a synchronizing operation (a channel send, as Pipeline does).
//
// CommandList is not safe for concurrent use while building.
type CommandList struct {
	commands []Command
	sealed   bool
}

// NewCommandList returns an empty list in the building state with room for
// capacity commands.
func NewCommandList(capacity int) *CommandList {
	if capacity < 0 {
		capacity = 0
	}
	return &CommandList{commands: make([]Command, 0, capacity)}
}

// Append adds cmd to the tail of the list. It fails with ErrInvalidState once
// the list is sealed, with ErrNilReference for a nil command or one whose
// construction invariants do not hold, and with ErrInvalidCommand for
// anything other than the command values this package defines (pointers to
// them included).
func (l *CommandList) Append(cmd Command) error {
	if l.sealed {
		return fmt.Errorf("rowan: append to sealed command list: %w", ErrInvalidState)
	}
	if cmd == nil {
		return fmt.Errorf("rowan: append nil command: %w", ErrNilReference)
	}
	switch cmd.(type) {
	case BeginCommand, BeginWithTargetGroupCommand, ApplyCameraCommand,
		RenderInstanceCommand, RestoreRenderTargetGroupCommand, EndCommand:
	default:
		return fmt.Errorf("rowan: append command of type %T: %w", cmd, ErrInvalidCommand)
	}
	if err := cmd.validate(); err != nil {
		return err
	}
	l.commands = append(l.commands, cmd)
	return nil
}

// Seal moves the list to the sealed state. Sealing twice fails with
// ErrInvalidState.
func (l *CommandList) Seal() error {
	if l.sealed {
		return fmt.Errorf("rowan: seal command list: already sealed: %w", ErrInvalidState)
	}
	// Drop spare capacity so no later append on an aliased slice can write
	// into memory the sealed list still exposes.
	l.commands = l.commands[:len(l.commands):len(l.commands)]
	l.sealed = true
	return nil
}

// Sealed reports whether Seal has been called.
func (l *CommandList) Sealed() bool { return l.sealed }

// Len returns the number of commands.
func (l *CommandList) Len() int { return len(l.commands) }

// At returns the i-th command.
func (l *CommandList) At(i int) Command { return l.commands[i] }

// All iterates over the commands in order.
func (l *CommandList) All() iter.Seq2[int, Command] {
	return func(yield func(int, Command) bool) {
		for i, c := range l.commands {
			if !yield(i, c) {
				return
			}
		}
	}
}

// Execute walks a sealed list front to back and dispatches each command to
// the matching Backend method. Executing an unsealed list fails with
// ErrInvalidState. The first backend error stops execution and is returned
// wrapped with the command's index and kind.
func (l *CommandList) Execute(b Backend) error {
	if !l.sealed {
		return fmt.Errorf("rowan: execute unsealed command list: %w", ErrInvalidState)
	}
	for i, cmd := range l.commands {
		var err error
		switch c := cmd.(type) {
		case BeginCommand:
			err = b.Begin(c)
		case BeginWithTargetGroupCommand:
			err = b.BeginWithTargetGroup(c)
		case ApplyCameraCommand:
			err = b.ApplyCamera(c)
		case RenderInstanceCommand:
			err = b.RenderInstance(c)
		case RestoreRenderTargetGroupCommand:
			err = b.RestoreRenderTargetGroup(c)
		case EndCommand:
			err = b.End(c)
		default:
			err = fmt.Errorf("unhandled command kind %v", cmd.Type())
		}
		if err != nil {
			return fmt.Errorf("rowan: command %d (%v): %w", i, cmd.Type(), err)
		}
	}
	return nil
}

// CommandStats counts the commands of each kind in a list.
type CommandStats [commandTypeCount]int

// Count returns the number of commands of kind t.
func (s CommandStats) Count(t CommandType) int {
	if int(t) >= len(s) {
		return 0
	}
	return s[t]
}

// Stats returns per-kind command counts.
func (l *CommandList) Stats() CommandStats {
	var s CommandStats
	for _, c := range l.commands {
		s[c.Type()]++
	}
	return s
}
