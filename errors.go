package rowan

import "errors"

// Sentinel errors. Every error returned by rowan wraps one of these with
// call-site context, so callers match with errors.Is.
var (
	// ErrNotFound is returned when an atlas frame or registry entry does not
	// exist. Rowan never substitutes a placeholder frame.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState signals a protocol violation: appending to a sealed
	// command list, sealing twice, executing an unsealed list, building an
	// atlas twice, or unbalanced Begin/End on a backend.
	ErrInvalidState = errors.New("invalid state")

	// ErrNilReference is returned when a required reference or handle is
	// missing at construction time.
	ErrNilReference = errors.New("nil reference")

	// ErrInvalidCommand is returned when a command's data cannot be drawn
	// (non-finite matrices, negative UV extents) or when a value that is not
	// one of rowan's command types is appended to a list.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrMalformedDescriptor is returned when an atlas descriptor is
	// inconsistent or cannot be decoded.
	ErrMalformedDescriptor = errors.New("malformed atlas descriptor")

	// ErrStaleHandle is returned when a handle refers to a registry slot that
	// has since been released or reused.
	ErrStaleHandle = errors.New("stale handle")

	// ErrStop may be returned by a ProduceFunc to end Pipeline.Run cleanly.
	ErrStop = errors.New("stop")
)
