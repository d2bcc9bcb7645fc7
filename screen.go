package rowan

import "github.com/go-gl/mathgl/mgl32"

// ScreenState is what a Camera needs from the display: the current resolution
// and a way to hear about changes to it.
type ScreenState interface {
	Resolution() mgl32.Vec2
	OnResolutionChanged(fn func(resolution mgl32.Vec2)) *Subscription
}

type resolutionHandler struct {
	id uint32
	fn func(mgl32.Vec2)
}

// Screen holds the current screen resolution and notifies subscribers when it
// changes. It is not safe for concurrent use: it belongs to the logic
// goroutine, and notifications are delivered synchronously on the goroutine
// that calls SetResolution.
type Screen struct {
	resolution mgl32.Vec2
	handlers   []resolutionHandler
	nextID     uint32
}

var _ ScreenState = (*Screen)(nil)

// NewScreen creates a Screen with the given initial resolution.
func NewScreen(resolution mgl32.Vec2) *Screen {
	return &Screen{resolution: resolution}
}

// Resolution returns the current resolution in pixels.
func (s *Screen) Resolution() mgl32.Vec2 {
	return s.resolution
}

// SetResolution updates the resolution. Subscribers are notified in
// subscription order only when the value actually changes.
func (s *Screen) SetResolution(resolution mgl32.Vec2) {
	if resolution == s.resolution {
		return
	}
	s.resolution = resolution
	// Handlers may unsubscribe while being notified; iterate over a snapshot.
	handlers := append([]resolutionHandler(nil), s.handlers...)
	for _, h := range handlers {
		h.fn(resolution)
	}
}

// OnResolutionChanged registers fn and returns the Subscription that removes
// it again.
func (s *Screen) OnResolutionChanged(fn func(resolution mgl32.Vec2)) *Subscription {
	s.nextID++
	id := s.nextID
	s.handlers = append(s.handlers, resolutionHandler{id: id, fn: fn})
	return NewSubscription(func() { s.remove(id) })
}

// Subscribers returns the number of live subscriptions.
func (s *Screen) Subscribers() int {
	return len(s.handlers)
}

func (s *Screen) remove(id uint32) {
	for i, h := range s.handlers {
		if h.id == id {
			s.handlers = append(s.handlers[:i], s.handlers[i+1:]...)
			return
		}
	}
}

// Subscription is a scoped registration with a notification source. Close
// releases it.
type Subscription struct {
	release func()
}

// NewSubscription wraps the function that undoes a registration. Custom
// ScreenState implementations use it to hand out subscriptions.
func NewSubscription(release func()) *Subscription {
	return &Subscription{release: release}
}

// Close unregisters the handler. Safe to call more than once and on a nil
// Subscription.
func (s *Subscription) Close() {
	if s == nil || s.release == nil {
		return
	}
	s.release()
	s.release = nil
}
