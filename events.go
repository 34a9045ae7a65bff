package sticky

import (
	"github.com/akmonengine/sticky/surface"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	ON_ATTACH EventType = iota
	ON_DETACH
	ON_CROSS
)

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// AttachEvent is sent when a body sticks to a surface
type AttachEvent struct {
	Body     *Body
	Triangle *surface.Triangle
	Position mgl64.Vec3
}

func (e AttachEvent) Type() EventType { return ON_ATTACH }

// DetachEvent is sent when a body leaves its surface
type DetachEvent struct {
	Body     *Body
	Reason   DetachReason
	Position mgl64.Vec3
}

func (e DetachEvent) Type() EventType { return ON_DETACH }

// CrossEvent is sent for every triangle crossing
type CrossEvent struct {
	Body *Body
	From *surface.Triangle
	To   *surface.Triangle
	Mode surface.Mode
}

func (e CrossEvent) Type() EventType { return ON_CROSS }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event
}

func NewEvents() Events {
	return Events{
		listeners: make(map[EventType][]EventListener),
		buffer:    make([]Event, 0, 256),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	if e.listeners == nil {
		e.listeners = make(map[EventType][]EventListener)
	}
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

func (e *Events) emit(event Event) {
	e.buffer = append(e.buffer, event)
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
