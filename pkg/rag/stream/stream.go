package stream

import (
	"fmt"

	"doc-qna-be/pkg/rag"
)

// Event types understood by clients. A well-formed answer is exactly
// one start, any number of stream chunks, then one end. An error event
// terminates the stream with no end following it.
const (
	TypeStart  = "start"
	TypeStream = "stream"
	TypeEnd    = "end"
	TypeBlob   = "blob"
	TypeError  = "error"
	TypeInfo   = "info"
)

// Event is the wire shape pushed over the live connection.
type Event struct {
	Message     string `json:"message"`
	Type        string `json:"type"`
	ContentType string `json:"content_type,omitempty"`
}

// Conn is the transport the pipeline streams over. The websocket layer
// satisfies it; tests use an in-memory recorder.
type Conn interface {
	SendJSON(v interface{}) error
}

// Emitter pushes pipeline events over a Conn and enforces the event
// order contract. Any transport failure is wrapped as a delivery error
// so callers abandon remaining work instead of streaming into the void.
type Emitter struct {
	conn    Conn
	started bool
	done    bool
}

func NewEmitter(conn Conn) *Emitter {
	return &Emitter{conn: conn}
}

func (e *Emitter) send(ev Event) error {
	if err := e.conn.SendJSON(ev); err != nil {
		e.done = true
		return fmt.Errorf("%w: %v", rag.ErrStreamDelivery, err)
	}
	return nil
}

// Start opens the answer stream. Repeated calls are rejected so a bug
// upstream cannot emit two start frames.
func (e *Emitter) Start() error {
	if e.started || e.done {
		return fmt.Errorf("%w: start out of order", rag.ErrStreamDelivery)
	}
	e.started = true
	return e.send(Event{Type: TypeStart})
}

// Chunk pushes one token of the in-progress answer.
func (e *Emitter) Chunk(token string) error {
	if !e.started || e.done {
		return fmt.Errorf("%w: chunk outside start/end", rag.ErrStreamDelivery)
	}
	return e.send(Event{Message: token, Type: TypeStream})
}

// End closes the answer stream.
func (e *Emitter) End() error {
	if !e.started || e.done {
		return fmt.Errorf("%w: end out of order", rag.ErrStreamDelivery)
	}
	e.done = true
	return e.send(Event{Type: TypeEnd})
}

// Info pushes a progress notice outside the start/end envelope.
func (e *Emitter) Info(message string) error {
	if e.done {
		return nil
	}
	return e.send(Event{Message: message, Type: TypeInfo})
}

// Blob pushes a complete payload, e.g. a finished summary, with its
// content type.
func (e *Emitter) Blob(message, contentType string) error {
	if e.done {
		return fmt.Errorf("%w: blob after close", rag.ErrStreamDelivery)
	}
	return e.send(Event{Message: message, Type: TypeBlob, ContentType: contentType})
}

// Error pushes a terminal error frame. The stream is closed afterwards;
// no end frame follows an error.
func (e *Emitter) Error(message string) error {
	if e.done {
		return nil
	}
	e.done = true
	return e.send(Event{Message: message, Type: TypeError})
}
