package engine

import (
	"errors"
	"fmt"
	"io"
)

// EventKind enumerates the normalized structural events fed to the Detector.
type EventKind int

const (
	EventStartObject EventKind = iota
	EventKey
	EventEndObject
	EventStartArray
	EventEndArray
	EventValue
	EventParseError
	EventEnd
)

// Event is one structural event. For EventStartObject, HasName reports a
// first key bundled into the open event; for EventKey, Name is the key.
type Event struct {
	Kind    EventKind
	Name    string
	HasName bool
	Err     *ParseError
	Offset  int64
}

// EventOptions controls how tokens are turned into events.
type EventOptions struct {
	// BundleFirstKey folds an object's first key into its EventStartObject,
	// the way some SAX-style tokenizers report it.
	BundleFirstKey bool
}

// EventReader adapts a TokenSource into an event stream. It accepts exactly
// one top-level value: trailing tokens, empty input and premature end of input
// all surface as EventParseError. After a terminal event (End or ParseError)
// the same event is returned on every call.
type EventReader struct {
	src TokenSource
	opt EventOptions

	depth    int
	started  bool
	complete bool

	pending    *Token
	pendingErr error

	final *Event
}

// NewEventReader wraps src.
func NewEventReader(src TokenSource, opt EventOptions) *EventReader {
	return &EventReader{src: src, opt: opt}
}

// Next returns the next event.
func (r *EventReader) Next() Event {
	if r.final != nil {
		return *r.final
	}
	tok, err := r.read()
	if errors.Is(err, io.EOF) {
		switch {
		case !r.started:
			return r.fail(&ParseError{Message: "unexpected end of input: no value", Offset: r.src.Location()})
		case r.depth > 0:
			return r.fail(&ParseError{Message: "unexpected end of input", Offset: r.src.Location()})
		}
		return r.finish(Event{Kind: EventEnd, Offset: r.src.Location()})
	}
	if err != nil {
		return r.fail(toParseError(err, r.src.Location()))
	}
	if r.complete {
		return r.fail(&ParseError{Message: fmt.Sprintf("unexpected %s after top-level value", tok.Kind), Offset: tok.Offset})
	}
	r.started = true

	switch tok.Kind {
	case KindBeginObject:
		r.depth++
		ev := Event{Kind: EventStartObject, Offset: tok.Offset}
		if r.opt.BundleFirstKey {
			next, err := r.read()
			switch {
			case err != nil:
				r.pendingErr = err
			case next.Kind == KindKey:
				ev.Name, ev.HasName = next.String, true
			default:
				r.pending = &next
			}
		}
		return ev
	case KindEndObject, KindEndArray:
		if r.depth == 0 {
			return r.fail(&ParseError{Message: fmt.Sprintf("unexpected %s", tok.Kind), Offset: tok.Offset})
		}
		r.depth--
		if r.depth == 0 {
			r.complete = true
		}
		if tok.Kind == KindEndObject {
			return Event{Kind: EventEndObject, Offset: tok.Offset}
		}
		return Event{Kind: EventEndArray, Offset: tok.Offset}
	case KindBeginArray:
		r.depth++
		return Event{Kind: EventStartArray, Offset: tok.Offset}
	case KindKey:
		return Event{Kind: EventKey, Name: tok.String, Offset: tok.Offset}
	}
	if !tok.Kind.isScalar() {
		return r.fail(&ParseError{Message: fmt.Sprintf("unexpected %s", tok.Kind), Offset: tok.Offset})
	}
	if r.depth == 0 {
		r.complete = true
	}
	return Event{Kind: EventValue, Offset: tok.Offset}
}

func (r *EventReader) read() (Token, error) {
	if r.pending != nil {
		t := *r.pending
		r.pending = nil
		return t, nil
	}
	if r.pendingErr != nil {
		err := r.pendingErr
		r.pendingErr = nil
		return Token{}, err
	}
	return r.src.NextToken()
}

func (r *EventReader) fail(pe *ParseError) Event {
	return r.finish(Event{Kind: EventParseError, Err: pe, Offset: pe.Offset})
}

func (r *EventReader) finish(ev Event) Event {
	r.final = &ev
	return ev
}
