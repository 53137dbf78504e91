package engine

import "strings"

// KeyStatus records how often a key has been seen within one object scope.
// Transitions only move forward: Unseen -> SeenOnce -> SeenMultiple.
type KeyStatus uint8

const (
	Unseen KeyStatus = iota
	SeenOnce
	SeenMultiple
)

func (s KeyStatus) String() string {
	switch s {
	case Unseen:
		return "unseen"
	case SeenOnce:
		return "seen_once"
	default:
		return "seen_multiple"
	}
}

// scope is one open JSON object.
type scope struct {
	key    string // introducing key
	hasKey bool
	seen   map[string]KeyStatus
}

// Detector is the duplicate-key state machine. A Detector serves exactly one
// scan and must not be shared between goroutines.
type Detector struct {
	stack   []scope
	lastKey string
	hasLast bool

	paths    []string
	reported map[string]struct{}

	err  *ParseError
	done bool
}

// NewDetector returns a Detector ready for the first event of a document.
func NewDetector() *Detector {
	return &Detector{reported: make(map[string]struct{})}
}

// Apply applies one event and reports whether the scan reached its outcome.
// Events after the outcome are ignored.
func (d *Detector) Apply(ev Event) bool {
	if d.done {
		return true
	}
	switch ev.Kind {
	case EventStartObject:
		d.stack = append(d.stack, scope{key: d.lastKey, hasKey: d.hasLast, seen: make(map[string]KeyStatus)})
		if ev.HasName {
			d.register(ev.Name)
		}
	case EventKey:
		d.register(ev.Name)
	case EventEndObject:
		if n := len(d.stack); n > 0 {
			top := d.stack[n-1]
			d.stack = d.stack[:n-1]
			// the next sibling inside an enclosing array is reached via the same key
			d.lastKey, d.hasLast = top.key, top.hasKey
		}
	case EventStartArray, EventEndArray, EventValue:
	case EventParseError:
		d.err = ev.Err
		if d.err == nil {
			d.err = &ParseError{Message: "parse error", Offset: ev.Offset}
		}
		d.done = true
	case EventEnd:
		d.done = true
	}
	return d.done
}

// Result returns the duplicate paths in order of detection, or the parse
// error that aborted the scan.
func (d *Detector) Result() ([]string, error) {
	if !d.done {
		return nil, ErrIncomplete
	}
	if d.err != nil {
		return nil, d.err
	}
	out := make([]string, len(d.paths))
	copy(out, d.paths)
	return out, nil
}

func (d *Detector) register(name string) {
	d.lastKey, d.hasLast = name, true
	n := len(d.stack)
	if n == 0 {
		return
	}
	top := &d.stack[n-1]
	switch top.seen[name] {
	case Unseen:
		top.seen[name] = SeenOnce
	case SeenOnce:
		top.seen[name] = SeenMultiple
		d.report(d.pathOf(name))
	}
}

// pathOf joins the introducing keys below the root scope with name.
func (d *Detector) pathOf(name string) string {
	parts := make([]string, 0, len(d.stack))
	for _, s := range d.stack[1:] {
		if s.hasKey {
			parts = append(parts, s.key)
		}
	}
	parts = append(parts, name)
	return strings.Join(parts, ".")
}

// report records p once; sibling array elements collapse onto the same path.
func (d *Detector) report(p string) {
	if _, ok := d.reported[p]; ok {
		return
	}
	d.reported[p] = struct{}{}
	d.paths = append(d.paths, p)
}

// ScanOptions configures Scan.
type ScanOptions struct {
	BundleFirstKey bool
	MaxDepth       int
	MaxBytes       int64
}

// Scan runs one complete duplicate-key scan over src.
func Scan(src TokenSource, opt ScanOptions) ([]string, error) {
	if opt.MaxDepth > 0 || opt.MaxBytes > 0 {
		src = WrapWithLimits(src, Limits{MaxDepth: opt.MaxDepth, MaxBytes: opt.MaxBytes})
	}
	events := NewEventReader(src, EventOptions{BundleFirstKey: opt.BundleFirstKey})
	d := NewDetector()
	for !d.Apply(events.Next()) {
	}
	return d.Result()
}
