package dupkeys

// Severity expresses the severity level for duplicate-key findings.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

func (s Severity) String() string {
	switch s {
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "ignore"
	}
}

// ParseSeverity maps "ignore", "warn" and "error" to a Severity. Unknown
// values yield Error with ok=false.
func ParseSeverity(s string) (Severity, bool) {
	switch s {
	case "ignore":
		return Ignore, true
	case "warn", "warning":
		return Warn, true
	case "error", "":
		return Error, true
	}
	return Error, false
}

// Options bundles detection options.
type Options struct {
	// Driver selects the tokenizer; nil uses the current global driver.
	Driver   Driver
	MaxDepth int
	MaxBytes int64
}

func lastOpt(opts []Options) Options {
	if len(opts) > 0 {
		return opts[len(opts)-1]
	}
	return Options{}
}

func (o Options) driver() Driver {
	if o.Driver != nil {
		return o.Driver
	}
	return CurrentDriver()
}
