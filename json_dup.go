package dupkeys

import (
	"fmt"
	"io"

	eng "github.com/reoring/dupkeys/internal/engine"
)

// Detect scans one complete document and returns the dotted paths of keys
// repeated within the same object, in order of first repetition. The result is
// empty (not nil) when there are no duplicates. Malformed input, including
// trailing content after the top-level value, yields a *ParseError with line
// and column filled in.
func Detect(data []byte, opts ...Options) ([]string, error) {
	opt := lastOpt(opts)
	if pe := (eng.Limits{MaxBytes: opt.MaxBytes}).CheckSize(int64(len(data))); pe != nil {
		pe.Locate(data)
		return nil, pe
	}
	paths, err := scan(opt.driver().NewBytes(data), opt)
	if err != nil {
		if pe, ok := AsParseError(err); ok {
			pe.Locate(data)
		}
		return nil, err
	}
	return paths, nil
}

// DetectReader reads r fully and runs Detect on its contents.
func DetectReader(r io.Reader, opts ...Options) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("dupkeys: read input: %w", err)
	}
	return Detect(data, opts...)
}

// DetectSource scans tokens from an already constructed Source. Parse errors
// carry offsets only, since the raw bytes are not available to compute lines.
func DetectSource(src Source, opts ...Options) ([]string, error) {
	return scan(src, lastOpt(opts))
}

// DetectIssues is Detect in the Issues error model: one duplicate_key issue
// per path, or a single parse_error (truncated for exceeded limits) issue.
func DetectIssues(data []byte, opts ...Options) Issues {
	paths, err := Detect(data, opts...)
	if err != nil {
		return Issues{IssueFromError(err)}
	}
	var iss Issues
	for _, p := range paths {
		iss = AppendIssues(iss, Issue{Code: CodeDuplicateKey, Path: p, Message: "duplicate key at " + p, Offset: -1})
	}
	return iss
}

func scan(src Source, opt Options) ([]string, error) {
	return eng.Scan(src, eng.ScanOptions{MaxDepth: opt.MaxDepth, MaxBytes: opt.MaxBytes})
}
