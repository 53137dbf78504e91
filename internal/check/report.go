package check

import (
	"fmt"
	"io"
	"sort"

	json "github.com/goccy/go-json"
)

// Type classifies a finding.
type Type string

const (
	TypeOK    Type = "OK"
	TypeWarn  Type = "WARN"
	TypeError Type = "ERROR"
)

// Finding is one report entry for a document.
type Finding struct {
	Path    string `json:"path"`
	Type    Type   `json:"type"`
	Code    string `json:"-"`
	Message string `json:"message"`
}

// Report maps a section name to its findings.
type Report map[string][]Finding

// Add appends findings to section.
func (r Report) Add(section string, fs ...Finding) {
	if _, ok := r[section]; !ok {
		r[section] = []Finding{}
	}
	r[section] = append(r[section], fs...)
}

// Sort orders every section by path, then type, then message.
func (r Report) Sort() {
	for _, fs := range r {
		sort.SliceStable(fs, func(i, j int) bool {
			a, b := fs[i], fs[j]
			if a.Path != b.Path {
				return a.Path < b.Path
			}
			if a.Type != b.Type {
				return a.Type < b.Type
			}
			return a.Message < b.Message
		})
	}
}

// HasErrors reports whether any finding is an ERROR.
func (r Report) HasErrors() bool {
	for _, fs := range r {
		if hasError(fs) {
			return true
		}
	}
	return false
}

// Count returns the number of findings of the given type.
func (r Report) Count(t Type) int {
	n := 0
	for _, fs := range r {
		for _, f := range fs {
			if f.Type == t {
				n++
			}
		}
	}
	return n
}

// WriteJSON writes the report as 2-space indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("check: encode report: %w", err)
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// WriteText writes one line per finding, sections in name order.
func (r Report) WriteText(w io.Writer) error {
	sections := make([]string, 0, len(r))
	for s := range r {
		sections = append(sections, s)
	}
	sort.Strings(sections)
	for _, s := range sections {
		for _, f := range r[s] {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s, f.Type, f.Path, f.Message); err != nil {
				return err
			}
		}
	}
	return nil
}
