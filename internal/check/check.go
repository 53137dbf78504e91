// Package check runs duplicate-key detection over a batch of documents and
// turns each outcome into report findings.
package check

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	dupkeys "github.com/reoring/dupkeys"
	"github.com/reoring/dupkeys/i18n"
	yamlsrc "github.com/reoring/dupkeys/source/yaml"
)

const (
	defaultConcurrency = 8
	defaultCacheSize   = 1024
)

// Document is one input to check.
type Document struct {
	Section string // report section, e.g. "files"
	Path    string // label used in findings
	Read    func() ([]byte, error)
	Driver  dupkeys.Driver // nil selects by extension, then Options.Detect.Driver
}

// FileDocument reads path from disk; "-" reads standard input.
func FileDocument(section, path string) Document {
	if path == "-" {
		return ReaderDocument(section, path, os.Stdin)
	}
	return Document{Section: section, Path: path, Read: func() ([]byte, error) { return os.ReadFile(path) }}
}

// ReaderDocument reads r to the end when checked.
func ReaderDocument(section, path string, r io.Reader) Document {
	return Document{Section: section, Path: path, Read: func() ([]byte, error) { return io.ReadAll(r) }}
}

// BytesDocument wraps in-memory content.
func BytesDocument(section, path string, data []byte) Document {
	return Document{Section: section, Path: path, Read: func() ([]byte, error) { return data, nil }}
}

// Options configures a Checker.
type Options struct {
	Concurrency int
	OnDuplicate dupkeys.Severity
	SuppressOK  bool
	Detect      dupkeys.Options
	CacheSize   int
	Logger      *log.Logger
}

type cacheKey struct {
	sum    uint64
	driver string
}

type outcome struct {
	paths []string
	err   error
}

// Checker scans documents concurrently. Identical content is scanned once per
// driver and served from an LRU cache afterwards.
type Checker struct {
	opt   Options
	log   *log.Logger
	cache *lru.Cache[cacheKey, outcome]
}

// New builds a Checker.
func New(opt Options) (*Checker, error) {
	if opt.Concurrency <= 0 {
		opt.Concurrency = defaultConcurrency
	}
	if opt.CacheSize <= 0 {
		opt.CacheSize = defaultCacheSize
	}
	cache, err := lru.New[cacheKey, outcome](opt.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("check: result cache: %w", err)
	}
	logger := opt.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Checker{opt: opt, log: logger, cache: cache}, nil
}

// Check scans every document and returns the sorted report. A failing
// document only produces findings for itself. Cancelling ctx stops scheduling
// further documents and returns ctx.Err().
func (c *Checker) Check(ctx context.Context, docs []Document) (Report, error) {
	results := make([][]Finding, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opt.Concurrency)
	for i, doc := range docs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = c.CheckDocument(doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := Report{}
	for i, doc := range docs {
		report.Add(sectionOf(doc), results[i]...)
	}
	report.Sort()
	c.log.Printf("scan completed: %d document(s)", len(docs))
	return report, nil
}

// CheckDocument scans one document and returns its findings.
func (c *Checker) CheckDocument(doc Document) []Finding {
	c.log.Printf("checking %s", doc.Path)
	var out []Finding

	data, err := doc.Read()
	if err != nil {
		out = append(out, c.finding(doc.Path, TypeError, "read_error", err.Error(), ""))
		return out
	}

	opt := c.opt.Detect
	opt.Driver = c.driverFor(doc)
	paths, err := c.detect(data, opt)
	switch {
	case err != nil:
		out = append(out, c.finding(doc.Path, TypeError, dupkeys.IssueFromError(err).Code, err.Error(), ""))
	case len(paths) > 0 && c.opt.OnDuplicate != dupkeys.Ignore:
		typ := TypeError
		if c.opt.OnDuplicate == dupkeys.Warn {
			typ = TypeWarn
		}
		out = append(out, c.finding(doc.Path, typ, dupkeys.CodeDuplicateKey, "", strings.Join(paths, ", ")))
	}

	if !c.opt.SuppressOK && !hasError(out) {
		out = append(out, c.finding(doc.Path, TypeOK, "ok", "", ""))
	}
	return out
}

func (c *Checker) detect(data []byte, opt dupkeys.Options) ([]string, error) {
	key := cacheKey{sum: xxhash.Sum64(data), driver: opt.Driver.Name()}
	if o, ok := c.cache.Get(key); ok {
		return o.paths, o.err
	}
	paths, err := dupkeys.Detect(data, opt)
	c.cache.Add(key, outcome{paths: paths, err: err})
	return paths, err
}

func (c *Checker) driverFor(doc Document) dupkeys.Driver {
	if doc.Driver != nil {
		return doc.Driver
	}
	switch strings.ToLower(filepath.Ext(doc.Path)) {
	case ".yaml", ".yml":
		return yamlsrc.Driver()
	}
	if c.opt.Detect.Driver != nil {
		return c.opt.Detect.Driver
	}
	return dupkeys.CurrentDriver()
}

func (c *Checker) finding(path string, typ Type, code, detail, paths string) Finding {
	f := Finding{
		Path:    path,
		Type:    typ,
		Code:    code,
		Message: i18n.T(code, map[string]string{"detail": detail, "paths": paths}),
	}
	c.log.Printf("pushing report entry: %s %s %s", f.Path, f.Type, f.Message)
	return f
}

func sectionOf(doc Document) string {
	if doc.Section == "" {
		return "files"
	}
	return doc.Section
}

func hasError(fs []Finding) bool {
	for _, f := range fs {
		if f.Type == TypeError {
			return true
		}
	}
	return false
}
