package idlparser

import (
	"errors"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"

	"github.com/tallstoat/idlparser/internal/scanner"
)

// Option configures a Session.
type Option func(*Session)

// WithFs sets the filesystem files are read from. Defaults to the OS
// filesystem.
func WithFs(fs afero.Fs) Option {
	return func(s *Session) { s.fs = fs }
}

// WithResolver sets the import path resolution policy.
func WithResolver(r ImportResolver) Option {
	return func(s *Session) { s.resolver = r }
}

// WithSearchPaths resolves imports against the importing file's directory
// and then each of paths. Ignored when WithResolver is also given.
func WithSearchPaths(paths ...string) Option {
	return func(s *Session) { s.searchPaths = append(s.searchPaths, paths...) }
}

// WithLogger sets the logger used for debug output. The session logs
// nothing unless a logger is given.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Session) { s.logger = l }
}

// WithParallelImports resolves the imports of each file concurrently, with
// at most n imports of one file in flight. n <= 1 keeps the sequential
// depth-first order.
func WithParallelImports(n int) Option {
	return func(s *Session) { s.parallel = n }
}

// Session is one top-level parse invocation. It owns the cache of parsed
// files, keyed by canonical path, and the record of files currently being
// parsed that cycle detection relies on.
//
// A Session may be reused for several Parse calls; files parsed earlier are
// shared with later calls. It is safe for concurrent use.
type Session struct {
	fs          afero.Fs
	resolver    ImportResolver
	searchPaths []string
	logger      logrus.FieldLogger
	parallel    int

	flight singleflight.Group

	mu    sync.Mutex
	files map[string]*SchemaFile
	// waits[a][b] counts the imports of b that the parse of a is waiting on.
	waits map[string]map[string]int
}

// NewSession creates a parse session.
func NewSession(opts ...Option) *Session {
	s := &Session{
		files: make(map[string]*SchemaFile),
		waits: make(map[string]map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fs == nil {
		s.fs = afero.NewOsFs()
	}
	if s.resolver == nil {
		if len(s.searchPaths) > 0 {
			s.resolver = SearchPathResolver{Fs: s.fs, Paths: s.searchPaths}
		} else {
			s.resolver = RelativeResolver{}
		}
	}
	if s.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.logger = l
	}
	return s
}

// ParseFile parses the file at path and everything it imports in a fresh
// session.
func ParseFile(path string, opts ...Option) (*SchemaFile, error) {
	return NewSession(opts...).Parse(path)
}

// Parse parses the file at path, resolving its imports recursively.
func (s *Session) Parse(path string) (*SchemaFile, error) {
	canonical, err := canonicalPath(path)
	if err != nil {
		return nil, errIo(path, err)
	}
	return s.load(where{}, "", canonical)
}

// Files returns every file parsed by the session, ordered by path.
func (s *Session) Files() []*SchemaFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	files := make([]*SchemaFile, 0, len(s.files))
	for _, f := range s.files {
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files
}

// Lookup returns the cached file for a canonical path.
func (s *Session) Lookup(path string) (*SchemaFile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[path]
	return f, ok
}

// load returns the parsed file at path, parsing it at most once per
// session. importer is the file whose parse needs it, empty for the root.
func (s *Session) load(at where, importer, path string) (*SchemaFile, error) {
	logger := s.logger.WithField("file", path)

	s.mu.Lock()
	if f, ok := s.files[path]; ok {
		s.mu.Unlock()
		logger.Debug("Import cache hit")
		return f, nil
	}
	if importer != "" {
		if cycle := s.waitPath(path, importer); cycle != nil {
			s.mu.Unlock()
			return nil, errCyclicImport(at, append(cycle, path))
		}
		s.addWait(importer, path)
	}
	s.mu.Unlock()

	if importer != "" {
		defer func() {
			s.mu.Lock()
			s.removeWait(importer, path)
			s.mu.Unlock()
		}()
	}

	v, err, shared := s.flight.Do(path, func() (interface{}, error) {
		s.mu.Lock()
		f, ok := s.files[path]
		s.mu.Unlock()
		if ok {
			return f, nil
		}

		logger.Debug("Parsing file...")
		f, err := s.parseFile(path)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.files[path] = f
		s.mu.Unlock()
		logger.WithFields(logrus.Fields{
			"imports":  len(f.Imports),
			"messages": len(f.Messages),
			"enums":    len(f.Enums),
			"services": len(f.Services),
		}).Debug("Parsed file")
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Debug("Joined in-flight parse")
	}
	return v.(*SchemaFile), nil
}

func (s *Session) parseFile(path string) (*SchemaFile, error) {
	fp, err := s.fs.Open(path)
	if err != nil {
		return nil, errIo(path, err)
	}
	defer fp.Close()

	sc, err := scanner.New(fp)
	if errors.Is(err, scanner.ErrEmptyInput) {
		return nil, errEmptyInput(path)
	}
	if err != nil {
		return nil, errIo(path, err)
	}

	base := filepath.Base(path)
	pf := &SchemaFile{
		Name: strings.TrimSuffix(base, filepath.Ext(base)),
		Path: path,
	}
	p := &parser{
		sess:  s,
		path:  path,
		stmts: scanner.NewStatements(sc),
		file:  pf,
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return pf, nil
}

// waitPath returns the chain from -> ... -> to along wait edges, or nil if
// to is not reachable. Callers hold s.mu.
func (s *Session) waitPath(from, to string) []string {
	if from == to {
		return []string{from}
	}
	seen := map[string]bool{from: true}
	var walk func(node string) []string
	walk = func(node string) []string {
		next := make([]string, 0, len(s.waits[node]))
		for n := range s.waits[node] {
			next = append(next, n)
		}
		sort.Strings(next)
		for _, n := range next {
			if n == to {
				return []string{node, n}
			}
			if seen[n] {
				continue
			}
			seen[n] = true
			if rest := walk(n); rest != nil {
				return append([]string{node}, rest...)
			}
		}
		return nil
	}
	return walk(from)
}

func (s *Session) addWait(from, to string) {
	m, ok := s.waits[from]
	if !ok {
		m = make(map[string]int)
		s.waits[from] = m
	}
	m[to]++
}

func (s *Session) removeWait(from, to string) {
	m := s.waits[from]
	if m[to]--; m[to] <= 0 {
		delete(m, to)
	}
	if len(m) == 0 {
		delete(s.waits, from)
	}
}
