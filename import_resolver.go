package idlparser

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// ImportResolver turns the path written in an import statement into the
// canonical path of the imported file.
//
// The parser does not care where files live. The default RelativeResolver
// resolves imports against the importing file's directory; clients with
// search paths or virtual layouts provide their own implementation through
// WithResolver. Files are then read from the session's afero.Fs.
type ImportResolver interface {
	Resolve(importer, target string) (string, error)
}

// RelativeResolver resolves imports relative to the importing file's
// directory. Absolute import paths are only cleaned.
type RelativeResolver struct{}

// Resolve implements ImportResolver.
func (RelativeResolver) Resolve(importer, target string) (string, error) {
	if filepath.IsAbs(target) {
		return filepath.Clean(target), nil
	}
	return filepath.Join(filepath.Dir(importer), target), nil
}

// SearchPathResolver looks for imports in the importing file's directory
// first and then in each search path, in order. The first candidate that
// exists on Fs wins. If none exists the importer-relative path is returned
// so that reading it reports the missing file.
type SearchPathResolver struct {
	Fs    afero.Fs
	Paths []string
}

// Resolve implements ImportResolver.
func (r SearchPathResolver) Resolve(importer, target string) (string, error) {
	local, _ := RelativeResolver{}.Resolve(importer, target)
	if filepath.IsAbs(target) {
		return local, nil
	}
	candidates := make([]string, 0, len(r.Paths)+1)
	candidates = append(candidates, local)
	for _, dir := range r.Paths {
		abs, err := canonicalPath(dir)
		if err != nil {
			return "", err
		}
		candidates = append(candidates, filepath.Join(abs, target))
	}
	for _, c := range candidates {
		ok, err := afero.Exists(r.Fs, c)
		if err != nil {
			return "", err
		}
		if ok {
			return c, nil
		}
	}
	return local, nil
}

// canonicalPath makes p absolute and clean so two spellings of one file
// compare equal.
func canonicalPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}
