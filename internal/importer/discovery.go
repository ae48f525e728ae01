package importer

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// FileDiscovery finds Acorn source files under a library root using glob
// patterns and ignore rules.
type FileDiscovery struct {
	rootDir         string
	includePatterns []compiledPattern
	ignorePatterns  []compiledPattern
}

// NewFileDiscovery creates a new file discovery instance.
func NewFileDiscovery(rootDir string, includePatterns, ignorePatterns []string) (*FileDiscovery, error) {
	fd := &FileDiscovery{
		rootDir: rootDir,
	}

	var err error
	if fd.includePatterns, err = compilePatterns(includePatterns); err != nil {
		return nil, err
	}
	if fd.ignorePatterns, err = compilePatterns(ignorePatterns); err != nil {
		return nil, err
	}
	return fd, nil
}

// compilePatterns compiles glob patterns with / as the separator. A pattern
// starting with "**/" also gets its bare suffix compiled, so "**/*.ac"
// matches top-level files too.
func compilePatterns(patterns []string) ([]compiledPattern, error) {
	var compiled []compiledPattern
	for _, pattern := range patterns {
		expanded := []string{pattern}
		if strings.HasPrefix(pattern, "**/") {
			expanded = append(expanded, strings.TrimPrefix(pattern, "**/"))
		}
		for _, p := range expanded {
			g, err := glob.Compile(p, '/')
			if err != nil {
				return nil, err
			}
			compiled = append(compiled, compiledPattern{pattern: pattern, glob: g})
		}
	}
	return compiled, nil
}

// DiscoverFiles walks the library tree and returns matching files sorted by
// path, so repeated runs visit them in the same order.
func (fd *FileDiscovery) DiscoverFiles() ([]string, error) {
	files := []string{}

	err := filepath.Walk(fd.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(fd.rootDir, path)
		if err != nil {
			return err
		}

		// Normalize path separators for glob matching
		relPath = filepath.ToSlash(relPath)

		if fd.matchesAny(relPath, fd.ignorePatterns) {
			return nil
		}
		if fd.matchesAny(relPath, fd.includePatterns) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func (fd *FileDiscovery) matchesAny(relPath string, patterns []compiledPattern) bool {
	for _, p := range patterns {
		if p.glob.Match(relPath) {
			return true
		}
	}
	return false
}
