package core

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
)

// LookupFunc resolves an executable name to a path.
type LookupFunc func(name string) (string, bool)

// FindExecutable returns the path to an executable if found.
func FindExecutable(name string) (string, bool) {
	path, err := exec.LookPath(name)
	if err == nil {
		return path, true
	}

	if runtime.GOOS == "windows" {
		return "", false
	}

	for _, dir := range commonExecutablePaths() {
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate, true
		}
	}

	return "", false
}

type executable struct {
	path  string
	found bool
}

// ExecutableCache memoizes executable lookups per program name. Each name is
// looked up at most once; later queries reuse the stored result.
type ExecutableCache struct {
	lookup  LookupFunc
	entries map[string]executable
	mu      sync.Mutex
}

// NewExecutableCache creates a cache backed by lookup, or FindExecutable
// when lookup is nil.
func NewExecutableCache(lookup LookupFunc) *ExecutableCache {
	if lookup == nil {
		lookup = FindExecutable
	}

	return &ExecutableCache{
		lookup:  lookup,
		entries: make(map[string]executable),
	}
}

// Lookup returns the path of name and whether it exists.
func (c *ExecutableCache) Lookup(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[name]; ok {
		return entry.path, entry.found
	}

	path, found := c.lookup(name)
	c.entries[name] = executable{path: path, found: found}
	return path, found
}

// Cached reports whether name has already been looked up.
func (c *ExecutableCache) Cached(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[name]
	return ok
}

// Seed stores a lookup result without calling the lookup function.
func (c *ExecutableCache) Seed(name, path string, found bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[name] = executable{path: path, found: found}
}

// Reset forgets every stored result.
func (c *ExecutableCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]executable)
}

func commonExecutablePaths() []string {
	if runtime.GOOS == "darwin" {
		return []string{
			"/opt/homebrew/bin",
			"/usr/local/bin",
			"/usr/bin",
			"/bin",
			"/opt/local/bin",
			"/usr/sbin",
			"/sbin",
		}
	}

	return []string{
		"/usr/local/bin",
		"/usr/bin",
		"/bin",
		"/usr/sbin",
		"/sbin",
	}
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	return info.Mode()&0111 != 0
}
