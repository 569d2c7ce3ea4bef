package problem

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

const (
	KindOneMax   = "onemax"
	KindKnapsack = "mkp"
	KindMaxSat   = "maxsat"
	KindIsing    = "isg"
)

var ErrLoaderExists = errors.New("problem loader already registered")

// LoaderFunc builds a problem from a spec argument. File based kinds read
// the spec as a path; onemax parses it as an identifier.
type LoaderFunc func(spec string) (Problem, error)

var loaderRegistry = struct {
	mu sync.RWMutex
	m  map[string]LoaderFunc
}{
	m: map[string]LoaderFunc{
		KindOneMax:   loadOneMax,
		KindKnapsack: fileLoader(parseWith(ParseKnapsack)),
		KindMaxSat:   fileLoader(parseWith(ParseMaxSat)),
		KindIsing:    fileLoader(parseWith(ParseIsing)),
	},
}

// parseWith adapts a concrete parser to the Problem interface.
func parseWith[P Problem](parse func(string, io.Reader) (P, error)) func(string, io.Reader) (Problem, error) {
	return func(name string, r io.Reader) (Problem, error) {
		p, err := parse(name, r)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// RegisterLoader adds a problem kind.
func RegisterLoader(kind string, fn LoaderFunc) error {
	if kind == "" {
		return errors.New("problem kind is required")
	}
	if fn == nil {
		return errors.New("problem loader is required")
	}
	loaderRegistry.mu.Lock()
	defer loaderRegistry.mu.Unlock()
	if _, exists := loaderRegistry.m[kind]; exists {
		return fmt.Errorf("%w: %s", ErrLoaderExists, kind)
	}
	loaderRegistry.m[kind] = fn
	return nil
}

// Kinds lists registered problem kinds in sorted order.
func Kinds() []string {
	loaderRegistry.mu.RLock()
	defer loaderRegistry.mu.RUnlock()
	kinds := make([]string, 0, len(loaderRegistry.m))
	for kind := range loaderRegistry.m {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Load builds the problem of the given kind from spec.
func Load(kind, spec string) (Problem, error) {
	loaderRegistry.mu.RLock()
	fn, ok := loaderRegistry.m[kind]
	loaderRegistry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return fn(spec)
}

func fileLoader(parse func(name string, r io.Reader) (Problem, error)) LoaderFunc {
	return func(path string) (Problem, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open problem file: %w", err)
		}
		defer f.Close()
		return parse(filepath.Base(path), f)
	}
}

// ParseOneMaxID reads identifiers of the form onemax_<length>_<run>.
func ParseOneMaxID(id string) (length, run int, err error) {
	parts := strings.Split(filepath.Base(id), "_")
	if len(parts) != 3 || parts[0] != KindOneMax {
		return 0, 0, fmt.Errorf("%w: onemax identifier %q must look like onemax_<length>_<run>", ErrParse, id)
	}
	length, err = strconv.Atoi(parts[1])
	if err != nil || length <= 0 {
		return 0, 0, fmt.Errorf("%w: onemax length %q", ErrParse, parts[1])
	}
	run, err = strconv.Atoi(parts[2])
	if err != nil || run < 0 {
		return 0, 0, fmt.Errorf("%w: onemax run %q", ErrParse, parts[2])
	}
	return length, run, nil
}

func loadOneMax(spec string) (Problem, error) {
	length, run, err := ParseOneMaxID(spec)
	if err != nil {
		return nil, err
	}
	return NewOneMax(length, run)
}
