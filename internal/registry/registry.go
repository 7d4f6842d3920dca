// Package registry resolves pattern styles by name.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ogdakke/pathspec/internal/gitwildmatch"
	"github.com/ogdakke/pathspec/internal/globmatch"
	"github.com/ogdakke/pathspec/internal/logger"
	"github.com/ogdakke/pathspec/internal/pattern"
)

var (
	// ErrInvalidRegistration indicates an empty name or a nil factory.
	ErrInvalidRegistration = errors.New("invalid pattern registration")
	// ErrUnknownPattern matches every UnknownPatternError.
	ErrUnknownPattern = errors.New("unknown pattern style")
	// ErrAlreadyRegistered matches every AlreadyRegisteredError.
	ErrAlreadyRegistered = errors.New("pattern style already registered")
)

// AlreadyRegisteredError is returned when a name is registered twice
// without override.
type AlreadyRegisteredError struct {
	Name    string
	Factory pattern.Factory
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("%q is already registered for pattern factory %p", e.Name, e.Factory)
}

func (e *AlreadyRegisteredError) Is(target error) bool {
	return target == ErrAlreadyRegistered
}

type UnknownPatternError struct {
	Name string
}

func (e *UnknownPatternError) Error() string {
	return fmt.Sprintf("no pattern factory registered as %q", e.Name)
}

func (e *UnknownPatternError) Is(target error) bool {
	return target == ErrUnknownPattern
}

// Registry maps style names to pattern factories. It is safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]pattern.Factory
}

func New() *Registry {
	return &Registry{
		factories: make(map[string]pattern.Factory),
	}
}

// Builtin returns a new registry holding the styles shipped with this module.
func Builtin() *Registry {
	r := New()
	r.factories[gitwildmatch.Name] = gitwildmatch.New
	r.factories[gitwildmatch.AliasName] = gitwildmatch.New
	r.factories[globmatch.GlobName] = globmatch.NewGlob
	r.factories[globmatch.DoublestarName] = globmatch.NewDoublestar
	return r
}

// Register binds factory to name. An existing binding is replaced only when
// override is set.
func (r *Registry) Register(name string, factory pattern.Factory, override bool) error {
	if name == "" || factory == nil {
		return fmt.Errorf("%w: name %q", ErrInvalidRegistration, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.factories[name]; ok && !override {
		return &AlreadyRegisteredError{Name: name, Factory: existing}
	}
	r.factories[name] = factory
	logger.Debug("Registered pattern factory", "name", name, "override", override)
	return nil
}

func (r *Registry) Lookup(name string) (pattern.Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, &UnknownPatternError{Name: name}
	}
	return factory, nil
}

// Names lists registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
