// Package forms maps the configured ticket form names to the field rules
// applied on submission.
package forms

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Input is what a submitter sent, before any form rules.
type Input struct {
	QueueID        uint
	Title          string
	Body           string
	SubmitterEmail string
	Priority       int
	DueDate        *time.Time
	AssignedTo     *uint
	KBItemID       *uint
	CCEmails       []string
}

// Form validates and normalises an Input in place. staff is true for
// the staff submission form.
type Form interface {
	Name() string
	Clean(in *Input, staff bool) error
}

type Constructor func(defaultPriority int) Form

// Registry is the explicit replacement for loading form classes by path.
type Registry struct {
	constructors    map[string]Constructor
	defaultPriority int
}

// NewRegistry returns a registry holding the built-in forms.
func NewRegistry(defaultPriority int) *Registry {
	r := &Registry{
		constructors:    map[string]Constructor{},
		defaultPriority: defaultPriority,
	}
	r.Register("default", newDefaultForm)
	r.Register("minimal", newMinimalForm)
	r.Register("kb", newKBForm)
	return r
}

func (r *Registry) Register(name string, c Constructor) {
	r.constructors[strings.ToLower(name)] = c
}

func (r *Registry) Get(name string) (Form, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = "default"
	}
	c, ok := r.constructors[key]
	if !ok {
		return nil, fmt.Errorf("unknown ticket form %q (known: %s)", name, strings.Join(r.Names(), ", "))
	}
	return c(r.defaultPriority), nil
}

// Validate is called at startup with every configured form name.
func (r *Registry) Validate(names ...string) error {
	for _, n := range names {
		if _, err := r.Get(n); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.constructors))
	for n := range r.constructors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
