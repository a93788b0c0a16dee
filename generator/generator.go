// Package generator renders a resolved schema as ORM model source code.
package generator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ridoystarlord/modelforge/relations"
	"github.com/ridoystarlord/modelforge/schema"
)

// Emitter turns a schema and its resolved relations into source text. Emitters do no
// I/O and must produce identical output for identical input.
type Emitter interface {
	Name() string
	Emit(s *schema.Schema, r *relations.Resolution) (string, error)
}

// Options configures emitters that need more than the schema.
type Options struct {
	// Package is the Go package name used by the gostruct emitter.
	Package string
}

const DefaultFormat = "sqlalchemy"

var emitters = map[string]func(Options) Emitter{
	"sqlalchemy": func(Options) Emitter { return SQLAlchemy{} },
	"gostruct":   newGoStruct,
}

func newGoStruct(o Options) Emitter {
	pkg := o.Package
	if pkg == "" {
		pkg = "models"
	}
	return GoStruct{Package: pkg}
}

// For returns the emitter registered under format.
func For(format string, opts Options) (Emitter, error) {
	if format == "" {
		format = DefaultFormat
	}
	build, ok := emitters[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(Formats(), ", "))
	}
	return build(opts), nil
}

// Formats lists the registered output formats.
func Formats() []string {
	names := make([]string, 0, len(emitters))
	for name := range emitters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Generate resolves relations for s and renders it in the given format.
func Generate(s *schema.Schema, format string, opts Options) (string, *relations.Resolution, error) {
	emitter, err := For(format, opts)
	if err != nil {
		return "", nil, err
	}
	res := relations.Resolve(s)
	out, err := emitter.Emit(s, res)
	if err != nil {
		return "", nil, fmt.Errorf("emit %s: %w", emitter.Name(), err)
	}
	return out, res, nil
}
