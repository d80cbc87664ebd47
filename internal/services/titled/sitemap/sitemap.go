// Package sitemap loads the nested view tree served by titled.
package sitemap

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/louisbranch/pagetitle/internal/platform/errors"
	"github.com/louisbranch/pagetitle/internal/services/shared/route"
	"github.com/louisbranch/pagetitle/internal/title"
	"gopkg.in/yaml.v3"
)

// MaxDepth bounds how deeply views may nest.
const MaxDepth = 16

//go:embed default.yaml
var defaultYAML []byte

// siteValidate is the validator instance for site map files.
var siteValidate = validator.New()

// View is one mountable view and its title contribution.
type View struct {
	ID        string  `yaml:"id" validate:"required,max=64,excludesall=/ "`
	Path      string  `yaml:"path" validate:"excludesall=/ "`
	Title     string  `yaml:"title" validate:"max=256"`
	Level     *int    `yaml:"level,omitempty" validate:"omitnil,min=-1"`
	Override  bool    `yaml:"override,omitempty"`
	Separator *string `yaml:"separator,omitempty" validate:"omitnil,min=1"`
	Body      string  `yaml:"body,omitempty"`
	Children  []*View `yaml:"children,omitempty" validate:"dive,required"`

	href   string
	parent *View
}

// Href returns the absolute URL path of the view.
func (v *View) Href() string {
	return v.href
}

// Parent returns the enclosing view, or nil for the root and not-found views.
func (v *View) Parent() *View {
	return v.parent
}

// TitleOptions returns binding options for the view. The caller supplies the
// sink for the root view.
func (v *View) TitleOptions() title.Options {
	return title.Options{
		Title:     v.Title,
		Level:     v.Level,
		Override:  v.Override,
		Separator: v.Separator,
	}
}

// Map is a validated site map.
type Map struct {
	Root     *View `yaml:"root" validate:"required"`
	NotFound *View `yaml:"not_found" validate:"required"`

	byID map[string]*View
}

// Default returns the site map embedded in the binary.
func Default() (*Map, error) {
	return Load(bytes.NewReader(defaultYAML))
}

// LoadFile reads and validates a site map from disk.
func LoadFile(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open site map: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes and validates a YAML site map.
func Load(r io.Reader) (*Map, error) {
	var m Map
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&m); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidArgument, "decode site map", err)
	}
	if err := siteValidate.Struct(&m); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidArgument, fmt.Sprintf("validate site map: %v", err), err)
	}
	if err := m.index(); err != nil {
		return nil, err
	}
	return &m, nil
}

// View returns the view with id.
func (m *Map) View(id string) (*View, bool) {
	v, ok := m.byID[id]
	return v, ok
}

// Resolve returns the chain of views from the root to the view at path. When
// no view matches, it returns the root followed by the not-found view and
// false.
func (m *Map) Resolve(path string) ([]*View, bool) {
	chain := []*View{m.Root}
	current := m.Root
	for _, segment := range route.Segments(path) {
		next := current.child(segment)
		if next == nil {
			return []*View{m.Root, m.NotFound}, false
		}
		chain = append(chain, next)
		current = next
	}
	return chain, true
}

func (v *View) child(segment string) *View {
	for _, c := range v.Children {
		if c.Path == segment {
			return c
		}
	}
	return nil
}

func (m *Map) index() error {
	m.byID = make(map[string]*View)
	if m.Root.Path != "" {
		return invalid("root view %q must not declare a path", m.Root.ID)
	}
	if m.Root.Level != nil && *m.Root.Level != 0 {
		return invalid("root view %q must claim level 0, got %d", m.Root.ID, *m.Root.Level)
	}
	if len(m.NotFound.Children) > 0 {
		return invalid("not-found view %q must not have children", m.NotFound.ID)
	}
	if err := m.walk(m.Root, nil, "", 0); err != nil {
		return err
	}
	return m.register(m.NotFound)
}

func (m *Map) walk(v *View, parent *View, parentHref string, depth int) error {
	if depth > MaxDepth {
		return invalid("view %q nests deeper than %d", v.ID, MaxDepth)
	}
	if parent != nil && v.Path == "" {
		return invalid("view %q requires a path segment", v.ID)
	}
	if err := m.register(v); err != nil {
		return err
	}
	v.parent = parent
	v.href = strings.TrimSuffix(parentHref, "/") + "/" + v.Path
	if parent == nil {
		v.href = "/"
	}

	seen := make(map[string]string, len(v.Children))
	for _, c := range v.Children {
		if other, ok := seen[c.Path]; ok {
			return invalid("views %q and %q share path %q under %q", other, c.ID, c.Path, v.ID)
		}
		seen[c.Path] = c.ID
		if err := m.walk(c, v, v.href, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (m *Map) register(v *View) error {
	if _, ok := m.byID[v.ID]; ok {
		return invalid("duplicate view id %q", v.ID)
	}
	if v.Level != nil {
		if err := title.ValidateLevel(*v.Level); err != nil {
			return err
		}
	}
	if v.Separator != nil {
		if err := title.ValidateSeparator(*v.Separator); err != nil {
			return err
		}
	}
	m.byID[v.ID] = v
	return nil
}

func invalid(format string, args ...any) error {
	return apperrors.New(apperrors.CodeInvalidArgument, fmt.Sprintf(format, args...))
}
