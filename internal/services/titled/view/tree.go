// Package view mirrors a browser's mounted view chain over a title registry.
package view

import (
	"fmt"

	"github.com/louisbranch/pagetitle/internal/services/titled/sitemap"
	"github.com/louisbranch/pagetitle/internal/title"
)

// Document is the rendering sink for the root view: it holds the title the
// page should display.
type Document struct {
	title  string
	writes int
}

// SetTitle records the computed cascade.
func (d *Document) SetTitle(t string) {
	d.title = t
	d.writes++
}

// Title returns the last cascade written by the root view.
func (d *Document) Title() string {
	return d.title
}

// Writes returns how many times the root view forwarded a cascade.
func (d *Document) Writes() int {
	return d.writes
}

type node struct {
	view    *sitemap.View
	binding *title.Binding
}

// Tree is the chain of mounted views for one browser session.
type Tree struct {
	registry *title.Registry
	document *Document
	mounted  []node
}

// NewTree returns an empty tree over registry.
func NewTree(registry *title.Registry) *Tree {
	if registry == nil {
		registry = title.NewRegistry()
	}
	return &Tree{
		registry: registry,
		document: &Document{},
	}
}

// Registry returns the tree's title registry.
func (t *Tree) Registry() *title.Registry {
	return t.registry
}

// Document returns the root view's sink.
func (t *Tree) Document() *Document {
	return t.document
}

// Title returns the page title currently displayed.
func (t *Tree) Title() string {
	return t.document.Title()
}

// Mounted returns the mounted views, outermost first.
func (t *Tree) Mounted() []*sitemap.View {
	views := make([]*sitemap.View, len(t.mounted))
	for idx, n := range t.mounted {
		views[idx] = n.view
	}
	return views
}

// Level returns the level claimed by the mounted view with id.
func (t *Tree) Level(id string) (int, bool) {
	for _, n := range t.mounted {
		if n.view.ID == id {
			return n.binding.Level(), true
		}
	}
	return 0, false
}

// Navigate moves the tree to chain the way a client-side route change does.
//
// Views shared with the current chain stay mounted and keep their levels.
// The rest unmount deepest first, the level counter restarts after the highest
// surviving level, and the new views mount outermost first.
func (t *Tree) Navigate(chain []*sitemap.View) error {
	keep := 0
	for keep < len(t.mounted) && keep < len(chain) && t.mounted[keep].view.ID == chain[keep].ID {
		keep++
	}
	t.unmountFrom(keep)

	for idx := 0; idx < keep; idx++ {
		n := &t.mounted[idx]
		n.view = chain[idx]
		if err := n.binding.Update(chain[idx].TitleOptions()); err != nil {
			return fmt.Errorf("update view %q: %w", chain[idx].ID, err)
		}
	}

	t.registry.ResetLevelCounter()
	return t.mount(chain[keep:])
}

// Reload remounts chain from scratch, as a full document load does.
func (t *Tree) Reload(chain []*sitemap.View) error {
	t.Unmount()
	t.registry.Clear()
	t.document.title = ""
	return t.mount(chain)
}

// Unmount releases every mounted view, deepest first.
func (t *Tree) Unmount() {
	t.unmountFrom(0)
}

func (t *Tree) unmountFrom(keep int) {
	for idx := len(t.mounted) - 1; idx >= keep; idx-- {
		t.mounted[idx].binding.Release()
	}
	t.mounted = t.mounted[:keep]
}

func (t *Tree) mount(views []*sitemap.View) error {
	for _, v := range views {
		opts := v.TitleOptions()
		if len(t.mounted) == 0 {
			opts.Sink = t.document
		}
		binding, err := title.Bind(t.registry, opts)
		if err != nil {
			return fmt.Errorf("mount view %q: %w", v.ID, err)
		}
		t.mounted = append(t.mounted, node{view: v, binding: binding})
	}
	return nil
}
