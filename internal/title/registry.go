package title

import (
	"cmp"
	"log/slog"
	"slices"
)

// Snapshot is the registry state observed by subscribers after a committed
// mutation.
type Snapshot struct {
	// Parts are ordered by ascending level, so an override part comes first.
	Parts     []Part
	Separator string
}

// Title returns the cascade for the snapshot.
func (s Snapshot) Title() string {
	return Build(s.Parts, s.Separator)
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for registry and binding diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Registry holds the active title parts for one execution context.
type Registry struct {
	parts     map[int]string
	separator string
	counter   int

	subscribers  map[int]func(Snapshot)
	nextSubscrID int

	batchDepth int
	dirty      bool

	logger *slog.Logger
}

// NewRegistry returns an empty registry using DefaultSeparator.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		parts:       make(map[int]string),
		separator:   DefaultSeparator,
		subscribers: make(map[int]func(Snapshot)),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Logger returns the diagnostics logger.
func (r *Registry) Logger() *slog.Logger {
	return r.logger
}

// NextLevel returns the next auto-assigned level and advances the counter.
func (r *Registry) NextLevel() int {
	level := r.counter
	r.counter++
	return level
}

// claimLevel keeps the counter ahead of an explicitly chosen level.
func (r *Registry) claimLevel(level int) {
	if level >= r.counter {
		r.counter = level + 1
	}
}

// ResetLevelCounter restarts auto-assignment after the highest active level.
//
// Views that persist across a navigation keep their level and part; views
// mounted afterwards receive levels that cannot collide with them. With no
// active parts the counter returns to 0.
func (r *Registry) ResetLevelCounter() {
	next := 0
	for level := range r.parts {
		if level == OverrideLevel {
			continue
		}
		if level+1 > next {
			next = level + 1
		}
	}
	r.counter = next
}

// SetSeparator replaces the separator used by the cascade.
func (r *Registry) SetSeparator(separator string) error {
	if err := ValidateSeparator(separator); err != nil {
		return err
	}
	if r.separator == separator {
		return nil
	}
	r.separator = separator
	r.changed()
	return nil
}

// Separator returns the active separator.
func (r *Registry) Separator() string {
	return r.separator
}

// SetPart stores title at level, replacing any previous title there. An empty
// title removes the part instead.
func (r *Registry) SetPart(level int, title string) error {
	if err := ValidateLevel(level); err != nil {
		return err
	}
	if title == "" {
		r.RemovePart(level)
		return nil
	}
	if current, ok := r.parts[level]; ok && current == title {
		return nil
	}
	r.parts[level] = title
	r.changed()
	return nil
}

// RemovePart drops the part at level, if any.
func (r *Registry) RemovePart(level int) {
	if _, ok := r.parts[level]; !ok {
		return
	}
	delete(r.parts, level)
	r.changed()
}

// Part returns the title stored at level.
func (r *Registry) Part(level int) (string, bool) {
	title, ok := r.parts[level]
	return title, ok
}

// Parts returns the active parts ordered by ascending level.
func (r *Registry) Parts() []Part {
	parts := make([]Part, 0, len(r.parts))
	for level, title := range r.parts {
		parts = append(parts, Part{Level: level, Title: title})
	}
	slices.SortFunc(parts, func(a, b Part) int {
		return cmp.Compare(a.Level, b.Level)
	})
	return parts
}

// Snapshot returns the current parts and separator.
func (r *Registry) Snapshot() Snapshot {
	return Snapshot{Parts: r.Parts(), Separator: r.separator}
}

// Title returns the current cascade.
func (r *Registry) Title() string {
	return Build(r.Parts(), r.separator)
}

// Clear empties the parts, restores DefaultSeparator and resets the counter.
// Subscriptions survive and observe the cleared state.
func (r *Registry) Clear() {
	r.parts = make(map[int]string)
	r.separator = DefaultSeparator
	r.counter = 0
	r.changed()
}

// Subscribe calls fn with the current snapshot and again after every committed
// mutation. Each call receives its own copy of the parts. The returned
// function removes the subscription.
func (r *Registry) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	id := r.nextSubscrID
	r.nextSubscrID++
	r.subscribers[id] = fn
	fn(r.Snapshot())
	return func() {
		delete(r.subscribers, id)
	}
}

// Batch runs fn and delays notifications until the outermost batch returns, so
// subscribers see one snapshot for several writes.
func (r *Registry) Batch(fn func()) {
	r.batchDepth++
	defer func() {
		r.batchDepth--
		if r.batchDepth == 0 && r.dirty {
			r.notify()
		}
	}()
	fn()
}

func (r *Registry) changed() {
	if r.batchDepth > 0 {
		r.dirty = true
		return
	}
	r.notify()
}

func (r *Registry) notify() {
	r.dirty = false
	if len(r.subscribers) == 0 {
		return
	}
	ids := make([]int, 0, len(r.subscribers))
	for id := range r.subscribers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	snapshot := r.Snapshot()
	for _, id := range ids {
		fn, ok := r.subscribers[id]
		if !ok {
			continue
		}
		fn(Snapshot{Parts: slices.Clone(snapshot.Parts), Separator: snapshot.Separator})
	}
}
