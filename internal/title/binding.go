package title

import (
	"fmt"
	"log/slog"

	apperrors "github.com/louisbranch/pagetitle/internal/platform/errors"
)

// Sink displays the computed page title.
type Sink interface {
	SetTitle(title string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(title string)

// SetTitle calls f(title).
func (f SinkFunc) SetTitle(title string) {
	f(title)
}

// Options configures a Binding.
type Options struct {
	// Title is the view's contribution. Empty means no contribution.
	Title string
	// Level pins the binding to a level; nil takes the registry's next level.
	Level *int
	// Override shows Title alone instead of the cascade.
	Override bool
	// Separator, when set, replaces the registry separator. Only the root
	// binding is expected to set it; other writers win by last write.
	Separator *string
	// Sink receives the cascade when the binding is the root (level 0).
	Sink Sink
}

// LevelOf returns a pointer suitable for Options.Level.
func LevelOf(level int) *int {
	return &level
}

// SeparatorOf returns a pointer suitable for Options.Separator.
func SeparatorOf(separator string) *string {
	return &separator
}

func (o Options) validate() error {
	if o.Level != nil {
		if err := ValidateLevel(*o.Level); err != nil {
			return err
		}
	}
	if o.Separator != nil {
		if err := ValidateSeparator(*o.Separator); err != nil {
			return err
		}
	}
	return nil
}

// Binding is one mounted view's registration in a Registry.
//
// A binding owns at most one key in the registry: its level in normal mode or
// OverrideLevel in override mode. Release removes that key and, for the root,
// stops forwarding the cascade.
type Binding struct {
	registry    *Registry
	level       int
	key         int
	registered  bool
	released    bool
	sink        Sink
	unsubscribe func()
}

// Bind validates opts, claims a level and writes the binding's part.
//
// An explicit level moves the auto-assignment counter past it, so later views
// without a level never land on it. Nothing is written and no level is
// consumed when validation fails.
func Bind(registry *Registry, opts Options) (*Binding, error) {
	if registry == nil {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "title registry is required")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	level := 0
	if opts.Level != nil {
		level = *opts.Level
		registry.claimLevel(level)
	} else {
		level = registry.NextLevel()
	}

	b := &Binding{
		registry: registry,
		level:    level,
		key:      level,
		sink:     opts.Sink,
	}
	var applyErr error
	registry.Batch(func() {
		applyErr = b.apply(opts)
	})
	if applyErr != nil {
		b.Release()
		return nil, applyErr
	}
	if b.IsRoot() {
		b.unsubscribe = registry.Subscribe(b.forward)
	}
	return b, nil
}

// With binds opts for the duration of fn and always releases the binding.
func With(registry *Registry, opts Options, fn func(*Binding) error) error {
	b, err := Bind(registry, opts)
	if err != nil {
		return err
	}
	defer b.Release()
	if fn == nil {
		return nil
	}
	return fn(b)
}

// Update applies new options to a live binding. The level claimed at mount
// cannot change.
func (b *Binding) Update(opts Options) error {
	if b == nil || b.released {
		return apperrors.New(apperrors.CodeBindingReleased, "title binding is released")
	}
	if err := opts.validate(); err != nil {
		return err
	}
	if opts.Level != nil && *opts.Level != b.level {
		return apperrors.WithMetadata(
			apperrors.CodeInvalidArgument,
			fmt.Sprintf("title binding level is fixed at %d", b.level),
			map[string]string{"level": fmt.Sprint(*opts.Level)},
		)
	}

	sinkChanged := opts.Sink != nil
	if sinkChanged {
		b.sink = opts.Sink
	}
	var applyErr error
	b.registry.Batch(func() {
		applyErr = b.apply(opts)
	})
	if applyErr != nil {
		return applyErr
	}
	if sinkChanged && b.IsRoot() {
		b.forward(b.registry.Snapshot())
	}
	return nil
}

// Release removes the binding's part and stops forwarding. It is safe to call
// more than once.
func (b *Binding) Release() {
	if b == nil || b.released {
		return
	}
	b.released = true
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
	if b.registered {
		b.registry.RemovePart(b.key)
		b.registered = false
	}
}

// Level returns the level claimed at mount.
func (b *Binding) Level() int {
	return b.level
}

// Key returns the registry key the binding writes to in its current mode.
func (b *Binding) Key() int {
	return b.key
}

// Registered reports whether the binding currently contributes a part.
func (b *Binding) Registered() bool {
	return b.registered
}

// Released reports whether Release was called.
func (b *Binding) Released() bool {
	return b.released
}

// IsRoot reports whether the binding forwards the cascade to its sink.
func (b *Binding) IsRoot() bool {
	return b.level == 0
}

// apply must run inside a registry batch so a mode switch is observed as one
// change. opts is validated by the caller; registry errors still surface.
func (b *Binding) apply(opts Options) error {
	key := b.level
	if opts.Override {
		key = OverrideLevel
	}
	if b.registered && key != b.key {
		b.registry.RemovePart(b.key)
		b.registered = false
	}
	b.key = key

	if opts.Separator != nil {
		if !b.IsRoot() {
			b.registry.Logger().Debug("non-root title binding set the separator",
				slog.Int("level", b.level),
				slog.String("separator", *opts.Separator),
			)
		}
		if err := b.registry.SetSeparator(*opts.Separator); err != nil {
			return err
		}
	}

	if opts.Title == "" {
		if b.registered {
			b.registry.RemovePart(key)
		}
		b.registered = false
		return nil
	}
	if err := b.registry.SetPart(key, opts.Title); err != nil {
		return err
	}
	b.registered = true
	return nil
}

func (b *Binding) forward(snapshot Snapshot) {
	if b.sink == nil {
		return
	}
	b.sink.SetTitle(snapshot.Title())
}
