package settings

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
)

// Observer is told about every change that went through a Store.
type Observer func(ctx context.Context, prev, next Settings) error

// ErrShadowed is returned by Update when the env file pins the field being
// changed, so the change could not survive a restart.
var ErrShadowed = errors.New("setting is pinned by the env file")

// Store owns the persisted Settings. It is safe for concurrent use.
type Store struct {
	fs  afero.Fs
	dir string

	mu      sync.RWMutex
	current Settings
	// persisted is what the settings file holds, before env overrides
	persisted Settings
	pinned    pinned
	observers []subscription
	nextID    int
}

// pinned records which fields the env file overrides.
type pinned struct {
	enabled   bool
	templates bool
}

type subscription struct {
	id       int
	observer Observer
}

// DirName is the directory under the user config dir holding the settings.
const DirName = "tempestls"

// DefaultDir returns the per-user settings directory.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Errorf("locating user config dir: %w", err)
	}
	return filepath.Join(base, DirName), nil
}

func NewStore(fs afero.Fs, dir string) *Store {
	return &Store{
		fs:        fs,
		dir:       dir,
		current:   Default(),
		persisted: Default(),
	}
}

// NewMemoryStore returns a Store that never touches the disk.
func NewMemoryStore() *Store {
	return NewStore(afero.NewMemMapFs(), "/tempest")
}

func (me *Store) Path() string {
	return filepath.Join(me.dir, FileName)
}

func (me *Store) EnvPath() string {
	return filepath.Join(me.dir, EnvFileName)
}

// Current returns a copy of the settings in effect.
func (me *Store) Current() Settings {
	me.mu.RLock()
	defer me.mu.RUnlock()
	return me.current.Clone()
}

// Load replaces the in-memory settings with the persisted ones. Missing files
// mean defaults. Observers are not notified.
func (me *Store) Load(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	s := Default()

	data, err := afero.ReadFile(me.fs, me.Path())
	switch {
	case err == nil:
		s, err = Decode(data, me.Path(), s)
		if err != nil {
			return errors.Errorf("loading %s: %w", me.Path(), err)
		}
	case errors.Is(err, os.ErrNotExist):
		logger.Debug().Str("path", me.Path()).Msg("no settings file, using defaults")
	default:
		return errors.Errorf("reading %s: %w", me.Path(), err)
	}

	persisted := s.Clone()
	var pin pinned

	f, err := me.fs.Open(me.EnvPath())
	switch {
	case err == nil:
		defer f.Close()
		env, err := ParseEnv(f)
		if err != nil {
			return errors.Errorf("loading %s: %w", me.EnvPath(), err)
		}
		s, err = ApplyEnv(s, env)
		if err != nil {
			return errors.Errorf("loading %s: %w", me.EnvPath(), err)
		}
		_, pin.enabled = env[EnvEnabled]
		_, pin.templates = env[EnvTemplates]
	case !errors.Is(err, os.ErrNotExist):
		return errors.Errorf("opening %s: %w", me.EnvPath(), err)
	}

	if err := s.Validate(); err != nil {
		return errors.Errorf("validating settings: %w", err)
	}

	me.mu.Lock()
	me.current = s
	me.persisted = persisted
	me.pinned = pin
	me.mu.Unlock()

	logger.Debug().Bool("enabled", s.Enabled).Strs("templates", s.Templates).Msg("settings loaded")

	return nil
}

// Update applies fn to a copy of the current settings, validates and persists
// the result, then notifies observers in subscription order. Nothing changes if
// fn's result is invalid or touches a field pinned by the env file. Env values
// are never written to the settings file.
func (me *Store) Update(ctx context.Context, fn func(*Settings)) (Settings, error) {
	me.mu.Lock()
	prev := me.current.Clone()
	next := prev.Clone()
	fn(&next)

	if me.pinned.enabled && next.Enabled != prev.Enabled {
		me.mu.Unlock()
		return prev, errors.Errorf("%w: %s is set in %s", ErrShadowed, EnvEnabled, me.EnvPath())
	}
	if me.pinned.templates && !slices.Equal(next.Templates, prev.Templates) {
		me.mu.Unlock()
		return prev, errors.Errorf("%w: %s is set in %s", ErrShadowed, EnvTemplates, me.EnvPath())
	}

	if err := next.Validate(); err != nil {
		me.mu.Unlock()
		return prev, errors.Errorf("validating settings: %w", err)
	}

	persisted := me.persisted.Clone()
	if !me.pinned.enabled {
		persisted.Enabled = next.Enabled
	}
	if !me.pinned.templates {
		persisted.Templates = slices.Clone(next.Templates)
	}

	if err := me.save(persisted); err != nil {
		me.mu.Unlock()
		return prev, err
	}

	me.current = next
	me.persisted = persisted
	observers := make([]Observer, 0, len(me.observers))
	for _, sub := range me.observers {
		observers = append(observers, sub.observer)
	}
	me.mu.Unlock()

	zerolog.Ctx(ctx).Debug().Bool("enabled", next.Enabled).Msg("settings updated")

	var errs error
	for _, o := range observers {
		errs = multierr.Append(errs, o(ctx, prev.Clone(), next.Clone()))
	}
	if errs != nil {
		return next.Clone(), errors.Errorf("notifying settings observers: %w", errs)
	}

	return next.Clone(), nil
}

func (me *Store) SetEnabled(ctx context.Context, enabled bool) (Settings, error) {
	return me.Update(ctx, func(s *Settings) {
		s.Enabled = enabled
	})
}

// Toggle flips Enabled.
func (me *Store) Toggle(ctx context.Context) (Settings, error) {
	return me.Update(ctx, func(s *Settings) {
		s.Enabled = !s.Enabled
	})
}

// Subscribe registers o and returns a function removing it again.
func (me *Store) Subscribe(o Observer) func() {
	me.mu.Lock()
	defer me.mu.Unlock()

	id := me.nextID
	me.nextID++
	me.observers = append(me.observers, subscription{id: id, observer: o})

	return func() {
		me.mu.Lock()
		defer me.mu.Unlock()
		me.observers = slices.DeleteFunc(me.observers, func(sub subscription) bool {
			return sub.id == id
		})
	}
}

func (me *Store) save(s Settings) error {
	if err := me.fs.MkdirAll(me.dir, 0o755); err != nil {
		return errors.Errorf("creating settings dir: %w", err)
	}
	if err := afero.WriteFile(me.fs, me.Path(), Encode(s), 0o644); err != nil {
		return errors.Errorf("writing %s: %w", me.Path(), err)
	}
	return nil
}
