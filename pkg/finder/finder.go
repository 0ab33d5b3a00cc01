package finder

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tempestls/pkg/settings"
)

// TemplateFinder is responsible for finding template files in a directory
type TemplateFinder interface {
	// FindTemplates lists the files under dir that the settings treat as views
	FindTemplates(ctx context.Context, dir string, cfg settings.Settings) ([]string, error)
}

// DefaultFinder walks an afero filesystem
type DefaultFinder struct {
	fs afero.Fs
}

var _ TemplateFinder = (*DefaultFinder)(nil)

// NewDefaultFinder creates a new DefaultFinder
func NewDefaultFinder(fs afero.Fs) *DefaultFinder {
	return &DefaultFinder{fs: fs}
}

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
}

// FindTemplates matches every file path relative to dir against the template
// patterns. Results are sorted and joined back onto dir.
func (f *DefaultFinder) FindTemplates(ctx context.Context, dir string, cfg settings.Settings) ([]string, error) {
	var found []string

	err := afero.Walk(f.fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if info.IsDir() {
			if path != dir && skipDirs[info.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		if cfg.IsTemplate(rel) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("walking %s: %w", dir, err)
	}

	sort.Strings(found)

	zerolog.Ctx(ctx).Debug().Str("dir", dir).Int("count", len(found)).Msg("found templates")

	return found, nil
}
