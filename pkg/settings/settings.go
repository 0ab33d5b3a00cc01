// Package settings holds the user facing switches of the Tempest tooling and
// persists them between runs.
//
// The core packages never reach for a global: callers read a Settings value once
// (Store.Current) and pass it into semtok.Classify, autoclose.OnTyped and
// completion.Directives. Changes are announced to observers registered with
// Store.Subscribe so hosts can invalidate whatever highlighting they cached.
package settings

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"gitlab.com/tozd/go/errors"
)

// DefaultTemplatePattern is the file naming convention of Tempest views.
const DefaultTemplatePattern = "**/*.view.php"

var ErrInvalid = errors.New("invalid settings")

type Settings struct {
	// Enabled switches every Tempest feature on or off.
	Enabled bool
	// Templates are doublestar patterns selecting files that hold Tempest views.
	Templates []string
}

func Default() Settings {
	return Settings{
		Enabled:   true,
		Templates: []string{DefaultTemplatePattern},
	}
}

// Clone returns a copy that shares no memory with me.
func (me Settings) Clone() Settings {
	me.Templates = slices.Clone(me.Templates)
	return me
}

// IsTemplate reports whether path names a Tempest view.
func (me Settings) IsTemplate(path string) bool {
	if path == "" {
		return false
	}

	path = strings.TrimLeft(filepath.ToSlash(path), "/")
	if vol := filepath.VolumeName(path); vol != "" {
		path = strings.TrimLeft(path[len(vol):], "/")
	}

	for _, pattern := range me.Templates {
		ok, err := doublestar.Match(pattern, path)
		if err == nil && ok {
			return true
		}
	}
	return false
}

func (me Settings) Validate() error {
	var result *multierror.Error

	for i, pattern := range me.Templates {
		if strings.TrimSpace(pattern) == "" {
			result = multierror.Append(result, errors.Errorf("%w: template pattern %d is empty", ErrInvalid, i))
			continue
		}
		if !doublestar.ValidatePattern(pattern) {
			result = multierror.Append(result, errors.Errorf("%w: template pattern %q is malformed", ErrInvalid, pattern))
		}
	}

	return result.ErrorOrNil()
}
