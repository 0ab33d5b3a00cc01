package settings

import (
	"io"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gitlab.com/tozd/go/errors"
)

const (
	EnvEnabled   = "TEMPEST_ENABLED"
	EnvTemplates = "TEMPEST_TEMPLATES"

	// EnvFileName is read from the config dir after FileName, its values win.
	EnvFileName = "tempest.env"
)

// ParseEnv reads KEY=VALUE lines in dotenv syntax.
func ParseEnv(r io.Reader) (map[string]string, error) {
	env, err := godotenv.Parse(r)
	if err != nil {
		return nil, errors.Errorf("parsing env file: %w", err)
	}
	return env, nil
}

// ApplyEnv overrides fields of s with the TEMPEST_* keys found in env.
func ApplyEnv(s Settings, env map[string]string) (Settings, error) {
	out := s.Clone()

	if v, ok := env[EnvEnabled]; ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return out, errors.Errorf("%w: %s=%q is not a boolean", ErrInvalid, EnvEnabled, v)
		}
		out.Enabled = b
	}

	if v, ok := env[EnvTemplates]; ok {
		out.Templates = nil
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out.Templates = append(out.Templates, p)
			}
		}
	}

	return out, nil
}
