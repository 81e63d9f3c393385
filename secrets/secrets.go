package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultKeyNames are the credential names consulted by Env when none are
// given, in precedence order. They match the names the official SDKs read.
var DefaultKeyNames = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}

// ErrNotFound is returned when no configured source yields a non-empty key.
var ErrNotFound = errors.New("api key not found")

// Origin identifies which storage pattern produced a credential.
type Origin string

const (
	// OriginStatic marks a key passed in explicitly by the caller.
	OriginStatic Origin = "static"
	// OriginFile marks a key read from a secrets file.
	OriginFile Origin = "secrets-file"
	// OriginEnv marks a key read from the process environment.
	OriginEnv Origin = "environment"
)

// Credential is a resolved API key together with the origin it came from.
// The origin is safe to log; the value is not.
type Credential struct {
	Value  string
	Origin Origin
}

// Source is a single credential store that can be consulted for an API key.
type Source interface {
	// Lookup returns the key value and whether the source held it.
	Lookup() (string, bool)

	// Origin identifies the storage pattern for logging.
	Origin() Origin
}

// staticSource wraps an explicit key value.
type staticSource struct{ value string }

func (s staticSource) Lookup() (string, bool) { return s.value, s.value != "" }
func (s staticSource) Origin() Origin         { return OriginStatic }

// Static returns a Source holding an explicit key value. An empty value is
// treated as absent so a Static source can sit harmlessly at the front of a
// resolution chain.
func Static(value string) Source { return staticSource{value: value} }

// fileSource reads a dotenv-style secrets file on each lookup. Missing or
// unreadable files are treated as a miss, not an error: the file is one of
// several stores a key may live in.
type fileSource struct {
	path  string
	names []string
}

func (s fileSource) Lookup() (string, bool) {
	values, err := godotenv.Read(s.path)
	if err != nil {
		return "", false
	}
	for _, name := range s.names {
		if v := strings.TrimSpace(values[name]); v != "" {
			return v, true
		}
	}
	return "", false
}

func (s fileSource) Origin() Origin { return OriginFile }

// File returns a Source backed by a dotenv-style secrets file (the
// secrets-manager storage pattern). When no names are given the default key
// names are consulted.
func File(path string, names ...string) Source {
	if len(names) == 0 {
		names = DefaultKeyNames
	}
	return fileSource{path: path, names: names}
}

// envSource reads the process environment.
type envSource struct{ names []string }

func (s envSource) Lookup() (string, bool) {
	for _, name := range s.names {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, true
		}
	}
	return "", false
}

func (s envSource) Origin() Origin { return OriginEnv }

// Env returns a Source backed by environment variables. When no names are
// given the default key names are consulted.
func Env(names ...string) Source {
	if len(names) == 0 {
		names = DefaultKeyNames
	}
	return envSource{names: names}
}

// Resolve consults the sources in order and returns the first key found.
// With no sources it falls back to the default environment lookup.
func Resolve(sources ...Source) (Credential, error) {
	if len(sources) == 0 {
		sources = []Source{Env()}
	}
	for _, src := range sources {
		if v, ok := src.Lookup(); ok {
			return Credential{Value: v, Origin: src.Origin()}, nil
		}
	}
	return Credential{}, fmt.Errorf("%w: set %s or provide a secrets source",
		ErrNotFound, strings.Join(DefaultKeyNames, " or "))
}

// Redact returns a form of the key safe for logs: first and last four
// characters with the middle elided. Short keys are fully masked.
func Redact(key string) string {
	if len(key) <= 12 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
