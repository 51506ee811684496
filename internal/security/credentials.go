package security

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/oauth2/google"

	apperrors "cruxcli/internal/errors"
	"cruxcli/internal/infrastructure"
)

// ErrNoCredentials is returned when none of the three credential forms is supplied
var ErrNoCredentials = stderrors.New("no credentials supplied for Google Cloud")

// Credentials is one of FileCredentials, JSONCredentials or AmbientCredentials.
// The set is closed: only this package can add variants.
type Credentials interface {
	// Kind names the variant for logs
	Kind() string
	sealed()
}

// FileCredentials reads a service-account key file from disk
type FileCredentials struct {
	Path string
}

// JSONCredentials carries a service-account key in memory
type JSONCredentials struct {
	JSON []byte
}

// AmbientCredentials uses Application Default Credentials discovered from
// the environment (GOOGLE_APPLICATION_CREDENTIALS, gcloud, metadata server).
type AmbientCredentials struct{}

func (FileCredentials) Kind() string    { return "file" }
func (JSONCredentials) Kind() string    { return "json" }
func (AmbientCredentials) Kind() string { return "ambient" }

func (FileCredentials) sealed()    {}
func (JSONCredentials) sealed()    {}
func (AmbientCredentials) sealed() {}

// SelectCredentials picks exactly one credential form from the raw inputs.
// Precedence is fixed: useEnv, then inline JSON, then file path. Supplying more
// than one is not an error but only the first by precedence is honored.
func SelectCredentials(path, json string, useEnv bool) (Credentials, error) {
	switch {
	case useEnv:
		return AmbientCredentials{}, nil
	case strings.TrimSpace(json) != "":
		return JSONCredentials{JSON: []byte(json)}, nil
	case strings.TrimSpace(path) != "":
		return FileCredentials{Path: path}, nil
	default:
		return nil, apperrors.NewConfigurationError("select_credentials", "credentials are required", ErrNoCredentials)
	}
}

// Resolve turns the credential variant into Google credentials for scopes.
// All failures are configuration errors.
func Resolve(ctx context.Context, creds Credentials, scopes ...string) (*google.Credentials, error) {
	if creds == nil {
		return nil, apperrors.NewConfigurationError("resolve_credentials", "credentials are required", ErrNoCredentials)
	}

	logger := infrastructure.WithComponent(slog.Default(), "credentials").With("kind", creds.Kind())

	var (
		resolved *google.Credentials
		err      error
	)
	switch c := creds.(type) {
	case AmbientCredentials:
		resolved, err = google.FindDefaultCredentials(ctx, scopes...)
	case JSONCredentials:
		resolved, err = google.CredentialsFromJSON(ctx, c.JSON, scopes...)
	case FileCredentials:
		data, readErr := os.ReadFile(c.Path)
		if readErr != nil {
			return nil, apperrors.NewConfigurationError("resolve_credentials",
				fmt.Sprintf("cannot read credentials file %s", c.Path), readErr)
		}
		resolved, err = google.CredentialsFromJSON(ctx, data, scopes...)
	default:
		return nil, apperrors.NewConfigurationError("resolve_credentials",
			fmt.Sprintf("unsupported credentials kind %s", creds.Kind()), nil)
	}
	if err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "Failed to resolve credentials")
		return nil, apperrors.NewConfigurationError("resolve_credentials", "invalid credentials", err)
	}

	logger.DebugContext(ctx, "Resolved credentials", slog.String("project_id", resolved.ProjectID))
	return resolved, nil
}
