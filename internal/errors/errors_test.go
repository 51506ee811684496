package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ExportError
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "unknown export error",
		},
		{
			name:     "without step",
			err:      &ExportError{Type: ErrorTypeQuery, Message: "query failed"},
			expected: "[query] query failed",
		},
		{
			name:     "with step",
			err:      NewNotImplementedError("export_country", "country export is not implemented"),
			expected: "[not_implemented] export_country: country export is not implemented",
		},
		{
			name:     "with cause",
			err:      NewConfigurationError("authenticate", "no credentials supplied", fs.ErrNotExist),
			expected: "[configuration] authenticate: no credentials supplied: file does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestExportError_Unwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := NewQueryError("fetch_month", cause, true)

	assert.ErrorIs(t, err, cause)

	var nilErr *ExportError
	assert.Nil(t, nilErr.Unwrap())
}

func TestClassification(t *testing.T) {
	cfgErr := NewConfigurationError("authenticate", "missing", nil)
	queryErr := NewQueryError("fetch_month", stderrors.New("503"), true)
	fsErr := NewFilesystemError("write_csv", "/tmp/x.csv", fs.ErrPermission)

	// Wrapped errors still classify.
	wrapped := fmt.Errorf("export global: %w", queryErr)

	assert.True(t, IsConfiguration(cfgErr))
	assert.False(t, IsConfiguration(queryErr))
	assert.True(t, IsQuery(wrapped))
	assert.True(t, IsRetryable(wrapped))
	assert.True(t, IsFilesystem(fsErr))
	assert.False(t, IsRetryable(fsErr))
	assert.ErrorIs(t, fsErr, fs.ErrPermission)

	assert.Equal(t, ErrorType(""), GetErrorType(stderrors.New("plain")))
	assert.Equal(t, ErrorType(""), GetErrorType(nil))
	assert.False(t, IsRetryable(nil))
}

func TestNewFilesystemError_Message(t *testing.T) {
	err := NewFilesystemError("remove_stale", "/data/global/crux-top-10m.zip", fs.ErrPermission)
	require.NotNil(t, err)
	assert.Equal(t, ErrorTypeFilesystem, err.Type)
	assert.Contains(t, err.Error(), "/data/global/crux-top-10m.zip")
}
