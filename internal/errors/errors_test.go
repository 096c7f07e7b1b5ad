package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeErrorError(t *testing.T) {
	tests := []struct {
		name     string
		err      *MergeError
		contains []string
	}{
		{
			name:     "missing setting",
			err:      NewMissingSettingError("searchGlobPattern"),
			contains: []string{"[CONFIG_MISSING]", "Missing Setting: searchGlobPattern"},
		},
		{
			name:     "locale not found",
			err:      NewLocaleNotFoundError("foo.json"),
			contains: []string{"[LOCALE_NOT_FOUND]", "foo.json"},
		},
		{
			name:     "parse failure names the file and cause",
			err:      NewParseError("src/de.json", fmt.Errorf("unexpected end of JSON input")),
			contains: []string{"[PARSE_FAILURE]", "src/de.json", "unexpected end of JSON input"},
		},
		{
			name:     "component prefix",
			err:      NewIOError(ErrCodeWriteFailed, "write failed", nil).WithComponent("storage"),
			contains: []string{"component:storage", "write failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.contains {
				assert.Contains(t, msg, want)
			}
		})
	}
}

func TestMergeErrorIs(t *testing.T) {
	err := fmt.Errorf("run failed: %w", NewLocaleNotFoundError("foo.json"))

	assert.True(t, errors.Is(err, ErrLocaleNotFound))
	assert.False(t, errors.Is(err, ErrParseFailure))
	assert.False(t, errors.Is(err, ErrConfigurationMissing))

	assert.True(t, errors.Is(NewMissingSettingError("destinationPath"), ErrConfigurationMissing))
	assert.True(t, errors.Is(NewParseError("x.json", nil), ErrParseFailure))
}

func TestMergeErrorUnwrap(t *testing.T) {
	cause := fs.ErrNotExist
	err := NewIOError(ErrCodeReadFailed, "cannot read fragment", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestClassificationHelpers(t *testing.T) {
	assert.True(t, IsConfigError(NewConfigError(ErrCodeInvalidMatchPattern, "bad")))
	assert.True(t, IsLocaleError(NewLocaleNotFoundError("a.json")))
	assert.True(t, IsParseError(NewParseError("a.json", nil)))
	assert.True(t, IsIOError(NewIOError(ErrCodeMkdirFailed, "mkdir", nil)))

	plain := errors.New("plain")
	assert.False(t, IsConfigError(plain))
	assert.False(t, IsLocaleError(plain))
	assert.False(t, IsParseError(plain))
	assert.False(t, IsIOError(plain))
	assert.False(t, IsRecoverable(plain))
}

func TestWithContext(t *testing.T) {
	err := NewLocaleNotFoundError("foo.json").
		WithContext("pattern", `.*\.(\w+)\.json`).
		WithFile("src/foo.json")

	assert.Equal(t, "src/foo.json", err.FilePath)
	assert.Equal(t, `.*\.(\w+)\.json`, GetErrorContext(err)["pattern"])
	assert.Nil(t, GetErrorContext(errors.New("plain")))
}

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, ErrorTypeIO, ErrCodeReadFailed, "read"))
	})

	t.Run("foreign error", func(t *testing.T) {
		cause := errors.New("permission denied")
		wrapped := WrapIO(cause, ErrCodeReadFailed, "cannot read fragment", "a/en.json")

		require.NotNil(t, wrapped)
		assert.Equal(t, ErrorTypeIO, wrapped.Type)
		assert.Equal(t, "a/en.json", wrapped.FilePath)
		assert.ErrorIs(t, wrapped, cause)
	})

	t.Run("inner merge error keeps details", func(t *testing.T) {
		inner := NewParseError("a/en.json", errors.New("bad")).WithComponent("merger")
		wrapped := WrapInternal(inner, ErrCodeInternalError, "merge failed")

		assert.Equal(t, "a/en.json", wrapped.FilePath)
		assert.Equal(t, "merger", wrapped.Component)
		assert.ErrorIs(t, wrapped, ErrParseFailure)
		assert.Equal(t, ErrCodeInternalError, ExtractCode(wrapped))
	})
}

func TestErrorFields(t *testing.T) {
	err := NewMissingSettingError("destinationPath").WithComponent("config")
	fields := ErrorFields(err)

	m := map[string]interface{}{}
	for i := 0; i+1 < len(fields); i += 2 {
		m[fields[i].(string)] = fields[i+1]
	}

	assert.Equal(t, "config", m["error_type"])
	assert.Equal(t, ErrCodeConfigMissing, m["error_code"])
	assert.Equal(t, "destinationPath", m["setting"])
	assert.Nil(t, ErrorFields(errors.New("plain")))
}
