package errutil_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedran77/switchboard/pkg/errutil"
)

func TestLogError(t *testing.T) {
	t.Run("oops error carries code and context", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		err := oops.Code("USER_EMAIL_TAKEN").With("email", "alice@example.com").Errorf("duplicate")
		errutil.LogError(logger, "register failed", err)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "ERROR", entry["level"])
		assert.Equal(t, "register failed", entry["msg"])
		assert.Equal(t, "USER_EMAIL_TAKEN", entry["code"])
		assert.Contains(t, entry["context"], "email")
	})

	t.Run("plain error", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		errutil.LogError(logger, "ping failed", errors.New("connection refused"))

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Contains(t, entry["error"], "connection refused")
		assert.NotContains(t, entry, "code")
	})
}

func TestAssertHelpers(t *testing.T) {
	err := oops.Code("TOKEN_EXPIRED").With("user_id", int64(7)).Errorf("expired")
	errutil.AssertErrorCode(t, err, "TOKEN_EXPIRED")
	errutil.AssertErrorContext(t, err, "user_id", int64(7))

	sentinel := errors.New("unauthorized")
	wrapped := oops.Code("TOKEN_INVALID").Wrap(fmt.Errorf("%w: bad signature", sentinel))
	errutil.AssertKind(t, wrapped, sentinel, "TOKEN_INVALID")
}
