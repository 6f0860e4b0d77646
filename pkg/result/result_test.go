package result

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestOK(t *testing.T) {
	r := OK()

	assert.Equal(t, StatusSuccess, r.Status())
	assert.False(t, r.HasSkipMessage())
	assert.False(t, r.HasErrorMessage())
	assert.False(t, r.HasCause())
	assert.NoError(t, r.Err())
	assert.Equal(t, "SUCCESS", r.String())
}

func TestFromSkipMessage(t *testing.T) {
	r := FromSkipMessage("Recorder not enabled")

	assert.Equal(t, StatusSkipped, r.Status())
	assert.True(t, r.HasSkipMessage())
	assert.Equal(t, "Recorder not enabled", r.SkipMessage())
	assert.False(t, r.HasErrorMessage())
	assert.Empty(t, r.ErrorMessage())
	assert.False(t, r.HasCause())
	assert.NoError(t, r.Err())
}

func TestFromErrorMessage(t *testing.T) {
	r := FromErrorMessage("Status: 500")

	assert.Equal(t, StatusError, r.Status())
	assert.True(t, r.HasErrorMessage())
	assert.Equal(t, "Status: 500", r.ErrorMessage())
	assert.False(t, r.HasSkipMessage())
	assert.Empty(t, r.SkipMessage())
	assert.False(t, r.HasCause())

	err := r.Err()
	require.Error(t, err)
	assert.Equal(t, "Status: 500", err.Error())
}

func TestFromError(t *testing.T) {
	cause := errors.New("oops")
	r := FromError(cause)

	assert.Equal(t, StatusError, r.Status())
	assert.True(t, r.HasCause())
	assert.Same(t, cause, r.Cause())
	assert.False(t, r.HasErrorMessage())
	assert.False(t, r.HasSkipMessage())

	err := r.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)

	var resultErr *Error
	require.ErrorAs(t, err, &resultErr)
	assert.Same(t, cause, resultErr.Cause)
}

func TestFromErrorNil(t *testing.T) {
	r := FromError(nil)

	assert.Equal(t, StatusError, r.Status())
	assert.True(t, r.HasCause())
	assert.ErrorIs(t, r.Cause(), ErrNilCause)
	assert.False(t, r.HasErrorMessage())
}

func TestEmptyMessagesStillPresent(t *testing.T) {
	assert.True(t, FromSkipMessage("").HasSkipMessage())
	assert.True(t, FromErrorMessage("").HasErrorMessage())
}

func TestEqual(t *testing.T) {
	assert.True(t, OK().Equal(OK()))
	assert.True(t, FromSkipMessage("a").Equal(FromSkipMessage("a")))
	assert.False(t, FromSkipMessage("a").Equal(FromErrorMessage("a")))
	assert.True(t, FromError(errors.New("x")).Equal(FromError(errors.New("x"))))
	assert.False(t, FromError(errors.New("x")).Equal(FromError(errors.New("y"))))
	assert.True(t, Result{}.Equal(OK()))
}

func TestLogValue(t *testing.T) {
	value := FromErrorMessage("bad").LogValue()
	require.Equal(t, slog.KindGroup, value.Kind())

	attrs := map[string]string{}
	for _, attr := range value.Group() {
		attrs[attr.Key] = attr.Value.String()
	}
	assert.Equal(t, map[string]string{"status": "ERROR", "error_message": "bad"}, attrs)
}

// Property Test: at most one payload is visible and it always matches the status.
func TestResultExclusivityProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.String().Draw(t, "text")

		var r Result
		switch rapid.IntRange(0, 3).Draw(t, "constructor") {
		case 0:
			r = OK()
		case 1:
			r = FromSkipMessage(text)
		case 2:
			r = FromErrorMessage(text)
		case 3:
			r = FromError(errors.New(text))
		}

		populated := 0
		for _, has := range []bool{r.HasSkipMessage(), r.HasErrorMessage(), r.HasCause()} {
			if has {
				populated++
			}
		}

		switch r.Status() {
		case StatusSuccess:
			if populated != 0 {
				t.Fatalf("success result carries %d payloads", populated)
			}
		case StatusSkipped:
			if populated != 1 || !r.HasSkipMessage() {
				t.Fatalf("skipped result is inconsistent: %v", r)
			}
		case StatusError:
			if populated != 1 || r.HasSkipMessage() {
				t.Fatalf("error result is inconsistent: %v", r)
			}
			if r.Err() == nil {
				t.Fatalf("error result converts to nil error")
			}
		default:
			t.Fatalf("unexpected status %q", r.Status())
		}
	})
}

func TestFromPanic(t *testing.T) {
	cause := errors.New("boom")
	assert.Same(t, cause, FromPanic(cause).Cause())

	r := FromPanic("not an error")
	require.True(t, r.HasCause())
	assert.EqualError(t, r.Cause(), "panic: not an error")
}
