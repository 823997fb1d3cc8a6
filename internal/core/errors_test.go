package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKindRetryable(t *testing.T) {
	assert.True(t, ErrKindNetwork.Retryable())
	assert.True(t, ErrKindEmptyResult.Retryable())
	assert.False(t, ErrKindQuotaAuth.Retryable())
	assert.False(t, ErrKindMalformedInput.Retryable())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, ErrKindNone, KindOf(nil))
	assert.Equal(t, ErrKindQuotaAuth, KindOf(QuotaAuthErr(errors.New("denied"))))
	assert.Equal(t, ErrKindMalformedInput, KindOf(MalformedInputErr(errors.New("bad"))))
	assert.Equal(t, ErrKindEmptyResult, KindOf(EmptyResultErr("nothing")))
	assert.Equal(t, ErrKindNetwork, KindOf(context.DeadlineExceeded))
	assert.Equal(t, ErrKindNetwork, KindOf(errors.New("some untyped failure")))

	// Wrapped errors keep their kind.
	wrapped := fmt.Errorf("outer: %w", NetworkErr(errors.New("reset")))
	assert.Equal(t, ErrKindNetwork, KindOf(wrapped))
}

func TestKindFromStatus(t *testing.T) {
	assert.Equal(t, ErrKindQuotaAuth, KindFromStatus(http.StatusUnauthorized))
	assert.Equal(t, ErrKindQuotaAuth, KindFromStatus(http.StatusForbidden))
	assert.Equal(t, ErrKindQuotaAuth, KindFromStatus(http.StatusTooManyRequests))
	assert.Equal(t, ErrKindMalformedInput, KindFromStatus(http.StatusBadRequest))
	assert.Equal(t, ErrKindMalformedInput, KindFromStatus(http.StatusUnsupportedMediaType))
	assert.Equal(t, ErrKindNetwork, KindFromStatus(http.StatusBadGateway))
	assert.Equal(t, ErrKindNetwork, KindFromStatus(http.StatusInternalServerError))
}

func TestStatusErrTruncatesBody(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}

	err := StatusErr(http.StatusInternalServerError, string(long))
	assert.Less(t, len(err.Error()), 300)
	assert.Equal(t, ErrKindNetwork, KindOf(err))
}
