package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesCategory(t *testing.T) {
	err := NewNotFoundError(Users, 999)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", err), ErrNotFound)
	assert.Equal(t, "users 999 not found", err.Error())
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError("title", "title is required")
	assert.Equal(t, "title: title is required", err.Error())
	assert.Equal(t, CategoryValidation, CategoryOf(err))
}

func TestClassify(t *testing.T) {
	cause := errors.New("disk full")

	tests := []struct {
		name string
		err  error
		want Category
	}{
		{name: "nil", err: nil, want: ""},
		{name: "already classified", err: NewNotFoundError(Posts, 1), want: CategoryNotFound},
		{name: "deadline", err: context.DeadlineExceeded, want: CategoryNetwork},
		{name: "canceled", err: fmt.Errorf("read: %w", context.Canceled), want: CategoryNetwork},
		{name: "url error", err: &url.Error{Op: "Get", URL: "http://x", Err: cause}, want: CategoryNetwork},
		{name: "net error", err: &net.OpError{Op: "dial", Err: cause}, want: CategoryNetwork},
		{name: "anything else", err: cause, want: CategoryRepository},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify("list", tt.err)
			if tt.err == nil {
				assert.NoError(t, got)
				return
			}
			assert.Equal(t, tt.want, CategoryOf(got))
		})
	}

	assert.ErrorIs(t, Classify("list", cause), cause)
}
