package errors

import (
	"context"
	goerrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/target/competitions-api/internal/errors"
)

type handlerPanic struct{}

func (handlerPanic) Error() string { return "panic" }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"canceled", fmt.Errorf("claim: %w", context.Canceled), "canceled"},
		{"deadline", context.DeadlineExceeded, "timeout"},
		{"app error", fmt.Errorf("dispatch: %w", apperrors.NotFound("registration not found")), "not_found"},
		{"unavailable", apperrors.Unavailable("db"), "unavailable"},
		{"innermost type", fmt.Errorf("wrap: %w", handlerPanic{}), "errors_handlerpanic"},
		{"errors.New", goerrors.New("x"), "errors_errorstring"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
