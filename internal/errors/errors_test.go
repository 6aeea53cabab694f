package errors

import (
	"errors"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "message only",
			err:  NotFound("event not found"),
			want: "event not found",
		},
		{
			name: "with cause",
			err:  Wrap(errors.New("connection refused"), ErrCodeUnavailable, "store down"),
			want: "store down: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("root")
	err := Wrapf(cause, ErrCodeInternal, "job %s", "j1")
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(Wrapf(...), cause) = false, want true")
	}
	if err.Message != "job j1" {
		t.Errorf("Wrapf().Message = %q, want %q", err.Message, "job j1")
	}
}

func TestWrap_NilError(t *testing.T) {
	if err := Wrap(nil, ErrCodeInternal, "x"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestSentinelIdentity(t *testing.T) {
	sentinel := Conflict("event at capacity")
	wrapped := Wrap(sentinel, ErrCodeConflict, "register")
	if !errors.Is(wrapped, sentinel) {
		t.Errorf("wrapped sentinel should match with errors.Is")
	}
	if !IsConflict(wrapped) {
		t.Errorf("IsConflict(wrapped) = false, want true")
	}
}

func TestIsHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"not found", NotFoundf("job %s", "x"), IsNotFound, true},
		{"conflict", Conflict("dup"), IsConflict, true},
		{"validation", Validation("bad"), IsValidation, true},
		{"validation field", ValidationField("email", "bad"), IsValidation, true},
		{"validationf", Validationf("bad %d", 1), IsValidation, true},
		{"foreign key", ForeignKey("fk"), IsForeignKey, true},
		{"internal", Internal("oops"), IsInternal, true},
		{"unavailable", Unavailable("down"), IsUnavailable, true},
		{"timeout", &AppError{Code: ErrCodeTimeout}, IsTimeout, true},
		{"canceled", &AppError{Code: ErrCodeCanceled}, IsCanceled, true},
		{"mismatch", NotFound("x"), IsConflict, false},
		{"plain error", errors.New("x"), IsNotFound, false},
		{"nil", nil, IsNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.err); got != tt.want {
				t.Errorf("check(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestGetCodeAndField(t *testing.T) {
	err := ValidationField("email", "invalid")
	if GetCode(err) != ErrCodeValidation {
		t.Errorf("GetCode() = %v, want %v", GetCode(err), ErrCodeValidation)
	}
	if GetField(err) != "email" {
		t.Errorf("GetField() = %v, want email", GetField(err))
	}
	if GetCode(errors.New("plain")) != "" {
		t.Errorf("GetCode(plain) should be empty")
	}
	if GetField(errors.New("plain")) != "" {
		t.Errorf("GetField(plain) should be empty")
	}
}
