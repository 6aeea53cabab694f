package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/target/competitions-api/internal/errors"
	"github.com/target/competitions-api/internal/http/validation"
)

var errInternal = errors.New("internal server error")

// errorResponder turns service errors into HTTP responses.
type errorResponder struct {
	logger *slog.Logger
}

func newErrorResponder(logger *slog.Logger) errorResponder {
	if logger == nil {
		logger = slog.Default()
	}
	return errorResponder{logger: logger}
}

// writeServiceError maps application error codes onto status codes. Anything
// unclassified is logged and reported as a bare 500.
func (e errorResponder) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		// Only the message is public; causes may carry driver detail.
		public := errors.New(appErr.Message)
		switch appErr.Code {
		case apperrors.ErrCodeNotFound:
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: public})
			return
		case apperrors.ErrCodeConflict:
			WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "conflict", Err: public})
			return
		case apperrors.ErrCodeValidation:
			writeValidation(w, public, appErr.Field)
			return
		case apperrors.ErrCodeForeignKey:
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_reference", Err: public})
			return
		case apperrors.ErrCodeUnavailable, apperrors.ErrCodeTimeout:
			e.logger.WarnContext(r.Context(), "dependency unavailable", "path", r.URL.Path, "error", err)
			WriteError(w, ErrorParams{
				Code:    http.StatusServiceUnavailable,
				ErrCode: "unavailable",
				Err:     errors.New("service temporarily unavailable"),
			})
			return
		default:
		}
	}

	if errors.Is(err, context.Canceled) {
		// Client went away; nobody reads the response.
		return
	}
	e.logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal_error", Err: errInternal})
}

func writeValidation(w http.ResponseWriter, err error, field string) {
	p := ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err}
	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		p.Fields = fe
		p.Err = errors.New("request validation failed")
	} else if field != "" {
		p.Fields = map[string]string{field: err.Error()}
	}
	WriteError(w, p)
}

// validRequest runs tag validation first, then the model's own Validate. It writes
// a 400 and returns false on the first failure.
func validRequest(w http.ResponseWriter, dto any, validate func() error) bool {
	if err := validation.Struct(dto); err != nil {
		writeValidation(w, err, "")
		return false
	}
	if validate == nil {
		return true
	}
	if err := validate(); err != nil {
		writeValidation(w, err, "")
		return false
	}
	return true
}
