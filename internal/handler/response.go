package handler

import (
	"errors"
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/violets/internal/apperror"
)

const genericErrorMessage = "Something went wrong. Please try again."

type errorPage struct {
	Page
	Status     int
	StatusText string
	Message    string
}

// statusFor maps a domain error to an HTTP status code. The service layer
// knows nothing about HTTP; this is the only place the two meet.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrParse):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns text that is safe to show the user. Unexpected errors
// may carry SQL or file paths, so they get a generic message.
func messageFor(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && statusFor(err) != http.StatusInternalServerError {
		return appErr.Message
	}
	return genericErrorMessage
}

// fieldFor returns the form field err is about, or "".
func fieldFor(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}

// withError copies err's message and field onto p.
func withError(p Page, err error) Page {
	p.Error = messageFor(err)
	p.Field = fieldFor(err)
	return p
}

// RenderError renders the error page for err with the matching status.
func (rd *Renderer) RenderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		rd.logger.Error("request failed",
			slog.String("request_id", chimiddleware.GetReqID(r.Context())),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}

	rd.Render(w, status, "error.html", errorPage{
		Page:       rd.Page(r, http.StatusText(status)),
		Status:     status,
		StatusText: http.StatusText(status),
		Message:    messageFor(err),
	})
}

// NotFound renders the 404 page for unrouted paths.
func (rd *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rd.Render(w, http.StatusNotFound, "error.html", errorPage{
		Page:       rd.Page(r, "Not Found"),
		Status:     http.StatusNotFound,
		StatusText: http.StatusText(http.StatusNotFound),
		Message:    "There is nothing at " + r.URL.Path + ".",
	})
}

// badForm reports a request body that could not be parsed as a form.
func badForm(err error) error {
	return &apperror.AppError{Err: apperror.ErrValidation, Message: "Could not read the submitted form: " + err.Error()}
}
