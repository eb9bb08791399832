package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// StatusFor returns the HTTP status for kind from the kind table. ok is
// false for unmapped kinds, which get 500.
func StatusFor(kind ErrorKind) (status int, ok bool) {
	spec, ok := kindTable[kind]
	if !ok {
		return http.StatusInternalServerError, false
	}
	return spec.status, true
}

// ToDomainError normalizes any error into a DomainError. Fiber errors are
// mapped by status, 4xx codes without a kind keep their status under
// BAD_REQUEST. Anything else becomes INTERNAL_SERVER_ERROR with err as the
// source.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}

	var derr *DomainError
	if goerrors.As(err, &derr) && derr.TextCode != "" {
		return derr
	}

	var ferr *fiber.Error
	if goerrors.As(err, &ferr) {
		switch ferr.Code {
		case fiber.StatusUnauthorized:
			return WithCause(ErrUnauthenticated, err)
		case fiber.StatusForbidden:
			return WithCause(ErrForbidden, err)
		case fiber.StatusNotFound:
			return WithCause(ErrNotFound, err)
		case fiber.StatusMethodNotAllowed:
			return WithCause(ErrMethodNotAllowed, err)
		case fiber.StatusRequestEntityTooLarge:
			return WithCause(ErrPayloadTooLarge, err)
		case fiber.StatusTooManyRequests:
			return WithCause(ErrTooManyRequests, err)
		}
		if ferr.Code >= 400 && ferr.Code < 500 {
			return WithCause(ErrBadRequest, err).WithCode(ferr.Code)
		}
	}

	return WithCause(ErrInternal, err)
}

// statusOf resolves the response status of derr. Mapped kinds may carry a
// more specific 4xx code; unmapped kinds report ok false.
func statusOf(derr *DomainError) (status int, ok bool) {
	status, ok = StatusFor(ErrorKind(derr.TextCode))
	if !ok {
		return status, false
	}
	if status < http.StatusInternalServerError && derr.Code >= 400 && derr.Code < 500 {
		status = derr.Code
	}
	return status, true
}

// ErrorHandler is the single response boundary for domain errors. It logs
// the full error server side and writes the public envelope. Internal
// details never reach the body.
func ErrorHandler(logger Logger) fiber.ErrorHandler {
	logger = normalizeLogger(logger)

	return func(c *fiber.Ctx, err error) error {
		derr := ToDomainError(err)
		if derr == nil {
			derr = ErrInternal
		}

		kind := ErrorKind(derr.TextCode)
		status, mapped := statusOf(derr)
		message := derr.Message

		switch {
		case !mapped:
			logger.Error("unmapped domain error kind",
				"kind", kind,
				"error", err,
				"path", c.Path(),
			)
			kind = KindInternal
			message = ErrInternal.Message
		case status >= http.StatusInternalServerError:
			logger.Error("request failed",
				"kind", kind,
				"category", derr.Category,
				"error", err,
				"path", c.Path(),
				"metadata", print.MaybePrettyJSON(derr.Metadata),
			)
			message = ErrInternal.Message
		default:
			logger.Info("request rejected",
				"kind", kind,
				"reason", ReasonOf(derr),
				"status", status,
				"path", c.Path(),
			)
		}

		if message == "" {
			message = http.StatusText(status)
		}

		return respondError(c, status, kind, message)
	}
}
