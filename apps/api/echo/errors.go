package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Prajjwal2051/Viewly-sub002/core"
)

var (
	errUnauthorized        = core.NewAuthError("unauthorized request")
	errInvalidAccessToken  = core.NewAuthError("invalid access token")
	errInvalidRefreshToken = core.NewAuthError("invalid refresh token")
	errPayloadTooLarge     = echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body is too large")
	errTooManyRequests     = "too many requests, please try again later"
	validationFailedText   = "validation failed"
)

type (
	// apiResponse is the envelope of every response body.
	apiResponse struct {
		StatusCode int         `json:"statusCode"`
		Data       interface{} `json:"data"`
		Message    string      `json:"message"`
		Success    bool        `json:"success"`
	}

	apiError struct {
		StatusCode int               `json:"statusCode"`
		Data       interface{}       `json:"data"`
		Message    string            `json:"message"`
		Errors     map[string]string `json:"errors"`
		Success    bool              `json:"success"`
	}
)

func respond(ctx echo.Context, code int, data interface{}, message string) error {
	return ctx.JSON(code, apiResponse{
		StatusCode: code,
		Data:       data,
		Message:    message,
		Success:    code < http.StatusBadRequest,
	})
}

func newAPIError(code int, message string, fields map[string]string) apiError {
	if fields == nil {
		fields = map[string]string{}
	}
	return apiError{StatusCode: code, Message: message, Errors: fields}
}

// errorStatus is the status code newAppHTTPErrorHandler responds with for err.
func errorStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch origErr := errors.Cause(err).(type) {
	case *echo.HTTPError:
		if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
			return herr.Code
		}
		return origErr.Code
	case validator.ValidationErrors, *core.ValidationError:
		return http.StatusBadRequest
	case *core.NotFoundError:
		return http.StatusNotFound
	case *core.PermissionError:
		return http.StatusForbidden
	case *core.ConflictError:
		return http.StatusConflict
	case *core.AuthError:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		if ctx.Response().Committed {
			return // rendered by the request logger already
		}
		var (
			code    int
			message string
			fields  map[string]string
		)

		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = errPayloadTooLarge
		}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			if m, ok := origErr.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		case validator.ValidationErrors:
			fields = make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fields[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = validationFailedText
		case *core.ValidationError:
			if origErr.Fields != nil {
				fields = make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fields[fErr.Field] = fErr.Error
				}
			}
			code = http.StatusBadRequest
			message = origErr.Error()
		case *core.NotFoundError:
			code = http.StatusNotFound
			message = origErr.Error()
		case *core.PermissionError:
			code = http.StatusForbidden
			message = origErr.Error()
		case *core.ConflictError:
			code = http.StatusConflict
			message = origErr.Error()
		case *core.AuthError:
			code = http.StatusUnauthorized
			message = origErr.Error()
		default: // any other error is a server error
			code = http.StatusInternalServerError
			message = http.StatusText(http.StatusInternalServerError)

			args := []interface{}{errors.Wrap(err, message)}
			if usr, ok := getContextUser(ctx); ok {
				args = append(args, usr)
			}
			logger.Error(message, args...)

			if ctx.Echo().Debug {
				message = err.Error()
			}

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, newAPIError(code, message, fields))
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

