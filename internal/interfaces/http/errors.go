package httpinterface

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shoyu-network/shoyu-daemon/internal/core/application"
	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
	log "github.com/sirupsen/logrus"
)

const (
	codeInvalidArgument = "INVALID_ARGUMENT"
	codeUnavailable     = "UNAVAILABLE"
	codeUnimplemented   = "UNIMPLEMENTED"
)

var (
	// ErrMissingCaller is returned when a restricted route is called without
	// identity.
	ErrMissingCaller = errors.New("missing caller identity")
	// ErrInvalidCaller ...
	ErrInvalidCaller = errors.New("caller identity is not a valid address")
)

// applicationErrors are the errors of the application layer that are not
// part of the domain taxonomy.
var applicationErrors = []struct {
	err    error
	status int
	code   string
}{
	{application.ErrServiceUnavailable, http.StatusServiceUnavailable, codeUnavailable},
	{application.ErrInvalidWebhookTopic, http.StatusBadRequest, codeInvalidArgument},
	{application.ErrInvalidFaucetAmount, http.StatusBadRequest, domain.CodeInvalidAmount},
	{application.ErrFaucetDisabled, http.StatusNotImplemented, codeUnimplemented},
	{application.ErrMiningDisabled, http.StatusNotImplemented, codeUnimplemented},
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusAndCode returns the http status and the code of the given error.
func statusAndCode(err error) (int, string) {
	for _, e := range applicationErrors {
		if errors.Is(err, e.err) {
			return e.status, e.code
		}
	}

	code := domain.ErrorCode(err)
	switch {
	case code == domain.CodeUnauthorized:
		return http.StatusUnauthorized, code
	case code == domain.CodeForbidden:
		return http.StatusForbidden, code
	case code == domain.CodeExpired,
		code == domain.CodeFailure,
		code == domain.CodeBidExists,
		code == domain.CodeAlreadyMinted,
		code == domain.CodeConflict:
		return http.StatusConflict, code
	case code == domain.CodeNotFound:
		return http.StatusNotFound, code
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest, code
	default:
		return http.StatusInternalServerError, code
	}
}

func writeError(c *gin.Context, err error) {
	status, code := statusAndCode(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).Warnf("%s %s", c.Request.Method, c.FullPath())
	}
	c.AbortWithStatusJSON(status, errorResponse{code, err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(
		http.StatusBadRequest, errorResponse{codeInvalidArgument, err.Error()},
	)
}

func unauthorized(c *gin.Context, err error) {
	c.AbortWithStatusJSON(
		http.StatusUnauthorized, errorResponse{domain.CodeUnauthorized, err.Error()},
	)
}
