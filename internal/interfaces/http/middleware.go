package httpinterface

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/shoyu-network/shoyu-daemon/pkg/stats"
	log "github.com/sirupsen/logrus"
)

const (
	// CallerHeader carries the caller address when authentication is
	// disabled.
	CallerHeader = "X-Caller"

	callerKey = "caller"
)

// NewAuthToken returns a HS256 token for the given caller signed with
// secret. A zero ttl makes a token that never expires.
func NewAuthToken(
	secret string, caller common.Address, ttl time.Duration,
) (string, error) {
	claims := jwt.StandardClaims{
		Subject:  caller.Hex(),
		IssuedAt: time.Now().Unix(),
	}
	if ttl > 0 {
		claims.ExpiresAt = time.Now().Add(ttl).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(secret))
}

func parseAuthToken(secret, raw string) (common.Address, error) {
	claims := &jwt.StandardClaims{}
	if _, err := jwt.ParseWithClaims(
		raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		},
	); err != nil {
		return common.Address{}, err
	}
	return parseCaller(claims.Subject)
}

func parseCaller(s string) (common.Address, error) {
	if s == "" {
		return common.Address{}, ErrMissingCaller
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, ErrInvalidCaller
	}
	return common.HexToAddress(s), nil
}

// authenticate resolves the identity of the caller of a restricted route.
func authenticate(secret string, noAuth bool, perm Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		var caller common.Address
		var err error
		if noAuth {
			caller, err = parseCaller(c.GetHeader(CallerHeader))
		} else {
			header := c.GetHeader("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(c, ErrMissingCaller)
				return
			}
			caller, err = parseAuthToken(secret, strings.TrimPrefix(header, "Bearer "))
		}
		if err != nil {
			unauthorized(c, err)
			return
		}

		log.WithFields(log.Fields{
			"caller": caller.Hex(),
			"entity": perm.Entity,
			"action": perm.Action,
		}).Debug(c.FullPath())
		c.Set(callerKey, caller)
		c.Next()
	}
}

func callerFromContext(c *gin.Context) common.Address {
	v, ok := c.Get(callerKey)
	if !ok {
		return common.Address{}
	}
	caller, _ := v.(common.Address)
	return caller
}

func requestLogger(c *gin.Context) {
	log.Debugf("%s %s", c.Request.Method, c.Request.URL.Path)
	c.Next()
}

func requestMetrics(c *gin.Context) {
	start := time.Now()
	c.Next()

	path := c.FullPath()
	if path == "" {
		path = "unknown"
	}
	stats.ObserveRequest(
		c.Request.Method, path, c.Writer.Status(), time.Since(start),
	)
}
