package main

import (
	"crypto/ecdsa"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	httpinterface "github.com/shoyu-network/shoyu-daemon/internal/interfaces/http"
)

const defaultRPCServer = "http://localhost:9945"

type client struct {
	client *resty.Client
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// getClient returns a client for the daemon configured in the local state.
// Requests are authenticated with the stored token, or with the stored
// caller when the daemon runs without auth.
func getClient() (*client, error) {
	state, err := getState()
	if err != nil {
		return nil, err
	}

	host, ok := state["rpcserver"]
	if !ok || len(host) <= 0 {
		host = defaultRPCServer
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}

	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(host, "/")).
		SetTimeout(30 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetError(&apiError{})
	if token := state["token"]; len(token) > 0 {
		rc.SetAuthToken(token)
	} else if caller := state["caller"]; len(caller) > 0 {
		rc.SetHeader(httpinterface.CallerHeader, caller)
	}

	return &client{rc}, nil
}

func (c *client) do(
	method, path string, query map[string]string, body, out interface{},
) error {
	req := c.client.R()
	if query != nil {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	res, err := req.Execute(method, path)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	if res.IsError() {
		if apiErr, ok := res.Error().(*apiError); ok && len(apiErr.Code) > 0 {
			return apiErr
		}
		return errors.Errorf("%s %s: %s", method, path, res.Status())
	}
	return nil
}

func (c *client) get(path string, query map[string]string, out interface{}) error {
	return c.do(http.MethodGet, path, query, nil, out)
}

func (c *client) post(path string, body, out interface{}) error {
	return c.do(http.MethodPost, path, nil, body, out)
}

func (c *client) delete(path string) error {
	return c.do(http.MethodDelete, path, nil, nil, nil)
}

// getKey returns the private key used to sign asks, bids and permits.
func getKey() (*ecdsa.PrivateKey, error) {
	state, err := getState()
	if err != nil {
		return nil, err
	}
	hexKey, ok := state["key"]
	if !ok || len(hexKey) <= 0 {
		return nil, errors.New("set the signing key with `config set key <hex>`")
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid signing key")
	}
	return key, nil
}
