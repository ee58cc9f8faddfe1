package httpinterface_test

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/shoyu-network/shoyu-daemon/internal/core/application"
	"github.com/shoyu-network/shoyu-daemon/internal/core/domain"
	"github.com/shoyu-network/shoyu-daemon/internal/infrastructure/clock"
	"github.com/shoyu-network/shoyu-daemon/internal/infrastructure/ledger"
	"github.com/shoyu-network/shoyu-daemon/internal/infrastructure/pubsub"
	httpinterface "github.com/shoyu-network/shoyu-daemon/internal/interfaces/http"
	"github.com/stretchr/testify/require"
)

const authSecret = "test-secret"

var (
	ctx = context.Background()

	currency         = common.HexToAddress("0x00000000000000000000000000000000000000e2")
	protocolVault    = common.HexToAddress("0x00000000000000000000000000000000000000f1")
	operationalVault = common.HexToAddress("0x00000000000000000000000000000000000000f2")
)

func init() {
	gin.SetMode(gin.TestMode)
}

type wallet struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

func newWallet(t *testing.T) wallet {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return wallet{key, crypto.PubkeyToAddress(key.PublicKey)}
}

type testServer struct {
	url    string
	noAuth bool
	cfg    *application.Config
	clock  *clock.ManualClock
	owner  wallet
}

func newTestOpts(t *testing.T, noAuth bool) (httpinterface.ServiceOpts, *application.Config, *clock.ManualClock) {
	securePubSub, err := pubsub.NewService(pubsub.NewInMemoryStore(), 0)
	require.NoError(t, err)

	clk := clock.NewManualClock(100)
	clk.SetTime(time.Now())
	cfg := &application.Config{
		DBType:         application.DBInMemory,
		TokenLedger:    ledger.NewTokenLedger(),
		CurrencyLedger: ledger.NewCurrencyLedger(),
		Clock:          clk,
		SecurePubSub:   securePubSub,
		FaucetEnabled:  true,
	}
	require.NoError(t, cfg.Validate())
	t.Cleanup(func() {
		cfg.PubSubService().Close()
	})

	return httpinterface.ServiceOpts{
		Port:        9945,
		AuthSecret:  authSecret,
		NoAuth:      noAuth,
		ExchangeSvc: cfg.ExchangeService(),
		PermitSvc:   cfg.PermitService(),
		OperatorSvc: cfg.OperatorService(),
		PubSubSvc:   cfg.PubSubService(),
	}, cfg, clk
}

func newTestServer(t *testing.T, noAuth bool) *testServer {
	opts, cfg, clk := newTestOpts(t, noAuth)
	owner := newWallet(t)

	_, err := cfg.OperatorService().InitFactory(ctx, application.FactoryConfig{
		Owner:                   owner.addr,
		ChainID:                 big.NewInt(1),
		BaseURI:                 "https://nft.shoyu.test/",
		ProtocolFeeRecipient:    protocolVault,
		ProtocolFee:             domain.DefaultProtocolFee,
		OperationalFeeRecipient: operationalVault,
		OperationalFee:          domain.DefaultOperationalFee,
		Strategies:              domain.StrategyTypes(),
	})
	require.NoError(t, err)

	server := httptest.NewServer(httpinterface.NewRouter(opts))
	t.Cleanup(server.Close)

	return &testServer{
		url:    server.URL,
		noAuth: noAuth,
		cfg:    cfg,
		clock:  clk,
		owner:  owner,
	}
}

// do sends the request on behalf of caller, if not zero, and decodes the
// response body into out for successful responses. It returns the status
// code along with the error code of failed requests.
func (s *testServer) do(
	t *testing.T, method, path string, caller common.Address,
	body, out interface{},
) (int, string) {
	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.url+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if caller != (common.Address{}) {
		if s.noAuth {
			req.Header.Set(httpinterface.CallerHeader, caller.Hex())
		} else {
			token, err := httpinterface.NewAuthToken(authSecret, caller, time.Minute)
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		errRes := struct {
			Code string `json:"code"`
		}{}
		json.NewDecoder(res.Body).Decode(&errRes)
		return res.StatusCode, errRes.Code
	}
	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode, ""
}

func (s *testServer) deployCollection(
	t *testing.T, owner common.Address, tokenIDs ...int64,
) httpinterface.CollectionResponse {
	ids := make([]*big.Int, 0, len(tokenIDs))
	for _, id := range tokenIDs {
		ids = append(ids, big.NewInt(id))
	}

	collection := httpinterface.CollectionResponse{}
	status, code := s.do(
		t, http.MethodPost, "/v1/collections", s.owner.addr,
		httpinterface.DeployCollectionRequest{
			Owner:               owner,
			Name:                "Shoyu",
			Symbol:              "SHOYU",
			RoyaltyFeeRecipient: owner,
			RoyaltyFee:          25,
			TokenIDs:            ids,
		},
		&collection,
	)
	require.Equal(t, http.StatusCreated, status, code)
	return collection
}
