package httpinterface

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

type router struct {
	engine     *gin.Engine
	authSecret string
	noAuth     bool
	whitelist  map[string]Permission
	restricted map[string]Permission
}

// handle registers the route. Restricted routes are served only once the
// caller identity is resolved, whitelisted ones are served as they are.
// Routes with no permission at all are not registered.
func (r *router) handle(method, path string, handler gin.HandlerFunc) {
	key := route(method, path)
	if perm, ok := r.restricted[key]; ok {
		r.engine.Handle(method, path, authenticate(r.authSecret, r.noAuth, perm), handler)
		return
	}
	if _, ok := r.whitelist[key]; ok {
		r.engine.Handle(method, path, handler)
		return
	}
	log.Warnf("skipping route %s with no permission", key)
}

// NewRouter returns the gin engine serving the v1 REST API, the events
// stream and the prometheus metrics.
func NewRouter(opts ServiceOpts) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization", CallerHeader,
		},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        time.Hour,
	}))
	engine.Use(requestLogger, requestMetrics)

	r := &router{
		engine:     engine,
		authSecret: opts.AuthSecret,
		noAuth:     opts.NoAuth,
		whitelist:  Whitelist(),
		restricted: AllPermissionsByRoute(),
	}

	factory := newFactoryHandler(opts.OperatorSvc, opts.ExchangeSvc)
	collection := newCollectionHandler(opts.OperatorSvc, opts.ExchangeSvc)
	exchange := newExchangeHandler(opts.ExchangeSvc)
	permit := newPermitHandler(opts.PermitSvc)
	wallet := newWalletHandler(opts.OperatorSvc)
	webhook := newWebhookHandler(opts.PubSubSvc)
	events := newEventsHandler(opts.PubSubSvc)

	r.handle(http.MethodGet, "/v1/factory", factory.getFactory)
	r.handle(http.MethodPost, "/v1/factory/baseuri", factory.setBaseURI)
	r.handle(http.MethodGet, "/v1/strategies", factory.listStrategies)
	r.handle(http.MethodPost, "/v1/strategies", factory.setStrategyWhitelisted)
	r.handle(http.MethodPost, "/v1/deployers", factory.setDeployerWhitelisted)
	r.handle(http.MethodGet, "/v1/fees", factory.getFees)
	r.handle(http.MethodPost, "/v1/fees", factory.setFee)
	r.handle(http.MethodGet, "/v1/block", factory.blockNumber)
	r.handle(http.MethodPost, "/v1/mine", factory.mine)

	r.handle(http.MethodPost, "/v1/collections", collection.deploy)
	r.handle(http.MethodGet, "/v1/collections", collection.list)
	r.handle(http.MethodGet, "/v1/collections/:addr", collection.get)
	r.handle(http.MethodGet, "/v1/collections/:addr/royalty", collection.royaltyInfo)
	r.handle(http.MethodPost, "/v1/collections/:addr/royalty", collection.setRoyaltyFee)
	r.handle(http.MethodPost, "/v1/collections/:addr/park", collection.park)
	r.handle(http.MethodPost, "/v1/collections/:addr/mint", collection.mint)
	r.handle(http.MethodPost, "/v1/collections/:addr/burn", collection.burn)
	r.handle(http.MethodPost, "/v1/collections/:addr/transfer", collection.transfer)
	r.handle(http.MethodPost, "/v1/collections/:addr/baseuri", collection.setBaseURI)
	r.handle(http.MethodPost, "/v1/collections/:addr/tokenuri", collection.setTokenURI)
	r.handle(http.MethodGet, "/v1/collections/:addr/tokens/:id", collection.getToken)

	r.handle(http.MethodPost, "/v1/collections/:addr/bid", exchange.bid)
	r.handle(http.MethodPost, "/v1/collections/:addr/bid-order", exchange.bidWithOrder)
	r.handle(http.MethodPost, "/v1/collections/:addr/claim", exchange.claim)
	r.handle(http.MethodPost, "/v1/collections/:addr/cancel", exchange.cancel)
	r.handle(http.MethodGet, "/v1/collections/:addr/approved-bid-hash", exchange.approvedBidHash)
	r.handle(http.MethodPost, "/v1/collections/:addr/approved-bid-hash", exchange.updateApprovedBidHash)
	r.handle(http.MethodGet, "/v1/collections/:addr/orders", exchange.listOrders)
	r.handle(http.MethodGet, "/v1/collections/:addr/orders/:hash", exchange.getOrder)

	r.handle(http.MethodPost, "/v1/collections/:addr/permit", permit.permit)
	r.handle(http.MethodPost, "/v1/collections/:addr/permit-all", permit.permitAll)
	r.handle(http.MethodGet, "/v1/collections/:addr/nonces/:owner", permit.nonces)

	r.handle(http.MethodPost, "/v1/faucet", wallet.faucet)
	r.handle(http.MethodGet, "/v1/balances/:currency/:owner", wallet.balance)

	r.handle(http.MethodPost, "/v1/webhooks", webhook.addWebhook)
	r.handle(http.MethodGet, "/v1/webhooks", webhook.listWebhooks)
	r.handle(http.MethodDelete, "/v1/webhooks/:id", webhook.removeWebhook)

	r.handle(http.MethodGet, "/v1/events", events.streamEvents)
	r.handle(http.MethodGet, "/metrics", gin.WrapH(promhttp.Handler()))

	return engine
}
