package httpinterface

import (
	"fmt"
	"net/http"
)

const (
	EntityFactory    = "factory"
	EntityCollection = "collection"
	EntityExchange   = "exchange"
	EntityPermit     = "permit"
	EntityWallet     = "wallet"
	EntityWebhook    = "webhook"
	EntityEvents     = "events"
	EntityMetrics    = "metrics"

	ActionRead  = "read"
	ActionWrite = "write"
)

// Permission is the entity and the kind of action a route acts upon.
type Permission struct {
	Entity string
	Action string
}

func route(method, path string) string {
	return fmt.Sprintf("%s %s", method, path)
}

// Whitelist returns the list of all routes that can be accessed without
// caller identity with the relative permission.
func Whitelist() map[string]Permission {
	return map[string]Permission{
		route(http.MethodGet, "/v1/factory"): {
			Entity: EntityFactory,
			Action: ActionRead,
		},
		route(http.MethodGet, "/v1/strategies"): {
			Entity: EntityFactory,
			Action: ActionRead,
		},
		route(http.MethodGet, "/v1/fees"): {
			Entity: EntityFactory,
			Action: ActionRead,
		},
		route(http.MethodGet, "/v1/block"): {
			Entity: EntityFactory,
			Action: ActionRead,
		},
		route(http.MethodGet, "/v1/collections"): {
			Entity: EntityCollection,
			Action: ActionRead,
		},
		route(http.MethodGet, "/v1/collections/:addr"): {
			Entity: EntityCollection,
			Action: ActionRead,
		},
		route(http.MethodGet, "/v1/collections/:addr/royalty"): {
			Entity: EntityCollection,
			Action: ActionRead,
		},
		route(http.MethodGet, "/v1/collections/:addr/tokens/:id"): {
			Entity: EntityCollection,
			Action: ActionRead,
		},
		route(http.MethodGet, "/v1/collections/:addr/orders"): {
			Entity: EntityExchange,
			Action: ActionRead,
		},
		route(http.MethodGet, "/v1/collections/:addr/orders/:hash"): {
			Entity: EntityExchange,
			Action: ActionRead,
		},
		route(http.MethodGet, "/v1/collections/:addr/approved-bid-hash"): {
			Entity: EntityExchange,
			Action: ActionRead,
		},
		route(http.MethodGet, "/v1/collections/:addr/nonces/:owner"): {
			Entity: EntityPermit,
			Action: ActionRead,
		},
		route(http.MethodGet, "/v1/balances/:currency/:owner"): {
			Entity: EntityWallet,
			Action: ActionRead,
		},
		route(http.MethodGet, "/v1/events"): {
			Entity: EntityEvents,
			Action: ActionRead,
		},
		route(http.MethodGet, "/metrics"): {
			Entity: EntityMetrics,
			Action: ActionRead,
		},
	}
}

// AllPermissionsByRoute returns the permissions of every route that
// requires the identity of the caller.
func AllPermissionsByRoute() map[string]Permission {
	return map[string]Permission{
		route(http.MethodPost, "/v1/strategies"): {
			Entity: EntityFactory,
			Action: ActionWrite,
		},
		route(http.MethodPost, "/v1/deployers"): {
			Entity: EntityFactory,
			Action: ActionWrite,
		},
		route(http.MethodPost, "/v1/fees"): {
			Entity: EntityFactory,
			Action: ActionWrite,
		},
		route(http.MethodPost, "/v1/factory/baseuri"): {
			Entity: EntityFactory,
			Action: ActionWrite,
		},
		route(http.MethodPost, "/v1/mine"): {
			Entity: EntityFactory,
			Action: ActionWrite,
		},
		route(http.MethodPost, "/v1/collections"): {
			Entity: EntityCollection,
			Action: ActionWrite,
		},
		route(http.MethodPost, "/v1/collections/:addr/royalty"): {
			Entity: EntityCollection,
			Action: ActionWrite,
		},
		route(http.MethodPost, "/v1/collections/:addr/park"): {
			Entity: EntityCollection,
			Action: ActionWrite,
		},
		route(http.MethodPost, "/v1/collections/:addr/mint"): {
			Entity: EntityCollection,
			Action: ActionWrite,
		},
		route(http.MethodPost, "/v1/collections/:addr/burn"): {
			Entity: EntityCollection,
			Action: ActionWrite,
		},
		route(http.MethodPost, "/v1/collections/:addr/transfer"): {
			Entity: EntityCollection,
			Action: ActionWrite,
		},
		route(http.MethodPost, "/v1/collections/:addr/baseuri"): {
			Entity: EntityCollection,
			Action: ActionWrite,
		},
		route(http.MethodPost, "/v1/collections/:addr/tokenuri"): {
			Entity: EntityCollection,
			Action: ActionWrite,
		},
		route(http.MethodPost, "/v1/collections/:addr/bid"): {
			Entity: EntityExchange,
			Action: ActionWrite,
		},
		route(http.MethodPost, "/v1/collections/:addr/bid-order"): {
			Entity: EntityExchange,
			Action: ActionWrite,
		},
		route(http.MethodPost, "/v1/collections/:addr/claim"): {
			Entity: EntityExchange,
			Action: ActionWrite,
		},
		route(http.MethodPost, "/v1/collections/:addr/cancel"): {
			Entity: EntityExchange,
			Action: ActionWrite,
		},
		route(http.MethodPost, "/v1/collections/:addr/approved-bid-hash"): {
			Entity: EntityExchange,
			Action: ActionWrite,
		},
		route(http.MethodPost, "/v1/collections/:addr/permit"): {
			Entity: EntityPermit,
			Action: ActionWrite,
		},
		route(http.MethodPost, "/v1/collections/:addr/permit-all"): {
			Entity: EntityPermit,
			Action: ActionWrite,
		},
		route(http.MethodPost, "/v1/faucet"): {
			Entity: EntityWallet,
			Action: ActionWrite,
		},
		route(http.MethodPost, "/v1/webhooks"): {
			Entity: EntityWebhook,
			Action: ActionWrite,
		},
		route(http.MethodGet, "/v1/webhooks"): {
			Entity: EntityWebhook,
			Action: ActionRead,
		},
		route(http.MethodDelete, "/v1/webhooks/:id"): {
			Entity: EntityWebhook,
			Action: ActionWrite,
		},
	}
}

// Validate makes sure no route is both whitelisted and restricted.
func Validate() error {
	restricted := AllPermissionsByRoute()
	for r := range Whitelist() {
		if _, ok := restricted[r]; ok {
			return fmt.Errorf("route %s is both whitelisted and restricted", r)
		}
	}
	return nil
}
