package domain

import "errors"

var (
	// ErrUnauthorized is returned when a signature, nonce or spender does not
	// match what is expected.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrExpired is returned when a deadline has passed where freshness is
	// required.
	ErrExpired = errors.New("expired")
	// ErrForbidden is returned when the caller lacks the right role for the
	// requested transition, or the order is already claimed or cancelled.
	ErrForbidden = errors.New("forbidden")
	// ErrFailure is returned when the strategy declines a bid or a claim.
	ErrFailure = errors.New("failure")
	// ErrBidExists is returned when cancelling an order with a standing bid.
	ErrBidExists = errors.New("bid exists")

	// ErrInvalidFee is returned for fee rates above what is currently allowed.
	ErrInvalidFee = errors.New("invalid fee")
	// ErrInvalidTokenID is returned for tokens that do not exist or were
	// already burned.
	ErrInvalidTokenID = errors.New("invalid token id")
	// ErrInvalidToTokenID is returned when parking up to a token id that does
	// not extend the parked range.
	ErrInvalidToTokenID = errors.New("invalid to token id")
	// ErrAlreadyMinted is returned when minting or parking an existing token.
	ErrAlreadyMinted = errors.New("token already minted")
	// ErrInvalidTo is returned for zero recipient addresses.
	ErrInvalidTo = errors.New("invalid recipient")
	// ErrInvalidAmount is returned for amounts that are not positive or exceed
	// what is left to fill.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidPrice is returned for prices that are missing or out of range.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrInvalidSigner is returned for orders with a zero signer.
	ErrInvalidSigner = errors.New("invalid signer")
	// ErrInvalidToken is returned for orders with a zero token address.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidDeadline is returned for orders with a zero deadline.
	ErrInvalidDeadline = errors.New("invalid deadline")
	// ErrInvalidStrategy is returned for strategy identifiers that do not
	// belong to any known strategy.
	ErrInvalidStrategy = errors.New("invalid strategy")
	// ErrInvalidStrategyParams is returned when the params of an ask cannot
	// be decoded or make no sense for its strategy.
	ErrInvalidStrategyParams = errors.New("invalid strategy params")
	// ErrInvalidExchange is returned when a collection is asked to trade a
	// token it does not manage.
	ErrInvalidExchange = errors.New("invalid exchange")
	// ErrInvalidName is returned when deploying a collection with no name.
	ErrInvalidName = errors.New("collection name must not be empty")
	// ErrStrategyNotWhitelisted is returned when bidding on an ask whose
	// strategy the factory does not allow.
	ErrStrategyNotWhitelisted = errors.New("strategy not whitelisted")
	// ErrDeployerNotWhitelisted is returned when a caller not allowed by the
	// factory deploys a collection.
	ErrDeployerNotWhitelisted = errors.New("deployer not whitelisted")

	// ErrCollectionNotFound is returned for unknown collection addresses.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrCollectionAlreadyExists is returned when storing a collection twice.
	ErrCollectionAlreadyExists = errors.New("collection already exists")
	// ErrOrderNotFound is returned for asks never bid, claimed or cancelled.
	ErrOrderNotFound = errors.New("order not found")
	// ErrFactoryNotInitialized is returned by any factory lookup before the
	// factory is set up.
	ErrFactoryNotInitialized = errors.New("factory not initialized")
	// ErrFactoryAlreadyInitialized is returned when setting up the factory
	// twice.
	ErrFactoryAlreadyInitialized = errors.New("factory already initialized")
)

// Error codes returned by ErrorCode.
const (
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeExpired         = "EXPIRED"
	CodeForbidden       = "FORBIDDEN"
	CodeFailure         = "FAILURE"
	CodeBidExists       = "BID_EXISTS"
	CodeInvalidFee      = "INVALID_FEE"
	CodeInvalidTokenID  = "INVALID_TOKENID"
	CodeInvalidToToken  = "INVALID_TO_TOKEN_ID"
	CodeAlreadyMinted   = "ALREADY_MINTED"
	CodeInvalidTo       = "INVALID_TO"
	CodeInvalidAmount   = "INVALID_AMOUNT"
	CodeInvalidPrice    = "INVALID_PRICE"
	CodeInvalidSigner   = "INVALID_SIGNER"
	CodeInvalidToken    = "INVALID_TOKEN"
	CodeInvalidDeadline = "INVALID_DEADLINE"
	CodeInvalidStrategy = "INVALID_STRATEGY"
	CodeInvalidParams   = "INVALID_PARAMS"
	CodeInvalidExchange = "INVALID_EXCHANGE"
	CodeInvalidName     = "INVALID_NAME"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeInternal        = "INTERNAL"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrUnauthorized, CodeUnauthorized},
	{ErrExpired, CodeExpired},
	{ErrForbidden, CodeForbidden},
	{ErrFailure, CodeFailure},
	{ErrBidExists, CodeBidExists},
	{ErrInvalidFee, CodeInvalidFee},
	{ErrInvalidTokenID, CodeInvalidTokenID},
	{ErrInvalidToTokenID, CodeInvalidToToken},
	{ErrAlreadyMinted, CodeAlreadyMinted},
	{ErrInvalidTo, CodeInvalidTo},
	{ErrInvalidAmount, CodeInvalidAmount},
	{ErrInvalidPrice, CodeInvalidPrice},
	{ErrInvalidSigner, CodeInvalidSigner},
	{ErrInvalidToken, CodeInvalidToken},
	{ErrInvalidDeadline, CodeInvalidDeadline},
	{ErrInvalidStrategy, CodeInvalidStrategy},
	{ErrInvalidStrategyParams, CodeInvalidParams},
	{ErrInvalidExchange, CodeInvalidExchange},
	{ErrInvalidName, CodeInvalidName},
	{ErrStrategyNotWhitelisted, CodeForbidden},
	{ErrDeployerNotWhitelisted, CodeForbidden},
	{ErrCollectionNotFound, CodeNotFound},
	{ErrOrderNotFound, CodeNotFound},
	{ErrFactoryNotInitialized, CodeNotFound},
	{ErrCollectionAlreadyExists, CodeConflict},
	{ErrFactoryAlreadyInitialized, CodeConflict},
}

// ErrorCode maps the given error to the code of the first known error it
// wraps. Unknown errors are reported as internal.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return CodeInternal
}
