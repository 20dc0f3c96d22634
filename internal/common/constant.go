package common

const (
	// AuthorizationHeaderName is the HTTP header and gRPC metadata key that
	// carries the access token.
	AuthorizationHeaderName = "authorization"

	// BearerPrefix precedes the token inside the authorization value.
	BearerPrefix = "Bearer "
)
