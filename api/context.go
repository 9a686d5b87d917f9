package api

import (
	"context"

	"github.com/rpupo63/newsroom-backend/auth"
)

type keyType string

const (
	principalKey keyType = "principal"
	requestIDKey keyType = "requestID"
)

// ctxWithPrincipal adds the authenticated caller to the context
func ctxWithPrincipal(ctx context.Context, p *auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// ctxGetPrincipal returns the authenticated caller, or nil for anonymous requests
func ctxGetPrincipal(ctx context.Context) *auth.Principal {
	p, _ := ctx.Value(principalKey).(*auth.Principal)
	return p
}

func ctxWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// ctxGetRequestID returns the request id, or "" outside a request
func ctxGetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
