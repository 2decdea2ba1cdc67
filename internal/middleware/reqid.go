package middleware

import (
	"context"

	"github.com/go-chi/chi/v5/middleware"
)

// contextWithReqID stores id under chi's request ID key so that
// middleware.GetReqID works for handlers and the error handler.
func contextWithReqID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, middleware.RequestIDKey, id)
}

// GetReqID returns the request ID assigned by RequestID
func GetReqID(ctx context.Context) string {
	return middleware.GetReqID(ctx)
}
