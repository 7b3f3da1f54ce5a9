package api

import (
	"context"
	"errors"
)

type keyType string

const (
	authorIDKey  keyType = "authorID"
	requestIDKey keyType = "requestID"
)

// ctxWithAuthorID adds the authenticated author's ID to the context
func ctxWithAuthorID(ctx context.Context, authorID uint) context.Context {
	return context.WithValue(ctx, authorIDKey, authorID)
}

// ctxGetAuthorID retrieves the authenticated author's ID from the context
func ctxGetAuthorID(ctx context.Context) (uint, error) {
	if ctxValue := ctx.Value(authorIDKey); ctxValue == nil {
		return 0, errors.New("key not found in context")
	} else if authorID, ok := ctxValue.(uint); !ok {
		return 0, errors.New("value is not of type `uint`")
	} else {
		return authorID, nil
	}
}

func ctxWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func ctxGetRequestID(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey).(string)
	return requestID
}
