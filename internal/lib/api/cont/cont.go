package cont

import (
	"LeadDesk/entity"
	"context"
)

type ctxKey int

const userKey ctxKey = 0

// PutUser stores the authenticated console user in the request context.
func PutUser(ctx context.Context, user *entity.UserAuth) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser returns the authenticated console user, or nil.
func GetUser(ctx context.Context) *entity.UserAuth {
	user, _ := ctx.Value(userKey).(*entity.UserAuth)
	return user
}
