package requestdata

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

var requestDataKey = contextKey{}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey)
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}

// RequestData is the acting principal for a request. Services take it as an
// explicit parameter so access decisions never depend on ambient state.
type RequestData struct {
	TokenString  string
	RefreshToken string
	UserID       uuid.UUID
	DisplayName  string
	Role         string
	TeamID       uuid.UUID
}

func (rd *RequestData) IsAdmin() bool {
	if rd == nil {
		return false
	}
	return rd.Role == "admin" || rd.Role == "superadmin"
}

func (rd *RequestData) IsCoach() bool {
	if rd == nil {
		return false
	}
	return rd.Role == "coach"
}
