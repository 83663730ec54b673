package cont

import (
	"classroom/entity"
	"context"
)

type ctxKey string

const SessionKey ctxKey = "sessionData"

func PutSession(c context.Context, session *entity.Session) context.Context {
	return context.WithValue(c, SessionKey, *session)
}

func GetSession(c context.Context) *entity.Session {
	session, ok := c.Value(SessionKey).(entity.Session)
	if !ok {
		return &entity.Session{}
	}
	return &session
}
