package server

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const (
	contextUserIDKey    = "user_id"
	contextSessionIDKey = "session_id"
)

// WebAuthRequired authenticates the session cookie and stores the user
// and session identifiers on the request context.
func (s *Server) WebAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		session, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserIDKey, session.UserID.String())
		c.Set(contextSessionIDKey, session.ID.String())
		c.Next()
	}
}

func (s *Server) userIDFromSession(c *gin.Context) (snowflake.ID, bool) {
	raw, ok := c.Get(contextUserIDKey)
	if !ok {
		return 0, false
	}
	value, ok := raw.(string)
	if !ok {
		return 0, false
	}
	parsed, err := snowflake.ParseString(value)
	if err != nil || parsed == 0 {
		return 0, false
	}
	return parsed, true
}
