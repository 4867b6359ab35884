package gateway

import (
	"errors"
	"net/http"
	"strings"

	"github.com/example/stockdesk/pkg/auth"
	"github.com/example/stockdesk/pkg/inventory"
	"github.com/example/stockdesk/pkg/models"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type protectedHandler func(c *gin.Context, who auth.Identity)

func unauthorized(msg string) error {
	return &inventory.Error{Kind: inventory.KindUnauthorized, Message: msg}
}

// authed resolves the caller before running h. Requests without a valid,
// unrevoked token for an existing user stop here with 401.
func (g *Gateway) authed(h protectedHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := g.tokenFrom(c)
		if raw == "" {
			g.fail(c, unauthorized("unauthorized - no token provided"))
			return
		}
		claims, err := g.tokens.Parse(raw)
		if err != nil {
			g.fail(c, unauthorized("unauthorized - invalid token"))
			return
		}
		if g.revoked(c, claims) {
			g.fail(c, unauthorized("unauthorized - token revoked"))
			return
		}
		who, err := g.identify(c, claims.UserID)
		if err != nil {
			g.fail(c, err)
			return
		}
		h(c, who)
	}
}

func (g *Gateway) tokenFrom(c *gin.Context) string {
	if cookie, err := c.Cookie(g.config.Auth.CookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// revoked fails open when the session store is unreachable.
func (g *Gateway) revoked(c *gin.Context, claims *auth.Claims) bool {
	if g.sessions == nil {
		return false
	}
	revoked, err := g.sessions.IsTokenRevoked(c.Request.Context(), claims.Id)
	if err != nil {
		g.logger.Warn("Failed to check token revocation", zap.Error(err))
		return false
	}
	return revoked
}

func (g *Gateway) identify(c *gin.Context, userID string) (auth.Identity, error) {
	ctx := c.Request.Context()
	if g.sessions != nil {
		cached, err := g.sessions.GetUserCache(ctx, userID)
		if err == nil {
			return *cached, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			g.logger.Warn("Session cache lookup failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return auth.Identity{}, unauthorized("unauthorized - invalid token")
	}
	u, err := g.svc.Profile(ctx, id)
	if err != nil {
		if inventory.KindOf(err) == inventory.KindNotFound {
			return auth.Identity{}, unauthorized("unauthorized - user not found")
		}
		return auth.Identity{}, err
	}
	who := auth.IdentityOf(u)
	g.cacheIdentity(c, who)
	return who, nil
}

func (g *Gateway) cacheIdentity(c *gin.Context, who auth.Identity) {
	if g.sessions == nil {
		return
	}
	if err := g.sessions.CacheUser(c.Request.Context(), who); err != nil {
		g.logger.Warn("Failed to cache user", zap.String("user_id", who.UserID.Hex()), zap.Error(err))
	}
}

func (g *Gateway) forgetIdentity(c *gin.Context, userID primitive.ObjectID) {
	if g.sessions == nil {
		return
	}
	if err := g.sessions.InvalidateUser(c.Request.Context(), userID.Hex()); err != nil {
		g.logger.Warn("Failed to invalidate cached user", zap.String("user_id", userID.Hex()), zap.Error(err))
	}
}

// issueSession signs a token for the user and sets it as the session cookie.
func (g *Gateway) issueSession(c *gin.Context, u *models.User) error {
	token, _, err := g.tokens.Issue(u.ID.Hex())
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(g.config.Auth.CookieName, token, int(g.tokens.TTL().Seconds()), "/", "", g.config.Auth.CookieSecure, true)
	return nil
}

func (g *Gateway) clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(g.config.Auth.CookieName, "", -1, "/", "", g.config.Auth.CookieSecure, true)
}
