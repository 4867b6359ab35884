package gateway

import (
	"net/http"
	"strings"
	"time"

	"github.com/example/stockdesk/pkg/auth"
	"github.com/example/stockdesk/pkg/inventory"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// register godoc
// @Summary Register a customer account
// @Tags users
// @Accept json
// @Produce json
// @Param request body inventory.UserInput true "Request body"
// @Success 201 {object} envelope
// @Failure 400 {object} envelope
// @Router /users/register [post]
func (g *Gateway) register(c *gin.Context) {
	var in inventory.UserInput
	if !g.bind(c, &in) {
		return
	}
	u, err := g.svc.Register(c.Request.Context(), in)
	if err != nil {
		g.fail(c, err)
		return
	}
	if err := g.issueSession(c, u); err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "User registered successfully", "user", u)
}

// login godoc
// @Summary Log in and receive the session cookie
// @Tags users
// @Accept json
// @Produce json
// @Param request body loginRequest true "Request body"
// @Success 200 {object} envelope
// @Failure 400 {object} envelope
// @Router /users/login [post]
func (g *Gateway) login(c *gin.Context) {
	var in loginRequest
	if !g.bind(c, &in) {
		return
	}
	u, err := g.svc.Authenticate(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		g.fail(c, err)
		return
	}
	if err := g.issueSession(c, u); err != nil {
		g.fail(c, err)
		return
	}
	g.cacheIdentity(c, auth.IdentityOf(u))
	ok(c, http.StatusOK, "User logged in successfully", "user", u)
}

// logout clears the cookie and, when the presented token is still valid,
// revokes it for the rest of its lifetime.
//
// @Summary Log out and revoke the session token
// @Tags users
// @Produce json
// @Success 200 {object} envelope
// @Router /users/logout [post]
func (g *Gateway) logout(c *gin.Context) {
	if raw := g.tokenFrom(c); raw != "" && g.sessions != nil {
		if claims, err := g.tokens.Parse(raw); err == nil {
			ttl := claims.ExpiresIn(time.Now())
			if err := g.sessions.RevokeToken(c.Request.Context(), claims.Id, ttl); err != nil {
				g.logger.Warn("Failed to revoke token", zap.String("user_id", claims.UserID), zap.Error(err))
			}
		}
	}
	g.clearSession(c)
	ok(c, http.StatusOK, "Logged out successfully", "", nil)
}

// me godoc
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} envelope
// @Failure 401 {object} envelope
// @Router /frontend/me [get]
func (g *Gateway) me(c *gin.Context, who auth.Identity) {
	ok(c, http.StatusOK, "User fetched successfully", "user", who)
}

// getAllUsers godoc
// @Summary List users except the caller
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} envelope
// @Failure 401 {object} envelope
// @Router /users/getAllUsers [get]
func (g *Gateway) getAllUsers(c *gin.Context, who auth.Identity) {
	users, err := g.svc.ListUsers(c.Request.Context(), who)
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Users fetched successfully", "users", users)
}

// addUser godoc
// @Summary Create a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body inventory.UserInput true "Request body"
// @Success 201 {object} envelope
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Router /users/adduser [post]
func (g *Gateway) addUser(c *gin.Context, who auth.Identity) {
	var in inventory.UserInput
	if !g.bind(c, &in) {
		return
	}
	u, err := g.svc.AddUser(c.Request.Context(), who, in)
	if err != nil {
		g.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "User added successfully", "user", u)
}

// updateProfile godoc
// @Summary Update the caller's profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body inventory.ProfileInput true "Request body"
// @Success 200 {object} envelope
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Router /users/updateProfile [patch]
func (g *Gateway) updateProfile(c *gin.Context, who auth.Identity) {
	var in inventory.ProfileInput
	if !g.bind(c, &in) {
		return
	}
	u, err := g.svc.UpdateProfile(c.Request.Context(), who, in)
	if err != nil {
		g.fail(c, err)
		return
	}
	g.forgetIdentity(c, who.UserID)
	ok(c, http.StatusOK, "Profile updated successfully", "user", u)
}

// deleteUser godoc
// @Summary Delete a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} envelope
// @Failure 400 {object} envelope
// @Failure 401 {object} envelope
// @Router /users/deleteUser/{id} [delete]
func (g *Gateway) deleteUser(c *gin.Context, who auth.Identity) {
	raw := c.Param("id")
	if err := g.svc.DeleteUser(c.Request.Context(), who, raw); err != nil {
		g.fail(c, err)
		return
	}
	// The service accepted the id, so it parses.
	if id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw)); err == nil {
		g.forgetIdentity(c, id)
	}
	ok(c, http.StatusOK, "User deleted successfully", "", nil)
}
