package httpserver

import (
	"net/http"
	"strings"

	"freshcart/internal/domain"
	usersvc "freshcart/internal/service/user"
	"github.com/gin-gonic/gin"
)

const userContextKey = "currentUser"

// authMiddleware resolves the bearer token and stores the user on the context.
func authMiddleware(users UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			failWith(c, http.StatusUnauthorized, "authorization required")
			c.Abort()
			return
		}
		u, err := users.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			respondErr(c, err)
			c.Abort()
			return
		}
		c.Set(userContextKey, u)
		c.Next()
	}
}

func adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentUser(c).IsAdmin() {
			failWith(c, http.StatusForbidden, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// currentUser returns the authenticated user. Routes behind authMiddleware
// always have one.
func currentUser(c *gin.Context) *domain.User {
	u, _ := c.MustGet(userContextKey).(*domain.User)
	return u
}

type userView struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

func viewUser(u *domain.User) userView {
	return userView{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}

func registerHandler(users UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req usersvc.RegisterInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		u, token, err := users.Register(c.Request.Context(), req)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "token": token, "user": viewUser(u)})
	}
}

func loginHandler(users UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
		u, token, err := users.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": viewUser(u)})
	}
}

func meHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "user": viewUser(currentUser(c))})
	}
}
