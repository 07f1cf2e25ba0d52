package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"comichub/internal/apperr"
	"comichub/internal/http-api/dto"
	"comichub/internal/http-api/middleware"
	"comichub/internal/http-api/service"
)

// AuthHandler is the user-facing edge of the authentication collaborator
// plus the per-user favorites listing.
type AuthHandler struct {
	auth      service.AuthService
	favorites service.FavoriteService
}

func NewAuthHandler(auth service.AuthService, favorites service.FavoriteService) *AuthHandler {
	return &AuthHandler{auth: auth, favorites: favorites}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, authRequired gin.HandlerFunc) {
	rg.POST("/register", h.Register)
	rg.POST("/login", h.Login)
	rg.GET("/me", authRequired, h.Me)
	rg.GET("/:nick/favorites", h.Favorites)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var in dto.RegisterDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.auth.Register(ctx, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromUserToResponse(user))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var in dto.LoginDTO
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	token, err := h.auth.Login(ctx, in.Email, in.Password)
	if err != nil {
		// Bad credentials answer 401, not the 403 the kind maps to
		// elsewhere.
		if apperr.KindOf(err) == apperr.KindAuthorization {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	principal, ok := middleware.CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, dto.UserResponse{ID: principal.ID, Email: principal.Email, Nick: principal.Nick})
}

func (h *AuthHandler) Favorites(c *gin.Context) {
	nick := c.Param("nick")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	list, err := h.favorites.ListByNick(ctx, nick)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
