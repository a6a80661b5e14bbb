package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tixora/payments/internal/application/authservice"
	"github.com/tixora/payments/internal/domain/models"
	"github.com/tixora/payments/internal/security"
	"github.com/tixora/payments/pkg/config"
)

type Middleware struct {
	AuthSvc authservice.IAuthService
	events  *security.EventLogger
	cfg     *config.Config
	logger  zerolog.Logger
}

func NewMiddleware(authSvc authservice.IAuthService, events *security.EventLogger, cfg *config.Config, logger zerolog.Logger) *Middleware {
	return &Middleware{
		AuthSvc: authSvc,
		events:  events,
		cfg:     cfg,
		logger:  logger,
	}
}

func (m *Middleware) SetupMiddleware(router *gin.Engine) {
	router.Use(m.CORS())

	router.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status", param.StatusCode).
			Dur("latency", param.Latency).
			Str("client_ip", param.ClientIP).
			Str("user_agent", param.Request.UserAgent()).
			Msg("HTTP Request")
		return ""
	}))

	router.Use(gin.Recovery())

	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Next()
	})

	router.Use(m.RequireHTTPS())
	router.Use(m.UserAgentFilter())
}

// CORS answers preflights and tags responses for browser clients. With a
// configured origin list only matching origins are allowed; an empty list
// allows any origin. The webhook signature header is deliberately absent
// from the allowed headers: webhooks are server-to-server.
func (m *Middleware) CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin := m.corsOrigin(c.GetHeader("Origin")); origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			if origin != "*" {
				c.Header("Vary", "Origin")
			}
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}

func (m *Middleware) corsOrigin(origin string) string {
	allowed := m.cfg.Security.AllowedOrigins
	if len(allowed) == 0 {
		return "*"
	}
	for _, o := range allowed {
		if strings.EqualFold(o, origin) {
			return origin
		}
	}
	return ""
}

// UserAgentFilter rejects automated clients by user-agent substring.
// Matching is case-insensitive against the configured blocklist.
func (m *Middleware) UserAgentFilter() gin.HandlerFunc {
	return func(c *gin.Context) {
		agent := strings.ToLower(c.Request.UserAgent())
		for _, blocked := range m.cfg.Security.BlockedUserAgents {
			if blocked != "" && strings.Contains(agent, strings.ToLower(blocked)) {
				m.events.BlockedAgent(models.ClientInfo{
					IP:        c.ClientIP(),
					UserAgent: c.Request.UserAgent(),
					Route:     c.FullPath(),
				})
				c.JSON(http.StatusForbidden, gin.H{
					"error": "Forbidden",
				})
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

// RequireHTTPS rejects plaintext requests outside local and development
// environments. Proxied deployments are recognized via X-Forwarded-Proto.
func (m *Middleware) RequireHTTPS() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.cfg.Security.RequireHTTPS || m.cfg.IsLocal() {
			c.Next()
			return
		}

		if c.Request.TLS == nil && c.GetHeader("X-Forwarded-Proto") != "https" {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "HTTPS is required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// AuthMiddleware guards the admin settings surface with a bearer token
// issued by the auth service.
func (m *Middleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				m.logger.Error().Msg("Invalid Authorization header format")
				c.JSON(http.StatusUnauthorized, gin.H{
					"error": "Invalid Authorization header format, expected 'Bearer <token>'",
				})
				c.Abort()
				return
			}
			tokenString = parts[1]
		} else {
			tokenString = c.Query("token")
			if tokenString == "" {
				m.logger.Error().Msg("Authorization token missing")
				c.JSON(http.StatusUnauthorized, gin.H{
					"error": "Authorization token required via Authorization header or token query parameter",
				})
				c.Abort()
				return
			}
		}

		claim, err := m.AuthSvc.VerifyToken(c.Request.Context(), tokenString)
		if err != nil {
			m.logger.Error().Err(err).Msg("Failed to verify token")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": err.Error(),
			})
			c.Abort()
			return
		}

		c.Set("admin_email", claim.Email)
		c.Set("admin_role", claim.Role)

		c.Next()
	}
}
