package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"user-registry/internal/domain"
	"user-registry/internal/service"
)

const msgUserCreated = "User created"

// Handler wires HTTP routes to the user service.
type Handler struct {
	users  service.UserService
	logger *logrus.Logger
}

func NewHandler(users service.UserService, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:  users,
		logger: logger,
	}
}

// RegisterRoutes installs the middleware chain and routes. Recovery sits
// inside the access logger so panicking requests are still logged.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(
		requestIDMiddleware(),
		accessLogMiddleware(h.logger),
		recoveryMiddleware(h.logger),
		corsMiddleware(),
	)

	router.POST("/saving", h.createUser)
	router.GET("/users", h.listUsers)
	router.GET("/health", h.health)
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type createUserResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithField("request_id", requestID(c)).Debugf("decode create user body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), domain.NewUser{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createUserResponse{
		Message: msgUserCreated,
		UserID:  user.ID,
	})
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.String(http.StatusOK, "%s", renderUsers(users))
}

func (h *Handler) health(c *gin.Context) {
	if err := h.users.Ping(c.Request.Context()); err != nil {
		h.logger.WithError(err).WithField("request_id", requestID(c)).Warn("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": "ok"})
}

// respondError maps validation failures to 400 and everything else to a
// generic 500 whose cause only goes to the log.
func (h *Handler) respondError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
		return
	}

	h.logger.WithError(err).WithFields(logrus.Fields{
		"request_id": requestID(c),
		"path":       c.Request.URL.Path,
	}).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// renderUsers formats users as a debug listing of (id, "username") tuples.
func renderUsers(users []domain.User) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, u := range users {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "(%d, ", u.ID)
		writeDebugString(&b, u.Username)
		b.WriteByte(')')
	}
	b.WriteByte(']')
	return b.String()
}

// writeDebugString writes s as a debug string literal: short escapes
// for \0 \t \r \n \\ and \", \u{hex} for non-printable and combining runes,
// everything else verbatim.
func writeDebugString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case 0:
			b.WriteString(`\0`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\n':
			b.WriteString(`\n`)
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			if !unicode.IsPrint(r) || unicode.In(r, unicode.Mn, unicode.Me) {
				fmt.Fprintf(b, `\u{%x}`, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
}
