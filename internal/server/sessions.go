package server

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"queryquest/internal/game"
)

const (
	sessionCookie = "qq_session"
	sessionTTL    = 12 * time.Hour
)

var errInvalidSession = errors.New("invalid session")

type sessionClaims struct {
	Room        string `json:"room"`
	Participant string `json:"participant"`
	jwt.RegisteredClaims
}

type session struct {
	Room        string
	Participant game.ParticipantID
}

// sessionManager signs the capability handed to a participant when they join.
type sessionManager struct {
	secret []byte
	secure bool
}

func newSessionManager(secret string, secure bool) *sessionManager {
	key := []byte(secret)
	if len(key) == 0 {
		buf := make([]byte, 32)
		_, _ = rand.Read(buf)
		key = []byte(hex.EncodeToString(buf))
	}
	return &sessionManager{secret: key, secure: secure}
}

func (m *sessionManager) Issue(code string, id game.ParticipantID) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Room:        code,
		Participant: string(id),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *sessionManager) Verify(token string) (session, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidSession
		}
		return m.secret, nil
	})
	if err != nil {
		return session{}, errInvalidSession
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || claims.Room == "" || claims.Participant == "" {
		return session{}, errInvalidSession
	}
	return session{Room: claims.Room, Participant: game.ParticipantID(claims.Participant)}, nil
}

// Set stores the token in an HttpOnly cookie.
func (m *sessionManager) Set(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// candidateTokens lists the tokens a request carries: the ?token= parameter,
// the bearer header and the cookie, in that order.
func candidateTokens(c *gin.Context) []string {
	var tokens []string
	if token := c.Query("token"); token != "" {
		tokens = append(tokens, token)
	}
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		tokens = append(tokens, strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Request.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		tokens = append(tokens, cookie.Value)
	}
	return tokens
}

// authorize resolves the caller to a participant of room.
func (s *Server) authorize(c *gin.Context, room *game.Room) (game.ParticipantID, bool) {
	for _, token := range candidateTokens(c) {
		sess, err := s.sessions.Verify(token)
		if err != nil || sess.Room != room.Code() {
			continue
		}
		if room.Validate(sess.Participant) {
			return sess.Participant, true
		}
	}
	return "", false
}
