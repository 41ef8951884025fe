package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"

	"queryquest/internal/game"
	"queryquest/internal/web"
)

const qrSize = 320

type joinResponse struct {
	Code          string             `json:"code"`
	Token         string             `json:"token"`
	ParticipantID game.ParticipantID `json:"participantId"`
	IsHost        bool               `json:"isHost"`
	JoinURL       string             `json:"joinUrl"`
}

func (s *Server) handleHome(c *gin.Context) {
	summaries := s.registry.OpenRooms()
	rooms := make([]web.RoomSummary, 0, len(summaries))
	for _, summary := range summaries {
		rooms = append(rooms, web.RoomSummary{
			Code:         summary.Code,
			Phase:        summary.Phase.String(),
			Participants: summary.Participants,
		})
	}
	s.render(c, web.Home(web.HomeData{
		Rooms:         rooms,
		MaxNameLength: s.cfg.MaxNameLength,
		Flash:         c.Query("flash"),
	}))
}

func (s *Server) handleHealth(c *gin.Context) {
	rooms := s.registry.OpenRooms()
	connections := 0
	for _, room := range rooms {
		connections += s.hub.Connections(room.Code)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "rooms": len(rooms), "connections": connections})
}

func (s *Server) handleCreateRoom(c *gin.Context) {
	if !s.enforceRateLimit(c, "create") {
		return
	}
	var req displayNameRequest
	if !bindBody(c, &req, displayNameMessages, "invalid display name") {
		return
	}
	name, err := validateName(req.DisplayName, s.cfg.MaxNameLength)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, id, err := s.registry.HostRoom(c.Request.Context(), name)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, game.ErrRegistryFull) || errors.Is(err, game.ErrShuttingDown) {
			status = http.StatusServiceUnavailable
		}
		log.Error().Err(err).Msg("host room failed")
		c.JSON(status, gin.H{"error": "could not create room"})
		return
	}
	s.issueSession(c, http.StatusCreated, room, id, true)
}

func (s *Server) handleJoinRoom(c *gin.Context) {
	if !s.enforceRateLimit(c, "join") {
		return
	}
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	var req displayNameRequest
	if !bindBody(c, &req, displayNameMessages, "invalid display name") {
		return
	}
	name, err := validateName(req.DisplayName, s.cfg.MaxNameLength)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, id, err := s.registry.AddParticipantByCode(uri.Code, name)
	if err != nil {
		if errors.Is(err, game.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Str("room", uri.Code).Msg("join room failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not join room"})
		return
	}
	log.Info().Str("room", room.Code()).Str("participant", string(id)).Msg("participant joined")
	s.issueSession(c, http.StatusOK, room, id, false)
}

func (s *Server) issueSession(c *gin.Context, status int, room *game.Room, id game.ParticipantID, isHost bool) {
	token, err := s.sessions.Issue(room.Code(), id)
	if err != nil {
		log.Error().Err(err).Str("room", room.Code()).Msg("issue session failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create session"})
		return
	}
	s.sessions.Set(c, token)
	c.JSON(status, joinResponse{
		Code:          room.Code(),
		Token:         token,
		ParticipantID: id,
		IsHost:        isHost,
		JoinURL:       s.joinURL(c, room.Code()),
	})
}

func (s *Server) handleRoomStatus(c *gin.Context) {
	room, ok := s.lookupRoom(c)
	if !ok {
		return
	}
	id, ok := s.authorize(c, room)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": game.ErrNotAuthenticated.Error()})
		return
	}
	snap, err := room.SnapshotForJoin(id)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// handleRoomPage sends visitors without a session for the room back home to join it.
func (s *Server) handleRoomPage(c *gin.Context) {
	var uri roomURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.Redirect(http.StatusSeeOther, "/?flash=Room+not+found")
		return
	}
	room, ok := s.registry.GetByCode(uri.Code)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/?flash=Room+not+found")
		return
	}
	if _, ok := s.authorize(c, room); !ok {
		c.Redirect(http.StatusSeeOther, "/?flash=Join+room+"+room.Code()+"+first")
		return
	}
	s.render(c, web.Room(web.RoomPage{
		Code:         room.Code(),
		JoinURL:      s.joinURL(c, room.Code()),
		RoundSeconds: s.cfg.RoundSeconds,
	}))
}

func (s *Server) handleRoomQR(c *gin.Context) {
	room, ok := s.lookupRoom(c)
	if !ok {
		return
	}
	png, err := qrcode.Encode(s.joinURL(c, room.Code()), qrcode.Medium, qrSize)
	if err != nil {
		log.Error().Err(err).Str("room", room.Code()).Msg("encode qr failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not render qr code"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) lookupRoom(c *gin.Context) (*game.Room, bool) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return nil, false
	}
	room, ok := s.registry.GetByCode(uri.Code)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": game.ErrRoomNotFound.Error()})
		return nil, false
	}
	return room, true
}

// joinURL points at the home page with the code prefilled, using BASE_URL when set.
func (s *Server) joinURL(c *gin.Context, code string) string {
	base := strings.TrimRight(s.cfg.BaseURL, "/")
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		base = scheme + "://" + c.Request.Host
	}
	return base + "/?code=" + code
}

func (s *Server) render(c *gin.Context, component templ.Component) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := component.Render(c.Request.Context(), c.Writer); err != nil {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("render failed")
	}
}
