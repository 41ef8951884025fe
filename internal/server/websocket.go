package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"queryquest/internal/game"
)

const (
	msgStartGame = "start_game"
	msgNextRound = "next_round"
	msgEndGame   = "end_game"
	msgGuess     = "guess"
	msgQuery     = "query"
)

type clientMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// text accepts either a bare JSON string or {"text": "..."}.
func (m clientMessage) text() string {
	if len(m.Data) == 0 {
		return ""
	}
	var plain string
	if err := json.Unmarshal(m.Data, &plain); err == nil {
		return plain
	}
	var wrapped struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(m.Data, &wrapped); err == nil {
		return wrapped.Text
	}
	return ""
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (s *Server) handleWebsocket(c *gin.Context) {
	var uri roomURI
	if !bindURI(c, &uri) {
		return
	}
	room, ok := s.registry.GetByCode(uri.Code)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": game.ErrRoomNotFound.Error()})
		return
	}
	id, ok := s.authorize(c, room)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": game.ErrNotAuthenticated.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	client := newWSClient(conn, room.Code())
	go client.writePump()

	if _, err := room.Connect(id, client); err != nil {
		log.Info().Str("room", room.Code()).Err(err).Msg("ws connect refused")
		client.close()
		return
	}
	log.Info().Str("room", room.Code()).Str("remote", c.Request.RemoteAddr).Msg("ws connected")
	s.readPump(room, id, client)
}

func (s *Server) readPump(room *game.Room, id game.ParticipantID, client *wsClient) {
	defer func() {
		room.Disconnect(id, client)
		client.close()
	}()

	conn := client.conn
	conn.SetReadLimit(maxMessageBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Str("room", room.Code()).Err(err).Msg("ws read failed")
			}
			return
		}
		if !s.dispatch(room, id, client, msg) {
			return
		}
	}
}

// dispatch handles one inbound message and reports whether to keep reading.
func (s *Server) dispatch(room *game.Room, id game.ParticipantID, client *wsClient, msg clientMessage) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	switch strings.TrimSpace(msg.Event) {
	case msgStartGame:
		err = room.Start(id)
	case msgNextRound:
		err = room.NextRound(ctx, id)
	case msgEndGame:
		if err = room.EndGame(id); err == nil {
			s.hub.CloseRoom(room.Code())
			return false
		}
	case msgGuess:
		correct, guessErr := room.SubmitGuess(id, msg.text())
		if guessErr == nil || !game.Silent(guessErr) {
			client.Deliver(game.GuessResultEvent(correct, guessErr))
		}
		err = guessErr
	case msgQuery:
		result, queryErr := room.SubmitQuery(ctx, id, msg.text())
		if queryErr == nil || !game.Silent(queryErr) {
			client.Deliver(game.QueryResultEvent(result, queryErr))
		}
		err = queryErr
	default:
		log.Debug().Str("room", room.Code()).Str("event", msg.Event).Msg("ws unknown event")
		return true
	}

	switch {
	case err == nil:
	case errors.Is(err, game.ErrNotAuthenticated):
		return false
	case game.Silent(err):
		log.Debug().Str("room", room.Code()).Str("event", msg.Event).Err(err).Msg("ws command ignored")
	case msg.Event == msgGuess || msg.Event == msgQuery:
	default:
		log.Warn().Str("room", room.Code()).Str("event", msg.Event).Err(err).Msg("ws command failed")
	}
	return true
}
