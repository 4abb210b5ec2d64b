package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/apperrors"
	"github.com/taskhive-dev/taskhive/internal/services"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
)

// wsInbound is one chat turn over the socket. An empty conversation_id
// starts a new conversation.
type wsInbound struct {
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
}

type wsOutbound struct {
	Type           string      `json:"type"`
	ConversationID string      `json:"conversation_id,omitempty"`
	Reply          string      `json:"reply,omitempty"`
	Actions        interface{} `json:"actions,omitempty"`
	Message        string      `json:"message,omitempty"`
	Code           string      `json:"code,omitempty"`
}

// ChatSocket runs the chat pipeline over a websocket. Auth happens in the
// middleware before the upgrade (token via query parameter for browsers).
func ChatSocket(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, types.Error("UNAUTHENTICATED", "User not authenticated", nil))
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)

	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	defer func() {
		conn.Close()
		log.Printf("Chat socket closed for user %d", userID)
	}()

	conn.SetReadLimit(maxMessageSize)

	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		return
	}

	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	// Replies and pings come from different goroutines; gorilla allows one
	// writer at a time.
	var writeMu sync.Mutex

	writeJSON := func(v interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()

		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}

		return conn.WriteJSON(v)
	}

	if err := writeJSON(wsOutbound{Type: "connected", Message: "Chat connection established"}); err != nil {
		log.Printf("Failed to send welcome message: %v", err)
		return
	}

	done := make(chan struct{})
	defer close(done)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				writeMu.Lock()

				if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
					writeMu.Unlock()
					return
				}

				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					writeMu.Unlock()
					log.Printf("Ping failed for user %d: %v", userID, err)
					return
				}

				writeMu.Unlock()
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline for user %d: %v", userID, err)
			break
		}

		messageType, message, err := conn.ReadMessage()

		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for user %d: %v", userID, err)
			}
			break
		}

		if messageType != websocket.TextMessage {
			continue
		}

		var inbound wsInbound

		if err := json.Unmarshal(message, &inbound); err != nil {
			writeJSON(wsOutbound{Type: "error", Code: "VALIDATION_ERROR", Message: "Invalid message format"})
			continue
		}

		uid := inbound.ConversationID

		if uid == "" {
			conversation, err := services.CreateConversation(db.DB, userID, "")

			if err != nil {
				writeChatError(writeJSON, err)
				continue
			}

			uid = conversation.UID
		}

		turn, err := services.PostMessage(ctx.Request.Context(), db.DB, AI, Cfg, userID, uid, inbound.Content)

		if err != nil {
			writeChatError(writeJSON, err)
			continue
		}

		writeJSON(wsOutbound{
			Type:           "reply",
			ConversationID: uid,
			Reply:          turn.Reply,
			Actions:        turn.Actions,
		})
	}
}

func writeChatError(writeJSON func(interface{}) error, err error) {
	appErr := apperrors.As(err)

	if appErr.Status == http.StatusInternalServerError {
		log.Printf("Chat socket turn failed: %v", err)
	}

	writeJSON(wsOutbound{Type: "error", Code: appErr.Code, Message: appErr.Message})
}
