package chatui

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lewisedginton/adk_webui/pkg/logger"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

type wsRequest struct {
	Prompt string `json:"prompt"`
}

type wsReply struct {
	Text       string `json:"text,omitempty"`
	SearchUsed bool   `json:"search_used,omitempty"`
	Error      string `json:"error,omitempty"`
}

// serveWebsocket answers one prompt per inbound message. Messages are handled in
// order and each reply is sent before the next message is read.
func (h *handler) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	log := logger.GetLoggerFromContext(r.Context(), h.log)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("Websocket upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(h.maxMessage)

	log.Debug("Websocket connected")
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("Websocket closed unexpectedly", logger.ErrorField(err))
			}
			return
		}

		reply := h.handleMessage(r, raw)
		if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			return
		}
		if err := conn.WriteJSON(reply); err != nil {
			if !errors.Is(err, websocket.ErrCloseSent) {
				log.Warn("Failed to write websocket reply", logger.ErrorField(err))
			}
			return
		}
	}
}

func (h *handler) handleMessage(r *http.Request, raw []byte) wsReply {
	var req wsRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return wsReply{Error: "invalid message: expected {\"prompt\": \"...\"}"}
	}

	resp, err := h.svc.Answer(r.Context(), req.Prompt)
	if err != nil {
		logger.GetLoggerFromContext(r.Context(), h.log).Error("Prompt failed", logger.ErrorField(err))
		return wsReply{Error: err.Error()}
	}
	return wsReply{Text: resp.Text, SearchUsed: resp.SearchUsed}
}
