package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next message or pong from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 1024
)

// upgrader accepts same-origin connections only
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// priceCheck is the answer to one price as typed by the user
type priceCheck struct {
	// Value echoes the input
	Value string `json:"value"`
	// Display is the input reformatted for the text field
	Display string `json:"display"`
	Valid   bool   `json:"valid"`
	Error   string `json:"error,omitempty"`
	// Formatted is the canonical currency rendering of a valid price
	Formatted string `json:"formatted,omitempty"`
}

type priceRequest struct {
	Value string `json:"value"`
}

func (h *Handler) checkPrice(value string) priceCheck {
	result := h.validatePrice(value)
	return priceCheck{
		Value:     value,
		Display:   h.prices.FormatInput(value),
		Valid:     result.IsValid,
		Error:     result.Error,
		Formatted: result.Value,
	}
}

// handleValidatePrice answers GET /api/price/validate?value=...
func (h *Handler) handleValidatePrice(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.checkPrice(r.URL.Query().Get("value")))
}

// handlePriceSocket answers every {"value": ...} message on the socket with
// a priceCheck. Messages that are not JSON are answered with an error frame.
func (h *Handler) handlePriceSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already answered the request
		h.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn := &priceConn{
		ws:     ws,
		send:   make(chan []byte, 8),
		done:   make(chan struct{}),
		check:  h.checkPrice,
		logger: h.logger.With().Str("requestId", middleware.GetReqID(r.Context())).Logger(),
	}
	go conn.writePump()
	conn.readPump()
}

// priceConn is one live price feedback connection
type priceConn struct {
	ws     *websocket.Conn
	send   chan []byte
	done   chan struct{} // closed when writePump exits
	check  func(string) priceCheck
	logger zerolog.Logger
}

func (c *priceConn) readPump() {
	defer close(c.send)

	c.ws.SetReadLimit(maxMessageSize)
	if err := c.ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn().Err(err).Msg("websocket read error")
			}
			return
		}
		if err := c.ws.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return
		}

		var reply interface{}
		var req priceRequest
		if err := json.Unmarshal(message, &req); err != nil {
			reply = map[string]string{"error": "invalid message"}
		} else {
			reply = c.check(req.Value)
		}

		payload, err := json.Marshal(reply)
		if err != nil {
			c.logger.Error().Err(err).Msg("failed to encode price check")
			continue
		}
		select {
		case c.send <- payload:
		case <-c.done:
			return
		}
	}
}

func (c *priceConn) write(mt int, payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(mt, payload)
}

func (c *priceConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.done)
		if err := c.ws.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("error closing websocket connection")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.write(websocket.TextMessage, message); err != nil {
				c.logger.Warn().Err(err).Msg("failed to write message")
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
