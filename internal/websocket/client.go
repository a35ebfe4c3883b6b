package websocket

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/bhanuprakash2002/twilio-translation-backend/internal/protocol"
	"github.com/bhanuprakash2002/twilio-translation-backend/internal/relay"
	"github.com/bhanuprakash2002/twilio-translation-backend/internal/session"
)

// ErrSendBufferFull is returned when a slow connection cannot drain its
// outbound queue. The frame is dropped rather than blocking the sender's
// pipeline goroutine.
var ErrSendBufferFull = errors.New("send buffer full")

// Client is a middleman between one websocket connection and its relay
// processor. It implements relay.Transport: peer pipelines enqueue outbound
// frames here without ever touching this client's read loop.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan []byte

	// Connection ID, assigned at upgrade time.
	id string

	processor *relay.Processor

	open atomic.Bool

	sendMu     sync.Mutex
	sendClosed bool

	logger *zap.Logger
}

// Send enqueues one outbound message. Never blocks; a full buffer drops the
// message with an error so the caller can count it.
func (c *Client) Send(payload []byte) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.sendClosed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- payload:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Open reports whether the connection is still usable.
func (c *Client) Open() bool {
	return c.open.Load()
}

// closeSend shuts the outbound queue. Called by the hub on unregister.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.sendClosed {
		c.sendClosed = true
		close(c.send)
	}
}

// readPump pumps messages from the websocket connection to the processor.
func (c *Client) readPump() {
	defer func() {
		c.open.Store(false)
		c.processor.HandleDisconnect()
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket error", zap.Error(err))
			}
			return
		}
		c.processMessage(message)
	}
}

// writePump pumps messages from the send queue to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.open.Store(false)
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Error("failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processMessage dispatches one inbound event to the processor.
func (c *Client) processMessage(message []byte) {
	msg, err := protocol.ParseInbound(message)
	if err != nil {
		c.logger.Error("failed to parse message", zap.Error(err))
		return
	}

	switch msg.Event {
	case protocol.EventConnected:
		c.logger.Debug("stream connected", zap.String("connID", c.id))

	case protocol.EventStart:
		c.handleStart(msg)

	case protocol.EventMedia:
		if msg.Media == nil {
			c.logger.Warn("media event without payload")
			return
		}
		c.processor.HandleMedia(msg.Media.Payload)

	case protocol.EventStop:
		c.processor.HandleStop()
		c.logger.Info("stream stopped", zap.String("connID", c.id))

	case protocol.EventMark:
		if msg.Mark != nil {
			c.logger.Debug("mark acknowledged", zap.String("name", msg.Mark.Name))
		}

	default:
		c.logger.Warn("unknown event", zap.String("event", msg.Event))
	}
}

// handleStart pulls the routing parameters out of the start event and
// registers the leg. A malformed start tears the connection down: without a
// room, leg slot and language the relay has nowhere to route audio.
func (c *Client) handleStart(msg *protocol.InboundMessage) {
	if msg.Start == nil {
		c.logger.Error("start event without payload")
		c.disconnect("invalid start event")
		return
	}

	params := msg.Start.CustomParameters
	roomID := params[protocol.ParamRoomID]
	legType := session.LegType(params[protocol.ParamLegType])
	language := params[protocol.ParamLanguage]

	if roomID == "" || !legType.Valid() {
		c.logger.Error("start event missing routing parameters",
			zap.String("roomID", roomID),
			zap.String("legType", string(legType)))
		c.disconnect("missing roomId or legType")
		return
	}

	streamSid := msg.Start.StreamSid
	if streamSid == "" {
		streamSid = msg.StreamSid
	}

	if err := c.processor.Start(roomID, legType, language, streamSid); err != nil {
		c.logger.Error("failed to start leg",
			zap.String("roomID", roomID),
			zap.String("legType", string(legType)),
			zap.Error(err))
		c.disconnect(err.Error())
		return
	}
}

// disconnect notifies the peer endpoint and closes the connection.
func (c *Client) disconnect(reason string) {
	if payload, err := protocol.NewDisconnectMessage(reason); err == nil {
		c.Send(payload)
	}
	// Give the write pump a moment to flush, then drop the connection. The
	// read pump's deferred cleanup handles the rest.
	time.AfterFunc(writeWait/10, func() { c.conn.Close() })
}
