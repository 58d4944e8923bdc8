package wsgateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
	"github.com/0ui-labs/youtube-bookmarks/internal/metrics"
	"github.com/0ui-labs/youtube-bookmarks/pkg/logger"
)

// outboundBufferSize is the bounded outbound channel's capacity
// (WriteBufferHighWaterMark, spec.md §4.7 supplement, default 64).
const outboundBufferSize = 64

// connection owns one accepted WebSocket and the two goroutines that drive
// it: a reader pump for client frames, a writer pump that owns the socket's
// write side and drains outbound, so the RabbitMQ consumer and the history
// replay path never write concurrently (the standard gorilla/websocket
// split the rest of the pack follows for live transports).
type connection struct {
	gw       *Gateway
	ws       *websocket.Conn
	userID   uuid.UUID
	outbound chan serverFrame
}

func newConnection(gw *Gateway, ws *websocket.Conn) *connection {
	return &connection{
		gw:       gw,
		ws:       ws,
		outbound: make(chan serverFrame, outboundBufferSize),
	}
}

// enqueue drops the oldest queued non-terminal frame to make room rather
// than blocking or dropping the new frame outright (spec.md §4.7
// supplement). Terminal frames (complete/error) are never evicted and
// always queued: when the buffer is full, enqueue blocks on a terminal frame
// until the writer pump drains a slot.
func (c *connection) enqueue(f serverFrame) {
	select {
	case c.outbound <- f:
		return
	default:
	}

	if isTerminalFrame(f) {
		c.outbound <- f
		return
	}

	select {
	case evicted := <-c.outbound:
		if isTerminalFrame(evicted) {
			c.outbound <- evicted
		} else {
			metrics.RecordBackpressureDrop()
		}
	default:
	}

	select {
	case c.outbound <- f:
	default:
		metrics.RecordBackpressureDrop()
	}
}

func isTerminalFrame(f serverFrame) bool {
	return f.Type == frameProgress && (f.Stage == string(models.StageComplete) || f.Stage == string(models.StageError))
}

func (c *connection) writePump() {
	for frame := range c.outbound {
		if err := c.ws.WriteJSON(frame); err != nil {
			logger.Log.Debug("websocket write failed", zap.Error(err))
			return
		}
	}
}

func (c *connection) readPump(ctx context.Context) {
	defer c.ws.Close()

	if !c.authenticate(ctx) {
		return
	}

	metrics.RecordWSConnected(1)
	defer metrics.RecordWSConnected(-1)

	sub, err := c.gw.subscriber.Subscribe(c.userID)
	if err != nil {
		logger.Log.Warn("failed to subscribe connection to progress bus", zap.Error(err))
		return
	}
	defer sub.Close()

	go c.forwardDeliveries(sub)

	for {
		var frame clientFrame
		if err := c.ws.ReadJSON(&frame); err != nil {
			return
		}

		switch frame.Type {
		case frameHistory:
			c.replayHistory(ctx, frame)
		case framePing:
			c.enqueue(serverFrame{Type: framePong})
		}
	}
}

func (c *connection) authenticate(ctx context.Context) bool {
	_ = c.ws.SetReadDeadline(time.Now().Add(authDeadlineDefault))
	defer c.ws.SetReadDeadline(time.Time{})

	var frame clientFrame
	if err := c.ws.ReadJSON(&frame); err != nil {
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(closeAuthTimeout, "auth timeout"), time.Now().Add(time.Second))
		return false
	}
	if frame.Type != frameAuth {
		_ = c.ws.WriteJSON(serverFrame{Type: frameAuthFailed})
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(closeAuthFailed, "auth failed"), time.Now().Add(time.Second))
		return false
	}

	userID, ok := c.gw.verifier.VerifyToken(ctx, frame.Token)
	if !ok {
		_ = c.ws.WriteJSON(serverFrame{Type: frameAuthFailed})
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(closeAuthFailed, "auth failed"), time.Now().Add(time.Second))
		return false
	}

	c.userID = userID
	_ = c.ws.WriteJSON(serverFrame{Type: frameAuthOK})
	return true
}

func (c *connection) replayHistory(ctx context.Context, frame clientFrame) {
	since := time.Time{}
	if frame.Since != nil {
		since = *frame.Since
	}
	events, err := c.gw.history.ListSince(ctx, c.userID, since, parseVideoIDs(frame.VideoIDs))
	if err != nil {
		logger.Log.Warn("failed to replay progress history", zap.Error(err))
		return
	}
	for _, e := range events {
		c.enqueue(progressFrame(e))
	}
}

func (c *connection) forwardDeliveries(sub *Subscription) {
	for delivery := range sub.Deliveries {
		var event models.ProgressEvent
		if err := json.Unmarshal(delivery.Body, &event); err != nil {
			logger.Log.Warn("failed to decode progress delivery", zap.Error(err))
			continue
		}
		c.enqueue(progressFrame(&event))
	}
}
