package wsgateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/0ui-labs/youtube-bookmarks/internal/db/repository"
	"github.com/0ui-labs/youtube-bookmarks/pkg/logger"
)

// Gateway accepts WebSocket connections and drives the Live Transport
// (spec.md §4.7): post-connect auth, reconnect-safe history replay, and
// live forwarding of a user's progress events.
type Gateway struct {
	upgrader   websocket.Upgrader
	verifier   TokenVerifier
	subscriber *Subscriber
	history    repository.ProgressEventRepository
}

func NewGateway(verifier TokenVerifier, subscriber *Subscriber, history repository.ProgressEventRepository) *Gateway {
	return &Gateway{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin checking is delegated to the surrounding HTTP router's
			// CORS policy (spec.md §1's "HTTP request routing" Non-goal).
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		verifier:   verifier,
		subscriber: subscriber,
		history:    history,
	}
}

// HandleWS upgrades the request and runs the connection's reader pump and
// writer pump until the client disconnects or fails to authenticate.
func (gw *Gateway) HandleWS(c *gin.Context) {
	ws, err := gw.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := newConnection(gw, ws)
	go conn.writePump()
	conn.readPump(c.Request.Context())
}
