package user

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ZJUSCT/TopTSP/internal/pubsub"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// rankingPush is one websocket frame: the event that triggered it and the
// leaderboard as it now reads.
type rankingPush struct {
	Event   string      `json:"event"`
	Ranking interface{} `json:"ranking"`
}

func (h *Handler) pushRanking(conn *websocket.Conn, event string) error {
	view, err := h.svc.Ranking()
	if err != nil {
		zap.S().Errorf("failed to build ranking for websocket push: %v", err)
		msg := pubsub.FormatMessage("error", "ranking unavailable")
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteMessage(websocket.TextMessage, msg)
	}
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(rankingPush{Event: event, Ranking: view})
}

func (h *Handler) handleRankingWs(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.S().Errorf("failed to upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	msgChan, unsubscribe := h.events.Subscribe(pubsub.TopicRanking)
	defer unsubscribe()

	if err := h.pushRanking(conn, "initial"); err != nil {
		return
	}

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					zap.S().Infof("websocket unexpected close error: %v", err)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-clientClosed:
			return
		case msg, ok := <-msgChan:
			if !ok {
				return
			}
			var ev pubsub.Event
			if err := json.Unmarshal(msg, &ev); err != nil {
				ev.Data = "update"
			}
			if err := h.pushRanking(conn, ev.Data); err != nil {
				zap.S().Warnf("error writing to websocket: %v", err)
				return
			}
		}
	}
}
