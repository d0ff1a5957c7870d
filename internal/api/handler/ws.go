package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	zlog "github.com/rs/zerolog/log"

	"anonychat/backend/internal/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The dashboard is served from a different origin in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// LogStream upgrades to a websocket and streams server log entries: the
// recent backlog first, then live entries until the client disconnects.
func (h *Handler) LogStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for _, entry := range log.Recent() {
		if err := conn.WriteJSON(entry); err != nil {
			return
		}
	}

	sub := log.Subscribe()
	defer log.Unsubscribe(sub)

	// Reader goroutine notices the close; writing stops when it fires.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case entry, ok := <-sub:
			if !ok {
				return
			}
			if err := conn.WriteJSON(entry); err != nil {
				zlog.Debug().Err(err).Msg("log stream client gone")
				return
			}
		}
	}
}
