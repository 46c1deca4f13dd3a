package app

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kvvPro/foodcourt/cmd/foodcourt/auth"
)

const registerDeadline = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// token in the register frame is the auth boundary, not the origin
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConn serializes writes: the dispatcher may push from several request
// goroutines at once and *websocket.Conn allows only one concurrent writer.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *wsConn) SetWriteDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.SetWriteDeadline(t)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

type registerFrame struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// WSHandle upgrades the connection and waits for the register handshake.
// Identity comes from the JWT in the frame, never from a client-supplied
// user id.
func (srv *Server) WSHandle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Sugar.Infoln("websocket upgrade failed: ", err.Error())
		return
	}

	conn.SetReadDeadline(time.Now().Add(registerDeadline))
	_, message, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return
	}

	var frame registerFrame
	if err := json.Unmarshal(message, &frame); err != nil || frame.Type != "register" {
		conn.Close()
		return
	}

	userInfo, err := auth.GetUserInfo(frame.Token)
	if err != nil {
		Sugar.Infoln("websocket register rejected: ", err.Error())
		conn.Close()
		return
	}

	wc := &wsConn{conn: conn}
	srv.registry.Register(userInfo.Login, wc)
	conn.SetReadDeadline(time.Time{})

	// the read loop only detects disconnects, clients send nothing after
	// the handshake
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			srv.registry.UnregisterConn(userInfo.Login, wc)
			conn.Close()
			return
		}
	}
}
