package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 8
)

// バッジ更新メッセージ
type CartCountMessage struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub はセッションごとの websocket 購読者を持つ。
// 送信が詰まった接続は切断する。
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*client]struct{}
	upgrader websocket.Upgrader
	log      *slog.Logger
}

// DI
// allowedOrigins は同一オリジン以外に許可する Origin（例: "https://shop.example.com"）
func NewHub(log *slog.Logger, allowedOrigins ...string) *Hub {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = normalizeOrigin(o); o != "" {
			allowed[o] = struct{}{}
		}
	}

	return &Hub{
		sessions: make(map[string]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return checkOrigin(r, allowed)
			},
		},
		log: log,
	}
}

// Origin が無い（ブラウザ以外）か、同一ホストか、許可リストにあれば通す
func checkOrigin(r *http.Request, allowed map[string]struct{}) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	_, ok := allowed[normalizeOrigin(origin)]
	return ok
}

func normalizeOrigin(o string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(o), "/"))
}

func (h *Hub) CartChanged(ctx context.Context, sessionID string, count int) {
	data, err := json.Marshal(CartCountMessage{Type: "cart_count", Count: count})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.sessions[sessionID] {
		select {
		case c.send <- data:
		default:
			h.log.WarnContext(ctx, "websocket subscriber is slow, dropping", "session_id", sessionID)
			_ = c.conn.Close()
		}
	}
}

// Serve は接続をアップグレードし、切断されるまでブロックする。
// 接続直後に現在の個数を1回送る。
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, sessionID string, initialCount int) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(sessionID, c)
	defer h.unregister(sessionID, c)

	go c.writeLoop()

	h.CartChanged(r.Context(), sessionID, initialCount)

	// クライアントからのメッセージは読み捨てる
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}

func (c *client) writeLoop() {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			_ = c.conn.Close()
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
	_ = c.conn.Close()
}

func (h *Hub) register(sessionID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.sessions[sessionID]
	if !ok {
		set = make(map[*client]struct{})
		h.sessions[sessionID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(sessionID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.sessions[sessionID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.sessions, sessionID)
	}
}

// セッションの接続数
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// Close は全接続を切る（シャットダウン時）。
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, set := range h.sessions {
		for c := range set {
			_ = c.conn.Close()
		}
	}
}
