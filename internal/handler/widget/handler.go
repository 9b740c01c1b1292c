package widget

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/physical-ai-tutor/backend/internal/client"
	"github.com/zhouzirui/physical-ai-tutor/backend/internal/middleware"
	"github.com/zhouzirui/physical-ai-tutor/backend/internal/speech"
	"github.com/zhouzirui/physical-ai-tutor/backend/internal/widget"
)

const (
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	pingPeriod   = 54 * time.Second
)

// Options holds per-connection widget defaults.
type Options struct {
	// AllowedOrigin is the frontend origin allowed to open a socket. Empty
	// or "*" allows any origin.
	AllowedOrigin  string
	Locale         string
	SpeechRate     float64
	RequestTimeout time.Duration
}

// Handler WebSocket 聊天组件宿主，每个连接对应一个组件实例
type Handler struct {
	client   client.ChatClient
	options  Options
	upgrader websocket.Upgrader
}

// New 创建组件宿主处理器
func New(chatClient client.ChatClient, options Options) *Handler {
	return &Handler{
		client:  chatClient,
		options: options,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return middleware.OriginAllowed(options.AllowedOrigin, origin)
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/widget/ws", h.handleWebSocket)
}

type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// ConfigMessage 浏览器能力声明，必须是第一条消息
type ConfigMessage struct {
	Locale      string `json:"locale"`
	Recognition bool   `json:"recognition"`
	Synthesis   bool   `json:"synthesis"`
}

type textMessage struct {
	Text string `json:"text"`
}

// transcriptMessage carries the session id from the matching listen.
type transcriptMessage struct {
	ID   uint64 `json:"id"`
	Text string `json:"text"`
}

// utteranceEndMessage carries the id from the matching speak.
type utteranceEndMessage struct {
	ID uint64 `json:"id"`
}

type panelMessage struct {
	Open bool `json:"open"`
}

type recognitionEndMessage struct {
	ID    uint64 `json:"id"`
	Error string `json:"error"`
}

// connection owns one socket and the widget behind it.
type connection struct {
	handler     *Handler
	conn        *websocket.Conn
	writeMu     sync.Mutex
	recognizer  *remoteRecognizer
	synthesizer *remoteSynthesizer
	widget      *widget.Widget
}

// handleWebSocket 处理WebSocket连接
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := &connection{handler: h, conn: conn}
	c.recognizer = newRemoteRecognizer(c)
	c.synthesizer = newRemoteSynthesizer(c)
	defer func() {
		if c.widget != nil {
			c.widget.Close()
			log.Printf("[websocket] widget=%s disconnected", c.widget.ID())
		}
	}()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	go c.pingLoop(ctx)

	c.send("connected", nil)

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error: %v", err)
			}
			return
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))
		c.handleMessage(&msg)
	}
}

func (c *connection) handleMessage(msg *inboundMessage) {
	if msg.Type == "config" {
		c.handleConfig(msg.Data)
		return
	}

	w := c.ensureWidget(ConfigMessage{})

	switch msg.Type {
	case "submit":
		var payload textMessage
		if !c.decode(msg.Data, &payload) {
			return
		}
		w.Submit(payload.Text)
	case "draft":
		var payload textMessage
		if !c.decode(msg.Data, &payload) {
			return
		}
		w.SetDraft(payload.Text)
	case "panel":
		var payload panelMessage
		if !c.decode(msg.Data, &payload) {
			return
		}
		w.SetPanelOpen(payload.Open)
	case "voice_start":
		if !w.StartVoice() {
			c.sendSnapshot(w.Snapshot())
		}
	case "voice_stop":
		w.StopVoice()
	case "speech_stop":
		w.StopSpeaking()
	case "transcript":
		var payload transcriptMessage
		if !c.decode(msg.Data, &payload) {
			return
		}
		c.recognizer.deliver(payload.ID, recognition{text: payload.Text})
	case "recognition_end":
		var payload recognitionEndMessage
		if len(msg.Data) > 0 && !c.decode(msg.Data, &payload) {
			return
		}
		c.recognizer.deliver(payload.ID, recognition{err: recognitionError(payload.Error)})
	case "utterance_end":
		var payload utteranceEndMessage
		if len(msg.Data) > 0 && !c.decode(msg.Data, &payload) {
			return
		}
		c.synthesizer.utteranceEnded(payload.ID)
	default:
		c.sendError("unsupported message type: " + msg.Type)
	}
}

func (c *connection) handleConfig(raw json.RawMessage) {
	if c.widget != nil {
		c.sendError("config must be the first message")
		return
	}

	var cfg ConfigMessage
	if len(raw) > 0 && !c.decode(raw, &cfg) {
		return
	}
	w := c.ensureWidget(cfg)
	c.sendSnapshot(w.Snapshot())
}

// ensureWidget creates the widget on first use. Capabilities the browser did
// not declare stay disabled.
func (c *connection) ensureWidget(cfg ConfigMessage) *widget.Widget {
	if c.widget != nil {
		return c.widget
	}

	opts := c.handler.options
	locale := opts.Locale
	if cfg.Locale != "" {
		locale = cfg.Locale
	}

	var recognizer speech.Recognizer
	if cfg.Recognition {
		recognizer = c.recognizer
	}
	var synthesizer speech.Synthesizer
	if cfg.Synthesis {
		synthesizer = c.synthesizer
	}

	c.widget = widget.New(widget.Config{
		Client:         c.handler.client,
		Recognizer:     recognizer,
		Synthesizer:    synthesizer,
		Locale:         locale,
		SpeechRate:     opts.SpeechRate,
		RequestTimeout: opts.RequestTimeout,
		OnChange:       c.sendSnapshot,
	})

	log.Printf("[websocket] widget=%s connected locale=%s recognition=%t synthesis=%t",
		c.widget.ID(), locale, cfg.Recognition, cfg.Synthesis)
	return c.widget
}

func (c *connection) decode(raw json.RawMessage, v any) bool {
	if err := json.Unmarshal(raw, v); err != nil {
		c.sendError("invalid payload")
		return false
	}
	return true
}

func (c *connection) sendSnapshot(snap widget.Snapshot) {
	c.send("state", snap)
}

func (c *connection) sendError(message string) {
	c.send("error", map[string]string{"message": message})
}

func (c *connection) send(msgType string, data any) error {
	msg := outgoingMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(msg); err != nil {
		log.Printf("[websocket] write %s failed: %v", msgType, err)
		return err
	}
	return nil
}

// pingLoop 定期发送ping消息
func (c *connection) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
