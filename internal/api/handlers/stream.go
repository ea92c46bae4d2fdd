package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/draeangela/industry-data-visualizer/internal/controller"
	"github.com/draeangela/industry-data-visualizer/internal/projection"
	"github.com/draeangela/industry-data-visualizer/internal/search"
	"github.com/draeangela/industry-data-visualizer/pkg/logger"
)

// Timing
const (
	pingInterval = 30 * time.Second
	pongWait     = 90 * time.Second
	writeWait    = 10 * time.Second
	outboxSize   = 32
)

// StreamMessage is sent from server to client
type StreamMessage struct {
	Type       string              `json:"type"` // chart, state, search, error
	Chart      *projection.Result  `json:"chart,omitempty"`
	Outcome    *controller.Outcome `json:"outcome,omitempty"`
	Search     *search.Response    `json:"search,omitempty"`
	Generation uint64              `json:"generation,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// ClientMessage is sent from client to server
type ClientMessage struct {
	Type    string                     `json:"type"` // command, search
	Command *controller.CommandRequest `json:"command,omitempty"`
	Query   *SearchQuery               `json:"query,omitempty"`
}

// SearchQuery is the search box as typed
type SearchQuery struct {
	Mode   string `json:"mode"`
	Text   string `json:"q"`
	Sector string `json:"sector,omitempty"`
	Model  string `json:"model,omitempty"`
}

// StreamHandler pushes charts of one session over a websocket and
// accepts commands and debounced search input on the same socket
type StreamHandler struct {
	registry *controller.Registry
	searcher search.Runner
	debounce time.Duration
	upgrader websocket.Upgrader
	logger   *logger.Logger
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(registry *controller.Registry, searcher search.Runner, debounce time.Duration, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		registry: registry,
		searcher: searcher,
		debounce: debounce,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: log,
	}
}

// streamConn is one connected client
type streamConn struct {
	conn      *websocket.Conn
	out       chan StreamMessage
	done      chan struct{}
	closeOnce sync.Once
}

func (c *streamConn) send(msg StreamMessage) {
	select {
	case c.out <- msg:
	case <-c.done:
	default:
		// client too slow; it will get the next chart
	}
}

func (c *streamConn) stop() {
	c.closeOnce.Do(func() { close(c.done) })
}

// ServeWS upgrades the request and runs the connection until either side closes it
// GET /api/views/{id}/ws
func (h *StreamHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	session, err := h.registry.Get(mux.Vars(r)["id"])
	if err != nil {
		respondFailure(w, h.logger, err, http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	log := h.logger.WithField("session", session.ID())
	log.Debug("Chart stream connected")

	sc := &streamConn{
		conn: conn,
		out:  make(chan StreamMessage, outboxSize),
		done: make(chan struct{}),
	}

	charts, unsubscribe := session.Subscribe()
	defer unsubscribe()

	debouncer := search.NewDebouncer(h.debounce, h.searcher, func(d search.Delivery) {
		if d.Err != nil {
			sc.send(StreamMessage{Type: "error", Generation: d.Generation, Error: d.Err.Error()})
			return
		}
		resp := d.Response
		sc.send(StreamMessage{Type: "search", Generation: d.Generation, Search: &resp})
	}, log)
	defer debouncer.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.writeLoop(sc, charts)
	}()

	if chart, err := session.Chart(r.Context()); err == nil {
		sc.send(StreamMessage{Type: "chart", Chart: &chart})
	}

	h.readLoop(r, sc, session, debouncer, log)

	sc.stop()
	wg.Wait()
	log.Debug("Chart stream disconnected")
}

func (h *StreamHandler) writeLoop(sc *streamConn, charts <-chan projection.Result) {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case msg := <-sc.out:
			sc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sc.conn.WriteJSON(msg); err != nil {
				sc.conn.Close()
				return
			}
		case chart, ok := <-charts:
			if !ok {
				// session closed or expired
				sc.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "view session closed"),
					time.Now().Add(writeWait))
				sc.conn.Close()
				return
			}
			sc.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sc.conn.WriteJSON(StreamMessage{Type: "chart", Chart: &chart}); err != nil {
				sc.conn.Close()
				return
			}
		case <-ping.C:
			if err := sc.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				sc.conn.Close()
				return
			}
		case <-sc.done:
			return
		}
	}
}

func (h *StreamHandler) readLoop(r *http.Request, sc *streamConn, session *controller.Session, debouncer *search.Debouncer, log *logger.Logger) {
	sc.conn.SetReadDeadline(time.Now().Add(pongWait))
	sc.conn.SetPongHandler(func(string) error {
		return sc.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, data, err := sc.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Debug("Chart stream read failed")
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sc.send(StreamMessage{Type: "error", Error: "invalid message: " + err.Error()})
			continue
		}

		switch strings.ToLower(msg.Type) {
		case "command":
			h.handleCommand(r, sc, session, msg.Command)
		case "search":
			h.handleSearch(sc, debouncer, msg.Query)
		default:
			sc.send(StreamMessage{Type: "error", Error: "unknown message type " + msg.Type})
		}
	}
}

func (h *StreamHandler) handleCommand(r *http.Request, sc *streamConn, session *controller.Session, req *controller.CommandRequest) {
	if req == nil {
		sc.send(StreamMessage{Type: "error", Error: "command message without command"})
		return
	}

	cmd, err := req.Decode()
	if err != nil {
		sc.send(StreamMessage{Type: "error", Error: err.Error()})
		return
	}

	outcome, err := session.Dispatch(r.Context(), cmd)
	if err != nil {
		sc.send(StreamMessage{Type: "error", Error: err.Error()})
		return
	}
	// charts of applied changes arrive through the subscription
	outcome.Chart = nil
	sc.send(StreamMessage{Type: "state", Outcome: &outcome})
}

func (h *StreamHandler) handleSearch(sc *streamConn, debouncer *search.Debouncer, q *SearchQuery) {
	if q == nil {
		sc.send(StreamMessage{Type: "error", Error: "search message without query"})
		return
	}

	mode, err := search.ParseMode(q.Mode)
	if err != nil {
		sc.send(StreamMessage{Type: "error", Error: err.Error()})
		return
	}

	debouncer.Submit(search.Query{
		Mode:     mode,
		Text:     q.Text,
		SectorID: q.Sector,
		ModelID:  q.Model,
	})
}
