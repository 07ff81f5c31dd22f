package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/r3d91ll/spectra/pkg/chart"
	"github.com/r3d91ll/spectra/pkg/config"
	serrors "github.com/r3d91ll/spectra/pkg/errors"
	"github.com/r3d91ll/spectra/pkg/results"
)

// Session message types.
const (
	SessionResize     = "resize"
	SessionOptions    = "options"
	SessionBrush      = "brush"
	SessionBrushClear = "brush_clear"
	SessionBrushMove  = "brush_move"
	SessionSelect     = "select"
	SessionWheel      = "wheel"
	SessionPan        = "pan"
	SessionZoomReset  = "zoom_reset"

	EventTypeFrame       = "frame"
	EventTypeRangeSelect = "range_select"
)

// Gesture phases for brush and pan messages.
const (
	PhaseStart = "start"
	PhaseMove  = "move"
	PhaseEnd   = "end"
)

// SessionMessage is a message sent by the client of an interactive chart.
// Only the fields of the given type are read.
type SessionMessage struct {
	Type    string       `json:"type"`
	Width   float64      `json:"width,omitempty"`
	Height  float64      `json:"height,omitempty"`
	Options *ChartParams `json:"options,omitempty"`
	Phase   string       `json:"phase,omitempty"`
	X       float64      `json:"x,omitempty"`
	Y       float64      `json:"y,omitempty"`
	X0      float64      `json:"x0,omitempty"`
	X1      float64      `json:"x1,omitempty"`
	DeltaY  float64      `json:"deltaY,omitempty"`
	Start   int          `json:"start,omitempty"`
	End     int          `json:"end,omitempty"`
}

// FrameData is the payload of a "frame" message.
type FrameData struct {
	SVG       string        `json:"svg"`
	Width     float64       `json:"width"`
	Height    float64       `json:"height"`
	Transform TransformData `json:"transform"`
}

// TransformData is the zoom transform of a frame.
type TransformData struct {
	K    float64 `json:"k"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Attr string  `json:"attr"`
}

// RangeData is the payload of a "range_select" message.
type RangeData struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// SessionHandler serves /ws/chart, one interactive chart per connection.
type SessionHandler struct {
	registry *results.Registry
	config   config.ChartConfig
	metrics  *Metrics
	upgrader *websocket.Upgrader
	logger   zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(registry *results.Registry, cfg config.ChartConfig, m *Metrics, upgrader *websocket.Upgrader, logger zerolog.Logger) *SessionHandler {
	if m == nil {
		m = NewMetrics()
	}
	if upgrader == nil {
		upgrader = newUpgrader([]string{"*"})
	}
	return &SessionHandler{
		registry: registry,
		config:   cfg,
		metrics:  m,
		upgrader: upgrader,
		logger:   logger.With().Str("component", "ws").Logger(),
	}
}

// RegisterRoutes registers the session endpoint.
func (h *SessionHandler) RegisterRoutes(router *Router) {
	router.GET("/ws/chart", h.ServeHTTP)
}

// ServeHTTP validates the query, upgrades the connection and starts the
// session. Query errors are answered before the upgrade as plain API errors.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ref := q.Get("id")
	if ref == "" {
		WriteErr(w, serrors.Validation(serrors.ErrValidationRequired, "id is required").
			WithContext("field", "id"))
		return
	}
	res, err := h.registry.Get(ref)
	if err != nil {
		WriteErr(w, err)
		return
	}
	params, err := ParseChartParams(q)
	if err != nil {
		WriteErr(w, err)
		return
	}

	s := &chartSession{
		result:  res,
		params:  params,
		config:  h.config,
		metrics: h.metrics,
		send:    make(chan []byte, sendBufferSize),
		logger:  h.logger.With().Str("result", res.Ref).Logger(),
	}
	series, opts, err := s.build(params)
	if err != nil {
		WriteErr(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("upgrade failed")
		return
	}
	s.conn = conn
	s.size = params.Size(h.config)
	s.chart = chart.New(series, opts)
	h.metrics.ChartSessions.Inc()

	s.sendFrame(s.chart.Draw(s.size))

	go s.writePump()
	go s.readPump()
}

// chartSession owns one chart. All chart calls happen on the readPump
// goroutine, so the range callback only ever runs there too.
type chartSession struct {
	conn    *websocket.Conn
	chart   *chart.Chart
	result  *results.Result
	params  ChartParams
	size    chart.Size
	config  config.ChartConfig
	metrics *Metrics
	send    chan []byte
	logger  zerolog.Logger
}

// build resolves the series and interactive options for params.
func (s *chartSession) build(params ChartParams) (chart.Series, chart.Options, error) {
	series, _, err := params.Series(s.result.Ref, s.result.Table)
	if err != nil {
		return chart.Series{}, chart.Options{}, err
	}
	opts, err := params.Options(s.config)
	if err != nil {
		return chart.Series{}, chart.Options{}, err
	}
	opts.EnableBrush = true
	opts.EnableZoom = true
	opts.OnRangeSelect = s.rangeSelected
	return series, opts, nil
}

func (s *chartSession) rangeSelected(start, end int) {
	s.metrics.RangeSelections.Inc()
	s.enqueue(newMessage(EventTypeRangeSelect, RangeData{Start: start, End: end}))
}

func (s *chartSession) readPump() {
	defer func() {
		s.chart.Close()
		close(s.send)
		s.conn.Close()
		s.metrics.ChartSessions.Dec()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Warn().Err(err).Msg("read error")
			}
			return
		}
		s.handleMessage(message)
	}
}

func (s *chartSession) handleMessage(message []byte) {
	var msg SessionMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		s.sendError("invalid_json", "Failed to parse message")
		return
	}

	start := time.Now()
	var frame *chart.Frame
	switch msg.Type {
	case SessionResize:
		if msg.Width <= 0 || msg.Height <= 0 {
			s.sendError(serrors.ErrValidationInvalidValue, "resize needs a positive width and height")
			return
		}
		size := chart.Size{Width: msg.Width, Height: msg.Height}
		if err := CheckSize(s.config, size); err != nil {
			s.sendErr(err)
			return
		}
		s.size = size
		frame = s.chart.Resize(s.size)
	case SessionOptions:
		if msg.Options == nil {
			s.sendError(serrors.ErrValidationRequired, "options message without options")
			return
		}
		if err := msg.Options.validate(); err != nil {
			s.sendErr(err)
			return
		}
		series, opts, err := s.build(*msg.Options)
		if err != nil {
			s.sendErr(err)
			return
		}
		s.params = *msg.Options
		frame = s.chart.Update(series, opts)
	case SessionBrush:
		switch msg.Phase {
		case PhaseStart:
			frame = s.chart.BrushStart(msg.X)
		case PhaseMove:
			frame = s.chart.BrushMove(msg.X)
		case PhaseEnd:
			frame = s.chart.BrushEnd(msg.X)
		default:
			s.sendError(serrors.ErrValidationInvalidValue, "unknown brush phase: "+msg.Phase)
			return
		}
	case SessionBrushClear:
		frame = s.chart.ClearBrush()
	case SessionBrushMove:
		frame = s.chart.MoveBrush(msg.X0, msg.X1)
	case SessionSelect:
		frame = s.chart.SelectIndices(chart.IndexRange{Start: msg.Start, End: msg.End})
	case SessionWheel:
		frame = s.chart.Wheel(msg.X, msg.Y, msg.DeltaY)
	case SessionPan:
		switch msg.Phase {
		case PhaseStart:
			frame = s.chart.PanStart(msg.X, msg.Y)
		case PhaseMove:
			frame = s.chart.PanMove(msg.X, msg.Y)
		case PhaseEnd:
			frame = s.chart.PanEnd()
		default:
			s.sendError(serrors.ErrValidationInvalidValue, "unknown pan phase: "+msg.Phase)
			return
		}
	case SessionZoomReset:
		frame = s.chart.ResetZoom()
	case EventTypePing:
		s.enqueue(newMessage(EventTypePong, nil))
		return
	default:
		s.sendError("unknown_type", "Unknown message type: "+msg.Type)
		return
	}

	s.metrics.RenderSeconds.WithLabelValues("session").Observe(time.Since(start).Seconds())
	s.sendFrame(frame)
}

func (s *chartSession) sendFrame(f *chart.Frame) {
	if f == nil {
		return
	}
	t := f.Transform
	s.enqueue(newMessage(EventTypeFrame, FrameData{
		SVG:    f.SVG(),
		Width:  f.Width,
		Height: f.Height,
		Transform: TransformData{
			K:    t.K,
			X:    t.X,
			Y:    t.Y,
			Attr: t.String(),
		},
	}))
}

func (s *chartSession) sendErr(err error) {
	if se, ok := serrors.AsSpectraError(err); ok {
		s.sendError(se.Code, se.Message)
		return
	}
	s.sendError(serrors.ErrInternalError, err.Error())
}

func (s *chartSession) sendError(code, message string) {
	s.enqueue(newMessage(EventTypeError, map[string]string{
		"code":    code,
		"message": message,
	}))
}

func (s *chartSession) enqueue(msg *WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case s.send <- data:
	default:
		s.logger.Warn().Str("type", msg.Type).Msg("send buffer full, dropping message")
	}
}

func (s *chartSession) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
