package voice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-journal/internal/logger"
	"github.com/dvloznov/finance-journal/internal/metrics"
	"github.com/dvloznov/finance-journal/internal/pipeline"
)

const writeTimeout = 10 * time.Second

// Config bounds a voice connection.
type Config struct {
	MaxHistory      int
	MaxMessageBytes int64
	TurnTimeout     time.Duration
}

// Handler upgrades requests to WebSocket connections and runs the
// audio -> transcript -> reply -> audio loop on each of them.
type Handler struct {
	speech   Speech
	cfg      Config
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewHandler creates a voice handler.
func NewHandler(speech Speech, cfg Config, log zerolog.Logger) *Handler {
	return &Handler{
		speech: speech,
		cfg:    cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		h.log.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	session := NewSession(h.cfg.MaxHistory)
	log := h.log.With().Str("session_id", session.ID).Logger()
	ctx := logger.WithContext(r.Context(), log)

	metrics.VoiceSessions.Inc()
	defer metrics.VoiceSessions.Dec()
	log.Info().Str("remote_addr", r.RemoteAddr).Msg("Voice session started")

	if h.cfg.MaxMessageBytes > 0 {
		conn.SetReadLimit(h.cfg.MaxMessageBytes)
	}

	err = h.loop(ctx, conn, session)
	switch {
	case err == nil, isNormalClose(err):
		log.Info().Int("turns", session.Len()).Msg("Voice session closed")
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeTimeout))
	default:
		log.Error().Err(err).Msg("Voice session failed")
		_ = h.write(conn, websocket.TextMessage, []byte("Error: "+clientMessage(err)))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "error"),
			time.Now().Add(writeTimeout))
	}
}

var (
	errNotBinary  = errors.New("expected binary audio message")
	errEmptyAudio = errors.New("empty audio message")
)

// clientMessage is what the client is told about err. Only protocol
// mistakes are described; everything else stays in the log.
func clientMessage(err error) string {
	if errors.Is(err, errNotBinary) || errors.Is(err, errEmptyAudio) {
		return err.Error()
	}
	return "voice turn failed"
}

func (h *Handler) loop(ctx context.Context, conn *websocket.Conn, session *Session) error {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if msgType != websocket.BinaryMessage {
			return errNotBinary
		}
		if len(data) == 0 {
			return errEmptyAudio
		}

		audio, reply, err := h.turn(ctx, session, data)
		if err != nil {
			return err
		}

		if err := h.write(conn, websocket.BinaryMessage, audio); err != nil {
			return fmt.Errorf("send audio: %w", err)
		}
		if err := h.write(conn, websocket.TextMessage, []byte(reply)); err != nil {
			return fmt.Errorf("send transcript: %w", err)
		}
	}
}

// turn handles one utterance. History is only updated when the whole turn
// succeeds.
func (h *Handler) turn(ctx context.Context, session *Session, data []byte) ([]byte, string, error) {
	if h.cfg.TurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.TurnTimeout)
		defer cancel()
	}

	transcript, err := h.speech.Transcribe(ctx, data, detectAudioMIME(data))
	if err != nil {
		return nil, "", err
	}

	prompt, err := pipeline.Render(pipeline.KindInsight, map[string]string{"note": transcript})
	if err != nil {
		return nil, "", err
	}

	reply, err := h.speech.Reply(ctx, session.History(), prompt)
	if err != nil {
		return nil, "", err
	}

	audio, err := h.speech.Synthesize(ctx, reply)
	if err != nil {
		return nil, "", err
	}

	session.Append(RoleUser, transcript)
	session.Append(RoleModel, reply)

	log := logger.FromContext(ctx)
	log.Debug().
		Int("audio_in_bytes", len(data)).
		Int("audio_out_bytes", len(audio)).
		Int("history", session.Len()).
		Msg("Voice turn completed")
	return audio, reply, nil
}

func (h *Handler) write(conn *websocket.Conn, msgType int, data []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(msgType, data)
}

func isNormalClose(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived)
}
