package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/queryparams/pkg/protocol"
	"github.com/vango-dev/queryparams/pkg/queryparams"
	"github.com/vango-dev/queryparams/pkg/session"
)

// ErrAppPanic wraps a panic recovered from the application script.
var ErrAppPanic = errors.New("server: app panic")

// HandleWebSocket upgrades the request and serves one session until the
// client disconnects.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(s.config.MaxMessageSize)
	s.trackConn(conn)
	defer func() {
		s.untrackConn(conn)
		conn.Close()
	}()

	sess := session.New(
		session.WithQueryString(r.URL.RawQuery),
		session.WithHeaders(r.Header),
		session.WithLogger(s.logger),
		session.WithMetrics(s.metrics),
	)
	if err := s.sessions.Register(sess); err != nil {
		s.logger.Error("session register failed", "error", err)
		return
	}
	defer s.sessions.Remove(sess.ID)

	c := &connection{
		server:  s,
		conn:    conn,
		session: sess,
		params: queryparams.New(
			queryparams.WithName(s.config.StoreName),
			queryparams.WithSession(sess),
		),
	}
	sess.Logger().Info("session started", "query_string", sess.QueryString())
	defer sess.Logger().Info("session ended")

	ctx := r.Context()
	if err := c.run(ctx); err != nil {
		return
	}
	c.readLoop(ctx)
}

// connection is one WebSocket client and its session.
type connection struct {
	server  *Server
	conn    *websocket.Conn
	session *session.Session
	params  *queryparams.Store
}

// readLoop handles client frames until the connection fails.
func (c *connection) readLoop(ctx context.Context) {
	logger := c.session.Logger()
	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure) {
				logger.Warn("websocket read error", "error", err)
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			if err := c.writeFrame(protocol.NewErrorFrame("expected binary frame")); err != nil {
				return
			}
			continue
		}

		frame, err := protocol.DecodeFrame(data)
		if err != nil {
			if err := c.writeFrame(protocol.NewErrorFrame(err.Error())); err != nil {
				return
			}
			continue
		}

		switch frame.Type {
		case protocol.FrameRerun:
			rerun, err := protocol.DecodeRerun(frame.Payload)
			if err != nil {
				if err := c.writeFrame(protocol.NewErrorFrame(err.Error())); err != nil {
					return
				}
				continue
			}
			logger.Debug("rerun requested", "query_string", rerun.QueryString)
			c.session.SetQueryString(rerun.QueryString)
			if err := c.run(ctx); err != nil {
				return
			}
		default:
			msg := fmt.Sprintf("%v: %s", protocol.ErrInvalidFrameType, frame.Type)
			if err := c.writeFrame(protocol.NewErrorFrame(msg)); err != nil {
				return
			}
		}
	}
}

// run executes the app inside a span and flushes the notifications it
// produced. Script errors are reported to the client as a FrameError after
// the notifications that were published before the failure. Only write
// errors are returned.
func (c *connection) run(ctx context.Context) error {
	ctx, span := c.server.tracer.Start(ctx, "queryparams.script_run",
		trace.WithAttributes(
			attribute.String("session.id", c.session.ID),
			attribute.String("query_string", c.session.QueryString()),
		),
	)
	defer span.End()

	appErr := c.callApp(ctx)
	if appErr != nil {
		span.RecordError(appErr)
		span.SetStatus(codes.Error, appErr.Error())
		c.session.Logger().Warn("script run failed", "error", appErr)
	}

	sent, err := c.flush()
	span.SetAttributes(attribute.Int("notifications", sent))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if appErr != nil {
		return c.writeFrame(protocol.NewErrorFrame(appErr.Error()))
	}
	return nil
}

func (c *connection) callApp(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrAppPanic, r)
		}
	}()
	return c.server.app(ctx, c.session, c.params)
}

// flush writes every queued notification in order. A notification whose
// query string does not fit in a frame is replaced by a FrameError so the
// ones around it still reach the client.
func (c *connection) flush() (int, error) {
	msgs := c.session.Drain()
	frames := make([]*protocol.Frame, 0, len(msgs))
	for _, msg := range msgs {
		frame, err := protocol.NewPageInfoFrame(msg)
		if err != nil {
			c.session.Logger().Warn("page info dropped",
				"error", err,
				"query_string_bytes", len(msg.QueryString),
			)
			frame = protocol.NewErrorFrame(fmt.Sprintf("server: encode page info: %v", err))
		}
		frames = append(frames, frame)
	}

	sent := 0
	for i, frame := range frames {
		if i == len(frames)-1 {
			frame.Flags |= protocol.FlagFinal
		}
		if err := c.writeFrame(frame); err != nil {
			return sent, err
		}
		if frame.Type == protocol.FramePageInfo {
			sent++
		}
	}
	return sent, nil
}

func (c *connection) writeFrame(frame *protocol.Frame) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.server.config.WriteTimeout)); err != nil {
		return err
	}
	if err := c.conn.WriteMessage(websocket.BinaryMessage, frame.Encode()); err != nil {
		c.session.Logger().Warn("websocket write failed", "error", err)
		return err
	}
	return nil
}
