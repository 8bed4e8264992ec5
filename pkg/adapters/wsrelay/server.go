package wsrelay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
	"github.com/One-eyed-warrior/data2video/pkg/ports"
)

// Server accepts frame sequences over websockets and keeps them in a
// backing transport. Every stored sequence gets a fresh UUID handle.
type Server struct {
	backing  ports.FrameTransport
	logger   ports.Logger
	upgrader websocket.Upgrader

	// TargetFunc maps a session ID to the target passed to the backing
	// transport. The default uses the ID itself.
	TargetFunc func(id string) string

	mu       sync.RWMutex
	sessions map[string]session
}

type session struct {
	handle   ports.Handle
	geometry framecodec.Geometry
}

// NewServer creates a Server storing into backing.
func NewServer(backing ports.FrameTransport, logger ports.Logger) *Server {
	return &Server{
		backing: backing,
		logger:  logger.WithComponent("relay"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 << 10,
			WriteBufferSize: 64 << 10,
		},
		TargetFunc: func(id string) string { return id },
		sessions:   make(map[string]session),
	}
}

// ServeHTTP upgrades the request and serves one put or get operation.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	conn.SetReadLimit(controlReadLimit)

	var req Control
	if err := conn.ReadJSON(&req); err != nil {
		s.logger.Warn("Reading request from %s failed: %v", conn.RemoteAddr(), err)
		return
	}

	switch req.Type {
	case TypePut:
		err = s.handlePut(ctx, conn, req)
	case TypeGet:
		err = s.handleGet(ctx, conn, req)
	default:
		err = fmt.Errorf("%w: unexpected %q request", ErrProtocol, req.Type)
	}

	if err != nil {
		s.logger.Warn("Relay request failed: %v", err)
		conn.WriteJSON(Control{Type: TypeError, Error: err.Error()})
	}
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (s *Server) handlePut(ctx context.Context, conn *websocket.Conn, req Control) error {
	g, err := req.geometry()
	if err != nil {
		return err
	}

	frames, err := receiveFrames(conn, g, req.Frames)
	if err != nil {
		return err
	}

	id := uuid.NewString()
	handle, err := s.backing.Persist(ctx, s.TargetFunc(id), frames)
	if err != nil {
		return fmt.Errorf("persist: %w", err)
	}

	s.mu.Lock()
	s.sessions[id] = session{handle: handle, geometry: g}
	s.mu.Unlock()

	s.logger.Info("Stored %d frames as %s", len(frames), id)
	return conn.WriteJSON(Control{Type: TypeStored, Handle: id, Frames: len(frames)})
}

func (s *Server) handleGet(ctx context.Context, conn *websocket.Conn, req Control) error {
	s.mu.RLock()
	sess, ok := s.sessions[req.Handle]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown handle %q", req.Handle)
	}

	frames, err := s.backing.Retrieve(ctx, sess.handle)
	if err != nil {
		return fmt.Errorf("retrieve: %w", err)
	}

	s.logger.Info("Sending %d frames of %s", len(frames), req.Handle)
	return sendFrames(conn, sess.geometry, frames)
}

// Handles returns the IDs of the stored sequences.
func (s *Server) Handles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids
}

// sendFrames writes the frames header, every frame, and the end marker.
func sendFrames(conn *websocket.Conn, g framecodec.Geometry, frames []framecodec.Frame) error {
	hdr := Control{Type: TypeFrames, Width: g.Width, Height: g.Height, Frames: len(frames)}
	if err := conn.WriteJSON(hdr); err != nil {
		return err
	}
	for i, f := range frames {
		if f.Geometry() != g || len(f.Pix) != g.Capacity() {
			return fmt.Errorf("%w: frame %d", framecodec.ErrGeometryMismatch, i)
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, encodeFrame(i, f)); err != nil {
			return fmt.Errorf("send frame %d: %w", i, err)
		}
	}
	return conn.WriteJSON(Control{Type: TypeEnd})
}

// receiveFrames reads count frame messages followed by the end marker.
func receiveFrames(conn *websocket.Conn, g framecodec.Geometry, count int) ([]framecodec.Frame, error) {
	conn.SetReadLimit(int64(indexSize + g.Capacity() + controlReadLimit))
	recv := newFrameReceiver(g, count)

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			return nil, err
		}

		if mt == websocket.BinaryMessage {
			if err := recv.add(msg); err != nil {
				return nil, err
			}
			continue
		}

		var ctl Control
		if err := json.Unmarshal(msg, &ctl); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
		}
		switch ctl.Type {
		case TypeEnd:
			return recv.finish()
		case TypeError:
			return nil, fmt.Errorf("%w: %s", ErrRemote, ctl.Error)
		default:
			return nil, fmt.Errorf("%w: unexpected %q message", ErrProtocol, ctl.Type)
		}
	}
}
