package wsrelay

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/One-eyed-warrior/data2video/pkg/framecodec"
	"github.com/One-eyed-warrior/data2video/pkg/ports"
)

// Client is a ports.FrameTransport backed by a remote relay Server.
// The target passed to Persist is ignored; the server assigns the handle.
type Client struct {
	url      string
	geometry framecodec.Geometry
	dialer   *websocket.Dialer
	logger   ports.Logger
}

// NewClient creates a client for the relay at url (ws:// or wss://).
func NewClient(url string, geometry framecodec.Geometry, logger ports.Logger) *Client {
	return &Client{
		url:      url,
		geometry: geometry,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
			ReadBufferSize:   64 << 10,
			WriteBufferSize:  64 << 10,
		},
		logger: logger.WithComponent("relay"),
	}
}

// Persist uploads frames and returns the handle assigned by the server.
func (c *Client) Persist(ctx context.Context, target string, frames []framecodec.Frame) (ports.Handle, error) {
	conn, stop, err := c.dial(ctx)
	if err != nil {
		return "", err
	}
	defer stop()

	put := Control{
		Type:   TypePut,
		Target: target,
		Width:  c.geometry.Width,
		Height: c.geometry.Height,
		Frames: len(frames),
	}
	if err := conn.WriteJSON(put); err != nil {
		return "", c.wrap(ctx, err)
	}

	c.logger.Debug("Uploading %d frames to %s", len(frames), c.url)
	for i, f := range frames {
		if f.Geometry() != c.geometry || len(f.Pix) != c.geometry.Capacity() {
			return "", fmt.Errorf("%w: frame %d", framecodec.ErrGeometryMismatch, i)
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, encodeFrame(i, f)); err != nil {
			return "", c.wrap(ctx, fmt.Errorf("send frame %d: %w", i, err))
		}
	}
	if err := conn.WriteJSON(Control{Type: TypeEnd}); err != nil {
		return "", c.wrap(ctx, err)
	}

	var reply Control
	if err := conn.ReadJSON(&reply); err != nil {
		return "", c.wrap(ctx, err)
	}
	switch reply.Type {
	case TypeStored:
		if reply.Frames != len(frames) {
			return "", fmt.Errorf("%w: server stored %d of %d frames", ErrMissingFrames, reply.Frames, len(frames))
		}
		return ports.Handle(reply.Handle), nil
	case TypeError:
		return "", fmt.Errorf("%w: %s", ErrRemote, reply.Error)
	default:
		return "", fmt.Errorf("%w: unexpected %q reply", ErrProtocol, reply.Type)
	}
}

// Retrieve downloads the frames stored under handle.
func (c *Client) Retrieve(ctx context.Context, handle ports.Handle) ([]framecodec.Frame, error) {
	conn, stop, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer stop()

	if err := conn.WriteJSON(Control{Type: TypeGet, Handle: string(handle)}); err != nil {
		return nil, c.wrap(ctx, err)
	}

	conn.SetReadLimit(controlReadLimit)
	var hdr Control
	if err := conn.ReadJSON(&hdr); err != nil {
		return nil, c.wrap(ctx, err)
	}
	switch hdr.Type {
	case TypeFrames:
	case TypeError:
		return nil, fmt.Errorf("%w: %s", ErrRemote, hdr.Error)
	default:
		return nil, fmt.Errorf("%w: unexpected %q reply", ErrProtocol, hdr.Type)
	}

	g, err := hdr.geometry()
	if err != nil {
		return nil, err
	}
	if g != c.geometry {
		return nil, fmt.Errorf("%w: relay holds %s frames, expected %s", framecodec.ErrGeometryMismatch, g, c.geometry)
	}

	c.logger.Debug("Downloading %d frames from %s", hdr.Frames, c.url)
	frames, err := receiveFrames(conn, g, hdr.Frames)
	if err != nil {
		return nil, c.wrap(ctx, err)
	}
	return frames, nil
}

// dial connects and closes the connection when ctx ends. The returned stop
// function closes the connection and releases the watcher.
func (c *Client) dial(ctx context.Context) (*websocket.Conn, func(), error) {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("dial relay: %w", err)
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	stop := func() {
		close(done)
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}
	return conn, stop, nil
}

// wrap prefers the context error when the connection was closed by
// cancellation.
func (c *Client) wrap(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

var _ ports.FrameTransport = (*Client)(nil)
