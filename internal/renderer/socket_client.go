package renderer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/stackgraph/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultNamespace is the socket.io namespace used when none is set.
const DefaultNamespace = "/"

// ClientOptions configure a SocketClient.
type ClientOptions struct {
	// Namespace defaults to DefaultNamespace.
	Namespace          string
	InsecureSkipVerify bool
	// ConnectTimeout bounds the initial connection. Defaults to 15s.
	ConnectTimeout time.Duration
}

// SocketClient is a Sink pushing messages to a remote socket.io renderer.
type SocketClient struct {
	io *socket.Socket
}

// DialSocketClient connects to the renderer at rawURL and waits until the
// connection is established.
func DialSocketClient(ctx context.Context, rawURL string, o ClientOptions) (*SocketClient, error) {
	logger := ctxlog.FromContext(ctx).With("sink", "socket_client", "url", rawURL)
	logger.Debug("Connecting to remote renderer...")

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse renderer URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("renderer URL %q must be absolute", rawURL)
	}
	if o.Namespace == "" {
		o.Namespace = DefaultNamespace
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 15 * time.Second
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		opts.SetPath(parsedURL.Path)
	}
	if o.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))
	// Handlers must be in place before the first packet arrives.
	opts.SetAutoConnect(false)

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(o.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("🔌 Connected to remote renderer.", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &SocketClient{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection: %w", ctx.Err())
	case <-time.After(o.ConnectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", o.ConnectTimeout)
	}
}

// Init implements Sink.
func (c *SocketClient) Init(_ context.Context, msg InitMessage) error {
	return c.emit(EventInit, msg)
}

// Update implements Sink.
func (c *SocketClient) Update(_ context.Context, msg UpdateMessage) error {
	return c.emit(EventUpdate, msg)
}

func (c *SocketClient) emit(event string, msg any) error {
	if !c.io.Connected() {
		return fmt.Errorf("renderer %s: socket %s is not connected", event, c.io.Id())
	}
	if err := c.io.Emit(event, msg); err != nil {
		return fmt.Errorf("renderer %s: %w", event, err)
	}
	return nil
}

// Close disconnects from the renderer.
func (c *SocketClient) Close() error {
	c.io.Disconnect()
	return nil
}
