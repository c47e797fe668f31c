package client

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/kastellan/goeip/internal"
	"github.com/kastellan/goeip/pkg/cip"
	"github.com/kastellan/goeip/pkg/session"
)

// Client is a high-level EtherNet/IP client: it owns a registered session
// and optional CIP connection, and exposes tag-oriented operations on top of
// the raw request/reply plumbing in pkg/session.
type Client struct {
	session *session.Session
	logger  internal.Logger
}

// NewClient dials address ("host" or "host:port", default port 44818),
// registers an encapsulation session, and returns a ready-to-use Client.
// It does not open a CIP connection; callers that need one should call
// Client.Connect.
func NewClient(address string, logger internal.Logger) (*Client, error) {
	if logger == nil {
		logger = internal.NopLogger()
	}

	cfg, err := configFromAddress(address)
	if err != nil {
		return nil, err
	}

	s := session.NewSession(cfg, logger)
	if err := s.Open(context.Background()); err != nil {
		return nil, err
	}

	return &Client{session: s, logger: logger}, nil
}

func configFromAddress(address string) (session.Config, error) {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		// Bare host, no port: use the default.
		return session.Config{IPAddress: address}, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return session.Config{}, fmt.Errorf("client: invalid port %q: %w", portStr, err)
	}
	return session.Config{IPAddress: host, Port: port}, nil
}

// Connect opens a Class 3 CIP connection (Forward Open) over the session,
// required before SendUnitData-based exchanges.
func (c *Client) Connect(ctx context.Context) error {
	return c.session.ForwardOpen(ctx)
}

// Close unregisters the session and closes the underlying socket.
func (c *Client) Close() error {
	return c.session.Close(context.Background())
}

// ReadTag reads a tag from the controller and returns the raw Read Tag
// response payload: a 2-byte CIP data type code followed by the value.
func (c *Client) ReadTag(tagName string) ([]byte, error) {
	p := cip.NewPath()
	p.AddSymbolicSegment(tagName)

	req := cip.NewReadTagRequest(p, 1)

	resp, err := c.session.SendCIPRequest(context.Background(), req)
	if err != nil {
		return nil, err
	}
	if err := resp.Error(); err != nil {
		return nil, err
	}

	return resp.ResponseData, nil
}

// ReadTagInto reads a tag from the controller and unmarshals it into dst.
// dst must be a pointer to a type that can be unmarshaled (basic type,
// struct, or Unmarshaler).
func (c *Client) ReadTagInto(tagName string, dst any) error {
	data, err := c.ReadTag(tagName)
	if err != nil {
		return err
	}

	// Response format: [Type:UINT] [Data...]
	if len(data) < 2 {
		return fmt.Errorf("response too short to contain type code")
	}

	return cip.Unmarshal(data[2:], dst)
}

// ReadTimer reads a Timer-typed tag from the controller and decodes it.
func (c *Client) ReadTimer(tagName string) (*cip.Timer, error) {
	data, err := c.ReadTag(tagName)
	if err != nil {
		return nil, err
	}

	if len(data) < 2 {
		return nil, fmt.Errorf("response too short to contain type code")
	}

	return cip.DecodeTimer(data[2:])
}

// WriteTag writes a single tag. value must be one of the Go types
// cip.DataTypeOf understands (bool, signed/unsigned ints, float32/float64).
func (c *Client) WriteTag(tagName string, value any) error {
	dataType, err := cip.DataTypeOf(value)
	if err != nil {
		return err
	}
	encoded, err := cip.Marshal(value)
	if err != nil {
		return fmt.Errorf("client: marshal tag value: %w", err)
	}

	p := cip.NewPath()
	p.AddSymbolicSegment(tagName)

	req := cip.NewWriteTagRequest(p, dataType, 1, encoded)

	resp, err := c.session.SendCIPRequest(context.Background(), req)
	if err != nil {
		return err
	}
	return resp.Error()
}
