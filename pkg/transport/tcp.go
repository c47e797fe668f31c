package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kastellan/goeip/pkg/eip"
)

var (
	bytesSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "goeip_transport_bytes_sent_total",
		Help: "Bytes written to the target across all sessions.",
	}, []string{"address"})

	bytesReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "goeip_transport_bytes_received_total",
		Help: "Bytes read from the target across all sessions.",
	}, []string{"address"})

	requestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "goeip_transport_round_trip_seconds",
		Help:    "Time from Send to the matching Receive completing.",
		Buckets: prometheus.DefBuckets,
	}, []string{"address"})
)

func init() {
	prometheus.MustRegister(bytesSent, bytesReceived, requestLatency)
}

// Transport defines the interface for sending and receiving EIP packets
type Transport interface {
	Send(ctx context.Context, cmd eip.Command, data []byte, sessionHandle eip.SessionHandle, senderContext [8]byte) error
	Receive(ctx context.Context) (*eip.EncapsulationHeader, []byte, error)
	Close() error
}

// TCPTransport implements Transport using TCP
type TCPTransport struct {
	conn    net.Conn
	address string

	sendStart time.Time
}

// NewTCPTransport dials the target, defaulting to port 44818 if the address
// doesn't carry one.
func NewTCPTransport(ctx context.Context, address string) (*TCPTransport, error) {
	if !strings.Contains(address, ":") {
		address = address + ":44818"
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, eip.NewTransportError("connect", err)
	}
	return &TCPTransport{conn: conn, address: address}, nil
}

// Send sends an EIP packet. ctx's deadline, if any, is applied to the
// underlying socket write.
func (t *TCPTransport) Send(ctx context.Context, cmd eip.Command, data []byte, sessionHandle eip.SessionHandle, senderContext [8]byte) error {
	if err := applyDeadline(t.conn, ctx); err != nil {
		return eip.NewTransportError("send", err)
	}

	header := eip.EncapsulationHeader{
		Command:       cmd,
		Length:        uint16(len(data)),
		SessionHandle: sessionHandle,
		Status:        0,
		SenderContext: senderContext,
		Options:       0,
	}

	t.sendStart = time.Now()

	if err := header.Encode(t.conn); err != nil {
		return eip.NewTransportError("send", fmt.Errorf("failed to write header: %w", err))
	}
	bytesSent.WithLabelValues(t.address).Add(float64(eip.HeaderSize))

	if len(data) > 0 {
		if _, err := t.conn.Write(data); err != nil {
			return eip.NewTransportError("send", fmt.Errorf("failed to write data: %w", err))
		}
		bytesSent.WithLabelValues(t.address).Add(float64(len(data)))
	}

	return nil
}

// Receive receives one encapsulated message: the fixed 24-byte header, then
// exactly the body length the header declares.
func (t *TCPTransport) Receive(ctx context.Context) (*eip.EncapsulationHeader, []byte, error) {
	if err := applyDeadline(t.conn, ctx); err != nil {
		return nil, nil, eip.NewTransportError("receive", err)
	}

	header := &eip.EncapsulationHeader{}
	if err := header.Decode(t.conn); err != nil {
		return nil, nil, eip.NewTransportError("receive", fmt.Errorf("failed to read header: %w", err))
	}
	bytesReceived.WithLabelValues(t.address).Add(float64(eip.HeaderSize))

	var data []byte
	if header.Length > 0 {
		data = make([]byte, header.Length)
		if _, err := io.ReadFull(t.conn, data); err != nil {
			return nil, nil, eip.NewTransportError("receive", fmt.Errorf("failed to read data: %w", err))
		}
		bytesReceived.WithLabelValues(t.address).Add(float64(header.Length))
	}

	if !t.sendStart.IsZero() {
		requestLatency.WithLabelValues(t.address).Observe(time.Since(t.sendStart).Seconds())
		t.sendStart = time.Time{}
	}

	return header, data, nil
}

// Close closes the connection
func (t *TCPTransport) Close() error {
	if err := t.conn.Close(); err != nil {
		return eip.NewTransportError("close", err)
	}
	return nil
}

func applyDeadline(conn net.Conn, ctx context.Context) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		return conn.SetDeadline(time.Time{})
	}
	return conn.SetDeadline(deadline)
}
