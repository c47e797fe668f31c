// Package session drives one EtherNet/IP encapsulation session: dialing the
// TCP socket, registering the session, optionally opening a Class 3 CIP
// connection over it, and sending the request/reply pairs a caller needs.
package session

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/xid"

	"github.com/kastellan/goeip/internal"
	"github.com/kastellan/goeip/pkg/cip"
	"github.com/kastellan/goeip/pkg/eip"
	"github.com/kastellan/goeip/pkg/objects/connmgr"
	"github.com/kastellan/goeip/pkg/transport"
	"github.com/kastellan/goeip/pkg/utils"
)

var sessionState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Name: "goeip_session_state",
	Help: "Lifecycle state of a session: 0=disconnected 1=tcp_open 2=session_registered 3=cip_connected.",
}, []string{"address", "session"})

func init() {
	prometheus.MustRegister(sessionState)
}

// State is a Session's position in the EtherNet/IP lifecycle.
type State int

const (
	Disconnected State = iota
	TCPOpen
	SessionRegistered
	CIPConnected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case TCPOpen:
		return "tcp_open"
	case SessionRegistered:
		return "session_registered"
	case CIPConnected:
		return "cip_connected"
	default:
		return "unknown"
	}
}

// Config is the explicit configuration record a caller fills in before
// calling Open. Fields left zero take the defaults noted below.
type Config struct {
	IPAddress string // required
	Port      int    // default 44818

	Timeout time.Duration // default 10s; applied to every Send/Receive round trip

	Backplane          bool   // route Forward Open/Close over the backplane vs. a direct network hop
	CPUSlot            byte   // backplane slot of the target CPU, when Backplane is true
	BackplaneNumber    byte   // backplane/bus number, usually 1
	MessageRouterClass byte   // message router class for a direct (non-backplane) route
	DirectConnection   bool   // skip Forward Open entirely; caller only uses send_rr_data

	SenderContext [8]byte // fixed per-session; left zero unless the caller sets one

	VendorID         uint16
	OriginatorSerial uint16

	ExtendedForwardOpen bool // use Large Forward Open (0x5B) instead of 0x54
	OTRPI               uint32
	TORPI               uint32
}

func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = 44818
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	if c.OTRPI == 0 {
		c.OTRPI = 10000
	}
	if c.TORPI == 0 {
		c.TORPI = 10000
	}
	if c.BackplaneNumber == 0 {
		c.BackplaneNumber = 1
	}
	return c
}

func (c Config) address() string {
	return fmt.Sprintf("%s:%d", c.IPAddress, c.Port)
}

// Status is the (group, message) pair a non-fatal negative acknowledgment
// leaves behind instead of an error: a failed Forward Close, an empty
// ListIdentity reply, and the like.
type Status struct {
	Group   string
	Message string
}

func (st Status) Empty() bool {
	return st.Group == "" && st.Message == ""
}

// Session owns the TCP socket, the encapsulation session handle, and (once
// ForwardOpen succeeds) the Class 3 connection identifiers. A Session is not
// safe for concurrent callers: requests on one session must be serialized,
// matching the single in-flight-request invariant the wire protocol assumes.
type Session struct {
	cfg    Config
	logger internal.Logger
	corrID string

	mu            sync.Mutex
	state         State
	xport         transport.Transport
	sessionHandle eip.SessionHandle

	originatorCID uint32
	originatorVSN uint32
	targetCID     uint32

	lastStatus Status
}

// NewSession builds a Session in the Disconnected state; nothing is dialed
// until Open is called.
func NewSession(cfg Config, logger internal.Logger) *Session {
	if logger == nil {
		logger = internal.NopLogger()
	}
	cfg = cfg.withDefaults()
	id := xid.New().String()
	return &Session{
		cfg:    cfg,
		logger: logger.With("session", id, "target", cfg.address()),
		corrID: id,
	}
}

func (s *Session) setState(st State) {
	s.state = st
	sessionState.WithLabelValues(s.cfg.address(), s.corrID).Set(float64(st))
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status returns the last non-fatal negative acknowledgment recorded by this
// session, or the zero Status if none has occurred (or Clear was called).
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastStatus
}

// Clear resets the last recorded status.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastStatus = Status{}
}

func randUint32() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	v, err := cip.UnpackUint32(b[:])
	if err != nil {
		return 0, err
	}
	return v, nil
}

// Open dials the target, randomizes the connection identifiers, and
// registers an encapsulation session. On any failure the Session is left in
// a consistent state (Disconnected, with any partially-opened socket
// closed) so the caller may retry.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Disconnected {
		return eip.NewTransportError("open", fmt.Errorf("session already in state %s", s.state))
	}

	cid, err := randUint32()
	if err != nil {
		return eip.NewTransportError("open", err)
	}
	vsn, err := randUint32()
	if err != nil {
		return eip.NewTransportError("open", err)
	}
	s.originatorCID = cid
	s.originatorVSN = vsn

	dialCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	t, err := transport.NewTCPTransport(dialCtx, s.cfg.address())
	if err != nil {
		return err
	}
	s.xport = t
	s.setState(TCPOpen)
	s.logger.Infof("tcp connection open")

	if err := s.registerLocked(ctx); err != nil {
		s.xport.Close()
		s.xport = nil
		s.setState(Disconnected)
		return err
	}
	return nil
}

func (s *Session) timeoutCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.Timeout)
}

// roundTrip sends one encapsulated command and waits for its reply,
// validating the header against what was sent.
func (s *Session) roundTrip(ctx context.Context, cmd eip.Command, payload []byte) (*eip.EncapsulationHeader, []byte, error) {
	sent := eip.EncapsulationHeader{
		Command:       cmd,
		Length:        uint16(len(payload)),
		SessionHandle: s.sessionHandle,
		SenderContext: s.cfg.SenderContext,
	}

	rCtx, cancel := s.timeoutCtx(ctx)
	defer cancel()

	if err := s.xport.Send(rCtx, cmd, payload, s.sessionHandle, s.cfg.SenderContext); err != nil {
		return nil, nil, err
	}

	header, data, err := s.xport.Receive(rCtx)
	if err != nil {
		return nil, nil, err
	}

	isRegisterReply := cmd == eip.CommandRegisterSession
	if err := header.Validate(data, sent, isRegisterReply); err != nil {
		return nil, nil, err
	}
	return header, data, nil
}

func (s *Session) registerLocked(ctx context.Context) error {
	regData := eip.NewRegisterSessionData()
	body, err := regData.Encode()
	if err != nil {
		return err
	}

	s.logger.Infof("registering session")
	header, respData, err := s.roundTrip(ctx, eip.CommandRegisterSession, body)
	if err != nil {
		return err
	}

	s.sessionHandle = header.SessionHandle
	s.setState(SessionRegistered)
	s.logger.Infof("session registered, handle=0x%08X", s.sessionHandle)
	s.logger.Debugf("register session response:\n%s", utils.HexDump(respData))
	return nil
}

// RegisterSession re-registers the session on an already-open socket. Open
// calls this internally; exposed separately for callers that manage the
// socket lifecycle themselves.
func (s *Session) RegisterSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != TCPOpen {
		return eip.NewTransportError("register_session", fmt.Errorf("requires state tcp_open, have %s", s.state))
	}
	return s.registerLocked(ctx)
}

// ForwardOpen composes and sends a Forward Open (or Large Forward Open, if
// ExtendedForwardOpen is set) request, moving the session to CIPConnected on
// success.
func (s *Session) ForwardOpen(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SessionRegistered {
		return newCommError(4, "forward_open requires state session_registered, have %s", s.state)
	}

	params := connmgr.ForwardOpenParams{
		OriginatorCID:      s.originatorCID,
		OriginatorSerial:   s.cfg.OriginatorSerial,
		VendorID:           s.cfg.VendorID,
		OriginatorVSN:      s.originatorVSN,
		OTRPI:              s.cfg.OTRPI,
		TORPI:              s.cfg.TORPI,
		Backplane:          s.cfg.Backplane,
		BackplaneNumber:    s.cfg.BackplaneNumber,
		CPUSlot:            s.cfg.CPUSlot,
		MessageRouterClass: s.cfg.MessageRouterClass,
		Large:              s.cfg.ExtendedForwardOpen,
	}

	service, path, body, err := connmgr.ComposeForwardOpen(params)
	if err != nil {
		return err
	}

	req := &cip.MessageRouterRequest{Service: service, RequestPath: path, RequestData: body}
	resp, err := s.sendCIPRequestLocked(ctx, req)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return newCommError(int(resp.GeneralStatus), "forward_open failed: %s", resp.Error())
	}

	fo, err := connmgr.ParseForwardOpenReply(resp.ResponseData)
	if err != nil {
		return newProtocolDecodeError("forward_open", err)
	}

	s.targetCID = uint32(fo.OTConnectionID)
	s.setState(CIPConnected)
	s.logger.Infof("forward open succeeded, target_cid=0x%08X", s.targetCID)
	return nil
}

// ForwardClose composes and sends a Forward Close request. It is
// best-effort: a non-success reply sets Status instead of returning an
// error, matching the source implementation's tolerance for a negative
// Forward Close acknowledgment.
func (s *Session) ForwardClose(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forwardCloseLocked(ctx)
}

func (s *Session) forwardCloseLocked(ctx context.Context) error {
	if s.state != CIPConnected {
		return nil
	}

	params := connmgr.ForwardOpenParams{
		OriginatorSerial:   s.cfg.OriginatorSerial,
		VendorID:           s.cfg.VendorID,
		OriginatorVSN:      s.originatorVSN,
		Backplane:          s.cfg.Backplane,
		BackplaneNumber:    s.cfg.BackplaneNumber,
		CPUSlot:            s.cfg.CPUSlot,
		MessageRouterClass: s.cfg.MessageRouterClass,
	}

	path, body, err := connmgr.ComposeForwardClose(params)
	if err != nil {
		return err
	}

	req := &cip.MessageRouterRequest{Service: connmgr.ServiceForwardClose, RequestPath: path, RequestData: body}
	resp, err := s.sendCIPRequestLocked(ctx, req)
	if err != nil {
		return err
	}

	s.setState(SessionRegistered)

	if !resp.IsSuccess() {
		s.lastStatus = Status{Group: "forward_close", Message: resp.Error().Error()}
		s.logger.Warnf("forward close returned non-success status: %s", resp.Error())
		return nil
	}

	if _, err := connmgr.ParseForwardCloseReply(resp.ResponseData); err != nil {
		s.lastStatus = Status{Group: "forward_close", Message: err.Error()}
	}
	return nil
}

// UnRegisterSession fires the UnRegisterSession command and clears the
// session handle locally; the command carries no reply to wait for.
func (s *Session) UnRegisterSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unRegisterLocked(ctx)
}

func (s *Session) unRegisterLocked(ctx context.Context) error {
	if s.state == Disconnected || s.xport == nil {
		return nil
	}

	rCtx, cancel := s.timeoutCtx(ctx)
	defer cancel()

	err := s.xport.Send(rCtx, eip.CommandUnregisterSession, nil, s.sessionHandle, s.cfg.SenderContext)
	s.sessionHandle = 0
	if s.state != TCPOpen {
		s.setState(TCPOpen)
	}
	return err
}

// Close tears the session down: Forward Close (if a connection is open),
// then UnRegisterSession, then the socket itself. Each step runs regardless
// of whether an earlier one failed, and the accumulated errors are reported
// together as a single TransportError.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error

	if err := s.forwardCloseLocked(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.unRegisterLocked(ctx); err != nil {
		errs = append(errs, err)
	}
	if s.xport != nil {
		if err := s.xport.Close(); err != nil {
			errs = append(errs, err)
		}
		s.xport = nil
	}
	s.setState(Disconnected)

	if len(errs) > 0 {
		return eip.NewTransportError("close", combineErrors(errs))
	}
	return nil
}

func combineErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	msg := "multiple errors during close:"
	for _, e := range errs {
		msg += " [" + e.Error() + "]"
	}
	return fmt.Errorf("%s", msg)
}

// Nop sends a header-only NOP heartbeat. NOP carries no reply.
func (s *Session) Nop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rCtx, cancel := s.timeoutCtx(ctx)
	defer cancel()
	return s.xport.Send(rCtx, eip.CommandNop, nil, s.sessionHandle, s.cfg.SenderContext)
}

// SendRRData wraps payload in a SendRRData command (unconnected request over
// the encapsulation session) and returns the reply body.
func (s *Session) SendRRData(ctx context.Context, payload []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sendRRDataLocked(ctx, payload)
}

func (s *Session) sendRRDataLocked(ctx context.Context, payload []byte) ([]byte, error) {
	rrData, err := eip.BuildCommonPacketFormat(eip.ItemIDUnconnectedMessage, payload, eip.ItemIDNullAddress, nil, 0)
	if err != nil {
		return nil, err
	}

	_, respData, err := s.roundTrip(ctx, eip.CommandSendRRData, rrData)
	if err != nil {
		return nil, err
	}
	return unwrapCPFReply(respData, eip.ItemIDUnconnectedMessage)
}

// SendUnitData wraps payload in a SendUnitData command (connected message
// over the Class 3 connection opened by ForwardOpen) and returns the reply
// body. Requires CIPConnected.
func (s *Session) SendUnitData(ctx context.Context, payload []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != CIPConnected {
		return nil, newCommError(4, "send_unit_data requires state cip_connected, have %s", s.state)
	}

	seq := cip.NextSequence()
	seqBytes := cip.PackUint16(seq)
	connectedData := append(append([]byte{}, seqBytes...), payload...)

	addrData := cip.PackUint32(s.targetCID)
	unitData, err := eip.BuildCommonPacketFormat(eip.ItemIDConnectedTransport, connectedData, eip.ItemIDConnectedAddress, addrData, 0)
	if err != nil {
		return nil, err
	}

	_, respData, err := s.roundTrip(ctx, eip.CommandSendUnitData, unitData)
	if err != nil {
		return nil, err
	}

	body, err := unwrapCPFReply(respData, eip.ItemIDConnectedTransport)
	if err != nil {
		return nil, err
	}
	if len(body) < 2 {
		return nil, newProtocolDecodeError("send_unit_data", fmt.Errorf("reply too short for sequence prefix"))
	}
	return body[2:], nil
}

func unwrapCPFReply(respData []byte, wantItem uint16) ([]byte, error) {
	if len(respData) < 6 {
		return nil, newProtocolDecodeError("unwrap_reply", fmt.Errorf("response shorter than interface handle + timeout"))
	}
	cpf, err := eip.DecodeCommonPacketFormat(respData[6:])
	if err != nil {
		return nil, newProtocolDecodeError("unwrap_reply", err)
	}
	item := cpf.FindItemByType(wantItem)
	if item == nil {
		return nil, newProtocolDecodeError("unwrap_reply", fmt.Errorf("response CPF missing item 0x%04X", wantItem))
	}
	return item.Data, nil
}

// SendCIPRequest encodes req, sends it via SendRRData, and decodes the reply
// as a MessageRouterResponse.
func (s *Session) SendCIPRequest(ctx context.Context, req *cip.MessageRouterRequest) (*cip.MessageRouterResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sendCIPRequestLocked(ctx, req)
}

func (s *Session) sendCIPRequestLocked(ctx context.Context, req *cip.MessageRouterRequest) (*cip.MessageRouterResponse, error) {
	reqBytes, err := req.Encode()
	if err != nil {
		return nil, err
	}
	s.logger.Debugf("cip request:\n%s", utils.HexDump(reqBytes))

	respBytes, err := s.sendRRDataLocked(ctx, reqBytes)
	if err != nil {
		return nil, err
	}
	s.logger.Debugf("cip response:\n%s", utils.HexDump(respBytes))

	return cip.DecodeMessageRouterResponse(respBytes)
}

// ListIdentity broadcasts a ListIdentity command and decodes the target's
// identity out of the raw reply using the fixed offset table (so it works
// whether or not the session is registered yet).
func (s *Session) ListIdentity(ctx context.Context) (*cip.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rCtx, cancel := s.timeoutCtx(ctx)
	defer cancel()

	if err := s.xport.Send(rCtx, eip.CommandListIdentity, nil, 0, s.cfg.SenderContext); err != nil {
		return nil, err
	}
	header, respData, err := s.xport.Receive(rCtx)
	if err != nil {
		return nil, err
	}
	if header.Status != 0 {
		s.lastStatus = Status{Group: "list_identity", Message: fmt.Sprintf("non-zero reply status 0x%08X", header.Status)}
		return nil, nil
	}
	if len(respData) == 0 {
		s.lastStatus = Status{Group: "list_identity", Message: "empty reply"}
		return nil, nil
	}

	full := append(header.Bytes(), respData...)
	identity, err := cip.ParseIdentityObject(full)
	if err != nil {
		return nil, newProtocolDecodeError("list_identity", err)
	}
	return identity, nil
}

// ListServices broadcasts a ListServices command and returns the target's
// advertised service list.
func (s *Session) ListServices(ctx context.Context) ([]eip.ListServicesItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rCtx, cancel := s.timeoutCtx(ctx)
	defer cancel()

	if err := s.xport.Send(rCtx, eip.CommandListServices, nil, 0, s.cfg.SenderContext); err != nil {
		return nil, err
	}
	header, respData, err := s.xport.Receive(rCtx)
	if err != nil {
		return nil, err
	}
	if header.Status != 0 {
		return nil, newProtocolDecodeError("list_services", fmt.Errorf("non-zero reply status 0x%08X", header.Status))
	}
	return eip.DecodeListServicesResponse(respData)
}

// GetModuleInfo sends an unconnected Identity Get_Attributes_All to the
// given backplane slot and parses the reply the same way ListIdentity does.
func (s *Session) GetModuleInfo(ctx context.Context, slot byte) (*cip.Identity, error) {
	path := cip.NewPath()
	path.AddPortSegment(1, []byte{slot})
	path.AddClass(cip.ClassIdentity)
	path.AddInstance(1)

	req := &cip.MessageRouterRequest{Service: cip.ServiceGetAttributeAll, RequestPath: path}

	s.mu.Lock()
	resp, err := s.sendCIPRequestLocked(ctx, req)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, newProtocolDecodeError("get_module_info", resp.Error())
	}

	return cip.ParseIdentityAttributes(resp.ResponseData)
}

func newCommError(code int, format string, args ...any) error {
	return eip.NewTransportError(fmt.Sprintf("comm_error(%d)", code), fmt.Errorf(format, args...))
}

func newProtocolDecodeError(op string, err error) error {
	return eip.NewProtocolDecodeError(op, err)
}
