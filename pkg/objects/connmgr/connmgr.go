// Package connmgr composes and parses the Connection Manager services a
// session controller needs to open and close a Class 3 CIP connection:
// Forward Open (standard and Large), and Forward Close.
package connmgr

import (
	"bytes"
	"encoding/binary"

	"github.com/kastellan/goeip/pkg/cip"
)

// Network connection parameter bit layout (standard/Large forms share the
// field meanings, differing only in the word width carrying them).
const (
	connectionSizeStandard = 500
	connectionSizeLarge    = 4002

	ntwPriority          = 2 << 10
	ntwVariableSize       = 1 << 9
	ntwConnectionTypeP2P  = 2 << 13 // point-to-point, 10 in bits 13-14
	transportClass3Server = 0xA3
	priorityTimeTick      = 0x0A
	timeoutTicks          = 0x0E
)

// ForwardOpenParams carries the values a caller supplies for a Forward Open;
// everything else (service code, priority/timeout ticks, transport class,
// network parameter encoding) is fixed by the protocol.
type ForwardOpenParams struct {
	OriginatorCID      uint32
	OriginatorSerial   uint16
	VendorID           uint16
	OriginatorVSN      uint32
	OTRPI              uint32
	TORPI              uint32
	Backplane          bool
	BackplaneNumber    byte
	CPUSlot            byte
	MessageRouterClass byte
	Large              bool
}

// connectionPath builds the route segment of the Forward Open / Forward
// Close request path: either the backplane port/slot pair, or a direct
// network route to the message router's class, followed by the fixed
// Connection Manager instance-1 segment.
func connectionPath(p ForwardOpenParams) []byte {
	var route []byte
	if p.Backplane {
		route = []byte{0x01, p.BackplaneNumber, 0x01, p.CPUSlot}
	} else {
		route = []byte{0x02, 0x20, p.MessageRouterClass}
	}
	route = append(route, 0x20, 0x02, 0x24, 0x01)
	if len(route)%2 != 0 {
		route = append(route, 0x00)
	}
	return route
}

// flags bundles the priority/variable-size/connection-type bits shared by
// the standard and Large network parameter words.
const flags = ntwVariableSize | ntwPriority | ntwConnectionTypeP2P

// networkParams packs the standard (16-bit) network connection parameters:
// connection size occupies the low bits, with the flag bits layered directly
// on top of it in the same word.
func networkParams(connectionSize uint32) uint32 {
	return connectionSize | flags
}

// networkParamsLarge packs the Large (32-bit) network connection parameters.
// Unlike the standard word, the flag bits don't share the low 16 bits with
// the connection size: they occupy the high 16 bits of the DWORD, with the
// full 16-bit connection size sitting untouched in the low 16 bits.
func networkParamsLarge(connectionSize uint32) uint32 {
	return (connectionSize & 0xFFFF) | (flags << 16)
}

// ComposeForwardOpen builds the Forward Open (or Large Forward Open) request
// path+body: the two-word path to Connection Manager instance 1, followed by
// the request data described in the distilled spec's wire table.
func ComposeForwardOpen(p ForwardOpenParams) (service cip.USINT, path cip.Path, body []byte, err error) {
	path = cip.BuildPath(cip.ClassConnectionMgr, 1, 0)

	route := connectionPath(p)
	buf := new(bytes.Buffer)

	write := func(v any) {
		if err == nil {
			err = binary.Write(buf, binary.LittleEndian, v)
		}
	}

	write(cip.BYTE(priorityTimeTick))
	write(cip.USINT(timeoutTicks))
	write(cip.UDINT(0))                // O->T connection id, assigned by target
	write(cip.UDINT(p.OriginatorCID))  // T->O connection id
	write(cip.UINT(p.OriginatorSerial))
	write(cip.UINT(p.VendorID))
	write(cip.UDINT(p.OriginatorVSN))
	write(cip.USINT(1))          // timeout multiplier
	write([3]cip.BYTE{0, 0, 0})  // reserved
	write(cip.UDINT(p.OTRPI))

	if p.Large {
		size := uint32(connectionSizeLarge)
		write(cip.DWORD(networkParamsLarge(size)))
		write(cip.UDINT(p.TORPI))
		write(cip.DWORD(networkParamsLarge(size)))
		service = ServiceLargeForwardOpen
	} else {
		size := uint32(connectionSizeStandard)
		write(cip.WORD(networkParams(size)))
		write(cip.UDINT(p.TORPI))
		write(cip.WORD(networkParams(size)))
		service = ServiceForwardOpen
	}

	write(cip.BYTE(transportClass3Server))
	write(cip.USINT(len(route) / 2))
	if err != nil {
		return 0, nil, nil, err
	}
	if _, werr := buf.Write(route); werr != nil {
		return 0, nil, nil, werr
	}

	return service, path, buf.Bytes(), nil
}

// ParseForwardOpenReply decodes a successful Forward Open / Large Forward
// Open reply, extracting the target-assigned connection id at offset 0 and
// the actual packet intervals the target granted.
func ParseForwardOpenReply(data []byte) (*ForwardOpenResponse, error) {
	r := bytes.NewReader(data)
	resp := &ForwardOpenResponse{}

	fields := []any{
		&resp.OTConnectionID,
		&resp.TOConnectionID,
		&resp.ConnectionSerialNumber,
		&resp.VendorID,
		&resp.OriginatorSerialNumber,
		&resp.OTAPI,
		&resp.TOAPI,
		&resp.ApplicationReplySize,
		&resp.Reserved,
	}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return nil, err
		}
	}
	if resp.ApplicationReplySize > 0 {
		resp.ApplicationReply = make([]byte, int(resp.ApplicationReplySize)*2)
		if _, err := r.Read(resp.ApplicationReply); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// ComposeForwardClose builds the Forward Close request path+body: the same
// Connection Manager instance-1 path and priority/timeout ticks as Forward
// Open, then the connection serial, vendor id and originator serial, with no
// connection identifiers and no network parameters.
func ComposeForwardClose(p ForwardOpenParams) (path cip.Path, body []byte, err error) {
	path = cip.BuildPath(cip.ClassConnectionMgr, 1, 0)

	route := connectionPath(p)
	buf := new(bytes.Buffer)

	write := func(v any) {
		if err == nil {
			err = binary.Write(buf, binary.LittleEndian, v)
		}
	}

	write(cip.BYTE(priorityTimeTick))
	write(cip.USINT(timeoutTicks))
	write(cip.UINT(p.OriginatorSerial))
	write(cip.UINT(p.VendorID))
	write(cip.UDINT(p.OriginatorVSN))
	write(cip.USINT(len(route) / 2))
	write(cip.USINT(0)) // reserved
	if err != nil {
		return nil, nil, err
	}

	// The source implementation appends the connection path after this fixed
	// prefix rather than inserting into it; this implementation does the same.
	if _, werr := buf.Write(route); werr != nil {
		return nil, nil, werr
	}

	return path, buf.Bytes(), nil
}

// ParseForwardCloseReply decodes a Forward Close reply. A non-success general
// status (checked by the caller via the surrounding MessageRouterResponse) is
// tolerated: Forward Close is best-effort.
func ParseForwardCloseReply(data []byte) (*ForwardCloseResponse, error) {
	r := bytes.NewReader(data)
	resp := &ForwardCloseResponse{}

	fields := []any{
		&resp.ConnectionSerialNumber,
		&resp.VendorID,
		&resp.OriginatorSerialNumber,
		&resp.ApplicationReplySize,
		&resp.Reserved,
	}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return nil, err
		}
	}
	if resp.ApplicationReplySize > 0 {
		resp.ApplicationReply = make([]byte, int(resp.ApplicationReplySize)*2)
		if _, err := r.Read(resp.ApplicationReply); err != nil {
			return nil, err
		}
	}
	return resp, nil
}
