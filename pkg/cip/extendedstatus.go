package cip

import "fmt"

// extendedStatusCodes maps a general status to a table of extended status
// codes to human strings. Non-exhaustive: it covers the combinations seen
// most often from Connection Manager and Message Router replies; anything
// else falls back to the generic message GetExtendedStatus returns.
var extendedStatusCodes = map[byte]map[uint32]string{
	0x01: {
		0x0100: "Connection in use or duplicate forward open",
		0x0103: "Transport class and trigger combination not supported",
		0x0106: "Owner conflict",
		0x0107: "Connection not found at target application",
		0x0108: "Invalid connection type",
		0x0109: "Invalid connection size",
		0x0110: "Target object out of connections",
		0x0111: "RPI not supported",
		0x0114: "Vendor id or product code mismatch",
		0x0115: "Product type mismatch",
		0x0116: "Revision mismatch",
		0x0118: "Invalid configuration format",
		0x0203: "Connection timed out",
		0x0204: "Unconnected request timed out",
		0x0205: "Parameter error in unconnected request service",
		0x0206: "Message too large for unconnected send service",
		0x0301: "No buffer memory available",
		0x0302: "Network bandwidth not available for data",
	},
	0x04: {
		0x0000: "Path segment error",
	},
	0x05: {
		0x0000: "Path destination unknown",
	},
	0x13: {
		0x0000: "Not enough data provided to the Message Router",
	},
	0x15: {
		0x0000: "Too much data provided to the Message Router",
	},
}

// GetExtendedStatus reads a general status byte at msg[start], a
// size-in-words byte at msg[start+1], and the 0/1/2/4-byte extended status
// word that follows, and resolves the (status, extended) pair through
// extendedStatusCodes. Unknown combinations, or a reply too short to hold
// the declared extended status, yield "Extended Status info not present".
func GetExtendedStatus(msg []byte, start int) string {
	if len(msg) < start+2 {
		return "Extended Status info not present"
	}
	status := msg[start]
	sizeWords := msg[start+1]
	sizeBytes := int(sizeWords) * 2

	var extended uint32
	switch sizeBytes {
	case 0:
		extended = 0
	case 1:
		if len(msg) < start+3 {
			return "Extended Status info not present"
		}
		extended = uint32(msg[start+2])
	case 2:
		if len(msg) < start+4 {
			return "Extended Status info not present"
		}
		v, err := UnpackUint16(msg[start+2 : start+4])
		if err != nil {
			return "Extended Status info not present"
		}
		extended = uint32(v)
	case 4:
		if len(msg) < start+6 {
			return "Extended Status info not present"
		}
		v, err := UnpackUint32(msg[start+2 : start+6])
		if err != nil {
			return "Extended Status info not present"
		}
		extended = v
	default:
		return "Extended Status Size Unknown"
	}

	if table, ok := extendedStatusCodes[status]; ok {
		if text, ok := table[extended]; ok {
			return fmt.Sprintf("%s  (%02x, %04x)", text, status, extended)
		}
	}
	return "Extended Status info not present"
}
