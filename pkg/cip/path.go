package cip

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// Path Segment Types
const (
	SegmentTypePort      byte = 0x00 // 000xxxxx
	SegmentTypeLogical   byte = 0x20 // 001xxxxx
	SegmentTypeNetwork   byte = 0x40 // 010xxxxx
	SegmentTypeSymbolic  byte = 0x60 // 011xxxxx
	SegmentTypeData      byte = 0x80 // 100xxxxx
	SegmentTypeDataType1 byte = 0xA0 // 101xxxxx
	SegmentTypeDataType2 byte = 0xC0 // 110xxxxx
	SegmentTypeReserved  byte = 0xE0 // 111xxxxx
)

// Logical Segment Types
const (
	LogicalTypeClass     byte = 0x00 // xxx000xx
	LogicalTypeInstance  byte = 0x04 // xxx001xx
	LogicalTypeMember    byte = 0x08 // xxx010xx
	LogicalTypePoint     byte = 0x0C // xxx011xx
	LogicalTypeAttribute byte = 0x10 // xxx100xx
	LogicalTypeSpecial   byte = 0x14 // xxx101xx
	LogicalTypeService   byte = 0x18 // xxx110xx
	LogicalTypeExtended  byte = 0x1C // xxx111xx
)

// Logical Segment Formats
const (
	LogicalFormat8Bit     byte = 0x00 // xxxxxx00
	LogicalFormat16Bit    byte = 0x01 // xxxxxx01
	LogicalFormat32Bit    byte = 0x02 // xxxxxx10
	LogicalFormatReserved byte = 0x03 // xxxxxx11
)

// Path represents a CIP EPATH
type Path []byte

// NewPath creates a new empty path
func NewPath() Path {
	return make(Path, 0)
}

// AddClass adds a Class segment to the path
func (p *Path) AddClass(classID UINT) {
	if classID <= 0xFF {
		*p = append(*p, SegmentTypeLogical|LogicalTypeClass|LogicalFormat8Bit)
		*p = append(*p, byte(classID))
	} else {
		*p = append(*p, SegmentTypeLogical|LogicalTypeClass|LogicalFormat16Bit)
		*p = append(*p, 0x00) // Pad
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(classID))
		*p = append(*p, b...)
	}
}

// AddInstance adds an Instance segment to the path
func (p *Path) AddInstance(instanceID UINT) {
	if instanceID <= 0xFF {
		*p = append(*p, SegmentTypeLogical|LogicalTypeInstance|LogicalFormat8Bit)
		*p = append(*p, byte(instanceID))
	} else {
		*p = append(*p, SegmentTypeLogical|LogicalTypeInstance|LogicalFormat16Bit)
		*p = append(*p, 0x00) // Pad
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(instanceID))
		*p = append(*p, b...)
	}
}

// AddInstance32 adds a 32-bit Instance segment to the path
func (p *Path) AddInstance32(instanceID uint32) {
	if instanceID <= 0xFF {
		*p = append(*p, SegmentTypeLogical|LogicalTypeInstance|LogicalFormat8Bit)
		*p = append(*p, byte(instanceID))
	} else if instanceID <= 0xFFFF {
		*p = append(*p, SegmentTypeLogical|LogicalTypeInstance|LogicalFormat16Bit)
		*p = append(*p, 0x00) // Pad
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(instanceID))
		*p = append(*p, b...)
	} else {
		*p = append(*p, SegmentTypeLogical|LogicalTypeInstance|LogicalFormat32Bit)
		*p = append(*p, 0x00) // Pad
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, instanceID)
		*p = append(*p, b...)
	}
}

// AddAttribute adds an Attribute segment to the path
func (p *Path) AddAttribute(attributeID UINT) {
	if attributeID <= 0xFF {
		*p = append(*p, SegmentTypeLogical|LogicalTypeAttribute|LogicalFormat8Bit)
		*p = append(*p, byte(attributeID))
	} else {
		*p = append(*p, SegmentTypeLogical|LogicalTypeAttribute|LogicalFormat16Bit)
		*p = append(*p, 0x00) // Pad
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(attributeID))
		*p = append(*p, b...)
	}
}

// AddMember adds a Member segment to the path
func (p *Path) AddMember(memberID UINT) {
	if memberID <= 0xFF {
		*p = append(*p, SegmentTypeLogical|LogicalTypeMember|LogicalFormat8Bit)
		*p = append(*p, byte(memberID))
	} else {
		*p = append(*p, SegmentTypeLogical|LogicalTypeMember|LogicalFormat16Bit)
		*p = append(*p, 0x00) // Pad
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(memberID))
		*p = append(*p, b...)
	}
}

// AddSymbolicSegment adds a Symbolic segment (ANSI Extended Symbol)
func (p *Path) AddSymbolicSegment(symbol string) {
	*p = append(*p, 0x91) // Extended Symbol Segment (Data Segment 0x80 | 0x11)
	l := len(symbol)
	*p = append(*p, byte(l))
	*p = append(*p, []byte(symbol)...)
	if l%2 != 0 {
		*p = append(*p, 0x00) // Pad to even length
	}
}

// AddPortSegment adds a Port segment
func (p *Path) AddPortSegment(port UINT, linkAddress []byte) {
	// Simple port segment: 000xxxxx where xxxxx is port number if < 15
	// If port >= 15, then 00001111 followed by extended port
	// Only ports below 15 are supported.
	if port < 15 {
		b := SegmentTypePort | byte(port)
		if len(linkAddress) > 1 {
			b |= 0x10 // Link Address Size bit (0 = 1 byte, 1 = >1 byte)
			// Segment byte, link address length byte, link address, pad to 16 bits.
			*p = append(*p, b, byte(len(linkAddress)))
			*p = append(*p, linkAddress...)
			if len(linkAddress)%2 != 0 {
				*p = append(*p, 0x00)
			}
			return
		}
		*p = append(*p, b)
		*p = append(*p, linkAddress...)
	} else {
		// Extended port not implemented yet
		panic("Extended port segments not implemented")
	}
}

// Bytes returns the byte slice of the path
func (p Path) Bytes() []byte {
	return []byte(p)
}

// LenWords returns the length in words (16-bit)
func (p Path) LenWords() byte {
	return byte((len(p) + 1) / 2)
}

// String returns a string representation of the path
func (p Path) String() string {
	return fmt.Sprintf("%X", []byte(p))
}

// BuildPath creates a standard Class/Instance/Attribute path
func BuildPath(classID, instanceID, attributeID UINT) Path {
	p := NewPath()
	p.AddClass(classID)
	p.AddInstance(instanceID)
	if attributeID != 0 {
		p.AddAttribute(attributeID)
	}
	return p
}

// CreateTagRP converts a dotted symbolic tag reference such as
// "Motor.Speed" or "Array[3,2]" into a CIP request path: each dot-separated
// name becomes an Extended Symbolic segment (0x91, length, ASCII bytes,
// even-padded), and each bracketed index becomes an 8/16/32-bit Element ID
// segment sized to the smallest width that holds it.
//
// When multiService is true the returned bytes are prefixed with a single
// word-count byte (total length / 2), the framing Multiple Service Packet
// requests need in place of the normal CPF path-size word.
func CreateTagRP(name string, multiService bool) ([]byte, error) {
	p := NewPath()

	for _, segment := range strings.Split(name, ".") {
		base := segment
		var indices []string
		if i := strings.IndexByte(segment, '['); i >= 0 {
			if !strings.HasSuffix(segment, "]") {
				return nil, newEncodingError("CreateTagRP", "unterminated index in segment %q", segment)
			}
			base = segment[:i]
			indices = strings.Split(segment[i+1:len(segment)-1], ",")
		}

		if base == "" {
			return nil, newEncodingError("CreateTagRP", "empty tag segment in %q", name)
		}
		p.AddSymbolicSegment(base)

		for _, raw := range indices {
			v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				return nil, newEncodingError("CreateTagRP", "invalid index %q in %q: %v", raw, name, err)
			}
			switch {
			case v <= 0xFF:
				p = append(p, 0x28, byte(v))
			case v <= 0xFFFF:
				p = append(p, 0x29, 0x00)
				p = append(p, PackUint16(uint16(v))...)
			case v <= 0xFFFFFFFF:
				p = append(p, 0x2A, 0x00)
				p = append(p, PackUint32(uint32(v))...)
			default:
				return nil, newEncodingError("CreateTagRP", "index %d out of range in %q", v, name)
			}
		}
	}

	if multiService {
		out := make([]byte, 0, len(p)+1)
		out = append(out, byte(len(p)/2))
		out = append(out, p...)
		return out, nil
	}
	return p.Bytes(), nil
}
