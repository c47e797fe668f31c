package cip

import "bytes"

// TagResult is one slot of a parsed Multiple Service Packet READ reply: the
// tag name it corresponds to, its decoded value (nil on failure), and the
// CIP data type the value was decoded as (0 on failure).
type TagResult struct {
	Tag   string
	Value any
	Type  DataType
}

// BuildMultipleService assembles a Multiple Service Packet request body:
// service 0x0A, a path to Message Router instance 1, the service count, an
// offset table locating each request relative to the count field, and the
// concatenated request bodies. When sequence is non-nil its value is
// prefixed ahead of the service, for use as the first bytes of a
// SendUnitData payload.
func BuildMultipleService(rpList [][]byte, sequence *uint16) []byte {
	buf := new(bytes.Buffer)

	if sequence != nil {
		buf.Write(PackUint16(*sequence))
	}

	buf.WriteByte(byte(ServiceMultipleServicePacket))
	buf.WriteByte(0x02) // request path size, in words
	buf.WriteByte(byte(SegmentTypeLogical | LogicalTypeClass | LogicalFormat8Bit))
	buf.WriteByte(byte(ClassMessageRouter))
	buf.WriteByte(byte(SegmentTypeLogical | LogicalTypeInstance | LogicalFormat8Bit))
	buf.WriteByte(0x01) // instance 1
	buf.Write(PackUint16(uint16(len(rpList))))

	offset := len(rpList)*2 + 2
	for _, rp := range rpList {
		buf.Write(PackUint16(uint16(offset)))
		offset += len(rp)
	}
	for _, rp := range rpList {
		buf.Write(rp)
	}

	return buf.Bytes()
}

// failedResult builds the TagResult for a slot that could not be processed:
// nil for a READ, "BAD" for a WRITE, so callers can tell a failed write slot
// apart from one they never received a value for.
func failedResult(tag, kind string) TagResult {
	if kind == "READ" {
		return TagResult{Tag: tag}
	}
	return TagResult{Tag: tag, Value: "BAD"}
}

// ParseMultipleRequest decodes the reply to a Multiple Service Packet sent
// inside SendUnitData. kind is "READ" or "WRITE"; tags supplies the tag name
// for each slot in request order. A slot whose general status is non-zero,
// or whose data type this package doesn't know how to decode, yields
// (tag, nil, 0) for a READ or a tag marked "BAD" for a WRITE.
func ParseMultipleRequest(message []byte, tags []string, kind string) ([]TagResult, error) {
	const offset = 50
	if len(message) < offset+2 {
		return nil, newEncodingError("ParseMultipleRequest", "reply too short for service count: %d bytes", len(message))
	}

	count, err := UnpackUint16(message[offset : offset+2])
	if err != nil {
		return nil, err
	}

	results := make([]TagResult, 0, count)
	position := offset + 2
	for i := 0; i < int(count); i++ {
		if len(message) < position+2 {
			return nil, newEncodingError("ParseMultipleRequest", "reply truncated in offset table at slot %d", i)
		}
		relOffset, err := UnpackUint16(message[position : position+2])
		if err != nil {
			return nil, err
		}
		position += 2

		tag := ""
		if i < len(tags) {
			tag = tags[i]
		}

		start := offset + int(relOffset)
		if len(message) < start+3 {
			results = append(results, failedResult(tag, kind))
			continue
		}
		generalStatus := message[start+2]

		if generalStatus != 0 {
			results = append(results, failedResult(tag, kind))
			continue
		}

		if kind != "READ" {
			results = append(results, TagResult{Tag: tag, Value: "GOOD"})
			continue
		}

		if len(message) < start+6 {
			results = append(results, TagResult{Tag: tag})
			continue
		}
		dataTypeCode, err := UnpackUint16(message[start+4 : start+6])
		if err != nil {
			return nil, err
		}
		dataType := DataType(dataTypeCode)

		codec, ok := TypeCodecs[dataType]
		if !ok {
			results = append(results, TagResult{Tag: tag})
			continue
		}
		valueStart := start + 6
		valueEnd := valueStart + codec.Size
		if len(message) < valueEnd {
			results = append(results, TagResult{Tag: tag})
			continue
		}
		value, err := codec.Unpack(message[valueStart:valueEnd])
		if err != nil {
			results = append(results, TagResult{Tag: tag})
			continue
		}
		results = append(results, TagResult{Tag: tag, Value: value, Type: dataType})
	}

	return results, nil
}
