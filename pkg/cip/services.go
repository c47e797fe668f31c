package cip

import "fmt"

// NewGetAttributeSingleRequest creates a request to read a single attribute
func NewGetAttributeSingleRequest(path Path) *MessageRouterRequest {
	return &MessageRouterRequest{
		Service:     ServiceGetAttributeSingle,
		RequestPath: path,
		RequestData: nil,
	}
}

// NewSetAttributeSingleRequest creates a request to write a single attribute
func NewSetAttributeSingleRequest(path Path, data []byte) *MessageRouterRequest {
	return &MessageRouterRequest{
		Service:     ServiceSetAttributeSingle,
		RequestPath: path,
		RequestData: data,
	}
}

// NewReadTagRequest creates a request to read a tag (symbolic segment)
// Note: This often uses a specific service or just GetAttributeSingle on the symbol?
// Actually, for Logix tags, we usually use "Read Tag" service (0x4C) or "Read Tag Fragmented" (0x52).
// But standard CIP uses GetAttributeSingle on the symbol object.
// Let's implement the Rockwell Logix "Read Tag" service (0x4C) as it's most common for "EIP PLCs".
const ServiceReadTag USINT = 0x4C
const ServiceWriteTag USINT = 0x4D

func NewReadTagRequest(tagPath Path, elements uint16) *MessageRouterRequest {
	// Read Tag Request Data:
	// Number of Elements (UINT)
	// For atomic types, elements = 1.

	// However, the path should be the Symbolic Path to the tag.

	reqData := make([]byte, 2)
	// binary.LittleEndian.PutUint16(reqData, elements)
	// Wait, we need binary package.
	reqData[0] = byte(elements)
	reqData[1] = byte(elements >> 8)

	return &MessageRouterRequest{
		Service:     ServiceReadTag,
		RequestPath: tagPath,
		RequestData: reqData,
	}
}

// NewWriteTagRequest creates a request to write a tag (Rockwell Logix "Write
// Tag" service, 0x4D). Request data is [DataType:UINT][Elements:UINT][value].
func NewWriteTagRequest(tagPath Path, dataType DataType, elements uint16, value []byte) *MessageRouterRequest {
	reqData := make([]byte, 4+len(value))
	reqData[0] = byte(dataType)
	reqData[1] = byte(dataType >> 8)
	reqData[2] = byte(elements)
	reqData[3] = byte(elements >> 8)
	copy(reqData[4:], value)

	return &MessageRouterRequest{
		Service:     ServiceWriteTag,
		RequestPath: tagPath,
		RequestData: reqData,
	}
}

// DataTypeOf resolves the CIP DataType code for a Go value accepted by
// Client.WriteTag. Only the atomic types Logix tags commonly expose are
// supported; structured tags should be written via their MarshalCIP method
// and an explicit DataType.
func DataTypeOf(v any) (DataType, error) {
	switch v.(type) {
	case bool:
		return TypeBOOL, nil
	case int8:
		return TypeSINT, nil
	case uint8:
		return TypeUSINT, nil
	case int16:
		return TypeINT, nil
	case uint16:
		return TypeUINT, nil
	case int32:
		return TypeDINT, nil
	case uint32:
		return TypeUDINT, nil
	case int64:
		return TypeLINT, nil
	case uint64:
		return TypeULINT, nil
	case float32:
		return TypeREAL, nil
	case float64:
		return TypeLREAL, nil
	default:
		return 0, fmt.Errorf("cip: no data type mapping for %T", v)
	}
}
