package cip

import "fmt"

// Vendors maps a CIP vendor id to its registered name. Non-exhaustive: the
// full ODVA vendor registry runs to several thousand entries; these are the
// ones encountered most often on the wire.
var Vendors = map[UINT]string{
	1:   "Rockwell Automation/Allen-Bradley",
	283: "Rockwell Automation",
	47:  "Schneider Electric",
	26:  "Omron Corporation",
	140: "Festo",
	1027: "ProSoft Technology",
}

// ProductTypes maps a CIP product type id to its registered name.
// Non-exhaustive.
var ProductTypes = map[UINT]string{
	0x00: "Generic Device",
	0x02: "AC Drive",
	0x03: "Motor Overload",
	0x07: "General Purpose Discrete I/O",
	0x0C: "Communications Adapter",
	0x0E: "Programmable Logic Controller",
	0x2B: "Generic Device (keyable)",
}

// Identity is the parsed result of a list_identity / get_module_info reply,
// per the Identity object's Get_Attributes_All response.
type Identity struct {
	VendorID     UINT
	VendorName   string
	ProductType  UINT
	ProductName  string // resolved from ProductTypes; "UNKNOWN" if unmapped
	ProductCode  UINT
	MajorRev     byte
	MinorRev     byte
	Status       string // 16-bit status word formatted as a binary string
	Serial       string // 8 hex digit serial number
	DeviceName   string // product name string from the reply body
	DeviceState  int    // -1 if not present in the reply
}

// ParseIdentityObject decodes a list_identity reply per the fixed offset
// table anchored on the whole encapsulated message: vendor id at 44, product
// type at 46, product code at 48, major/minor revision at 50/51, status at
// 52, serial at 54, name length + name starting at 58, and an optional
// device state word immediately after the name.
func ParseIdentityObject(reply []byte) (*Identity, error) {
	return parseIdentityAt(reply, 44)
}

// ParseIdentityAttributes decodes a bare Identity Get_Attributes_All
// response body (as returned by get_module_info, with no encapsulation
// header or CPF framing in front of it) using the same field layout as
// ParseIdentityObject, shifted to start at offset 0.
func ParseIdentityAttributes(data []byte) (*Identity, error) {
	return parseIdentityAt(data, 0)
}

func parseIdentityAt(reply []byte, base int) (*Identity, error) {
	if len(reply) < base+15 {
		return nil, newEncodingError("ParseIdentityObject", "reply too short: %d bytes", len(reply))
	}

	vendorID, err := UnpackUint16(reply[base : base+2])
	if err != nil {
		return nil, err
	}
	productType, err := UnpackUint16(reply[base+2 : base+4])
	if err != nil {
		return nil, err
	}
	productCode, err := UnpackUint16(reply[base+4 : base+6])
	if err != nil {
		return nil, err
	}
	statusWord, err := UnpackUint16(reply[base+8 : base+10])
	if err != nil {
		return nil, err
	}
	serialNum, err := UnpackUint32(reply[base+10 : base+14])
	if err != nil {
		return nil, err
	}

	nameLen := int(reply[base+14])
	nameStart := base + 15
	nameEnd := nameStart + nameLen
	if len(reply) < nameEnd {
		return nil, newEncodingError("ParseIdentityObject", "name length %d exceeds reply of %d bytes", nameLen, len(reply))
	}

	id := &Identity{
		VendorID:    UINT(vendorID),
		ProductType: UINT(productType),
		ProductCode: UINT(productCode),
		MajorRev:    reply[base+6],
		MinorRev:    reply[base+7],
		Status:      fmt.Sprintf("%016b", statusWord),
		Serial:      fmt.Sprintf("%08X", serialNum),
		DeviceName:  string(reply[nameStart:nameEnd]),
		DeviceState: -1,
	}

	if name, ok := Vendors[id.VendorID]; ok {
		id.VendorName = name
	} else {
		id.VendorName = "UNKNOWN"
	}
	if name, ok := ProductTypes[id.ProductType]; ok {
		id.ProductName = name
	} else {
		id.ProductName = "UNKNOWN"
	}

	if len(reply) >= nameEnd+2 {
		state, err := UnpackUint16(reply[nameEnd : nameEnd+2])
		if err != nil {
			return nil, err
		}
		id.DeviceState = int(state)
	}

	return id, nil
}
