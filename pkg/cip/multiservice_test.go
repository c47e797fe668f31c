package cip

import (
	"bytes"
	"testing"
)

func TestBuildMultipleService_Offsets(t *testing.T) {
	rpList := [][]byte{
		make([]byte, 6),
		make([]byte, 8),
		make([]byte, 10),
	}
	body := BuildMultipleService(rpList, nil)

	if body[0] != byte(ServiceMultipleServicePacket) {
		t.Fatalf("service byte = %X, want %X", body[0], ServiceMultipleServicePacket)
	}

	count, err := UnpackUint16(body[6:8])
	if err != nil {
		t.Fatalf("UnpackUint16() error = %v", err)
	}
	if count != 3 {
		t.Fatalf("service count = %d, want 3", count)
	}

	wantOffsets := []uint16{8, 14, 22}
	for i, want := range wantOffsets {
		got, err := UnpackUint16(body[8+i*2 : 10+i*2])
		if err != nil {
			t.Fatalf("UnpackUint16() error = %v", err)
		}
		if got != want {
			t.Errorf("offset[%d] = %d, want %d", i, got, want)
		}
	}
}

func TestBuildMultipleService_WithSequence(t *testing.T) {
	seq := uint16(0x1234)
	body := BuildMultipleService([][]byte{{0x01}}, &seq)
	if !bytes.Equal(body[:2], PackUint16(seq)) {
		t.Fatalf("sequence prefix = %X, want %X", body[:2], PackUint16(seq))
	}
	if body[2] != byte(ServiceMultipleServicePacket) {
		t.Errorf("service byte after sequence = %X", body[2])
	}
}

func buildMultiReplyReadSlot(generalStatus byte, dataType DataType, value []byte) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(0x8A) // reply service
	buf.WriteByte(0x00) // reserved
	buf.WriteByte(generalStatus)
	buf.WriteByte(0x00) // extended status size
	buf.Write(PackUint16(uint16(dataType)))
	buf.Write(value)
	return buf.Bytes()
}

func TestParseMultipleRequest_Read(t *testing.T) {
	slotA := buildMultiReplyReadSlot(0x00, TypeDINT, PackUint32(42))
	slotB := buildMultiReplyReadSlot(0x05, TypeDINT, PackUint32(0))

	msg := make([]byte, 50)
	msg = append(msg, PackUint16(2)...)
	offset := 2*2 + 2
	msg = append(msg, PackUint16(uint16(offset))...)
	offset += len(slotA)
	msg = append(msg, PackUint16(uint16(offset))...)
	msg = append(msg, slotA...)
	msg = append(msg, slotB...)

	results, err := ParseMultipleRequest(msg, []string{"TagA", "TagB"}, "READ")
	if err != nil {
		t.Fatalf("ParseMultipleRequest() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].Tag != "TagA" || results[0].Value != int32(42) || results[0].Type != TypeDINT {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[1].Tag != "TagB" || results[1].Value != nil {
		t.Errorf("results[1] = %+v, want failed slot", results[1])
	}
}

func TestParseMultipleRequest_Write(t *testing.T) {
	slot := buildMultiReplyReadSlot(0x00, 0, nil)
	msg := make([]byte, 50)
	msg = append(msg, PackUint16(1)...)
	msg = append(msg, PackUint16(4)...)
	msg = append(msg, slot...)

	results, err := ParseMultipleRequest(msg, []string{"TagA"}, "WRITE")
	if err != nil {
		t.Fatalf("ParseMultipleRequest() error = %v", err)
	}
	if results[0].Value != "GOOD" {
		t.Errorf("results[0].Value = %v, want GOOD", results[0].Value)
	}
}

func TestParseMultipleRequest_WriteFailure(t *testing.T) {
	slot := buildMultiReplyReadSlot(0x05, 0, nil)
	msg := make([]byte, 50)
	msg = append(msg, PackUint16(1)...)
	msg = append(msg, PackUint16(4)...)
	msg = append(msg, slot...)

	results, err := ParseMultipleRequest(msg, []string{"TagA"}, "WRITE")
	if err != nil {
		t.Fatalf("ParseMultipleRequest() error = %v", err)
	}
	if results[0].Value != "BAD" {
		t.Errorf("results[0].Value = %v, want BAD", results[0].Value)
	}
}
