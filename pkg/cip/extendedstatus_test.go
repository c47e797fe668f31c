package cip

import "testing"

func TestGetExtendedStatus_NoExtended(t *testing.T) {
	msg := []byte{0x00, 0x00}
	if got := GetExtendedStatus(msg, 0); got != "Extended Status info not present" {
		t.Errorf("GetExtendedStatus() = %q", got)
	}
}

func TestGetExtendedStatus_Known(t *testing.T) {
	msg := []byte{0x01, 0x01, 0x00, 0x01}
	got := GetExtendedStatus(msg, 0)
	want := "Connection in use or duplicate forward open  (01, 0100)"
	if got != want {
		t.Errorf("GetExtendedStatus() = %q, want %q", got, want)
	}
}

func TestGetExtendedStatus_Unknown(t *testing.T) {
	msg := []byte{0xFE, 0x01, 0xAB}
	if got := GetExtendedStatus(msg, 0); got != "Extended Status info not present" {
		t.Errorf("GetExtendedStatus() = %q", got)
	}
}

func TestGetExtendedStatus_Truncated(t *testing.T) {
	msg := []byte{0x01, 0x02}
	if got := GetExtendedStatus(msg, 0); got != "Extended Status info not present" {
		t.Errorf("GetExtendedStatus() = %q", got)
	}
}
