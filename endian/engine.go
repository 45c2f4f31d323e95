// Package endian provides byte order utilities for the qipc wire codec.
//
// This package extends Go's standard encoding/binary package by combining
// ByteOrder and AppendByteOrder interfaces into a unified EndianEngine
// interface. kdb+ IPC frames carry their own endianness in header byte 0:
// the sender always writes in its host's native order, and the receiver
// honors whatever byte 0 says (spec §1: "host-endian on send, either-endian
// on receive"). Threading an EndianEngine through encode/decode makes that
// a choice of which engine value gets passed in, not a branch scattered
// through the codec.
//
// # Basic usage
//
//	engine := endian.HostEngine()
//	payload, err := codec.Encode(v, engine)
//
// For decoding a frame whose header says big-endian regardless of host:
//
//	engine := endian.FromHeaderByte(frameBytes[0])
//	v, err := codec.Decode(payload, engine, limits)
//
// # Thread safety
//
// All functions in this package are safe for concurrent use. The returned
// EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian from
// the standard library, making it fully compatible with existing Go code while
// providing access to both read/write and append operations.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is first.
	// For a big-endian system, the MSB (0x01) is first.
	var i uint16 = 0x0100

	// Create a byte slice pointing to the memory address of 'i'.
	// We only need the first byte.
	b := (*[2]byte)(unsafe.Pointer(&i))

	// Check the first byte at the lowest memory address
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

func IsNativeBigEndian() bool {
	return CheckEndianness() == binary.BigEndian
}

func CompareNativeEndian(engine EndianEngine) bool {
	return engine == CheckEndianness()
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// HostEngine returns the EndianEngine matching the host's native byte order.
// The frame encoder always builds outgoing frames with this engine.
func HostEngine() EndianEngine {
	if IsNativeLittleEndian() {
		return binary.LittleEndian
	}

	return binary.BigEndian
}

// HeaderByte returns the kdb+ IPC header byte-0 value (0 big, 1 little)
// naming engine.
func HeaderByte(engine EndianEngine) byte {
	if engine == binary.LittleEndian {
		return 1
	}

	return 0
}

// FromHeaderByte returns the EndianEngine named by a kdb+ IPC header byte-0
// value: 0 selects big-endian, any other value selects little-endian. The
// frame decoder does not validate byte 0, so in both validation modes any
// nonzero value is read as little-endian.
func FromHeaderByte(b byte) EndianEngine {
	if b == 0 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}
