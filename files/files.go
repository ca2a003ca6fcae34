// Package files contains the primitives of the PL/0 object file format:
// single bytes, zero-terminated strings and numbers in the compact encoding
// of Oberon's Files.WriteNum (7 bits per byte, high bit set on all but the
// last byte, sign carried in bit 6 of the last byte).
//
// The functions panic on I/O errors; callers recover at the file level.
package files

import (
	"bytes"
	"io"
	"math/bits"
)

func ReadByte(r io.ByteReader) byte {
	b, err := r.ReadByte()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		panic(err)
	}
	return b
}

func WriteByte(w io.ByteWriter, b byte) {
	if err := w.WriteByte(b); err != nil {
		panic(err)
	}
}

// ReadBytes fills buf.
func ReadBytes(r io.ByteReader, buf []byte) {
	for i := range buf {
		buf[i] = ReadByte(r)
	}
}

func WriteBytes(w io.ByteWriter, buf []byte) {
	for _, b := range buf {
		WriteByte(w, b)
	}
}

func ReadBool(r io.ByteReader) bool {
	return ReadByte(r) != 0
}

func WriteBool(w io.ByteWriter, x bool) {
	if x {
		WriteByte(w, 1)
	} else {
		WriteByte(w, 0)
	}
}

func ReadString(r io.ByteReader) string {
	var buf bytes.Buffer
	for b := ReadByte(r); b != 0; b = ReadByte(r) {
		buf.WriteByte(b)
	}
	return buf.String()
}

func WriteString(w io.ByteWriter, x string) {
	WriteBytes(w, []byte(x))
	WriteByte(w, 0)
}

func ReadNum(r io.ByteReader) int32 {
	n := 32
	y := uint32(0)
	b := ReadByte(r)
	for b >= 0x80 {
		y = bits.RotateLeft32(y+uint32(b)-0x80, -7)
		n -= 7
		b = ReadByte(r)
	}
	if n <= 4 {
		return int32(bits.RotateLeft32(y+uint32(b%0x10), -4))
	}
	return int32(bits.RotateLeft32(y+uint32(b), -7)) >> (n - 7)
}

func WriteNum(w io.ByteWriter, x int32) {
	for x < -0x40 || x >= 0x40 {
		WriteByte(w, byte(x)%0x80+0x80)
		x >>= 7
	}
	WriteByte(w, byte(x)%0x80)
}
