// Package utils holds small helpers shared across packages.
package utils

import (
	"encoding/binary"
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ErrShortBuffer is reported by InputBuf reads past the end of the data.
var ErrShortBuffer = errors.New("short buffer")

// OutputBuf is an append-only binary encoder. Integers are little-endian;
// field elements are 32-byte big-endian regular form.
type OutputBuf struct {
	buf []byte
}

func (o *OutputBuf) AppendUint8(x uint8) {
	o.buf = append(o.buf, x)
}

func (o *OutputBuf) AppendUint32(x uint32) {
	o.buf = binary.LittleEndian.AppendUint32(o.buf, x)
}

func (o *OutputBuf) AppendUint64(x uint64) {
	o.buf = binary.LittleEndian.AppendUint64(o.buf, x)
}

func (o *OutputBuf) AppendInt64(x int64) {
	o.buf = binary.LittleEndian.AppendUint64(o.buf, uint64(x))
}

func (o *OutputBuf) AppendElement(e fr.Element) {
	b := e.Bytes()
	o.buf = append(o.buf, b[:]...)
}

func (o *OutputBuf) AppendString(s string) {
	o.AppendUint32(uint32(len(s)))
	o.buf = append(o.buf, s...)
}

func (o *OutputBuf) Bytes() []byte {
	return o.buf
}

// InputBuf decodes data written by OutputBuf. The first out-of-bounds read
// latches an error; callers check Err once after the last read.
type InputBuf struct {
	buf []byte
	err error
}

func NewInputBuf(buf []byte) *InputBuf {
	return &InputBuf{buf: buf}
}

func (i *InputBuf) take(n int) []byte {
	if i.err != nil || len(i.buf) < n {
		i.err = ErrShortBuffer
		return nil
	}
	out := i.buf[:n]
	i.buf = i.buf[n:]
	return out
}

func (i *InputBuf) ReadUint8() uint8 {
	b := i.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (i *InputBuf) ReadUint32() uint32 {
	b := i.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (i *InputBuf) ReadUint64() uint64 {
	b := i.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (i *InputBuf) ReadInt64() int64 {
	return int64(i.ReadUint64())
}

func (i *InputBuf) ReadElement() fr.Element {
	var e fr.Element
	b := i.take(fr.Bytes)
	if b == nil {
		return e
	}
	e.SetBytes(b)
	return e
}

func (i *InputBuf) ReadString() string {
	n := int(i.ReadUint32())
	b := i.take(n)
	if b == nil {
		return ""
	}
	return string(b)
}

// Remaining reports how many bytes are left unread.
func (i *InputBuf) Remaining() int {
	return len(i.buf)
}

// Err returns the latched read error, if any.
func (i *InputBuf) Err() error {
	return i.err
}
