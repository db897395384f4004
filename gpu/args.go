package gpu

import (
	"encoding/binary"
	"math"
)

// ArgBuffer packs kernel launch arguments into the flat byte layout the
// driver consumes. Values are aligned to their own width (8-byte values
// to 8 bytes, 4-byte values to 4); struct appends align to 8. Append
// order must match the generated kernel's parameter order exactly.
type ArgBuffer struct {
	buf []byte
}

func (a *ArgBuffer) pad(align int) {
	if rem := len(a.buf) % align; rem != 0 {
		a.buf = append(a.buf, make([]byte, align-rem)...)
	}
}

// AppendPtr appends a device pointer argument.
func (a *ArgBuffer) AppendPtr(p DevicePtr) {
	a.AppendUint64(uint64(p))
}

// AppendUint64 appends an 8-byte unsigned value (size_t on device).
func (a *ArgBuffer) AppendUint64(v uint64) {
	a.pad(8)
	a.buf = binary.LittleEndian.AppendUint64(a.buf, v)
}

// AppendUint32 appends a 4-byte unsigned value.
func (a *ArgBuffer) AppendUint32(v uint32) {
	a.pad(4)
	a.buf = binary.LittleEndian.AppendUint32(a.buf, v)
}

// AppendInt32 appends a 4-byte signed value.
func (a *ArgBuffer) AppendInt32(v int32) {
	a.AppendUint32(uint32(v))
}

// AppendFloat64 appends a double value.
func (a *ArgBuffer) AppendFloat64(v float64) {
	a.AppendUint64(math.Float64bits(v))
}

// AppendFloat32 appends a float value.
func (a *ArgBuffer) AppendFloat32(v float32) {
	a.AppendUint32(math.Float32bits(v))
}

// AppendFloat16 appends a half-precision value already encoded in IEEE
// binary16 bits.
func (a *ArgBuffer) AppendFloat16(bits uint16) {
	a.pad(2)
	a.buf = binary.LittleEndian.AppendUint16(a.buf, bits)
}

// AppendStruct appends raw struct bytes with 8-byte alignment.
func (a *ArgBuffer) AppendStruct(data []byte) {
	a.pad(8)
	a.buf = append(a.buf, data...)
}

// Size is the packed byte length.
func (a *ArgBuffer) Size() int {
	return len(a.buf)
}

// Bytes exposes the packed layout. The slice aliases internal storage
// and is only valid until the next append.
func (a *ArgBuffer) Bytes() []byte {
	return a.buf
}
