package codec

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/weave-market"
	"github.com/iov-one/weave-market/errors"
)

// Buffer accumulates protobuf encoded fields. Zero values are omitted,
// as proto3 does.
type Buffer struct {
	pb proto.Buffer
}

func (b *Buffer) key(field int, wire int) {
	_ = b.pb.EncodeVarint(uint64(field)<<3 | uint64(wire))
}

// Uint64 writes a varint field.
func (b *Buffer) Uint64(field int, v uint64) {
	if v == 0 {
		return
	}
	b.key(field, proto.WireVarint)
	_ = b.pb.EncodeVarint(v)
}

// Bool writes a boolean field.
func (b *Buffer) Bool(field int, v bool) {
	if v {
		b.Uint64(field, 1)
	}
}

// Bytes writes a length delimited field.
func (b *Buffer) Bytes(field int, v []byte) {
	if len(v) == 0 {
		return
	}
	b.key(field, proto.WireBytes)
	_ = b.pb.EncodeRawBytes(v)
}

// String writes a string field.
func (b *Buffer) String(field int, v string) {
	if v == "" {
		return
	}
	b.key(field, proto.WireBytes)
	_ = b.pb.EncodeStringBytes(v)
}

// Message writes an embedded message. Nil and empty messages are omitted.
func (b *Buffer) Message(field int, m weave.Marshaller) error {
	if m == nil {
		return nil
	}
	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrapf(err, "field %d", field)
	}
	b.Bytes(field, raw)
	return nil
}

// Result returns the encoded bytes.
func (b *Buffer) Result() []byte {
	return b.pb.Bytes()
}

// Decoder reads protobuf encoded fields one at a time.
//
//	d := codec.NewDecoder(raw)
//	for d.Next() {
//	  switch d.Field() {
//	  case 1:
//	    m.ID = d.Uint64()
//	  default:
//	    d.Skip()
//	  }
//	}
//	return d.Err()
type Decoder struct {
	pb *proto.Buffer
	// left is the number of bytes not consumed yet. proto.Buffer does
	// not expose its read position.
	left  int
	field int
	wire  int
	err   error
}

// NewDecoder returns a decoder reading given data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{pb: proto.NewBuffer(data), left: len(data)}
}

// Next moves to the next field. It returns false when all data was consumed
// or decoding failed.
func (d *Decoder) Next() bool {
	if d.err != nil || d.left <= 0 {
		return false
	}
	key, ok := d.varint()
	if !ok {
		return false
	}
	d.field = int(key >> 3)
	d.wire = int(key & 0x7)
	if d.field == 0 {
		d.fail("illegal field number 0")
		return false
	}
	return true
}

// Field returns the number of the current field.
func (d *Decoder) Field() int {
	return d.field
}

// Err returns the first error that happened during decoding.
func (d *Decoder) Err() error {
	return d.err
}

// Uint64 reads the current varint field.
func (d *Decoder) Uint64() uint64 {
	if !d.expect(proto.WireVarint) {
		return 0
	}
	v, _ := d.varint()
	return v
}

// Bool reads the current boolean field.
func (d *Decoder) Bool() bool {
	return d.Uint64() != 0
}

// Bytes reads the current length delimited field. The returned slice does
// not share memory with the decoded data.
func (d *Decoder) Bytes() []byte {
	return d.raw(true)
}

// String reads the current string field.
func (d *Decoder) String() string {
	return string(d.raw(false))
}

// Message reads the current embedded message into given destination.
func (d *Decoder) Message(dest weave.Persistent) {
	raw := d.raw(false)
	if d.err != nil {
		return
	}
	if err := dest.Unmarshal(raw); err != nil {
		d.err = errors.Wrapf(err, "field %d", d.field)
	}
}

// Skip consumes the current field without reading it. Unknown fields are
// ignored so that older binaries can read data written by newer ones.
func (d *Decoder) Skip() {
	var err error
	switch d.wire {
	case proto.WireVarint:
		d.varint()
		return
	case proto.WireBytes:
		d.raw(false)
		return
	case proto.WireFixed64:
		_, err = d.pb.DecodeFixed64()
		d.left -= 8
	case proto.WireFixed32:
		_, err = d.pb.DecodeFixed32()
		d.left -= 4
	default:
		d.fail("unsupported wire type %d", d.wire)
		return
	}
	if err != nil {
		d.fail("field %d: %s", d.field, err)
	}
}

func (d *Decoder) raw(alloc bool) []byte {
	if !d.expect(proto.WireBytes) {
		return nil
	}
	v, err := d.pb.DecodeRawBytes(alloc)
	if err != nil {
		d.fail("field %d: %s", d.field, err)
		return nil
	}
	d.left -= proto.SizeVarint(uint64(len(v))) + len(v)
	return v
}

func (d *Decoder) varint() (uint64, bool) {
	if d.err != nil {
		return 0, false
	}
	v, err := d.pb.DecodeVarint()
	if err != nil {
		d.fail("malformed varint: %s", err)
		return 0, false
	}
	d.left -= proto.SizeVarint(v)
	return v, true
}

func (d *Decoder) expect(wire int) bool {
	if d.err != nil {
		return false
	}
	if d.wire != wire {
		d.fail("field %d: wire type %d, expected %d", d.field, d.wire, wire)
		return false
	}
	return true
}

func (d *Decoder) fail(format string, args ...interface{}) {
	if d.err == nil {
		d.err = errors.Wrapf(errors.ErrSchema, format, args...)
	}
}
