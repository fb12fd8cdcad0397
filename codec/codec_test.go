package codec

import (
	"testing"

	"github.com/iov-one/weave-market/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inner struct {
	Name string
}

func (i *inner) Marshal() ([]byte, error) {
	var b Buffer
	b.String(1, i.Name)
	return b.Result(), nil
}

func (i *inner) Unmarshal(raw []byte) error {
	*i = inner{}
	d := NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			i.Name = d.String()
		default:
			d.Skip()
		}
	}
	return d.Err()
}

type outer struct {
	ID    uint64
	Flag  bool
	Blob  []byte
	Child inner
}

func (o *outer) Marshal() ([]byte, error) {
	var b Buffer
	b.Uint64(1, o.ID)
	b.Bool(2, o.Flag)
	b.Bytes(3, o.Blob)
	if err := b.Message(4, &o.Child); err != nil {
		return nil, err
	}
	return b.Result(), nil
}

func (o *outer) Unmarshal(raw []byte) error {
	*o = outer{}
	d := NewDecoder(raw)
	for d.Next() {
		switch d.Field() {
		case 1:
			o.ID = d.Uint64()
		case 2:
			o.Flag = d.Bool()
		case 3:
			o.Blob = d.Bytes()
		case 4:
			d.Message(&o.Child)
		default:
			d.Skip()
		}
	}
	return d.Err()
}

func TestEncodingIsProtobufCompatible(t *testing.T) {
	o := outer{ID: 300, Flag: true, Blob: []byte{0xca, 0xfe}, Child: inner{Name: "a"}}
	raw, err := o.Marshal()
	require.NoError(t, err)

	// Hand computed protobuf encoding of the same message.
	want := []byte{
		0x08, 0xac, 0x02, // 1: 300
		0x10, 0x01, // 2: true
		0x1a, 0x02, 0xca, 0xfe, // 3: bytes
		0x22, 0x03, 0x0a, 0x01, 'a', // 4: {1: "a"}
	}
	assert.Equal(t, want, raw)

	var got outer
	require.NoError(t, got.Unmarshal(raw))
	assert.Equal(t, o, got)
}

func TestZeroValuesAreOmitted(t *testing.T) {
	var o outer
	raw, err := o.Marshal()
	require.NoError(t, err)
	// Only the empty embedded message is left out as well.
	assert.Empty(t, raw)
}

func TestUnknownFieldsAreSkipped(t *testing.T) {
	raw := []byte{
		0x08, 0x07, // 1: 7
		0x48, 0x01, // 9: varint
		0x52, 0x01, 0x00, // 10: bytes
		0x59, 0, 0, 0, 0, 0, 0, 0, 0, // 11: fixed64
	}
	var o outer
	require.NoError(t, o.Unmarshal(raw))
	assert.Equal(t, uint64(7), o.ID)
}

func TestMalformedData(t *testing.T) {
	cases := map[string][]byte{
		"truncated bytes": {0x1a, 0x05, 0x01},
		"wrong wire type": {0x0a, 0x01, 0x01},
		"broken varint":   {0x08, 0xff},
		"field zero":      {0x00, 0x01},
		"truncated fixed": {0x59, 0x00, 0x00},
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			var o outer
			err := o.Unmarshal(raw)
			require.Error(t, err)
			assert.True(t, errors.ErrSchema.Is(err))
		})
	}
}
