package wire

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Returned in place of a byte count when a field cannot be decoded.
const (
	// errWireType: the wire type does not match the field declaration.
	errWireType = -1000
	// errOverflow: a varint does not fit the declared field width.
	errOverflow = -1001
)

// Helpers follow proto3 presence rules: zero scalars and empty repeated
// fields are omitted.

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// appendFloats writes vs as a packed repeated float field.
func appendFloats(b []byte, num protowire.Number, vs []float32) []byte {
	if len(vs) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	b = protowire.AppendVarint(b, uint64(4*len(vs)))
	for _, v := range vs {
		b = protowire.AppendFixed32(b, math.Float32bits(v))
	}
	return b
}

func consumeString(typ protowire.Type, b []byte) (string, int) {
	if typ != protowire.BytesType {
		return "", errWireType
	}
	return protowire.ConsumeString(b)
}

func consumeVarint(typ protowire.Type, b []byte) (uint64, int) {
	if typ != protowire.VarintType {
		return 0, errWireType
	}
	return protowire.ConsumeVarint(b)
}

// consumeUint32 decodes a varint declared as uint32, rejecting values that
// would otherwise be truncated.
func consumeUint32(typ protowire.Type, b []byte) (uint32, int) {
	v, n := consumeVarint(typ, b)
	if n < 0 {
		return 0, n
	}
	if v > math.MaxUint32 {
		return 0, errOverflow
	}
	return uint32(v), n
}

// consumeFloats accepts both packed and unpacked encodings of a repeated
// float field and appends the values to dst.
func consumeFloats(dst []float32, typ protowire.Type, b []byte) ([]float32, int) {
	switch typ {
	case protowire.Fixed32Type:
		v, n := protowire.ConsumeFixed32(b)
		if n < 0 {
			return dst, n
		}
		return append(dst, math.Float32frombits(v)), n
	case protowire.BytesType:
		packed, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return dst, n
		}
		if len(packed)%4 != 0 {
			return dst, errWireType
		}
		if dst == nil {
			dst = make([]float32, 0, len(packed)/4)
		}
		for len(packed) > 0 {
			v, m := protowire.ConsumeFixed32(packed)
			dst = append(dst, math.Float32frombits(v))
			packed = packed[m:]
		}
		return dst, n
	default:
		return dst, errWireType
	}
}
