package journal

import "github.com/vmihailenco/msgpack"

// MsgpackCodec is the default Codec, serializing keys and values with
// msgpack. It works for any K/V msgpack can marshal, which covers
// every ordinary struct, map, slice, and primitive type.
type MsgpackCodec[K comparable, V any] struct{}

// NewMsgpackCodec constructs a MsgpackCodec for the given key/value types.
func NewMsgpackCodec[K comparable, V any]() MsgpackCodec[K, V] {
	return MsgpackCodec[K, V]{}
}

func (MsgpackCodec[K, V]) EncodeKey(k K) ([]byte, error) { return msgpack.Marshal(k) }

func (MsgpackCodec[K, V]) DecodeKey(b []byte) (K, error) {
	var k K
	err := msgpack.Unmarshal(b, &k)
	return k, err
}

func (MsgpackCodec[K, V]) EncodeValue(v V) ([]byte, error) { return msgpack.Marshal(v) }

func (MsgpackCodec[K, V]) DecodeValue(b []byte) (V, error) {
	var v V
	err := msgpack.Unmarshal(b, &v)
	return v, err
}
