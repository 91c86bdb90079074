package journal

// Codec serializes keys and values to and from the journal's
// byte-oriented wire format. Implementations must round-trip: for any
// k, DecodeKey(EncodeKey(k)) must equal k (and likewise for values).
type Codec[K comparable, V any] interface {
	EncodeKey(K) ([]byte, error)
	DecodeKey([]byte) (K, error)
	EncodeValue(V) ([]byte, error)
	DecodeValue([]byte) (V, error)
}
