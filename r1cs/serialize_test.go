package r1cs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializeRoundTrip(t *testing.T) {
	// Exercises constraints, both aux kinds and a non-default bit width.
	def := build(t, `([minimum], [balance, spent]) => {
		let remaining = balance - spent;
		assert(remaining >= minimum);
	}`, WithComparisonBits(32))

	got, err := Deserialize(def.Serialize())
	require.NoError(t, err)
	require.Equal(t, def, got)
}

func TestSerializeDeterministic(t *testing.T) {
	def := build(t, `([m], [b]) => { assert(b > m); }`)
	require.Equal(t, def.Serialize(), def.Serialize())
}

func TestDeserializeRejectsBadMagic(t *testing.T) {
	def := build(t, `([m], [b]) => { assert(b == m); }`)
	data := def.Serialize()
	data[0] ^= 0xff
	_, err := Deserialize(data)
	require.ErrorContains(t, err, "magic")
}

func TestDeserializeRejectsMajorVersionBump(t *testing.T) {
	def := build(t, `([m], [b]) => { assert(b == m); }`)
	data := def.Serialize()
	// The version string sits right after the magic and its length prefix;
	// "1.0.0" -> "2.0.0".
	require.Equal(t, byte('1'), data[8])
	data[8] = '2'
	_, err := Deserialize(data)
	require.ErrorContains(t, err, "incompatible")
}

func TestDeserializeRejectsTruncation(t *testing.T) {
	def := build(t, `([m], [b]) => { assert(b >= m); }`)
	data := def.Serialize()
	_, err := Deserialize(data[:len(data)-7])
	require.ErrorContains(t, err, "truncated")
}

func TestDeserializeRejectsTrailingBytes(t *testing.T) {
	def := build(t, `([m], [b]) => { assert(b == m); }`)
	data := append(def.Serialize(), 0xaa, 0xbb)
	_, err := Deserialize(data)
	require.ErrorContains(t, err, "trailing")
}
