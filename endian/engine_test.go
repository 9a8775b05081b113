package endian

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetLittleEndianEngine(t *testing.T) {
	engine := GetLittleEndianEngine()

	require.Implements(t, (*EndianEngine)(nil), engine)
	require.Equal(t, binary.LittleEndian, engine)

	var testValue uint16 = 0x0102
	bytes := make([]byte, 2)
	engine.PutUint16(bytes, testValue)
	require.Equal(t, byte(0x02), bytes[0], "little endian should put LSB first")
	require.Equal(t, byte(0x01), bytes[1], "little endian should put MSB second")
	require.Equal(t, testValue, engine.Uint16(bytes))
}

func TestGetBigEndianEngine(t *testing.T) {
	engine := GetBigEndianEngine()

	require.Implements(t, (*EndianEngine)(nil), engine)
	require.Equal(t, binary.BigEndian, engine)

	var testValue uint16 = 0x0102
	bytes := make([]byte, 2)
	engine.PutUint16(bytes, testValue)
	require.Equal(t, byte(0x01), bytes[0], "big endian should put MSB first")
	require.Equal(t, byte(0x02), bytes[1], "big endian should put LSB second")
	require.Equal(t, testValue, engine.Uint16(bytes))
}

func TestBigEndianEngineRoundTripsAllWireWidths(t *testing.T) {
	engine := GetBigEndianEngine()

	var u32 uint32 = 0x01020304
	b32 := make([]byte, 4)
	engine.PutUint32(b32, u32)
	require.Equal(t, u32, engine.Uint32(b32))

	var u64 uint64 = 0x0102030405060708
	b64 := make([]byte, 8)
	engine.PutUint64(b64, u64)
	require.Equal(t, u64, engine.Uint64(b64))

	var appended []byte
	appended = engine.AppendUint32(appended, u32)
	appended = engine.AppendUint64(appended, u64)
	require.Equal(t, u32, engine.Uint32(appended[0:4]))
	require.Equal(t, u64, engine.Uint64(appended[4:12]))
}
