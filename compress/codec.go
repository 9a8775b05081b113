package compress

import (
	"fmt"

	"github.com/skydb/sky/format"
)

// Compressor compresses a block's payload bytes (the encoded paths that
// follow a block header) before they are written to disk.
//
// Block payloads are 1KB-64KB of packed path records: mostly heterogeneous
// event data rather than a single repeated numeric column, so compression
// ratios vary more than they would for a uniform fixed-width payload.
type Compressor interface {
	// Compress compresses data and returns the compressed result.
	//
	// The input slice is not modified. The returned slice is newly
	// allocated and owned by the caller, except for NoOpCompressor, which
	// returns the input slice itself.
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor's output back into the original block
// payload bytes.
type Decompressor interface {
	// Decompress decompresses data and returns the original payload.
	//
	// Returns an error if data is corrupted or was compressed with an
	// incompatible algorithm.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves a built-in Codec for the given compression type, as
// recorded in a block header's Compression field.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}
