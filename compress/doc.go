// Package compress provides compression codecs for Sky's block payloads.
//
// A block's payload is the packed sequence of path records that follows its
// fixed header. Compression is applied to that payload as a whole, after
// encoding, as an optional space/CPU tradeoff configured per table.
//
// # Supported Algorithms
//
//   - None (format.CompressionNone): no compression, fastest
//   - Zstd (format.CompressionZstd): best ratio, moderate speed — good for
//     cold tables with infrequent writes
//   - S2 (format.CompressionS2): balanced ratio and speed — a reasonable
//     default for write-heavy tables
//   - LZ4 (format.CompressionLZ4): fastest decompression — good when cursors
//     re-read the same blocks often
//
// # Architecture
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// block.Store resolves the configured Codec once via GetCodec and calls it
// around every block write; the chosen algorithm is recorded in the block's
// header, and on read the store resolves the codec that header names, so a
// reader never needs to guess it.
//
// # Thread Safety
//
// All codec implementations are safe for concurrent use.
package compress
