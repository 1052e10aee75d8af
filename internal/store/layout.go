package store

import (
	"encoding/binary"

	"github.com/finlaydb/pagekernel/internal/catalog"
)

// On-disk layout constants. Endianness is mixed deliberately: the
// filesystem and page headers are little-endian, while the B-tree and
// entry-tree layouts (defined in the btree and entry packages) are
// big-endian. This mirrors the source this design is ported from and is
// preserved exactly for on-disk compatibility — see DESIGN.md.
const (
	// FSHeaderLen is the fixed size in bytes of the FilesystemHeader at
	// offset 0 of the container.
	FSHeaderLen = 10

	// PageHeaderLen is the fixed size in bytes of a PageHeader.
	PageHeaderLen = 9

	flagHasPrev byte = 0b0000_0001
	flagHasNext byte = 0b0000_0010

	flagChecksumMask   uint16 = 0b0000_0000_0000_0011
	flagCompressMask   uint16 = 0b0000_0000_0000_1100
	flagCompressShift         = 2
	flagLevelMask      uint16 = 0b0000_0000_0011_0000
	flagLevelShift            = 4
)

// FilesystemHeader is the 10-byte header stored at offset 0 of the
// container.
type FilesystemHeader struct {
	PageSize              uint64
	NamesChecksum         catalog.Checksum
	NamesCompression      catalog.Compression
	NamesCompressionLevel catalog.CompressionLevel
}

// DefaultFilesystemHeader returns the header used for a freshly created
// container: Seahash checksum, no compression, auto compression level.
func DefaultFilesystemHeader(pageSize uint64) FilesystemHeader {
	return FilesystemHeader{
		PageSize:              pageSize,
		NamesChecksum:         catalog.ChecksumSeahash,
		NamesCompression:      catalog.CompressionNone,
		NamesCompressionLevel: catalog.LevelAuto,
	}
}

// MarshalFilesystemHeader encodes h into exactly FSHeaderLen bytes.
func MarshalFilesystemHeader(h FilesystemHeader) [FSHeaderLen]byte {
	var out [FSHeaderLen]byte

	binary.LittleEndian.PutUint64(out[0:8], h.PageSize)

	var flags uint16

	flags |= uint16(h.NamesChecksum) & flagChecksumMask
	flags |= (uint16(h.NamesCompression) << flagCompressShift) & flagCompressMask
	flags |= (uint16(h.NamesCompressionLevel) << flagLevelShift) & flagLevelMask

	binary.LittleEndian.PutUint16(out[8:10], flags)

	return out
}

// UnmarshalFilesystemHeader decodes a FilesystemHeader from exactly
// FSHeaderLen bytes.
func UnmarshalFilesystemHeader(b []byte) FilesystemHeader {
	pageSize := binary.LittleEndian.Uint64(b[0:8])
	flags := binary.LittleEndian.Uint16(b[8:10])

	return FilesystemHeader{
		PageSize:              pageSize,
		NamesChecksum:         catalog.Checksum(flags & flagChecksumMask),
		NamesCompression:      catalog.Compression((flags & flagCompressMask) >> flagCompressShift),
		NamesCompressionLevel: catalog.CompressionLevel((flags & flagLevelMask) >> flagLevelShift),
	}
}

// PageHeader is the 9-byte header prefixing every page's body.
type PageHeader struct {
	PrevPageNumber uint32
	NextPageNumber uint32
	HasPrev        bool
	HasNext        bool
}

// MarshalPageHeader encodes h into exactly PageHeaderLen bytes.
func MarshalPageHeader(h PageHeader) [PageHeaderLen]byte {
	var out [PageHeaderLen]byte

	binary.LittleEndian.PutUint32(out[0:4], h.PrevPageNumber)
	binary.LittleEndian.PutUint32(out[4:8], h.NextPageNumber)

	if h.HasPrev {
		out[8] |= flagHasPrev
	}

	if h.HasNext {
		out[8] |= flagHasNext
	}

	return out
}

// UnmarshalPageHeader decodes a PageHeader from exactly PageHeaderLen bytes.
func UnmarshalPageHeader(b []byte) PageHeader {
	return PageHeader{
		PrevPageNumber: binary.LittleEndian.Uint32(b[0:4]),
		NextPageNumber: binary.LittleEndian.Uint32(b[4:8]),
		HasPrev:        b[8]&flagHasPrev == flagHasPrev,
		HasNext:        b[8]&flagHasNext == flagHasNext,
	}
}

// PageStride returns the number of bytes a single page (header + body)
// occupies on disk.
func PageStride(pageSize uint64) uint64 {
	return PageHeaderLen + pageSize
}

// PageOffset returns the byte offset of page pageNumber within the
// container.
func PageOffset(pageNumber uint32, pageSize uint64) int64 {
	return FSHeaderLen + int64(pageNumber)*int64(PageStride(pageSize))
}
