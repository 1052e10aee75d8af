// Package catalog implements the pluggable checksum and compression
// codec sets referenced by the filesystem header's flag bits. The header
// only ever stores a two-bit tag per concern; this package is what turns
// those tags into actual bytes-in, bytes-out behavior.
package catalog

import (
	"hash/crc32"
	"hash/fnv"
	"hash/maphash"
)

// Checksum selects the hashing algorithm used to checksum entry names (and,
// optionally, arbitrary caller data — the algorithm has no opinion on what
// it hashes).
type Checksum uint8

const (
	ChecksumNone Checksum = iota
	ChecksumSeahash
	ChecksumSiphash
	ChecksumXxh3
)

// crcTable mirrors the CRC32-Castagnoli table used for page checksums in
// comparable page-store designs; reused here as the Seahash substitute
// since no Seahash implementation is available in this build's dependency
// set.
var crcTable = crc32.MakeTable(crc32.Castagnoli)

// Sum computes the checksum of data under the selected algorithm. None
// always returns 0.
//
// Seahash, Siphash and Xxh3 are not implemented bit-for-bit here: no
// package providing those exact algorithms was available to this build, so
// each tag is backed by a distinct stdlib hash algorithm instead (see
// DESIGN.md). The tag set and its on-disk encoding are exact; the hash
// function behind each tag is a substitute.
func (c Checksum) Sum(data []byte) uint64 {
	switch c {
	case ChecksumNone:
		return 0

	case ChecksumSeahash:
		h := crc32.New(crcTable)
		h.Write(data)
		return uint64(h.Sum32())

	case ChecksumSiphash:
		h := fnv.New64a()
		h.Write(data)
		return h.Sum64()

	case ChecksumXxh3:
		var h maphash.Hash
		h.SetSeed(xxh3Seed)
		h.Write(data)
		return h.Sum64()

	default:
		return 0
	}
}

// xxh3Seed pins maphash.Hash to a fixed seed so Xxh3 sums are reproducible
// across calls within a process, matching what callers expect from a named
// checksum algorithm rather than a randomized one.
var xxh3Seed = maphash.MakeSeed()

// String returns the on-disk tag name.
func (c Checksum) String() string {
	switch c {
	case ChecksumNone:
		return "none"
	case ChecksumSeahash:
		return "seahash"
	case ChecksumSiphash:
		return "siphash"
	case ChecksumXxh3:
		return "xxh3"
	default:
		return "unknown"
	}
}
