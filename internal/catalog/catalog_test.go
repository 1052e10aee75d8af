package catalog

import (
	"bytes"
	"testing"
)

func TestChecksumStable(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")

	for _, c := range []Checksum{ChecksumNone, ChecksumSeahash, ChecksumSiphash, ChecksumXxh3} {
		a := c.Sum(data)
		b := c.Sum(data)
		if a != b {
			t.Fatalf("%s: checksum not stable: %d != %d", c, a, b)
		}
	}
}

func TestChecksumDistinguishesInput(t *testing.T) {
	for _, c := range []Checksum{ChecksumSeahash, ChecksumSiphash, ChecksumXxh3} {
		a := c.Sum([]byte("alpha"))
		b := c.Sum([]byte("beta"))
		if a == b {
			t.Fatalf("%s: expected different sums for different input", c)
		}
	}
}

func TestCompressionRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("animefs-pagekernel-round-trip "), 64)

	for _, tag := range []Compression{CompressionNone, CompressionLz4, CompressionBrotli, CompressionZstd} {
		for _, level := range []CompressionLevel{LevelAuto, LevelFast, LevelBalanced, LevelMax} {
			compressed, err := tag.Compress(data, level)
			if err != nil {
				t.Fatalf("%s/%s: compress: %v", tag, level, err)
			}

			out, err := tag.Decompress(compressed)
			if err != nil {
				t.Fatalf("%s/%s: decompress: %v", tag, level, err)
			}

			if !bytes.Equal(out, data) {
				t.Fatalf("%s/%s: round trip mismatch", tag, level)
			}
		}
	}
}

func TestCompressionNoneIsIdentity(t *testing.T) {
	data := []byte{1, 2, 3, 4}

	out, err := CompressionNone.Compress(data, LevelAuto)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}

	if !bytes.Equal(out, data) {
		t.Fatalf("expected identity, got %v", out)
	}
}
