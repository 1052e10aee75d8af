package store

import (
	"testing"

	"github.com/finlaydb/pagekernel/internal/catalog"
)

func TestFilesystemHeaderRoundTrip(t *testing.T) {
	h := FilesystemHeader{
		PageSize:              4096,
		NamesChecksum:         catalog.ChecksumXxh3,
		NamesCompression:      catalog.CompressionZstd,
		NamesCompressionLevel: catalog.LevelMax,
	}

	buf := MarshalFilesystemHeader(h)
	if len(buf) != FSHeaderLen {
		t.Fatalf("marshaled length = %d, want %d", len(buf), FSHeaderLen)
	}

	got := UnmarshalFilesystemHeader(buf[:])
	if got != h {
		t.Fatalf("round trip = %+v, want %+v", got, h)
	}
}

func TestDefaultFilesystemHeader(t *testing.T) {
	h := DefaultFilesystemHeader(8192)

	if h.PageSize != 8192 {
		t.Fatalf("PageSize = %d, want 8192", h.PageSize)
	}
	if h.NamesChecksum != catalog.ChecksumSeahash {
		t.Fatalf("NamesChecksum = %v, want Seahash", h.NamesChecksum)
	}
	if h.NamesCompression != catalog.CompressionNone {
		t.Fatalf("NamesCompression = %v, want None", h.NamesCompression)
	}
	if h.NamesCompressionLevel != catalog.LevelAuto {
		t.Fatalf("NamesCompressionLevel = %v, want Auto", h.NamesCompressionLevel)
	}
}

func TestPageHeaderRoundTrip(t *testing.T) {
	cases := []PageHeader{
		{},
		{HasPrev: true, PrevPageNumber: 3},
		{HasNext: true, NextPageNumber: 7},
		{HasPrev: true, PrevPageNumber: 1, HasNext: true, NextPageNumber: 2},
	}

	for _, h := range cases {
		buf := MarshalPageHeader(h)
		if len(buf) != PageHeaderLen {
			t.Fatalf("marshaled length = %d, want %d", len(buf), PageHeaderLen)
		}

		got := UnmarshalPageHeader(buf[:])
		if got != h {
			t.Fatalf("round trip = %+v, want %+v", got, h)
		}
	}
}

func TestPageOffset(t *testing.T) {
	const pageSize = 4096

	if got := PageOffset(0, pageSize); got != FSHeaderLen {
		t.Fatalf("PageOffset(0) = %d, want %d", got, FSHeaderLen)
	}

	stride := int64(PageHeaderLen + pageSize)
	if got := PageOffset(1, pageSize); got != FSHeaderLen+stride {
		t.Fatalf("PageOffset(1) = %d, want %d", got, FSHeaderLen+stride)
	}
}
