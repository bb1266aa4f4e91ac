package attend

import (
	"net"
	"testing"
	"time"
)

func TestOpenReader_UnknownType(t *testing.T) {
	if _, err := OpenReader(ReaderConfig{Addr: "x", Type: "wiegand"}); err == nil {
		t.Fatal("expected error for unknown reader type")
	}
}

func TestOpenReader_EmptyAddr(t *testing.T) {
	if _, err := OpenReader(ReaderConfig{Addr: "  "}); err == nil {
		t.Fatal("expected error for empty addr")
	}
}

func TestTCPReader_BatchesHexLines(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		// two valid tags, one garbage line; connection stays open so the
		// read window has to expire
		_, _ = conn.Write([]byte("AABBCCDD\nnot-hex\n11223344\n"))
		time.Sleep(time.Second)
		_ = conn.Close()
	}()

	reader, err := OpenReader(ReaderConfig{Addr: ln.Addr().String()})
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	batch, err := reader.NextBatch()
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(batch))
	}
	if CanonicalTag(batch[0]) != "AABBCCDD" || CanonicalTag(batch[1]) != "11223344" {
		t.Fatalf("unexpected batch: %q %q", CanonicalTag(batch[0]), CanonicalTag(batch[1]))
	}
}

func TestTCPReader_EmptyBatchWhenIdle(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		time.Sleep(time.Second)
		_ = conn.Close()
	}()

	reader, err := OpenReader(ReaderConfig{Addr: ln.Addr().String()})
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	batch, err := reader.NextBatch()
	if err != nil {
		t.Fatal(err)
	}
	if len(batch) != 0 {
		t.Fatalf("expected empty batch from an idle reader, got %d tags", len(batch))
	}
}
