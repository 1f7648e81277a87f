package sanitize

import "testing"

func TestBytesStripsControlBytesButKeepsWhitespace(t *testing.T) {
	in := []byte("hi\x00there\x07\nworld\t\x1f!")
	got := string(Bytes(in, false))
	want := "hithere\nworld\t!"
	if got != want {
		t.Fatalf("Bytes = %q, want %q", got, want)
	}
}

func TestBytesPreservesCSISequences(t *testing.T) {
	in := []byte("\x1b[31mred\x1b[0m")
	got := string(Bytes(in, true))
	if got != "\x1b[31mred\x1b[0m" {
		t.Fatalf("Bytes = %q, want input unchanged", got)
	}
}

func TestBytesHandlesTruncatedCSIAtEndOfStream(t *testing.T) {
	in := []byte("abc\x1b[31")
	got := string(Bytes(in, true))
	if got != "abc\x1b[31" {
		t.Fatalf("Bytes = %q, want truncated CSI preserved as-is", got)
	}
}
