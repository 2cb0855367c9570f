package feed

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOutboundAppendWritesLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "matcher_out.test.log")

	o, err := OpenOutbound(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := o.Append([]byte("line one\n")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := o.Append([]byte("line two\n")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := o.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "line one\nline two\n" {
		t.Errorf("unexpected outbound journal content: %q", data)
	}
}
