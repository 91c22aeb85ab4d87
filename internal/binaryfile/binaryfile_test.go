package binaryfile

import "testing"

func TestIsBinaryDetectsText(t *testing.T) {
	if IsBinary([]byte("package main\n\nfunc main() {}\n")) {
		t.Error("expected Go source to be detected as text")
	}
}

func TestIsBinaryDetectsPNG(t *testing.T) {
	pngHeader := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}
	if !IsBinary(pngHeader) {
		t.Error("expected PNG header to be detected as binary")
	}
}

func TestIsBinaryDetectsZip(t *testing.T) {
	zipHeader := []byte{'P', 'K', 0x03, 0x04, 0, 0, 0, 0}
	if !IsBinary(zipHeader) {
		t.Error("expected zip header to be detected as binary")
	}
}

func TestIsBinaryEmptyIsText(t *testing.T) {
	if IsBinary(nil) {
		t.Error("empty content should not be classified as binary")
	}
}
