// Package binaryfile classifies files as binary or text using MIME
// detection, so the summarizer and the retrieve-file-contents endpoint can
// skip binary content instead of feeding garbage to an LLM.
package binaryfile

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// denylistPrefixes holds the MIME type families treated as binary: anything
// whose detected type starts with one of these is excluded from
// summarization and content retrieval. Ported from the original
// is_not_common_binary_type denylist.
var denylistPrefixes = []string{
	"application/octet-stream",
	"application/x-archive",
	"application/x-compress",
	"application/x-zip",
	"application/zip",
	"application/x-gzip",
	"application/gzip",
	"application/x-tar",
	"application/x-7z-compressed",
	"application/x-rar",
	"application/pdf",
	"application/vnd.ms-office",
	"application/vnd.openxmlformats-officedocument",
	"application/vnd.oasis.opendocument",
	"image/",
	"video/",
	"audio/",
	"application/x-shockwave-flash",
	"application/java-archive",
	"application/x-dosexec",
	"application/x-msdownload",
	"application/x-mach-bundle",
	"application/x-bzip",
	"application/x-cpio",
	"application/x-lz4",
	"application/x-lzma",
	"application/x-xz",
	"application/x-sqlite3",
	"application/x-iso9660-image",
	"application/x-msi",
	"application/x-deb",
	"application/x-rpm",
	"application/vnd.android.package-archive",
	"application/x-executable",
	"application/vnd.apple.installer+xml",
	"application/x-elf",
	"application/x-sharedlib",
	"application/x-object",
	"application/x-font-ttf",
	"application/font-sfnt",
	"application/x-font-woff",
	"font/",
	"application/x-ms-shortcut",
	"application/x-disk-image",
	"application/x-apple-diskimage",
	"application/x-protobuf",
	"application/x-java-serialized-object",
}

// IsBinary reports whether content's detected MIME type falls under the
// binary denylist.
func IsBinary(content []byte) bool {
	mtype := mimetype.Detect(content)
	for m := mtype; m != nil; m = m.Parent() {
		if m != mtype && m.Parent() == nil {
			break // root application/octet-stream: only an exact detection counts
		}
		t := m.String()
		for _, prefix := range denylistPrefixes {
			if strings.HasPrefix(t, prefix) {
				return true
			}
		}
	}
	return false
}

// IsBinaryFile reports whether the file at path is binary, reading at most
// mimetype's sniff window.
func IsBinaryFile(path string) (bool, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return false, err
	}
	for m := mtype; m != nil; m = m.Parent() {
		if m != mtype && m.Parent() == nil {
			break // root application/octet-stream: only an exact detection counts
		}
		t := m.String()
		for _, prefix := range denylistPrefixes {
			if strings.HasPrefix(t, prefix) {
				return true, nil
			}
		}
	}
	return false, nil
}
