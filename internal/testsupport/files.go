package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// jpegSOI is the JPEG start-of-image marker. Generated files lead with it so
// they resemble image payloads without being parseable as such.
var jpegSOI = []byte{0xFF, 0xD8}

// WriteFile fills the target path with the requested number of bytes: a JPEG
// marker prefix followed by a repeating filler. A size <= 0 writes a single
// byte. Parent directories are created as needed.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = byte('a' + i%26)
	}
	copy(buf, jpegSOI)

	remaining := size
	first := true
	for remaining > 0 {
		chunk := buf
		if !first {
			chunk = buf[len(jpegSOI):]
		}
		if remaining < int64(len(chunk)) {
			chunk = chunk[:remaining]
		}
		if _, err := f.Write(chunk); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= int64(len(chunk))
		first = false
	}
}
