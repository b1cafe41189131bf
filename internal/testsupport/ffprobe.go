package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WorkingProbeOutput is ffprobe JSON for a 128 kbit/s mp3 stream.
const WorkingProbeOutput = `{"streams":[{"codec_name":"mp3","bit_rate":"128000","sample_rate":"44100"}]}`

// FakeFFprobe writes a shell script into dir that prints stdout and exits
// with code. It returns the script path.
func FakeFFprobe(t testing.TB, dir, stdout string, code int) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, "ffprobe")
	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	if stdout != "" {
		b.WriteString("cat <<'JSON'\n")
		b.WriteString(stdout)
		b.WriteString("\nJSON\n")
	}
	fmt.Fprintf(&b, "exit %d\n", code)
	if err := os.WriteFile(path, []byte(b.String()), 0o755); err != nil {
		t.Fatalf("write fake ffprobe: %v", err)
	}
	return path
}
