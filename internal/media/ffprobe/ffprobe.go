package ffprobe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"radiocat/internal/services"
)

// DefaultWaitDelay bounds how long Inspect waits for pipes after the process
// group has been killed.
const DefaultWaitDelay = 2 * time.Second

// Result represents the parsed output of a stream probe.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream reported by ffprobe.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	BitRate    string `json:"bit_rate"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// Format captures container-level metadata when requested.
type Format struct {
	FormatName string `json:"format_name"`
	BitRate    string `json:"bit_rate"`
}

// Options tune the HTTP identity ffprobe presents to the stream server.
type Options struct {
	UserAgent string
	Referer   string
	WaitDelay time.Duration
}

// Args builds the ffprobe argument list for a remote audio stream.
func Args(url string, opts Options) []string {
	args := []string{"-v", "error", "-hide_banner"}
	if ua := strings.TrimSpace(opts.UserAgent); ua != "" {
		args = append(args, "-user_agent", ua)
	}
	if ref := strings.TrimSpace(opts.Referer); ref != "" {
		args = append(args, "-headers", "Referer: "+ref+"\r\n")
	}
	args = append(args,
		"-select_streams", "a:0",
		"-show_entries", "stream=codec_type,codec_name,bit_rate,sample_rate",
		"-of", "json",
		"--", url,
	)
	return args
}

// Inspect probes url with ffprobe and decodes the JSON response. The process
// runs in its own process group; when ctx ends the whole group is killed.
// A deadline is reported as services.ErrTimeout; every other failure of the
// binary or its output is services.ErrExternalTool.
func Inspect(ctx context.Context, binary string, url string, opts Options) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return Result{}, services.Wrap(services.ErrValidation, "ffprobe", "inspect", "empty url", nil)
	}

	cmd := exec.CommandContext(ctx, binary, Args(url, opts)...)
	configureProcessGroup(cmd)
	cmd.WaitDelay = opts.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		ctxErr := ctx.Err()
		switch {
		case errors.Is(ctxErr, context.DeadlineExceeded):
			return Result{}, services.Wrap(services.ErrTimeout, "ffprobe", "inspect", url, ctxErr)
		case ctxErr != nil:
			return Result{}, services.Wrap(services.ErrExternalTool, "ffprobe", "inspect", "interrupted", ctxErr)
		}
		return Result{}, services.Wrap(services.ErrExternalTool, "ffprobe", "inspect", strings.TrimSpace(stderr.String()), err)
	}

	result, err := Parse(stdout.Bytes())
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "ffprobe", "inspect", "malformed output", err)
	}
	return result, nil
}

// Parse decodes an ffprobe JSON payload.
func Parse(output []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// FirstAudio returns the first audio stream with a codec name. Streams
// without a codec_type count as audio because -select_streams already
// restricted the output.
func (r Result) FirstAudio() (Stream, bool) {
	for _, stream := range r.Streams {
		if isAudio(stream) {
			return stream, true
		}
	}
	return Stream{}, false
}

func isAudio(stream Stream) bool {
	if strings.TrimSpace(stream.CodecName) == "" {
		return false
	}
	kind := strings.TrimSpace(stream.CodecType)
	return kind == "" || strings.EqualFold(kind, "audio")
}

// BitRateValue returns the stream bitrate in bits per second, or 0 when
// unavailable.
func (s Stream) BitRateValue() int64 {
	rate := parseFloat(s.BitRate)
	if math.IsNaN(rate) || rate < 0 {
		return 0
	}
	return int64(rate)
}

// SampleRateValue returns the sample rate in Hz, or 0 when unavailable.
func (s Stream) SampleRateValue() int {
	rate := parseFloat(s.SampleRate)
	if math.IsNaN(rate) || rate < 0 {
		return 0
	}
	return int(rate)
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
