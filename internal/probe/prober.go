package probe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"radiocat/internal/config"
	"radiocat/internal/media/ffprobe"
	"radiocat/internal/services"
	"radiocat/internal/station"
)

// Result is the classified outcome of probing one stream.
type Result struct {
	Status     station.Status
	Codec      string
	Bitrate    int64
	SampleRate int
	// Reason explains a broken outcome. It is diagnostic only.
	Reason   string
	TestedAt time.Time
	// Canceled marks an outcome the run context cut short. It says nothing
	// about the stream and must not replace known validation data.
	Canceled bool
}

func canceledResult() Result {
	return Result{Status: station.StatusBroken, Reason: "canceled", Canceled: true}
}

// Validation converts r into record fields. A zero TestedAt means no probe
// ran and leaves LastTestedAt unset.
func (r Result) Validation() station.Validation {
	v := station.Validation{
		Status:     r.Status,
		Codec:      r.Codec,
		Bitrate:    r.Bitrate,
		SampleRate: r.SampleRate,
	}
	if !r.TestedAt.IsZero() {
		ts := r.TestedAt.UTC()
		v.LastTestedAt = &ts
	}
	return v
}

// Prober validates a single stream URL. Implementations must be safe for
// concurrent use and always return a Result.
type Prober interface {
	Probe(ctx context.Context, url string) Result
}

// FFprobe probes streams by running the ffprobe binary.
type FFprobe struct {
	Binary  string
	Timeout time.Duration
	Options ffprobe.Options

	now     func() time.Time
	inspect func(ctx context.Context, binary, url string, opts ffprobe.Options) (ffprobe.Result, error)
}

// NewFFprobe builds a prober from configuration.
func NewFFprobe(cfg *config.Config) *FFprobe {
	return &FFprobe{
		Binary:  cfg.FFprobeBinary(),
		Timeout: cfg.ProbeTimeout(),
		Options: ffprobe.Options{
			UserAgent: cfg.Probe.UserAgent,
			Referer:   cfg.Probe.Referer,
		},
	}
}

// Probe runs ffprobe under a hard per-probe timeout and classifies the result.
func (p *FFprobe) Probe(ctx context.Context, url string) Result {
	now := time.Now
	if p.now != nil {
		now = p.now
	}
	inspect := ffprobe.Inspect
	if p.inspect != nil {
		inspect = p.inspect
	}
	if ctx.Err() != nil {
		return canceledResult()
	}

	probeCtx := ctx
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	res, err := inspect(probeCtx, p.Binary, url, p.Options)
	if err != nil && ctx.Err() != nil {
		return canceledResult()
	}
	result := Classify(res, err)
	if errors.Is(err, services.ErrTimeout) {
		result.Reason = fmt.Sprintf("timeout after %s", p.Timeout)
	}
	result.TestedAt = now()
	return result
}

// Classify maps an ffprobe run onto working or broken. A stream is working
// only when ffprobe succeeded and reported an audio stream with a codec.
func Classify(res ffprobe.Result, err error) Result {
	switch {
	case errors.Is(err, services.ErrTimeout):
		return Result{Status: station.StatusBroken, Reason: "timeout"}
	case err != nil:
		return Result{Status: station.StatusBroken, Reason: firstLine(err.Error())}
	}
	audio, ok := res.FirstAudio()
	if !ok {
		return Result{Status: station.StatusBroken, Reason: "no audio streams found"}
	}
	return Result{
		Status:     station.StatusWorking,
		Codec:      strings.TrimSpace(audio.CodecName),
		Bitrate:    audio.BitRateValue(),
		SampleRate: audio.SampleRateValue(),
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return s
}
