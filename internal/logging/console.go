package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler writes one line per record:
//
//	2024-05-01T10:00:00Z INFO [0123abcd mytuner] probe: probe progress 40/120 (33.3%) working=31 broken=9
//	2024-05-01T10:00:01Z WARN [0123abcd catalog] ingest: source skipped <http://x/live> event_type=...
//
// The bracket carries the short run id and the provider (or the run mode when
// no provider is set). Stream URLs follow the message in angle brackets and
// done/total progress counters collapse into a fraction.
type consoleHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []slog.Attr
	groups    []string
	addSource bool
}

func newConsoleHandler(w io.Writer, level *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{mu: &sync.Mutex{}, writer: w, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// lineFields are the attributes the console layout places itself.
type lineFields struct {
	component string
	runID     string
	provider  string
	mode      string
	streamURL string
	done      *slog.Value
	total     *slog.Value
	percent   *slog.Value
	rest      []kv
}

func splitFields(kvs []kv) lineFields {
	var f lineFields
	for i := range kvs {
		item := kvs[i]
		switch item.key {
		case FieldComponent:
			f.component = firstNonEmpty(f.component, attrString(item.value))
		case FieldRunID:
			f.runID = firstNonEmpty(f.runID, attrString(item.value))
		case FieldProvider:
			f.provider = firstNonEmpty(f.provider, attrString(item.value))
		case FieldMode:
			f.mode = firstNonEmpty(f.mode, attrString(item.value))
		case FieldStreamURL:
			f.streamURL = firstNonEmpty(f.streamURL, attrString(item.value))
		case "done":
			f.done = &kvs[i].value
		case "total":
			f.total = &kvs[i].value
		case "percent":
			f.percent = &kvs[i].value
		default:
			f.rest = append(f.rest, item)
		}
	}
	// Counters that are not a done/total pair stay ordinary fields.
	if f.done == nil || f.total == nil {
		for _, pair := range []struct {
			key   string
			value *slog.Value
		}{{"done", f.done}, {"total", f.total}, {"percent", f.percent}} {
			if pair.value != nil {
				f.rest = append(f.rest, kv{key: pair.key, value: *pair.value})
			}
		}
		f.done, f.total, f.percent = nil, nil, nil
	}
	return f
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	kvs := make([]kv, 0, record.NumAttrs()+len(h.attrs))
	flattenAttrs(&kvs, h.groups, h.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&kvs, h.groups, attr)
		return true
	})
	f := splitFields(kvs)

	var buf bytes.Buffer
	buf.Grow(128 + len(f.rest)*24)

	buf.WriteString(timestamp.UTC().Format(time.RFC3339))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(record.Level))
	buf.WriteByte(' ')

	scope := make([]string, 0, 2)
	if f.runID != "" {
		scope = append(scope, shortRunID(f.runID))
	}
	if f.provider != "" {
		scope = append(scope, f.provider)
	} else if f.mode != "" {
		scope = append(scope, f.mode)
	}
	if len(scope) > 0 {
		buf.WriteByte('[')
		buf.WriteString(strings.Join(scope, " "))
		buf.WriteString("] ")
	}
	if f.component != "" {
		buf.WriteString(f.component)
		buf.WriteString(": ")
	}

	if msg := strings.TrimSpace(record.Message); msg != "" {
		buf.WriteString(msg)
	} else {
		buf.WriteString("(no message)")
	}

	if f.done != nil {
		buf.WriteByte(' ')
		buf.WriteString(formatProgress(*f.done, *f.total, f.percent))
	}
	if f.streamURL != "" {
		buf.WriteString(" <")
		buf.WriteString(f.streamURL)
		buf.WriteByte('>')
	}

	if h.addSource {
		if src := record.Source(); src != nil {
			buf.WriteString(" [")
			buf.WriteString(filepath.Base(src.File))
			buf.WriteByte(':')
			buf.WriteString(strconv.Itoa(src.Line))
			buf.WriteByte(']')
		}
	}

	for _, item := range f.rest {
		if item.key == "" {
			continue
		}
		buf.WriteByte(' ')
		buf.WriteString(item.key)
		buf.WriteByte('=')
		buf.WriteString(formatValue(item.value))
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

// formatProgress renders "done/total (pct%)". A missing percent is derived
// from the counters.
func formatProgress(done, total slog.Value, percent *slog.Value) string {
	d, t := formatValue(done), formatValue(total)
	var pct float64
	switch {
	case percent != nil && percent.Kind() == slog.KindFloat64:
		pct = percent.Float64()
	case total.Kind() == slog.KindInt64 && total.Int64() > 0 && done.Kind() == slog.KindInt64:
		pct = float64(done.Int64()) * 100 / float64(total.Int64())
	default:
		return d + "/" + t
	}
	return fmt.Sprintf("%s/%s (%.1f%%)", d, t, pct)
}

type kv struct {
	key   string
	value slog.Value
}

func flattenAttrs(dst *[]kv, prefix []string, attrs []slog.Attr) {
	for _, attr := range attrs {
		flattenAttr(dst, prefix, attr)
	}
}

func flattenAttr(dst *[]kv, prefix []string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = append(append([]string(nil), prefix...), attr.Key)
		}
		flattenAttrs(dst, next, attr.Value.Group())
		return
	}
	key := attr.Key
	if len(prefix) > 0 {
		key = strings.Join(append(append([]string(nil), prefix...), key), ".")
	}
	*dst = append(*dst, kv{key: key, value: attr.Value})
}

func firstNonEmpty(current, candidate string) string {
	if current != "" {
		return current
	}
	return candidate
}

func attrString(v slog.Value) string {
	if v.Kind() == slog.KindString {
		return v.String()
	}
	return strings.Trim(formatValue(v), `"`)
}

func formatValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	if needsQuotes(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' {
			return true
		}
	}
	return false
}

// shortRunID keeps console lines narrow; JSON output carries the full id.
func shortRunID(id string) string {
	const width = 8
	if len(id) > width {
		return id[:width]
	}
	return id
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
