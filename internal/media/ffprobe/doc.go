// Package ffprobe wraps the ffprobe binary for remote audio streams.
//
// Inspect presents a browser user agent and referer, selects the first audio
// stream and decodes the JSON report. The child runs in its own process group
// so that a timeout kills any helpers ffprobe spawned as well.
package ffprobe
