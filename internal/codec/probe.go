// SPDX-License-Identifier: MIT
package codec

import (
	"bytes"
	"time"

	"github.com/abema/go-mp4"
	"github.com/h2non/filetype"

	"haptic/internal/haptic"
)

// PayloadInfo describes a carrier payload as far as its magic bytes and,
// for MP4, its movie header reveal. Zero values mean unknown.
type PayloadInfo struct {
	Extension string
	MIME      string
	IsVideo   bool
	Duration  time.Duration
}

// Format maps the detected container to a haptic container format.
func (p PayloadInfo) Format() (haptic.ContainerFormat, bool) {
	switch p.Extension {
	case "mp4", "m4v", "mov":
		return haptic.MP4, true
	case "webm", "mkv":
		return haptic.WebM, true
	case "avi":
		return haptic.AVI, true
	}
	return "", false
}

// Probe sniffs the payload type. It never fails: an unrecognised payload is
// still a valid carrier.
func Probe(payload []byte) PayloadInfo {
	var info PayloadInfo

	kind, err := filetype.Match(payload)
	if err != nil || kind == filetype.Unknown {
		return info
	}
	info.Extension = kind.Extension
	info.MIME = kind.MIME.Value
	info.IsVideo = filetype.IsVideo(payload)

	if f, ok := info.Format(); ok && f == haptic.MP4 {
		info.Duration = mp4Duration(payload)
	}
	return info
}

func mp4Duration(payload []byte) time.Duration {
	// Strip any trailer so the box walk stops at the real end of the movie.
	if i := bytes.Index(payload, marker); i >= 0 {
		payload = payload[:i]
	}
	pi, err := mp4.Probe(bytes.NewReader(payload))
	if err != nil {
		log.Debugf("Failed to read MP4 movie header: %v", err)
		return 0
	}
	if pi.Timescale == 0 {
		return 0
	}
	return time.Duration(float64(pi.Duration) / float64(pi.Timescale) * float64(time.Second))
}
