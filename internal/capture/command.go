package capture

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/livingstonekit-alt/feather-front/internal/apperr"
	"github.com/livingstonekit-alt/feather-front/internal/conf"
)

// BuildArgs constructs the capture tool's argv for the configured input
// mode, per the command-construction rules: device mode appends
// `-f avfoundation -i :<device>`, stream mode appends `-i <url>` (with
// `-rtsp_transport tcp` first for rtsp:// URLs), and both share a
// common tail that segments output into the Segment Directory.
func BuildArgs(s conf.Settings, segDir string) ([]string, error) {
	var args []string

	switch s.InputMode {
	case conf.InputModeDevice:
		if s.InputDevice == "" {
			return nil, apperr.New(nil).Component("capture").Category(apperr.CategoryConfig).
				Context("reason", "Audio input not set").Build()
		}
		args = append(args, "-f", "avfoundation", "-i", ":"+s.InputDevice)
	case conf.InputModeStream:
		if s.StreamURL == "" {
			return nil, apperr.New(nil).Component("capture").Category(apperr.CategoryConfig).
				Context("reason", "Stream URL not set").Build()
		}
		if strings.HasPrefix(s.StreamURL, "rtsp://") {
			args = append(args, "-rtsp_transport", "tcp")
		}
		args = append(args, "-i", s.StreamURL)
	default:
		return nil, apperr.New(nil).Component("capture").Category(apperr.CategoryConfig).
			Context("reason", "Audio input not set").Build()
	}

	segmentSeconds := s.SegmentSeconds
	if segmentSeconds <= 0 {
		segmentSeconds = 15
	}
	args = append(args,
		"-vn", "-ac", "1", "-ar", "48000",
		"-f", "segment",
		"-segment_time", strconv.Itoa(segmentSeconds),
		"-reset_timestamps", "1",
		fmt.Sprintf("%s/segment_%%06d.wav", segDir),
	)
	return args, nil
}
