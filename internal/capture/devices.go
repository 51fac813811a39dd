package capture

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"regexp"
	"time"

	"github.com/livingstonekit-alt/feather-front/internal/apperr"
)

const listDevicesTimeout = 5 * time.Second

var deviceLinePattern = regexp.MustCompile(`\[\d+\]\s+(.+)$`)

// ListDevices enumerates device-mode capture inputs by invoking the
// capture tool's device-listing mode and scraping its stderr, the way
// avfoundation-based tools report attached audio devices: one
// "[index] name" line per device, mixed into diagnostic chatter this
// function ignores everything except.
func ListDevices(ctx context.Context, toolName string) ([]string, error) {
	tool, err := ResolveTool(toolName)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, listDevicesTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, tool, "-f", "avfoundation", "-list_devices", "true", "-i", "")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	_ = cmd.Run() // the tool exits non-zero after listing; that's expected

	var devices []string
	scanner := bufio.NewScanner(bytes.NewReader(stderr.Bytes()))
	inAudioSection := false
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case bytes.Contains([]byte(line), []byte("AVFoundation audio devices")):
			inAudioSection = true
			continue
		case bytes.Contains([]byte(line), []byte("AVFoundation video devices")):
			inAudioSection = false
			continue
		}
		if !inAudioSection {
			continue
		}
		if m := deviceLinePattern.FindStringSubmatch(line); m != nil {
			devices = append(devices, m[1])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, apperr.New(err).Component("capture").Category(apperr.CategorySystem).Build()
	}
	return devices, nil
}
