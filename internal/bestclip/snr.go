// Package bestclip implements the Best-Clip Selector: scoring a
// detected segment's signal quality and maintaining a per-species
// archive of the best-known recording.
package bestclip

import (
	"math"
	"sort"

	"github.com/livingstonekit-alt/feather-front/internal/pcmwave"
)

const snrWindowSeconds = 0.2 // 200 ms RMS windows

// EstimateSNR computes SNR in dB for path, as
// 20*log10(mean / mean_of_bottom_10%) across 200 ms RMS windows. It
// returns (nil) if either value is non-positive, matching the rule
// that a degenerate signal yields no usable SNR rather than a bogus
// number.
func EstimateSNR(path string) (*float64, error) {
	r, err := pcmwave.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	windowFrames := r.FramesForDuration(snrWindowSeconds)
	buf := make([]int, windowFrames)

	var windowRMS []float64
	for {
		n, err := r.ReadChunk(buf)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		windowRMS = append(windowRMS, rms(buf[:n]))
	}
	if len(windowRMS) == 0 {
		return nil, nil
	}

	mean := meanOf(windowRMS)

	sorted := make([]float64, len(windowRMS))
	copy(sorted, windowRMS)
	sort.Float64s(sorted)
	bottomCount := len(sorted) / 10
	if bottomCount < 1 {
		bottomCount = 1
	}
	noiseFloor := meanOf(sorted[:bottomCount])

	if mean <= 0 || noiseFloor <= 0 {
		return nil, nil
	}
	snr := 20 * math.Log10(mean/noiseFloor)
	return &snr, nil
}

func rms(samples []int) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sumSq float64
	for _, s := range samples {
		v := float64(s)
		sumSq += v * v
	}
	return math.Sqrt(sumSq / float64(len(samples)))
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Score combines confidence (0..1) and SNR into the single comparable
// figure the archive ranks clips by.
func Score(confidence float64, snrDB *float64) float64 {
	score := confidence * 100
	if snrDB != nil {
		score += *snrDB
	}
	return score
}
