package gate

import (
	"math"

	"github.com/livingstonekit-alt/feather-front/internal/pcmwave"
)

const chunkSeconds = 0.05 // 50 ms RMS analysis window

// Verdict is the outcome of measuring a segment's audio activity.
type Verdict struct {
	Active  bool
	PeakDB  float64 // highest dBFS observed, meaningful when !Active
}

// thresholdsDisabled reports whether the activity check should be
// skipped entirely: a non-positive minimum duration disables silence
// detection for this segment. thresholdDB is not consulted; any dBFS
// threshold, including the usual negative ones, leaves the check on.
func thresholdsDisabled(thresholdDB, minSeconds float64) bool {
	return minSeconds <= 0
}

// MeasureActivity opens path and scans it in 50 ms chunks, computing
// dBFS per chunk and accumulating active_frames whenever a chunk's
// level is at or above thresholdDB. It returns as soon as
// active_frames/sample_rate reaches minSeconds ("active"), or reports
// "silent" with the peak dBFS seen across the whole file.
func MeasureActivity(path string, thresholdDB, minSeconds float64) (Verdict, error) {
	if thresholdsDisabled(thresholdDB, minSeconds) {
		return Verdict{Active: true}, nil
	}

	r, err := pcmwave.Open(path)
	if err != nil {
		return Verdict{}, err
	}
	defer r.Close()

	chunkFrames := r.FramesForDuration(chunkSeconds)
	buf := make([]int, chunkFrames)

	activeFrames := 0
	peakDB := math.Inf(-1)

	for {
		n, err := r.ReadChunk(buf)
		if err != nil {
			return Verdict{}, err
		}
		if n == 0 {
			break
		}

		db := dbfs(buf[:n], r.Info.MaxAmp)
		if db > peakDB {
			peakDB = db
		}
		if db >= thresholdDB {
			activeFrames += n
			if float64(activeFrames)/float64(r.Info.SampleRate) >= minSeconds {
				return Verdict{Active: true}, nil
			}
		}
	}

	if math.IsInf(peakDB, -1) {
		peakDB = -math.MaxFloat64
	}
	return Verdict{Active: false, PeakDB: peakDB}, nil
}

// rms computes the root-mean-square of a chunk of interleaved int
// samples, then dbfs converts that to dBFS relative to maxAmp.
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

func dbfs(samples []int, maxAmp float64) float64 {
	amplitude := rms(samples)
	if amplitude <= 0 || maxAmp <= 0 {
		return -math.MaxFloat64
	}
	return 20 * math.Log10(amplitude/maxAmp)
}
