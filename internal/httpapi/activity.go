package httpapi

import (
	"time"

	"github.com/livingstonekit-alt/feather-front/internal/datastore"
)

const activityBuckets = 48

// ActivityHistogram is the /api/log/activity response shape: average
// detections per half-hour bucket across the requested window, plus
// today's actual per-bucket counts with future buckets left null.
type ActivityHistogram struct {
	Days        int        `json:"days"`
	Points      [48]float64 `json:"points"`
	TodayPoints [48]*int   `json:"today_points"`
}

func clampDays(days int) int {
	if days <= 0 {
		return 7
	}
	if days > 30 {
		return 30
	}
	return days
}

func bucketOf(t time.Time) int {
	local := t.Local()
	return local.Hour()*2 + local.Minute()/30
}

// BuildActivityHistogram bins detections into 48 half-hour buckets over
// the trailing `days` window, per spec: points are the average count
// per day for each bucket, today_points carries today's raw counts with
// buckets after the current local half-hour set to null.
func BuildActivityHistogram(detections []datastore.Detection, days int, now time.Time) ActivityHistogram {
	days = clampDays(days)

	var totals [activityBuckets]int
	var todayCounts [activityBuckets]int
	today := now.Local().Format("2006-01-02")

	for _, d := range detections {
		ts, err := time.Parse(time.RFC3339, d.Timestamp)
		if err != nil {
			continue
		}
		b := bucketOf(ts)
		totals[b]++
		if ts.Local().Format("2006-01-02") == today {
			todayCounts[b]++
		}
	}

	hist := ActivityHistogram{Days: days}
	for i := 0; i < activityBuckets; i++ {
		hist.Points[i] = float64(totals[i]) / float64(days)
	}

	currentBucket := bucketOf(now)
	for i := 0; i < activityBuckets; i++ {
		if i > currentBucket {
			hist.TodayPoints[i] = nil
			continue
		}
		count := todayCounts[i]
		hist.TodayPoints[i] = &count
	}
	return hist
}
