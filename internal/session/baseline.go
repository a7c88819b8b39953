package session

import (
	"fmt"
	"math"
)

// Window sizes and thresholds for baseline comparison. Windows are
// position-based: the most recent 7 sessions against the 7 before them,
// regardless of how much wall-clock time they span.
const (
	baselineWindow     = 7
	minInsightSessions = 3

	trendBandPct        = 5.0
	heartRateInsightPct = 10.0
	hrvInsightPct       = 15.0
	tremorInsightAbs    = 0.5
)

// Trend is the direction of a metric between baseline windows.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// MetricBaseline compares a metric's recent window to the preceding one.
type MetricBaseline struct {
	Avg       float64 `json:"avg"`
	Trend     Trend   `json:"trend"`
	ChangePct float64 `json:"change"`
}

// Extractor pulls one metric's value out of a session, reporting whether the
// session defines it.
type Extractor func(*Session) (float64, bool)

// HeartRate extracts the heart rate metric.
func HeartRate(s *Session) (float64, bool) {
	if s.Vitals.HeartRate == nil {
		return 0, false
	}
	return *s.Vitals.HeartRate, true
}

// HRV extracts the heart rate variability metric.
func HRV(s *Session) (float64, bool) {
	if s.Vitals.HRV == nil {
		return 0, false
	}
	return *s.Vitals.HRV, true
}

// TremorIndex extracts the tremor index metric.
func TremorIndex(s *Session) (float64, bool) {
	if s.Vitals.TremorIndex == nil {
		return 0, false
	}
	return *s.Vitals.TremorIndex, true
}

// Baseline computes the rolling comparison for one metric over the history
// (oldest first). The recent window is the last 7 sessions' defined values;
// the older window is the 7 sessions before that. An empty older window
// borrows the recent average so the trend reads stable instead of producing
// divide-by-zero noise.
func Baseline(sessions []Session, extract Extractor) MetricBaseline {
	recentAvg, olderAvg, ok := windowAverages(sessions, extract)
	if !ok {
		return MetricBaseline{Trend: TrendStable}
	}

	var changePct float64
	if olderAvg != 0 {
		changePct = (recentAvg - olderAvg) / olderAvg * 100
	}

	trend := TrendStable
	if changePct > trendBandPct {
		trend = TrendUp
	} else if changePct < -trendBandPct {
		trend = TrendDown
	}

	return MetricBaseline{Avg: recentAvg, Trend: trend, ChangePct: changePct}
}

// windowAverages returns the recent and older window averages for one
// metric. ok is false when the recent window holds no defined values. An
// empty older window borrows the recent average.
func windowAverages(sessions []Session, extract Extractor) (recentAvg, olderAvg float64, ok bool) {
	recentStart := len(sessions) - baselineWindow
	if recentStart < 0 {
		recentStart = 0
	}
	olderStart := recentStart - baselineWindow
	if olderStart < 0 {
		olderStart = 0
	}

	recent := definedValues(sessions[recentStart:], extract)
	older := definedValues(sessions[olderStart:recentStart], extract)

	if len(recent) == 0 {
		return 0, 0, false
	}

	recentAvg = mean(recent)
	olderAvg = recentAvg
	if len(older) > 0 {
		olderAvg = mean(older)
	}
	return recentAvg, olderAvg, true
}

func definedValues(sessions []Session, extract Extractor) []float64 {
	var values []float64
	for i := range sessions {
		if v, ok := extract(&sessions[i]); ok {
			values = append(values, v)
		}
	}
	return values
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Insight is one human-readable trend observation.
type Insight struct {
	Metric     string `json:"metric"`
	Message    string `json:"message"`
	IsPositive bool   `json:"isPositive"`
}

// TrendInsights turns the history into comparative messages. Fewer than 3
// sessions yields exactly one "complete more check-ins" insight; a history
// with no qualifying metric movement yields a single stable message.
func TrendInsights(sessions []Session) []Insight {
	if len(sessions) < minInsightSessions {
		return []Insight{{
			Metric:     "sessions",
			Message:    "Complete a few more check-ins to unlock trend insights.",
			IsPositive: true,
		}}
	}

	var insights []Insight

	hr := Baseline(sessions, HeartRate)
	if math.Abs(hr.ChangePct) > heartRateInsightPct {
		direction := "higher"
		if hr.ChangePct < 0 {
			direction = "lower"
		}
		insights = append(insights, Insight{
			Metric: "heartRate",
			Message: fmt.Sprintf("Your average heart rate is %.0f%% %s than your earlier baseline.",
				math.Abs(hr.ChangePct), direction),
			IsPositive: hr.ChangePct < 0,
		})
	}

	hrv := Baseline(sessions, HRV)
	if math.Abs(hrv.ChangePct) > hrvInsightPct {
		direction := "improved"
		if hrv.ChangePct < 0 {
			direction = "dropped"
		}
		insights = append(insights, Insight{
			Metric: "hrv",
			Message: fmt.Sprintf("Your heart rate variability has %s by %.0f%% versus your earlier baseline.",
				direction, math.Abs(hrv.ChangePct)),
			IsPositive: hrv.ChangePct > 0,
		})
	}

	if recentTremor, olderTremor, ok := windowAverages(sessions, TremorIndex); ok &&
		math.Abs(recentTremor-olderTremor) > tremorInsightAbs {
		direction := "increased"
		if recentTremor < olderTremor {
			direction = "decreased"
		}
		insights = append(insights, Insight{
			Metric:     "tremor",
			Message:    fmt.Sprintf("Your tremor index has %s compared with your earlier baseline.", direction),
			IsPositive: recentTremor < olderTremor,
		})
	}

	if len(insights) == 0 {
		insights = append(insights, Insight{
			Metric:     "overall",
			Message:    "Your wellness metrics look stable and consistent.",
			IsPositive: true,
		})
	}
	return insights
}
