package weakness

import "github.com/abhisek/studyloop/internal/store"

// Trend directions.
const (
	TrendImproving        = "improving"
	TrendDeclining        = "declining"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

const trendWindow = 5

// Trend compares the latest attempts with the ones before them.
type Trend struct {
	Direction        string  `json:"trend"`
	RecentAccuracy   float64 `json:"recent_accuracy"`
	PreviousAccuracy float64 `json:"previous_accuracy"`
	Change           float64 `json:"change"`
	Message          string  `json:"message,omitempty"`
}

// AnalyzeTrend compares the last five records (oldest first) with the five
// before them, or with the first five when there are fewer than ten.
func AnalyzeTrend(records []store.AttemptRecord) Trend {
	n := len(records)
	if n < trendWindow {
		return Trend{Direction: TrendInsufficientData, Message: "Not enough attempts to show a trend."}
	}

	recent := records[n-trendWindow:]
	previous := records[:trendWindow]
	if n >= 2*trendWindow {
		previous = records[n-2*trendWindow : n-trendWindow]
	}

	t := Trend{
		RecentAccuracy:   percent(recent),
		PreviousAccuracy: percent(previous),
	}
	t.Change = round1(t.RecentAccuracy - t.PreviousAccuracy)
	switch {
	case t.RecentAccuracy > t.PreviousAccuracy:
		t.Direction = TrendImproving
	case t.RecentAccuracy < t.PreviousAccuracy:
		t.Direction = TrendDeclining
	default:
		t.Direction = TrendStable
	}
	return t
}
