package domain

import "time"

// CycleStats aggregates per-cycle counters for operators. No per-item
// error ever aborts a cycle; everything lands in a counter instead.
type CycleStats struct {
	CycleID   string        `json:"cycle_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	Fetched     int `json:"fetched"`
	Rejected    int `json:"rejected"`
	AlreadySeen int `json:"already_seen"`
	Accepted    int `json:"accepted"`
	Delivered   int `json:"delivered"`
	Dropped     int `json:"dropped"`

	SourcesOK        int `json:"sources_ok"`
	SourcesEmpty     int `json:"sources_empty"`
	TransientErrors  int `json:"transient_errors"`
	PermanentErrors  int `json:"permanent_errors"`
	ParseErrors      int `json:"parse_errors"`
	RenderFailures   int `json:"render_failures"`
	SnapshotFailures int `json:"snapshot_failures"`
}

// CountOutcome folds one source outcome into the cycle counters.
func (s *CycleStats) CountOutcome(out FetchOutcome) {
	switch out.Status {
	case FetchSuccess:
		s.SourcesOK++
		s.Fetched += out.Count
	case FetchEmptyOk:
		s.SourcesEmpty++
	case FetchTransient:
		s.TransientErrors++
	case FetchPermanent:
		s.PermanentErrors++
	case FetchParse:
		s.ParseErrors++
	}
}
