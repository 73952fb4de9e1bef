package domain

import "fmt"

// FetchStatus classifies how one source fetch ended.
type FetchStatus int

const (
	// FetchSuccess means the request succeeded and produced articles.
	FetchSuccess FetchStatus = iota
	// FetchEmptyOk means the request succeeded with zero entries; not an error.
	FetchEmptyOk
	// FetchTransient covers network failures, timeouts, 5xx and 429; the
	// source is retried next cycle without alarm.
	FetchTransient
	// FetchPermanent covers 404s and malformed endpoints; the source is
	// skipped this cycle, surfaced as a warning, and still retried next cycle.
	FetchPermanent
	// FetchParse means the response arrived but could not be parsed.
	FetchParse
)

func (s FetchStatus) String() string {
	switch s {
	case FetchSuccess:
		return "success"
	case FetchEmptyOk:
		return "empty_ok"
	case FetchTransient:
		return "transient_error"
	case FetchPermanent:
		return "permanent_error"
	case FetchParse:
		return "parse_error"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// FetchOutcome reports the result of fetching one source in one cycle.
// EmptyOk and TransientError are deliberately distinct: a quiet feed is
// not a broken feed.
type FetchOutcome struct {
	Status FetchStatus
	Kind   string
	Count  int
	Err    error
}

// SuccessOutcome builds the outcome for a fetch that produced count articles;
// count zero maps to EmptyOk.
func SuccessOutcome(count int) FetchOutcome {
	if count == 0 {
		return FetchOutcome{Status: FetchEmptyOk}
	}
	return FetchOutcome{Status: FetchSuccess, Count: count}
}

// TransientOutcome marks a retry-next-cycle failure of the given kind.
func TransientOutcome(kind string, err error) FetchOutcome {
	return FetchOutcome{Status: FetchTransient, Kind: kind, Err: err}
}

// PermanentOutcome marks a skip-this-cycle failure of the given kind.
func PermanentOutcome(kind string, err error) FetchOutcome {
	return FetchOutcome{Status: FetchPermanent, Kind: kind, Err: err}
}

// ParseOutcome marks a fetched-but-unparsable response.
func ParseOutcome(err error) FetchOutcome {
	return FetchOutcome{Status: FetchParse, Kind: "unparsable", Err: err}
}
