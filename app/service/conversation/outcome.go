package conversation

const (
	// generation errors beyond this many in a row are reported as an outage
	outageThreshold = 2
	// a reply seen this many more times in a row is rejected
	duplicateLimit = 2
)

type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeGenerationTransient
	OutcomeGenerationOutage
	OutcomeEmptyResponse
	OutcomeDuplicateExhausted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeGenerationTransient:
		return "generation_exception_transient"
	case OutcomeGenerationOutage:
		return "generation_exception_outage"
	case OutcomeEmptyResponse:
		return "empty_response"
	case OutcomeDuplicateExhausted:
		return "duplicate_exhausted"
	default:
		return "unknown"
	}
}

// State is the per-session memory of an Engine.
type State struct {
	// LastReply changes only on success, so repeats are measured against
	// genuine model output and never against fallbacks.
	LastReply  string
	Failures   int
	Duplicates int
}

// observation is what a single generation attempt produced.
type observation struct {
	err  error
	text string
}

// classify decides the outcome of a turn and the state that follows it.
func classify(s State, obs observation) (Outcome, State) {
	if obs.err != nil {
		s.Failures++
		if s.Failures > outageThreshold {
			return OutcomeGenerationOutage, s
		}

		return OutcomeGenerationTransient, s
	}

	if obs.text == "" {
		s.Failures++
		return OutcomeEmptyResponse, s
	}

	if obs.text == s.LastReply {
		s.Duplicates++
	} else {
		s.Duplicates = 0
	}

	if s.Duplicates >= duplicateLimit {
		s.Duplicates = 0
		s.Failures++
		return OutcomeDuplicateExhausted, s
	}

	s.LastReply = obs.text
	s.Failures = 0

	return OutcomeSuccess, s
}
