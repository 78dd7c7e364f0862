package domain

// ActType classifies what the answer matcher extracted from user input.
type ActType string

const (
	// ActAnswer carries the text of a selected answer.
	ActAnswer ActType = "answer"
	// ActUnrecognizedValue reports a value that could not be assigned to a slot.
	ActUnrecognizedValue ActType = "unrecognized_value"
	// ActTooManyValues reports several values for a single slot.
	ActTooManyValues ActType = "too_many_values"
)

// UserAct is one interpreted piece of user input.
type UserAct struct {
	Type  ActType `json:"type"`
	Text  string  `json:"text,omitempty"`
	Slot  string  `json:"slot,omitempty"`
	Value string  `json:"value,omitempty"`
}

// IsCorrective reports whether the act asks the user to rephrase.
func (a UserAct) IsCorrective() bool {
	return a.Type == ActUnrecognizedValue || a.Type == ActTooManyValues
}

// Utterance kinds that are not node display names.
const KindError = "errorMsg"

// Utterance is one system message produced during a turn.
type Utterance struct {
	Text string `json:"text"`
	// Kind is the display name of the producing node type or "errorMsg".
	Kind string `json:"kind"`
}

// TurnOutcome summarises how a turn ended.
type TurnOutcome string

const (
	OutcomeWaiting    TurnOutcome = "waiting"
	OutcomeTerminal   TurnOutcome = "terminal"
	OutcomeCorrective TurnOutcome = "corrective"
	OutcomeError      TurnOutcome = "error"
)

// TurnResult is everything the engine decided for one turn.
type TurnResult struct {
	Utterances []Utterance `json:"sys_utterances"`
	NodeID     string      `json:"node_id"`
	Candidates []string    `json:"answer_candidates"`
	Belief     BeliefState `json:"beliefstate"`
	Terminal   bool        `json:"tree_end_reached"`
	Turn       int         `json:"turn"`
	Outcome    TurnOutcome `json:"outcome"`
}

// Texts returns the utterance texts in order.
func (r *TurnResult) Texts() []string {
	out := make([]string, len(r.Utterances))
	for i, u := range r.Utterances {
		out[i] = u.Text
	}
	return out
}
