package domain

const (
	// MaxHops bounds the nodes traversed in one turn without user input.
	MaxHops = 100

	// Publish topics for turn results.
	TopicUtterances = "sys_utterances"
	TopicNodeID     = "node_id"
	TopicCandidates = "answer_candidates"
	TopicBelief     = "beliefstate"
	TopicTerminal   = "tree_end_reached"
)
