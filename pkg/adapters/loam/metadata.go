package loam

// NodeMetadata is the frontmatter of a node or data table document.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
type NodeMetadata struct {
	ID   string `json:"id,omitempty" mapstructure:"id"`
	Type string `json:"type,omitempty" mapstructure:"type"`

	// Text overrides the raw text derived from the body (LOGIC and UPDATE nodes).
	Text string `json:"text,omitempty" mapstructure:"text"`

	// Successor is the direct edge. To is accepted as a shorthand.
	Successor string `json:"successor,omitempty" mapstructure:"successor"`
	To        string `json:"to,omitempty" mapstructure:"to"`

	Tags []string `json:"tags,omitempty" mapstructure:"tags"`

	// Answers holds plain strings or maps decoded into LoaderAnswer.
	Answers []any `json:"answers,omitempty" mapstructure:"answers"`

	Position map[string]any `json:"position,omitempty" mapstructure:"position"`

	// Table marks a data table document; the body is ';'-delimited CSV.
	Table string `json:"table,omitempty" mapstructure:"table"`
}

// LoaderAnswer is the map form of an answer entry.
type LoaderAnswer struct {
	ID        string `json:"id" mapstructure:"id"`
	Text      string `json:"text" mapstructure:"text"`
	Successor string `json:"successor" mapstructure:"successor"`
	To        string `json:"to" mapstructure:"to"`
}

// LoaderPosition is the decoded canvas position.
type LoaderPosition struct {
	X float64 `mapstructure:"x"`
	Y float64 `mapstructure:"y"`
}
