package file

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ID accepts both JSON strings and numbers, as editor exports use either.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// Document is the graph export of the dialog editor.
type Document struct {
	Name        string       `json:"name" yaml:"name"`
	Tags        []TagDoc     `json:"tags,omitempty" yaml:"tags,omitempty"`
	Nodes       []NodeDoc    `json:"nodes" yaml:"nodes"`
	Connections []Connection `json:"connections" yaml:"connections"`
	DataTables  []TableDoc   `json:"dataTables,omitempty" yaml:"dataTables,omitempty"`
}

// TagDoc is a tag definition.
type TagDoc struct {
	ID    ID     `json:"id" yaml:"id"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// NodeDoc is one editor node.
type NodeDoc struct {
	ID       ID       `json:"id" yaml:"id"`
	Type     string   `json:"type" yaml:"type"`
	Position Position `json:"position" yaml:"position"`
	Data     NodeData `json:"data" yaml:"data"`
}

// Position is the canvas location.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// NodeData is the editable content of a node.
type NodeData struct {
	Markup  string      `json:"markup" yaml:"markup"`
	RawText string      `json:"raw_text,omitempty" yaml:"raw_text,omitempty"`
	Answers []AnswerDoc `json:"answers,omitempty" yaml:"answers,omitempty"`
	Tags    []ID        `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// AnswerDoc is one answer; its position in the list is its index.
type AnswerDoc struct {
	ID   ID     `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

// Connection is an editor edge. SourceHandle names the answer for nodes
// that branch through answers.
type Connection struct {
	ID           ID `json:"id,omitempty" yaml:"id,omitempty"`
	Source       ID `json:"source" yaml:"source"`
	SourceHandle ID `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty"`
	Target       ID `json:"target" yaml:"target"`
}

// TableDoc is a data table given either as rows or as ';'-delimited content.
type TableDoc struct {
	Name    string           `json:"name" yaml:"name"`
	Columns []string         `json:"columns,omitempty" yaml:"columns,omitempty"`
	Rows    []map[string]any `json:"rows,omitempty" yaml:"rows,omitempty"`
	Content string           `json:"content,omitempty" yaml:"content,omitempty"`
}

func itoa(i int) ID {
	return ID(strconv.Itoa(i))
}
