package file

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/diagraph/pkg/adapters/tables"
	"github.com/aretw0/diagraph/pkg/domain"
)

// ErrInvalidDocument wraps every structural problem of an editor document.
var ErrInvalidDocument = errors.New("invalid graph document")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidDocument, fmt.Sprintf(format, args...))
}

// ToGraph converts an editor document into a graph with the given id.
func ToGraph(graphID string, doc *Document) (*domain.Graph, error) {
	name := doc.Name
	if name == "" {
		name = graphID
	}
	g := domain.NewGraph(graphID, name)

	nodes := make(map[string]*domain.Node, len(doc.Nodes))
	answerOwner := make(map[string]*domain.Node)
	for _, nd := range doc.Nodes {
		id := string(nd.ID)
		if id == "" {
			return nil, invalid("node without id")
		}
		if _, dup := nodes[id]; dup {
			return nil, invalid("node %s defined twice", id)
		}
		typ, err := domain.ParseNodeType(nd.Type)
		if err != nil {
			return nil, invalid("node %s: %v", id, err)
		}
		n := &domain.Node{
			ID:       id,
			Type:     typ,
			Markup:   nd.Data.Markup,
			Text:     nd.Data.RawText,
			Position: domain.Position{X: nd.Position.X, Y: nd.Position.Y},
		}
		if n.Text == "" {
			n.Text = domain.RawText(nd.Data.Markup)
		}
		for _, tag := range nd.Data.Tags {
			n.Tags = append(n.Tags, string(tag))
		}
		for i, ad := range nd.Data.Answers {
			aid := string(ad.ID)
			if aid == "" {
				aid = id + "-" + string(itoa(i))
			}
			if _, dup := answerOwner[aid]; dup {
				return nil, invalid("answer %s defined twice", aid)
			}
			n.Answers = append(n.Answers, domain.Answer{ID: aid, Index: i, Text: domain.RawText(ad.Text)})
			answerOwner[aid] = n
		}
		nodes[id] = n
	}

	for _, c := range doc.Connections {
		from, ok := nodes[string(c.Source)]
		if !ok {
			return nil, invalid("connection from unknown node %s", c.Source)
		}
		if _, ok := nodes[string(c.Target)]; !ok {
			return nil, invalid("connection to unknown node %s", c.Target)
		}
		switch from.Type {
		case domain.NodeTypeStart, domain.NodeTypeInfo, domain.NodeTypeUpdate:
			from.Successor = string(c.Target)
		default:
			owner, ok := answerOwner[string(c.SourceHandle)]
			if !ok || owner != from {
				return nil, invalid("connection from node %s uses unknown answer %s", c.Source, c.SourceHandle)
			}
			for i := range owner.Answers {
				if owner.Answers[i].ID == string(c.SourceHandle) {
					owner.Answers[i].Successor = string(c.Target)
				}
			}
		}
	}

	for _, nd := range doc.Nodes {
		g.AddNode(nodes[string(nd.ID)])
	}
	if g.FirstNodeID == "" {
		return nil, invalid("graph %s has no start node", graphID)
	}

	for _, td := range doc.DataTables {
		t, err := toTable(td)
		if err != nil {
			return nil, err
		}
		g.AddTable(t)
	}
	return g, nil
}

func toTable(td TableDoc) (*domain.DataTable, error) {
	name := strings.TrimSuffix(td.Name, ".csv")
	if td.Content != "" {
		t, err := tables.ParseCSV(name, strings.NewReader(td.Content))
		if err != nil {
			return nil, invalid("table %s: %v", name, err)
		}
		return t, nil
	}
	t := &domain.DataTable{Name: name, Columns: td.Columns, Rows: td.Rows}
	if len(t.Columns) == 0 && len(t.Rows) > 0 {
		for col := range t.Rows[0] {
			t.Columns = append(t.Columns, col)
		}
		sort.Strings(t.Columns)
	}
	return t, nil
}

// FromGraph converts a graph into the editor document shape.
func FromGraph(g *domain.Graph) *Document {
	doc := &Document{Name: g.Name}
	tags := map[string]bool{}

	for _, n := range g.SortedNodes() {
		nd := NodeDoc{
			ID:       ID(n.ID),
			Type:     n.Type.Display(),
			Position: Position{X: n.Position.X, Y: n.Position.Y},
			Data:     NodeData{Markup: n.Markup, RawText: n.Text},
		}
		for _, tag := range n.Tags {
			nd.Data.Tags = append(nd.Data.Tags, ID(tag))
			tags[tag] = true
		}
		if n.HasSuccessor() {
			doc.Connections = append(doc.Connections, Connection{
				ID: ID(n.ID), Source: ID(n.ID), SourceHandle: ID(n.ID), Target: ID(n.Successor),
			})
		}
		for _, a := range n.Answers {
			nd.Data.Answers = append(nd.Data.Answers, AnswerDoc{ID: ID(a.ID), Text: a.Text})
			if a.HasSuccessor() {
				doc.Connections = append(doc.Connections, Connection{
					ID: ID(a.ID), Source: ID(n.ID), SourceHandle: ID(a.ID), Target: ID(a.Successor),
				})
			}
		}
		doc.Nodes = append(doc.Nodes, nd)
	}

	tagIDs := make([]string, 0, len(tags))
	for tag := range tags {
		tagIDs = append(tagIDs, tag)
	}
	sort.Strings(tagIDs)
	for _, tag := range tagIDs {
		doc.Tags = append(doc.Tags, TagDoc{ID: ID(tag)})
	}

	names := make([]string, 0, len(g.Tables))
	for name := range g.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := g.Tables[name]
		doc.DataTables = append(doc.DataTables, TableDoc{Name: t.Name, Columns: t.Columns, Rows: t.Rows})
	}
	return doc
}
