package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/diagraph/internal/update"
	"github.com/aretw0/diagraph/pkg/domain"
	"github.com/aretw0/diagraph/pkg/ports"
	"github.com/aretw0/diagraph/pkg/template"
)

// turn holds the mutable state of one HandleTurn call.
type turn struct {
	e         *Engine
	ctx       context.Context
	graphID   string
	userID    string
	cursor    *domain.Cursor
	acts      []domain.UserAct
	belief    domain.BeliefState
	turnCount int
	hops      int
	log       *slog.Logger
	result    *domain.TurnResult
}

func (e *Engine) newTurn(ctx context.Context, req ports.TurnRequest, cursor *domain.Cursor) *turn {
	belief := domain.NewBeliefState()
	if req.Belief != nil {
		belief = req.Belief.Clone()
	}
	return &turn{
		e:         e,
		ctx:       ctx,
		graphID:   req.GraphID,
		userID:    req.UserID,
		cursor:    cursor,
		acts:      req.Acts,
		belief:    belief,
		turnCount: cursor.Turn,
		log:       e.logger.With("user", req.UserID, "graph", req.GraphID),
		result: &domain.TurnResult{
			Utterances: []domain.Utterance{},
			Candidates: []string{},
			Belief:     belief,
			NodeID:     cursor.NodeID,
			Outcome:    domain.OutcomeWaiting,
		},
	}
}

// run executes the turn. Panics are converted into the generic error utterance.
func (t *turn) run() {
	defer func() {
		if r := recover(); r != nil {
			t.log.Error("policy panic", "node", t.result.NodeID, "panic", r)
			t.fail(t.result.NodeID, fmt.Errorf("panic: %v", r))
		}
	}()

	node, err := t.currentNode(t.acts)
	if err != nil {
		t.fail(t.cursor.NodeID, err)
		return
	}
	if node == nil {
		t.log.Info("graph has no entry node")
		t.finish("", true, domain.OutcomeTerminal)
		return
	}
	t.log.Info("policy turn", "node", node.ID, "turn", t.turnCount)
	t.dispatch(node)
}

// currentNode resolves the node the turn starts from, applying corrective
// and answer acts. It returns nil when the dialog ended.
func (t *turn) currentNode(acts []domain.UserAct) (*domain.Node, error) {
	var node *domain.Node
	if !t.cursor.Started() {
		first, err := t.e.graphs.FirstNode(t.ctx, t.graphID)
		if err != nil {
			return nil, &BrokenReferenceError{NodeID: t.graphID, Ref: "START", Err: err}
		}
		node, err = t.e.graphs.GetSuccessor(t.ctx, t.graphID, first)
		if err != nil {
			return nil, &BrokenReferenceError{NodeID: first.ID, Ref: first.Successor, Err: err}
		}
		if node == nil {
			return nil, nil
		}
	} else {
		var err error
		node, err = t.e.graphs.GetNode(t.ctx, t.graphID, t.cursor.NodeID)
		if err != nil {
			return nil, &BrokenReferenceError{NodeID: t.cursor.NodeID, Ref: t.cursor.NodeID, Err: err}
		}
	}

	if t.corrective(node, acts) {
		return nil, errCorrected
	}

	for _, act := range acts {
		if act.Type != domain.ActAnswer && act.Type != "" {
			continue
		}
		next, err := t.selectAnswer(node, act.Text)
		if err != nil {
			return nil, err
		}
		node = next
	}
	return node, nil
}

// errCorrected signals that a corrective reply was already produced.
var errCorrected = errors.New("corrective reply")

// corrective emits the rephrase prompts for unrecognized or ambiguous values.
func (t *turn) corrective(node *domain.Node, acts []domain.UserAct) bool {
	for _, act := range acts {
		switch act.Type {
		case domain.ActUnrecognizedValue:
			t.log.Info("unrecognized value", "node", node.ID, "turn", t.turnCount, "slot", act.Slot, "value", act.Value)
			t.say(UnrecognizedValueText(act.Slot, act.Value), domain.KindError)
		case domain.ActTooManyValues:
			t.log.Info("too many values", "node", node.ID, "turn", t.turnCount, "slot", act.Slot, "value", act.Value)
			t.say(TooManyValuesText(act.Slot, act.Value), domain.KindError)
		}
	}
	if len(t.result.Utterances) == 0 {
		return false
	}
	answers, err := t.e.graphs.GetAnswers(t.ctx, t.graphID, node)
	if err != nil {
		t.log.Warn("failed to load answers", "node", node.ID, "err", err)
	}
	t.result.Candidates = t.e.candidates(answers, t.belief)
	t.finish(node.ID, false, domain.OutcomeCorrective)
	return true
}

// selectAnswer follows the first answer of node whose text equals text.
func (t *turn) selectAnswer(node *domain.Node, text string) (*domain.Node, error) {
	answers, err := t.e.graphs.GetAnswers(t.ctx, t.graphID, node)
	if err != nil {
		return nil, err
	}
	for _, a := range answers {
		if a.Text != text {
			continue
		}
		t.log.Debug("answer selected", "node", node.ID, "answer", a.ID)
		return t.follow(node, a.Successor, a.ID)
	}
	return nil, fmt.Errorf("%w: %q at node '%s'", domain.ErrAnswerNotFound, text, node.ID)
}

// follow loads the node at ref, reporting a broken reference on failure.
func (t *turn) follow(from *domain.Node, ref, label string) (*domain.Node, error) {
	if ref == "" {
		return nil, &BrokenReferenceError{NodeID: from.ID, Ref: label}
	}
	next, err := t.e.graphs.GetNode(t.ctx, t.graphID, ref)
	if err != nil {
		return nil, &BrokenReferenceError{NodeID: from.ID, Ref: ref, Err: err}
	}
	return next, nil
}

// successor returns the direct successor, or nil at the end of the graph.
func (t *turn) successor(node *domain.Node) (*domain.Node, error) {
	next, err := t.e.graphs.GetSuccessor(t.ctx, t.graphID, node)
	if err != nil {
		return nil, &BrokenReferenceError{NodeID: node.ID, Ref: node.Successor, Err: err}
	}
	return next, nil
}

// dispatch is the hop loop. Each iteration handles one node; silent steps
// continue with the next node until a node waits for input or the graph ends.
func (t *turn) dispatch(node *domain.Node) {
	for {
		if t.hops >= domain.MaxHops {
			err := &RecursionLimitError{NodeID: node.ID, Hops: t.hops}
			t.log.Warn("recursion limit reached", "node", node.ID, "turn", t.turnCount, "err", err)
			t.say(RecursionLimitText(domain.MaxHops), domain.KindError)
			t.result.Candidates = []string{}
			t.finish("", true, domain.OutcomeError)
			return
		}

		t.turnCount++
		t.e.emitNodeEnter(t.ctx, t, node)

		next, err := t.handle(node)
		if err != nil {
			t.fail(node.ID, err)
			return
		}
		if next == nil {
			return
		}
		node = next
		t.hops++
	}
}

// handle runs the handler of one node. A nil next node means the turn is over.
func (t *turn) handle(node *domain.Node) (*domain.Node, error) {
	log := t.log.With("node", node.ID, "turn", t.turnCount)
	switch node.Type {
	case domain.NodeTypeLogic:
		return t.handleLogic(node, log)
	case domain.NodeTypeInfo:
		text := t.render(node)
		log.Info("info node", "text", text)
		t.say(text, node.Type.Display())
		return t.advance(node)
	case domain.NodeTypeVariable:
		return t.handleVariable(node, log)
	case domain.NodeTypeUpdate:
		return t.handleUpdate(node, log)
	case domain.NodeTypeQuestion:
		answers, err := t.e.graphs.GetAnswers(t.ctx, t.graphID, node)
		if err != nil {
			return nil, err
		}
		t.say(t.render(node), node.Type.Display())
		t.result.Candidates = t.e.candidates(answers, t.belief)
		terminal := node.IsSink()
		outcome := domain.OutcomeWaiting
		if terminal {
			outcome = domain.OutcomeTerminal
		}
		log.Info("question node", "candidates", len(t.result.Candidates), "terminal", terminal)
		t.finish(node.ID, terminal, outcome)
		return nil, nil
	case domain.NodeTypeStart:
		log.Warn("start node reached during traversal")
		return t.advance(node)
	}
	return nil, fmt.Errorf("unhandled node type %s", node.Type)
}

// advance moves to the direct successor, ending the dialog when there is none.
func (t *turn) advance(node *domain.Node) (*domain.Node, error) {
	next, err := t.successor(node)
	if err != nil {
		return nil, err
	}
	if next == nil {
		t.finish("", true, domain.OutcomeTerminal)
	}
	return next, nil
}

func (t *turn) handleLogic(node *domain.Node, log *slog.Logger) (*domain.Node, error) {
	answers, err := t.e.graphs.GetAnswers(t.ctx, t.graphID, node)
	if err != nil {
		return nil, err
	}
	var fallback *domain.Answer
	for i := range answers {
		a := answers[i]
		if a.IsDefault() {
			if fallback == nil {
				fallback = &a
			}
			continue
		}
		cond := node.Text + " " + a.Text
		ok, err := t.e.templates.EvalLogic(t.ctx, cond, t.scope())
		if err != nil {
			log.Warn("logic condition failed", "condition", cond, "err", err)
			continue
		}
		if ok {
			log.Info("logic condition", "condition", cond)
			return t.follow(node, a.Successor, a.ID)
		}
	}
	if fallback == nil {
		return nil, &BrokenReferenceError{NodeID: node.ID, Ref: domain.DefaultClause}
	}
	log.Info("logic condition", "condition", domain.DefaultClause)
	return t.follow(node, fallback.Successor, fallback.ID)
}

func (t *turn) handleVariable(node *domain.Node, log *slog.Logger) (*domain.Node, error) {
	answers, err := t.e.graphs.GetAnswers(t.ctx, t.graphID, node)
	if err != nil {
		return nil, err
	}
	if len(answers) == 0 {
		return nil, &BrokenReferenceError{NodeID: node.ID, Ref: "answer"}
	}
	first := answers[0]
	binding, err := template.ParseBinding(first.Text)
	if err != nil {
		log.Warn("invalid answer template", "answer", first.ID, "err", err)
	} else if t.belief.Has(binding.Name) {
		log.Info("variable already known", "var", binding.Name)
		return t.follow(node, first.Successor, first.ID)
	}

	log.Info("variable unknown", "var", binding.Name)
	t.say(t.render(node), node.Type.Display())
	t.result.Candidates = t.e.candidates(answers, t.belief)
	t.finish(node.ID, false, domain.OutcomeWaiting)
	return nil, nil
}

func (t *turn) handleUpdate(node *domain.Node, log *slog.Logger) (*domain.Node, error) {
	name, value, err := update.Run(node.Text, t.belief)
	if err != nil {
		var updErr *update.Error
		if !errors.As(err, &updErr) {
			return nil, err
		}
		log.Warn("update failed", "statement", node.Text, "err", err)
		t.say(updErr.Error(), domain.KindError)
		t.finish(node.ID, false, domain.OutcomeError)
		return nil, nil
	}
	log.Info("belief updated", "var", name, "value", value)
	t.e.emitBeliefUpdate(t.ctx, t, node, name, value)
	return t.advance(node)
}

// scope exposes the belief state and the graph's data tables to templates.
func (t *turn) scope() template.Scope {
	return template.Scope{
		Vars: t.belief,
		Lookup: func(ctx context.Context, table string, constraints map[string]any, columns []string) ([]map[string]any, error) {
			return t.e.graphs.LookupTable(ctx, t.graphID, table, constraints, columns)
		},
	}
}

func (t *turn) say(text, kind string) {
	t.result.Utterances = append(t.result.Utterances, domain.Utterance{Text: text, Kind: kind})
}

func (t *turn) finish(nodeID string, terminal bool, outcome domain.TurnOutcome) {
	t.result.NodeID = nodeID
	t.result.Terminal = terminal
	t.result.Outcome = outcome
}

// fail reports err to the user as the generic graph error and ends the dialog.
func (t *turn) fail(nodeID string, err error) {
	if errors.Is(err, errCorrected) {
		return
	}
	t.log.Error("dialog graph error", "node", nodeID, "turn", t.turnCount, "err", err)
	t.say(GenericErrorText, domain.KindError)
	t.result.Candidates = []string{}
	t.finish(nodeID, true, domain.OutcomeError)
}
