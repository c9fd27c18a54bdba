package model

import (
	"sort"
	"strconv"
	"strings"
)

// ContentMatch represents a match state of a node type's content expression,
// and can be used to find out whether further content matches here, and
// whether a given position is a valid end of the node. Each value is one
// state of the deterministic automaton compiled from the expression; states
// are interned so identical DFA states are shared within a compiled
// expression.
type ContentMatch struct {
	// True when this match state represents a valid end of the node.
	ValidEnd bool
	next     []interface{} // even indexes are *NodeType, odd are *ContentMatch
}

// NewContentMatch is the constructor for ContentMatch.
func NewContentMatch(validEnd bool) *ContentMatch {
	return &ContentMatch{ValidEnd: validEnd}
}

// EmptyContentMatch is the match state for the empty content expression.
var EmptyContentMatch = NewContentMatch(true)

// Edge is a single transition out of a ContentMatch state.
type Edge struct {
	Type *NodeType
	Next *ContentMatch
}

// Edges enumerates the possible next-type/next-state transitions out of this
// state, used by consumers that search for auto-wrapping sequences.
func (cm *ContentMatch) Edges() []Edge {
	edges := make([]Edge, 0, len(cm.next)/2)
	for i := 0; i < len(cm.next); i += 2 {
		edges = append(edges, Edge{Type: cm.next[i].(*NodeType), Next: cm.next[i+1].(*ContentMatch)})
	}
	return edges
}

// MatchType matches a node type, returning a match after that node if
// successful.
func (cm *ContentMatch) MatchType(typ *NodeType) *ContentMatch {
	for i := 0; i < len(cm.next); i += 2 {
		if cm.next[i] == typ {
			return cm.next[i+1].(*ContentMatch)
		}
	}
	return nil
}

// MatchFragment tries to match a fragment, optionally starting and ending at
// the given child indexes. Returns the resulting match when successful.
func (cm *ContentMatch) MatchFragment(frag *Fragment, args ...int) *ContentMatch {
	cur := cm
	start := 0
	if len(args) > 0 {
		start = args[0]
	}
	end := frag.ChildCount()
	if len(args) > 1 {
		end = args[1]
	}
	for i := start; cur != nil && i < end; i++ {
		child, err := frag.Child(i)
		if err != nil {
			return nil
		}
		cur = cur.MatchType(child.Type)
	}
	return cur
}

func (cm *ContentMatch) inlineContent() bool {
	if len(cm.next) == 0 {
		return false
	}
	return cm.next[0].(*NodeType).IsInline()
}

// compatible tests whether this match state and another share any outgoing
// edge to the same node type (used when joining two nodes of different, but
// related, content models).
func (cm *ContentMatch) compatible(other *ContentMatch) bool {
	for i := 0; i < len(cm.next); i += 2 {
		for j := 0; j < len(other.next); j += 2 {
			if cm.next[i] == other.next[j] {
				return true
			}
		}
	}
	return false
}

// FillBefore searches depth-first for a sequence of nodes, built from their
// default attributes, that can be appended to this match state so that
// `after` matches from the resulting state (and, when toEnd is true, so that
// the final state is a valid end). It returns the first sequence the search
// finds, which is not necessarily the shortest one, or nil when it finds none.
// Each match state is entered at most once, and the search is bounded in depth to avoid exploring unbounded repetition
// cycles.
func (cm *ContentMatch) FillBefore(after *Fragment, toEnd ...bool) *Fragment {
	end := false
	if len(toEnd) > 0 {
		end = toEnd[0]
	}
	seen := map[*ContentMatch]bool{cm: true}
	var search func(match *ContentMatch, types []*NodeType, depth int) *Fragment
	const maxDepth = 64
	search = func(match *ContentMatch, types []*NodeType, depth int) *Fragment {
		finished := match.MatchFragment(after)
		if finished != nil && (!end || finished.ValidEnd) {
			nodes := make([]*Node, len(types))
			for i, tp := range types {
				n, err := tp.CreateAndFill()
				if err != nil || n == nil {
					return nil
				}
				nodes[i] = n
			}
			return NewFragment(nodes)
		}
		if depth >= maxDepth {
			return nil
		}
		for i := 0; i < len(match.next); i += 2 {
			typ := match.next[i].(*NodeType)
			next := match.next[i+1].(*ContentMatch)
			if typ.IsText() || typ.HasRequiredAttrs() {
				continue
			}
			if seen[next] {
				continue
			}
			seen[next] = true
			result := search(next, append(append([]*NodeType{}, types...), typ), depth+1)
			if result != nil {
				return result
			}
		}
		return nil
	}
	return search(cm, nil, 0)
}

// exprNode is the parsed representation of a content expression.
type exprNode struct {
	kind  string // "name", "seq", "choice", "star", "opt"
	value *NodeType
	exprs []*exprNode
	expr  *exprNode
}

type contentTokenizer struct {
	source string
	tokens []string
	pos    int
}

func tokenizeContentExpr(str string) *contentTokenizer {
	var tokens []string
	i := 0
	for i < len(str) {
		c := str[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			i++
		case strings.ContainsRune("()|+*?{},", rune(c)):
			tokens = append(tokens, string(c))
			i++
		default:
			j := i
			for j < len(str) && !strings.ContainsRune(" \t\n()|+*?{},", rune(str[j])) {
				j++
			}
			tokens = append(tokens, str[i:j])
			i = j
		}
	}
	return &contentTokenizer{source: str, tokens: tokens}
}

func (s *contentTokenizer) next() string {
	if s.pos >= len(s.tokens) {
		return ""
	}
	return s.tokens[s.pos]
}

func (s *contentTokenizer) eat(tok string) bool {
	if s.next() == tok {
		s.pos++
		return true
	}
	return false
}

func (s *contentTokenizer) err(msg string) (*exprNode, error) {
	return nil, newRangeError("%s (in content expression '%s')", msg, s.source)
}

// ParseContentMatch compiles a content expression against the given set of
// node types (used to resolve names and groups) into the initial state of
// its DFA.
func ParseContentMatch(expr string, nodeTypes []*NodeType) (*ContentMatch, error) {
	stream := tokenizeContentExpr(expr)
	if len(stream.tokens) == 0 {
		return EmptyContentMatch, nil
	}
	tree, err := parseExpr(stream, nodeTypes)
	if err != nil {
		return nil, err
	}
	if stream.pos != len(stream.tokens) {
		return nil, newRangeError("unexpected trailing content in expression '%s'", expr)
	}
	return compileExpr(tree), nil
}

func parseExpr(stream *contentTokenizer, nodeTypes []*NodeType) (*exprNode, error) {
	first, err := parseExprSeq(stream, nodeTypes)
	if err != nil {
		return nil, err
	}
	exprs := []*exprNode{first}
	for stream.eat("|") {
		next, err := parseExprSeq(stream, nodeTypes)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, next)
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return &exprNode{kind: "choice", exprs: exprs}, nil
}

func parseExprSeq(stream *contentTokenizer, nodeTypes []*NodeType) (*exprNode, error) {
	first, err := parseExprSubscript(stream, nodeTypes)
	if err != nil {
		return nil, err
	}
	exprs := []*exprNode{first}
	for stream.next() != "" && stream.next() != ")" && stream.next() != "|" {
		next, err := parseExprSubscript(stream, nodeTypes)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, next)
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return &exprNode{kind: "seq", exprs: exprs}, nil
}

func parseExprSubscript(stream *contentTokenizer, nodeTypes []*NodeType) (*exprNode, error) {
	expr, err := parseExprAtom(stream, nodeTypes)
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case stream.eat("+"):
			expr = &exprNode{kind: "seq", exprs: []*exprNode{expr, {kind: "star", expr: expr}}}
		case stream.eat("*"):
			expr = &exprNode{kind: "star", expr: expr}
		case stream.eat("?"):
			expr = &exprNode{kind: "opt", expr: expr}
		case stream.eat("{"):
			expr, err = parseExprRange(stream, expr)
			if err != nil {
				return nil, err
			}
		default:
			return expr, nil
		}
	}
}

func parseNum(stream *contentTokenizer) (int, error) {
	n, err := strconv.Atoi(stream.next())
	if err != nil {
		_, e := stream.err("expected a number, got '" + stream.next() + "'")
		return 0, e
	}
	stream.pos++
	return n, nil
}

func parseExprRange(stream *contentTokenizer, expr *exprNode) (*exprNode, error) {
	min, err := parseNum(stream)
	if err != nil {
		return nil, err
	}
	max := min
	if stream.eat(",") {
		if stream.next() != "}" {
			max, err = parseNum(stream)
			if err != nil {
				return nil, err
			}
		} else {
			max = -1
		}
	}
	if !stream.eat("}") {
		return stream.err("unclosed braced range")
	}
	exprs := make([]*exprNode, 0, min+1)
	for i := 0; i < min; i++ {
		exprs = append(exprs, expr)
	}
	if max == -1 {
		exprs = append(exprs, &exprNode{kind: "star", expr: expr})
	} else {
		for i := min; i < max; i++ {
			exprs = append(exprs, &exprNode{kind: "opt", expr: expr})
		}
	}
	if len(exprs) == 0 {
		return &exprNode{kind: "seq"}, nil
	}
	if len(exprs) == 1 {
		return exprs[0], nil
	}
	return &exprNode{kind: "seq", exprs: exprs}, nil
}

func resolveName(stream *contentTokenizer, nodeTypes []*NodeType, name string) ([]*NodeType, error) {
	for _, typ := range nodeTypes {
		if typ.Name == name {
			return []*NodeType{typ}, nil
		}
	}
	var result []*NodeType
	for _, typ := range nodeTypes {
		if hasGroup(strings.Join(typ.Groups, " "), name) {
			result = append(result, typ)
		}
	}
	if len(result) == 0 {
		return nil, newSyntaxError("no node type or group '%s' found (in content expression '%s')", name, stream.source)
	}
	return result, nil
}

func parseExprAtom(stream *contentTokenizer, nodeTypes []*NodeType) (*exprNode, error) {
	if stream.eat("(") {
		expr, err := parseExpr(stream, nodeTypes)
		if err != nil {
			return nil, err
		}
		if !stream.eat(")") {
			return stream.err("missing closing paren")
		}
		return expr, nil
	}
	next := stream.next()
	if next == "" || strings.ContainsAny(next, "()|+*?{},") {
		return stream.err("unexpected token '" + next + "'")
	}
	types, err := resolveName(stream, nodeTypes, next)
	if err != nil {
		return nil, err
	}
	stream.pos++
	if len(types) == 1 {
		return &exprNode{kind: "name", value: types[0]}, nil
	}
	exprs := make([]*exprNode, len(types))
	for i, t := range types {
		exprs[i] = &exprNode{kind: "name", value: t}
	}
	return &exprNode{kind: "choice", exprs: exprs}, nil
}

// nfaEdge is a transition in the Thompson-constructed NFA. A nil term is an
// epsilon transition.
type nfaEdge struct {
	term *NodeType
	to   int
}

type nfaBuilder struct {
	states [][]nfaEdge
}

func (b *nfaBuilder) newState() int {
	b.states = append(b.states, nil)
	return len(b.states) - 1
}

func (b *nfaBuilder) addEdge(from int, term *NodeType, to int) {
	b.states[from] = append(b.states[from], nfaEdge{term: term, to: to})
}

// compile returns the (start, accept) state pair for expr. The accept state
// never has outgoing edges of its own; callers wire it up via epsilon edges.
func (b *nfaBuilder) compile(expr *exprNode) (int, int) {
	switch expr.kind {
	case "name":
		s, e := b.newState(), b.newState()
		b.addEdge(s, expr.value, e)
		return s, e
	case "seq":
		if len(expr.exprs) == 0 {
			s := b.newState()
			return s, s
		}
		s, e := b.compile(expr.exprs[0])
		for _, sub := range expr.exprs[1:] {
			si, ei := b.compile(sub)
			b.addEdge(e, nil, si)
			e = ei
		}
		return s, e
	case "choice":
		s, e := b.newState(), b.newState()
		for _, sub := range expr.exprs {
			si, ei := b.compile(sub)
			b.addEdge(s, nil, si)
			b.addEdge(ei, nil, e)
		}
		return s, e
	case "star":
		s, e := b.newState(), b.newState()
		b.addEdge(s, nil, e)
		si, ei := b.compile(expr.expr)
		b.addEdge(s, nil, si)
		b.addEdge(ei, nil, s)
		return s, e
	case "opt":
		s, e := b.newState(), b.newState()
		b.addEdge(s, nil, e)
		si, ei := b.compile(expr.expr)
		b.addEdge(s, nil, si)
		b.addEdge(ei, nil, e)
		return s, e
	}
	s := b.newState()
	return s, s
}

func epsilonClosure(states [][]nfaEdge, from []int) []int {
	seen := map[int]bool{}
	var stack []int
	for _, s := range from {
		if !seen[s] {
			seen[s] = true
			stack = append(stack, s)
		}
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, edge := range states[n] {
			if edge.term == nil && !seen[edge.to] {
				seen[edge.to] = true
				stack = append(stack, edge.to)
			}
		}
	}
	result := make([]int, 0, len(seen))
	for s := range seen {
		result = append(result, s)
	}
	sort.Ints(result)
	return result
}

func closureKey(states []int) string {
	var b strings.Builder
	for i, s := range states {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(s))
	}
	return b.String()
}

// compileExpr performs subset construction, turning the Thompson NFA for expr
// into a DFA of interned ContentMatch states.
func compileExpr(expr *exprNode) *ContentMatch {
	b := &nfaBuilder{}
	start, accept := b.compile(expr)
	b.addEdge(accept, nil, b.newState())
	finalState := len(b.states) - 1

	dfaStates := map[string]*ContentMatch{}
	type pending struct {
		key    string
		states []int
	}

	startStates := epsilonClosure(b.states, []int{start})
	startKey := closureKey(startStates)
	startMatch := &ContentMatch{ValidEnd: containsInt(startStates, finalState)}
	dfaStates[startKey] = startMatch

	queue := []pending{{startKey, startStates}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		match := dfaStates[cur.key]

		byType := map[*NodeType][]int{}
		var order []*NodeType
		for _, s := range cur.states {
			for _, edge := range b.states[s] {
				if edge.term != nil {
					if _, ok := byType[edge.term]; !ok {
						order = append(order, edge.term)
					}
					byType[edge.term] = append(byType[edge.term], edge.to)
				}
			}
		}

		for _, typ := range order {
			targets := epsilonClosure(b.states, byType[typ])
			key := closureKey(targets)
			next, ok := dfaStates[key]
			if !ok {
				next = &ContentMatch{ValidEnd: containsInt(targets, finalState)}
				dfaStates[key] = next
				queue = append(queue, pending{key, targets})
			}
			match.next = append(match.next, typ, next)
		}
	}

	return startMatch
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
