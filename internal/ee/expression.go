package ee

import (
	"encoding/json"
	"fmt"
	"sort"
)

// The platform evaluates expressions server side. An expression is a DAG of
// value nodes; the client only assembles the graph and serializes it into
// the v1 wire format ({"result": "0", "values": {...}}). Nodes are immutable
// once created, so the graph is acyclic by construction.

type nodeKind int

const (
	kindConstant nodeKind = iota
	kindInvocation
	kindFunctionDef
	kindArgumentRef
)

type node struct {
	kind nodeKind

	// kindConstant
	constant interface{}

	// kindInvocation
	function string
	args     map[string]*node

	// kindFunctionDef
	body     *node
	argNames []string

	// kindArgumentRef
	argRef string
}

func constantNode(v interface{}) *node {
	return &node{kind: kindConstant, constant: v}
}

func invocationNode(function string, args map[string]*node) *node {
	return &node{kind: kindInvocation, function: function, args: args}
}

func functionDefNode(argNames []string, body *node) *node {
	return &node{kind: kindFunctionDef, argNames: argNames, body: body}
}

func argumentRefNode(name string) *node {
	return &node{kind: kindArgumentRef, argRef: name}
}

// Expression is a serializable handle on a graph root.
type Expression struct {
	root *node
}

// NewExpression wraps a typed value (Image, ImageCollection, ...) for
// serialization. The zero Expression is invalid.
func NewExpression(v Value) Expression {
	return Expression{root: v.node()}
}

// Value is implemented by every typed wrapper over a graph node.
type Value interface {
	node() *node
}

// MarshalJSON encodes the graph in the platform wire format. Nodes reached
// more than once are emitted a single time and referenced by name, so the
// serialized size stays proportional to the number of distinct operations.
func (e Expression) MarshalJSON() ([]byte, error) {
	if e.root == nil {
		return nil, fmt.Errorf("cannot serialize empty expression")
	}
	enc := newGraphEncoder()
	enc.countRefs(e.root)
	result := enc.emit(e.root)

	// The root must always live in the values table, even when nothing else
	// references it.
	rootName, ok := result["valueReference"].(string)
	if !ok {
		rootName = enc.nextName()
		enc.values[rootName] = result
	}

	return json.Marshal(map[string]interface{}{
		"result": rootName,
		"values": enc.values,
	})
}

type graphEncoder struct {
	refs    map[*node]int
	names   map[*node]string
	values  map[string]interface{}
	counter int
}

func newGraphEncoder() *graphEncoder {
	return &graphEncoder{
		refs:   make(map[*node]int),
		names:  make(map[*node]string),
		values: make(map[string]interface{}),
	}
}

func (g *graphEncoder) nextName() string {
	name := fmt.Sprintf("%d", g.counter)
	g.counter++
	return name
}

// countRefs walks the graph once so emit knows which subtrees are shared.
func (g *graphEncoder) countRefs(n *node) {
	g.refs[n]++
	if g.refs[n] > 1 {
		return
	}
	switch n.kind {
	case kindInvocation:
		for _, key := range sortedArgKeys(n.args) {
			g.countRefs(n.args[key])
		}
	case kindFunctionDef:
		g.countRefs(n.body)
	}
}

// emit returns the wire form of n. Shared nodes are hoisted into the values
// table on first emission and referenced afterwards; everything else is
// inlined where it is used.
func (g *graphEncoder) emit(n *node) map[string]interface{} {
	if name, done := g.names[n]; done {
		return map[string]interface{}{"valueReference": name}
	}

	var encoded map[string]interface{}
	switch n.kind {
	case kindConstant:
		encoded = map[string]interface{}{"constantValue": n.constant}
	case kindArgumentRef:
		encoded = map[string]interface{}{"argumentReference": n.argRef}
	case kindFunctionDef:
		name := g.nextName()
		g.names[n] = name
		g.values[name] = map[string]interface{}{
			"functionDefinitionValue": map[string]interface{}{
				"argumentNames": n.argNames,
				"body":          g.emitBody(n.body),
			},
		}
		return map[string]interface{}{"valueReference": name}
	case kindInvocation:
		args := make(map[string]interface{}, len(n.args))
		for _, key := range sortedArgKeys(n.args) {
			args[key] = g.emit(n.args[key])
		}
		encoded = map[string]interface{}{
			"functionInvocationValue": map[string]interface{}{
				"functionName": n.function,
				"arguments":    args,
			},
		}
	default:
		panic(fmt.Sprintf("unknown node kind %d", n.kind))
	}

	if g.refs[n] > 1 {
		name := g.nextName()
		g.names[n] = name
		g.values[name] = encoded
		return map[string]interface{}{"valueReference": name}
	}
	return encoded
}

// emitBody hoists a function body into the values table and returns its
// reference name, as the wire format requires for definition bodies.
func (g *graphEncoder) emitBody(body *node) string {
	emitted := g.emit(body)
	if name, ok := emitted["valueReference"].(string); ok {
		return name
	}
	name := g.nextName()
	g.values[name] = emitted
	return name
}

func sortedArgKeys(args map[string]*node) []string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
