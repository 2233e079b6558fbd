package ee

// Number is a deferred server-side scalar, typically the result of a
// reduceRegion lookup. Arithmetic on it stays in the graph.
type Number struct {
	n *node
}

func (n Number) node() *node { return n.n }

// ConstantNumber wraps a literal.
func ConstantNumber(v float64) Number {
	return Number{n: constantNode(v)}
}

// Subtract returns n - other.
func (n Number) Subtract(other Number) Number {
	return Number{n: invocationNode("Number.subtract", map[string]*node{
		"left":  n.n,
		"right": other.n,
	})}
}

// Divide returns n / other.
func (n Number) Divide(other Number) Number {
	return Number{n: invocationNode("Number.divide", map[string]*node{
		"left":  n.n,
		"right": other.n,
	})}
}
