package ee

import (
	"github.com/paulmach/orb"
)

// Geometry is a deferred server-side geometry in EPSG:4326.
type Geometry struct {
	n *node
}

func (g Geometry) node() *node { return g.n }

// PolygonGeometry builds a planar (non-geodesic) polygon value from orb
// rings. Rings are sent as nested [lon lat] coordinate lists the way the
// platform's polygon constructor expects them.
func PolygonGeometry(p orb.Polygon) Geometry {
	rings := make([]interface{}, 0, len(p))
	for _, ring := range p {
		coords := make([]interface{}, 0, len(ring))
		for _, pt := range ring {
			coords = append(coords, []interface{}{pt[0], pt[1]})
		}
		rings = append(rings, coords)
	}
	return Geometry{n: invocationNode("GeometryConstructors.Polygon", map[string]*node{
		"coordinates": constantNode(rings),
		"crs":         crsNode("EPSG:4326"),
		"geodesic":    constantNode(false),
		"evenOdd":     constantNode(true),
	})}
}

func crsNode(code string) *node {
	return invocationNode("Projection", map[string]*node{
		"crs": constantNode(code),
	})
}
