package ee

import (
	"fmt"
	"sync/atomic"
	"time"
)

// ImageCollection is a deferred server-side collection of images.
type ImageCollection struct {
	n *node
}

func (ic ImageCollection) node() *node { return ic.n }

func collectionFromNode(n *node) ImageCollection { return ImageCollection{n: n} }

// LoadCollection references a catalog dataset by id, e.g.
// "MODIS/061/MOD09A1".
func LoadCollection(id string) ImageCollection {
	return collectionFromNode(invocationNode("ImageCollection.load", map[string]*node{
		"id": constantNode(id),
	}))
}

// FilterDate keeps images acquired in [start, end).
func (ic ImageCollection) FilterDate(start, end time.Time) ImageCollection {
	return collectionFromNode(invocationNode("Collection.filter", map[string]*node{
		"collection": ic.n,
		"filter":     dateRangeFilter(start, end),
	}))
}

func dateRangeFilter(start, end time.Time) *node {
	return invocationNode("Filter.dateRangeContains", map[string]*node{
		"leftValue": invocationNode("DateRange", map[string]*node{
			"start": constantNode(start.UTC().Format("2006-01-02T15:04:05Z")),
			"end":   constantNode(end.UTC().Format("2006-01-02T15:04:05Z")),
		}),
		"rightField": constantNode("system:time_start"),
	})
}

// FilterBounds keeps images whose footprint intersects the geometry.
func (ic ImageCollection) FilterBounds(g Geometry) ImageCollection {
	return collectionFromNode(invocationNode("Collection.filter", map[string]*node{
		"collection": ic.n,
		"filter": invocationNode("Filter.intersects", map[string]*node{
			"leftField":  constantNode(".all"),
			"rightValue": g.n,
		}),
	}))
}

// Select narrows every image in the collection to the given bands.
func (ic ImageCollection) Select(bands ...string) ImageCollection {
	return ic.Map(func(img Image) Image {
		return img.Select(bands...)
	})
}

// mapVarCount disambiguates nested Map lambdas. A collision would make an
// inner argument reference capture the enclosing definition.
var mapVarCount atomic.Int64

// Map applies fn to every image server side. fn runs exactly once, locally,
// against a placeholder image; the graph it returns becomes the body of a
// server-side function definition.
func (ic ImageCollection) Map(fn func(Image) Image) ImageCollection {
	arg := fmt.Sprintf("_MAPPING_VAR_%d", mapVarCount.Add(1)-1)
	body := fn(imageFromNode(argumentRefNode(arg)))
	return collectionFromNode(invocationNode("Collection.map", map[string]*node{
		"collection":    ic.n,
		"baseAlgorithm": functionDefNode([]string{arg}, body.n),
	}))
}

// Min composites the collection by per-pixel minimum. Band names are
// preserved, unlike a raw Collection.reduce which suffixes them.
func (ic ImageCollection) Min() Image {
	return ic.composite("reduce.min")
}

// Max composites the collection by per-pixel maximum.
func (ic ImageCollection) Max() Image {
	return ic.composite("reduce.max")
}

// Median composites the collection by per-pixel median.
func (ic ImageCollection) Median() Image {
	return ic.composite("reduce.median")
}

// Mosaic composites the collection by latest-on-top mosaicking.
func (ic ImageCollection) Mosaic() Image {
	return ic.composite("ImageCollection.mosaic")
}

func (ic ImageCollection) composite(function string) Image {
	return imageFromNode(invocationNode(function, map[string]*node{
		"collection": ic.n,
	}))
}

// Combine merges bands from other into this collection image-by-image.
// With overwrite set, bands sharing a name take other's pixels, which is how
// normalized bands replace their raw originals.
func (ic ImageCollection) Combine(other ImageCollection, overwrite bool) ImageCollection {
	return collectionFromNode(invocationNode("ImageCollection.combine", map[string]*node{
		"primary":   ic.n,
		"secondary": other.n,
		"overwrite": constantNode(overwrite),
	}))
}
