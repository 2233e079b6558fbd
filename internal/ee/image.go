package ee

// Image is a deferred server-side image. Methods build new graph nodes and
// never touch pixels locally.
type Image struct {
	n *node
}

func (img Image) node() *node { return img.n }

func imageFromNode(n *node) Image { return Image{n: n} }

// ConstantImage returns an image where every band pixel equals value.
func ConstantImage(value float64) Image {
	return imageFromNode(invocationNode("Image.constant", map[string]*node{
		"value": constantNode(value),
	}))
}

// Select picks bands by name.
func (img Image) Select(bands ...string) Image {
	return imageFromNode(invocationNode("Image.select", map[string]*node{
		"input":         img.n,
		"bandSelectors": constantNode(stringList(bands)),
	}))
}

// SelectRename selects a single band by index and renames it.
func (img Image) SelectRename(index int, newName string) Image {
	return imageFromNode(invocationNode("Image.select", map[string]*node{
		"input":         img.n,
		"bandSelectors": constantNode([]interface{}{index}),
		"newNames":      constantNode([]interface{}{newName}),
	}))
}

// Rename gives the image bands new names positionally.
func (img Image) Rename(names ...string) Image {
	return imageFromNode(invocationNode("Image.rename", map[string]*node{
		"input": img.n,
		"names": constantNode(stringList(names)),
	}))
}

func (img Image) binary(function string, other Image) Image {
	return imageFromNode(invocationNode(function, map[string]*node{
		"image1": img.n,
		"image2": other.n,
	}))
}

// BitwiseAnd masks the image against a per-pixel constant pattern.
func (img Image) BitwiseAnd(pattern int) Image {
	return img.binary("Image.bitwiseAnd", ConstantImage(float64(pattern)))
}

// RightShift shifts every pixel right by the given number of bits.
func (img Image) RightShift(bits int) Image {
	return img.binary("Image.rightShift", ConstantImage(float64(bits)))
}

// Eq compares every pixel against value, yielding a 0/1 image.
func (img Image) Eq(value float64) Image {
	return img.binary("Image.eq", ConstantImage(value))
}

// Subtract subtracts a server-side number from every pixel.
func (img Image) Subtract(n Number) Image {
	return img.binary("Image.subtract", numberImage(n))
}

// Divide divides every pixel by a server-side number.
func (img Image) Divide(n Number) Image {
	return img.binary("Image.divide", numberImage(n))
}

// Multiply scales every pixel by a constant factor.
func (img Image) Multiply(factor float64) Image {
	return img.binary("Image.multiply", ConstantImage(factor))
}

// numberImage lifts a Number into a constant image so image⋅number
// arithmetic can reuse the image binary operators.
func numberImage(n Number) Image {
	return imageFromNode(invocationNode("Image.constant", map[string]*node{
		"value": n.n,
	}))
}

// UpdateMask keeps only pixels where mask is non-zero.
func (img Image) UpdateMask(mask Image) Image {
	return imageFromNode(invocationNode("Image.updateMask", map[string]*node{
		"image": img.n,
		"mask":  mask.n,
	}))
}

// Mask returns the image's mask band.
func (img Image) Mask() Image {
	return imageFromNode(invocationNode("Image.mask", map[string]*node{
		"image": img.n,
	}))
}

// Clip cuts the image to a geometry; pixels outside become masked.
func (img Image) Clip(g Geometry) Image {
	return imageFromNode(invocationNode("Image.clip", map[string]*node{
		"input":    img.n,
		"geometry": g.n,
	}))
}

// Uint8 casts bands to unsigned 8-bit, clamping out-of-range values server
// side.
func (img Image) Uint8() Image {
	return imageFromNode(invocationNode("Image.uint8", map[string]*node{
		"image": img.n,
	}))
}

// ClipToBoundsAndScale clips to the geometry bounds and pins the nominal
// scale in meters per pixel.
func (img Image) ClipToBoundsAndScale(g Geometry, scaleMeters float64) Image {
	return imageFromNode(invocationNode("Image.clipToBoundsAndScale", map[string]*node{
		"input":    img.n,
		"geometry": g.n,
		"scale":    constantNode(scaleMeters),
	}))
}

// Reproject resamples the image into crs at the given scale.
func (img Image) Reproject(crs string, scaleMeters float64) Image {
	return imageFromNode(invocationNode("Image.reproject", map[string]*node{
		"image": img.n,
		"crs":   crsNode(crs),
		"scale": constantNode(scaleMeters),
	}))
}

// ReduceRegion applies a reducer over a region and returns the resulting
// dictionary. Scale is in meters per pixel.
func (img Image) ReduceRegion(reducer Reducer, geom Geometry, scale float64, maxPixels float64) Dictionary {
	return Dictionary{n: invocationNode("Image.reduceRegion", map[string]*node{
		"image":     img.n,
		"reducer":   reducer.n,
		"geometry":  geom.n,
		"scale":     constantNode(scale),
		"maxPixels": constantNode(maxPixels),
	})}
}

// Reducer is a server-side aggregation (min, max, mean, ...).
type Reducer struct {
	n *node
}

func (r Reducer) node() *node { return r.n }

func MinReducer() Reducer {
	return Reducer{n: invocationNode("Reducer.min", map[string]*node{})}
}

func MaxReducer() Reducer {
	return Reducer{n: invocationNode("Reducer.max", map[string]*node{})}
}

// Dictionary is a deferred server-side dictionary, as returned by
// reduceRegion.
type Dictionary struct {
	n *node
}

func (d Dictionary) node() *node { return d.n }

// GetNumber looks a key up as a number.
func (d Dictionary) GetNumber(key string) Number {
	return Number{n: invocationNode("Dictionary.get", map[string]*node{
		"dictionary": d.n,
		"key":        constantNode(key),
	})}
}

func stringList(items []string) []interface{} {
	out := make([]interface{}, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}
