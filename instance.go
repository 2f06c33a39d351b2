package mplwgpu

import (
	"sort"
	"unsafe"
)

// Primitive type tags. Params[0] of every Instance must hold one of these
// values; the renderer's sort/partition logic depends on the set being
// closed. Marker tags are PrimMarkerBase plus the MarkerKind index.
const (
	PrimRect          float32 = 0
	PrimCircle        float32 = 1
	PrimLine          float32 = 2
	PrimMarkerBase    float32 = 10
	PrimTriangleLit   float32 = 30
	PrimTriangleUnlit float32 = 31
)

// MarkerKind selects the shape of a scatter marker.
type MarkerKind int

// Marker shapes resolved by the fragment stage.
const (
	MarkerPlus MarkerKind = iota
	MarkerCross
	MarkerDiamond
)

// Tag returns the primitive type tag for a marker kind.
func (k MarkerKind) Tag() float32 {
	return PrimMarkerBase + float32(k)
}

// Instance is the fixed-layout per-primitive record uploaded in bulk for
// instanced drawing. The slot meaning depends on the primitive tag in
// Params[0]:
//
//	rect:     AnchorA = origin.xyz + corner radius, AnchorB = size.xy + stroke width
//	circle:   AnchorA = center.xyz + radius x,      AnchorB = radius y + stroke width
//	marker:   AnchorA = center.xyz + radius
//	line:     AnchorA = start.xyz + half thickness, AnchorB = end.xyz,
//	          Params = [2, dash length, gap length, dash offset]
//	triangle: AnchorA/AnchorB/AnchorC = the three vertices
//
// Color is straight RGBA in the 0-1 range. The layout must match the
// instance attributes declared in primitives.wgsl.
type Instance struct {
	AnchorA [4]float32
	AnchorB [4]float32
	Color   [4]float32
	Params  [4]float32
	AnchorC [4]float32
}

// InstanceStride is the byte size of one Instance record.
const InstanceStride = int(unsafe.Sizeof(Instance{}))

// Tag returns the primitive type tag.
func (in *Instance) Tag() float32 {
	return in.Params[0]
}

// IsFace reports whether the instance is an opaque, depth-writing face
// primitive (solid surface panels, background walls). Faces are drawn
// before all alpha-blended line/marker primitives.
func (in *Instance) IsFace() bool {
	return in.Params[0] == PrimTriangleLit || in.Params[0] == PrimTriangleUnlit
}

// SortFacesFirst stable-sorts the batch so that all face instances come
// before all non-face instances. Stability matters: draw order determines
// the final pixel color for overlapping translucent geometry, so two
// instances of the same class must keep their insertion order.
func SortFacesFirst(batch []Instance) {
	sort.SliceStable(batch, func(i, j int) bool {
		return batch[i].IsFace() && !batch[j].IsFace()
	})
}

// FacePartition returns the number of leading face instances in a batch
// already sorted by SortFacesFirst. The ranges [0, n) and [n, len) are
// the faces and strokes draw ranges respectively.
func FacePartition(batch []Instance) int {
	return sort.Search(len(batch), func(i int) bool {
		return !batch[i].IsFace()
	})
}

// InstanceBytes reinterprets the batch as raw bytes for GPU upload.
// Instance contains only float32 fields, so the in-memory layout matches
// the little-endian layout the shader expects on all supported targets.
func InstanceBytes(batch []Instance) []byte {
	if len(batch) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&batch[0])), len(batch)*InstanceStride)
}
