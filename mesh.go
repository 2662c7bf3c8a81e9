package orbview

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexStride is the packed byte size of one Vertex (3+3+4 float32s).
const VertexStride = 40

// ErrDegenerateMesh is returned when the requested tessellation cannot
// form triangles.
var ErrDegenerateMesh = errors.New("degenerate mesh")

// Vertex is one point of a triangle mesh. Immutable once generated.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Color    mgl32.Vec4
}

// Mesh is a triangle list: vertices plus 32-bit indices, three per triangle.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// Validate checks the triangle-list invariants: index count divisible by
// three and every index inside the vertex range.
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(m.Indices))
	}
	for _, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return fmt.Errorf("index %d out of range for %d vertices", idx, len(m.Vertices))
		}
	}
	return nil
}

// VertexBytes packs the vertices contiguously for GPU upload.
func (m *Mesh) VertexBytes() []byte {
	out := make([]byte, 0, len(m.Vertices)*VertexStride)
	put := func(f float32) {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
	}
	for _, v := range m.Vertices {
		put(v.Position[0])
		put(v.Position[1])
		put(v.Position[2])
		put(v.Normal[0])
		put(v.Normal[1])
		put(v.Normal[2])
		put(v.Color[0])
		put(v.Color[1])
		put(v.Color[2])
		put(v.Color[3])
	}
	return out
}

// IndexBytes packs the indices as little-endian uint32s.
func (m *Mesh) IndexBytes() []byte {
	out := make([]byte, 0, len(m.Indices)*4)
	for _, idx := range m.Indices {
		out = binary.LittleEndian.AppendUint32(out, idx)
	}
	return out
}

// BuildSphere tessellates a sphere of the given radius centered at the
// origin. Meridians are longitudinal lines pole to pole, parallels are
// latitudinal rings. A "brush" vector sweeps one meridian from the top
// pole in steps of pi/parallels, and the whole meridian is then rotated
// into its angular slot about the vertical axis. Both poles are shared by
// every meridian, so the result has 2 + meridians*(parallels-1) vertices
// and 6*meridians*(parallels-1) indices.
//
// Triangles come out counter-clockwise and are flipped to clockwise at the
// end to match the renderer's front-face convention.
func BuildSphere(meridians, parallels int, radius float32, color mgl32.Vec4) (*Mesh, error) {
	if meridians < 3 || parallels < 2 {
		return nil, fmt.Errorf("%w: sphere needs >= 3 meridians and >= 2 parallels, got %d/%d",
			ErrDegenerateMesh, meridians, parallels)
	}

	mesh := &Mesh{
		Vertices: make([]Vertex, 0, 2+meridians*(parallels-1)),
		Indices:  make([]uint32, 0, 6*meridians*(parallels-1)),
	}

	mAngle := 2 * math.Pi / float32(meridians)
	pAngle := math.Pi / float32(parallels)

	top := mgl32.Vec3{0, radius, 0}

	// Pole vertices first: top starts every meridian, bottom ends it.
	mesh.Vertices = append(mesh.Vertices,
		Vertex{Position: top, Normal: top.Normalize(), Color: color},
		Vertex{Position: top.Mul(-1), Normal: top.Mul(-1).Normalize(), Color: color},
	)

	stepDown := mgl32.Rotate3DX(pAngle)
	for i := 0; i < meridians; i++ {
		slot := mgl32.Rotate3DY(mAngle * float32(i))
		brush := top
		for j := 0; j < parallels-1; j++ {
			brush = stepDown.Mul3x1(brush)
			pos := slot.Mul3x1(brush)
			mesh.Vertices = append(mesh.Vertices, Vertex{
				Position: pos,
				Normal:   pos.Normalize(),
				Color:    color,
			})
		}
	}

	// Grid between each pair of adjacent meridians. First ring vertex of
	// meridian i sits at 2 + i*(parallels-1).
	p := uint32(parallels)
	ring := p - 1
	for i := uint32(0); i < uint32(meridians)-1; i++ {
		// One triangle at the top: both meridians start at the pole.
		mesh.Indices = append(mesh.Indices, 0, (i+1)*ring+2, i*ring+2)

		// A quad per pair of adjacent ring segments.
		for j := uint32(0); j < p-2; j++ {
			mesh.Indices = append(mesh.Indices,
				i*ring+2+j, (i+1)*ring+2+j, (i+1)*ring+2+j+1,
				i*ring+2+j, (i+1)*ring+2+j+1, i*ring+2+j+1,
			)
		}

		// One triangle at the bottom pole.
		mesh.Indices = append(mesh.Indices, 1, i*ring+p-1, (i+1)*ring+p-1)
	}

	// The seam: the last meridian pairs back up with the first.
	i := uint32(meridians) - 1
	for j := uint32(0); j < p-2; j++ {
		mesh.Indices = append(mesh.Indices,
			i*ring+2+j, 2+j, 2+j+1,
			i*ring+2+j, 2+j+1, i*ring+2+j+1,
		)
	}
	mesh.Indices = append(mesh.Indices, 0, 2, i*ring+2)
	mesh.Indices = append(mesh.Indices, 1, i*ring+p-1, p-1)

	// Flip winding: swap first and third index of every triangle.
	for t := 0; t < len(mesh.Indices)/3; t++ {
		mesh.Indices[t*3], mesh.Indices[t*3+2] = mesh.Indices[t*3+2], mesh.Indices[t*3]
	}

	return mesh, nil
}

// rectangleColor is the fixed color of generated rectangles; they only
// ever serve as the ground plane.
var rectangleColor = mgl32.Vec4{0.8, 0.1, 0.3, 1}

// BuildRectangle generates a flat quad of the given length and width.
// lengthDir is the direction the length-sided edges run along and
// planeNormal is the surface normal; corners are placed at
// (+-length/2, 0, +-width/2) in the local space spanned by the two and
// transformed out through the inverse of that basis.
func BuildRectangle(length, width float32, planeNormal, lengthDir mgl32.Vec3) *Mesh {
	xC := length * 0.5
	zC := width * 0.5

	space := spaceMatrix(lengthDir, planeNormal, true)

	corners := []mgl32.Vec3{
		{-xC, 0, -zC},
		{-xC, 0, zC},
		{xC, 0, zC},
		{xC, 0, -zC},
	}

	mesh := &Mesh{
		Vertices: make([]Vertex, 0, 4),
		Indices:  []uint32{0, 1, 2, 0, 2, 3},
	}
	for _, c := range corners {
		mesh.Vertices = append(mesh.Vertices, Vertex{
			Position: mgl32.TransformCoordinate(c, space),
			Normal:   planeNormal,
			Color:    rectangleColor,
		})
	}
	return mesh
}

// spaceMatrix builds the transform out of a cartesian space whose x and y
// axes are xDir and yDir; preferZ picks the sign of the third axis.
func spaceMatrix(xDir, yDir mgl32.Vec3, preferZ bool) mgl32.Mat4 {
	var zDir mgl32.Vec3
	if preferZ {
		zDir = xDir.Cross(yDir)
	} else {
		zDir = yDir.Cross(xDir)
	}
	basis := mgl32.Mat4FromRows(
		xDir.Vec4(0),
		yDir.Vec4(0),
		zDir.Vec4(0),
		mgl32.Vec4{0, 0, 0, 1},
	)
	// Row-vector convention inherited from the index data this feeds:
	// transpose turns the inverted row basis into a column transform.
	return basis.Inv().Transpose()
}
