package terrain

import "github.com/go-gl/mathgl/mgl32"

// Vertex stage constants, mirrored in terrain.vert.
const (
	// DisplacementScale converts encoded elevation units to mesh units.
	DisplacementScale = 0.03
	// NormalZWeight is the z component before normalization; larger values
	// flatten the apparent slope.
	NormalZWeight = 4.0
	// DefaultTexOffset is the finite-difference step in UV space, one texel
	// of a 512 px tile.
	DefaultTexOffset = 1.0 / 512.0
)

// Displace runs the vertex stage for one vertex: it lifts pos along Z by the
// heightfield elevation at uv and estimates a normal from central differences
// eps apart in UV space.
func Displace(hf *HeightField, pos [3]float32, uv [2]float32, eps float32) Displaced {
	u, v := uv[0], uv[1]
	elevation := hf.Elevation(u, v)

	pos[2] += elevation * DisplacementScale

	xDiff := hf.Elevation(u+eps, v) - hf.Elevation(u-eps, v)
	yDiff := hf.Elevation(u, v+eps) - hf.Elevation(u, v-eps)
	normal := mgl32.Vec3{xDiff, yDiff, NormalZWeight}.Normalize()

	return Displaced{
		Position:  pos,
		Normal:    normal,
		Elevation: elevation,
	}
}

// DisplaceMesh runs Displace over every vertex of m. The result only depends
// on hf and the mesh topology, so callers keep it until either changes.
func DisplaceMesh(m *Mesh, hf *HeightField, eps float32) []Displaced {
	out := make([]Displaced, len(m.Vertices))
	for i, vert := range m.Vertices {
		out[i] = Displace(hf, vert.Position, vert.UV, eps)
	}
	return out
}
