package terrain

// Grid defaults.
const (
	DefaultDivisions = 512
	DefaultSize      = 200.0
)

// BuildGrid creates a flat size×size grid of divs×divs quads centered at the
// origin in the XY plane, facing +Z. Vertex rows run from +Y (v = 1) down to
// -Y (v = 0); UVs span [0, 1] in both directions.
func BuildGrid(size float32, divs int) *Mesh {
	if divs < 1 {
		divs = 1
	}

	stride := divs + 1
	half := size / 2
	seg := size / float32(divs)

	vertices := make([]Vertex, 0, stride*stride)
	for iy := 0; iy <= divs; iy++ {
		y := float32(iy)*seg - half
		for ix := 0; ix <= divs; ix++ {
			x := float32(ix)*seg - half
			vertices = append(vertices, Vertex{
				Position: [3]float32{x, -y, 0},
				UV:       [2]float32{float32(ix) / float32(divs), 1 - float32(iy)/float32(divs)},
			})
		}
	}

	indices := make([]uint32, 0, divs*divs*6)
	for iy := range divs {
		for ix := range divs {
			a := uint32(ix + stride*iy)
			b := uint32(ix + stride*(iy+1))
			c := uint32(ix + 1 + stride*(iy+1))
			d := uint32(ix + 1 + stride*iy)
			indices = append(indices, a, b, d, b, c, d)
		}
	}

	return &Mesh{
		Vertices:  vertices,
		Indices:   indices,
		Divisions: divs,
		Size:      size,
		Bounds: Bounds{
			Min: [3]float32{-half, -half, 0},
			Max: [3]float32{half, half, 0},
		},
	}
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}
