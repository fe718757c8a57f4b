// Package terrain provides the terrain grid mesh, the encoded heightfield and
// the host-side displacement stage.
package terrain

// Vertex represents a grid vertex as uploaded to the GPU.
type Vertex struct {
	Position [3]float32
	UV       [2]float32
}

// Mesh holds the flat grid mesh data ready for GPU upload.
type Mesh struct {
	Vertices  []Vertex
	Indices   []uint32
	Divisions int
	Size      float32
	Bounds    Bounds
}

// Bounds holds the axis-aligned bounding box of the mesh.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Displaced is the output of the vertex stage for one vertex.
type Displaced struct {
	Position  [3]float32
	Normal    [3]float32
	Elevation float32
}
