package scene

// Material is the shading state bound to the terrain program.
type Material struct {
	HeightMap uint32 // current heightfield texture, placeholder until the first tile
	Gradient  uint32 // elevation color ramp, built once
	TexOffset float32
}

// Texture units.
const (
	heightMapUnit = 0
	gradientUnit  = 1
)
