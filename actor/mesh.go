package actor

import "github.com/go-gl/mathgl/mgl64"

// Mesh is the vertex list of a 4D solid, as laid out for rendering: vertices shared
// between cells appear once per cell.
type Mesh struct {
	Vertices []mgl64.Vec4
}

// Cube returns the unit tesseract centered on the origin.
// Each of its 8 cubic cells (+x, -x, +y, ..., -w) lists its 8 corners, for 64 vertices.
func Cube() Mesh {
	vertices := make([]mgl64.Vec4, 0, 64)

	for axis := range 4 {
		for _, side := range [2]float64{0.5, -0.5} {
			for corner := range 8 {
				var v mgl64.Vec4
				v[axis] = side

				// The first free axis is the most significant bit of corner
				bit := 2
				for k := range 4 {
					if k == axis {
						continue
					}
					v[k] = float64((corner>>bit)&1) - 0.5
					bit--
				}
				vertices = append(vertices, v)
			}
		}
	}

	return Mesh{Vertices: vertices}
}

// Scaled returns a copy of the mesh scaled per axis
func (m Mesh) Scaled(scale mgl64.Vec4) Mesh {
	vertices := make([]mgl64.Vec4, len(m.Vertices))
	for i, v := range m.Vertices {
		vertices[i] = mgl64.Vec4{v[0] * scale[0], v[1] * scale[1], v[2] * scale[2], v[3] * scale[3]}
	}
	return Mesh{Vertices: vertices}
}

// Transformed returns a copy of the mesh with every vertex mapped through t
func (m Mesh) Transformed(t Transform) Mesh {
	vertices := make([]mgl64.Vec4, len(m.Vertices))
	for i, v := range m.Vertices {
		vertices[i] = t.Apply(v)
	}
	return Mesh{Vertices: vertices}
}
