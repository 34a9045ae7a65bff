package collider

import (
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// LoadGLTF loads every triangle primitive of a .gltf or .glb file. Node
// transforms are flattened into the returned meshes, which are in world space.
func LoadGLTF(path string) ([]*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	meshes, err := LoadDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	return meshes, nil
}

// LoadDocument walks the default scene of doc, or every root node when the
// document has no scene.
func LoadDocument(doc *gltf.Document) ([]*Mesh, error) {
	var meshes []*Mesh
	visited := make(map[int]bool, len(doc.Nodes))

	for _, root := range sceneRoots(doc) {
		var err error
		meshes, err = loadNode(doc, root, mgl64.Ident4(), visited, meshes)
		if err != nil {
			return nil, err
		}
	}

	return meshes, nil
}

func sceneRoots(doc *gltf.Document) []int {
	if len(doc.Scenes) > 0 {
		scene := 0
		if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
			scene = *doc.Scene
		}
		return doc.Scenes[scene].Nodes
	}

	child := make(map[int]bool)
	for _, node := range doc.Nodes {
		for _, c := range node.Children {
			child[c] = true
		}
	}

	var roots []int
	for i := range doc.Nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func loadNode(doc *gltf.Document, nodeIdx int, parent mgl64.Mat4, visited map[int]bool, meshes []*Mesh) ([]*Mesh, error) {
	if nodeIdx < 0 || nodeIdx >= len(doc.Nodes) {
		return nil, fmt.Errorf("node %d out of range", nodeIdx)
	}
	if visited[nodeIdx] {
		return meshes, nil
	}
	visited[nodeIdx] = true

	node := doc.Nodes[nodeIdx]
	world := parent.Mul4(localMatrix(node))

	if node.Mesh != nil {
		if *node.Mesh >= len(doc.Meshes) {
			return nil, fmt.Errorf("node %q: mesh %d out of range", node.Name, *node.Mesh)
		}
		m := doc.Meshes[*node.Mesh]
		for i, prim := range m.Primitives {
			mesh, err := readPrimitive(doc, prim, world)
			if err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: %w", m.Name, i, err)
			}
			if mesh == nil {
				continue
			}
			mesh.Name = fmt.Sprintf("%s/%s#%d", node.Name, m.Name, i)
			meshes = append(meshes, mesh)
		}
	}

	for _, child := range node.Children {
		var err error
		meshes, err = loadNode(doc, child, world, visited, meshes)
		if err != nil {
			return nil, err
		}
	}

	return meshes, nil
}

// localMatrix returns the node matrix, or T * R * S when the matrix is left
// at identity
func localMatrix(node *gltf.Node) mgl64.Mat4 {
	matrix := mgl64.Mat4(node.MatrixOrDefault())
	if matrix != mgl64.Ident4() {
		return matrix
	}

	t := node.TranslationOrDefault()
	r := node.RotationOrDefault()
	s := node.ScaleOrDefault()

	rotation := mgl64.Quat{W: r[3], V: mgl64.Vec3{r[0], r[1], r[2]}}.Normalize()

	return mgl64.Translate3D(t[0], t[1], t[2]).
		Mul4(rotation.Mat4()).
		Mul4(mgl64.Scale3D(s[0], s[1], s[2]))
}

// readPrimitive returns nil for non-triangle primitives
func readPrimitive(doc *gltf.Document, prim *gltf.Primitive, world mgl64.Mat4) (*Mesh, error) {
	if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
		return nil, nil
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	var normals [][3]float32
	if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err = modeler.ReadNormal(doc, doc.Accessors[normIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
	} else {
		// No indices, assume sequential triangles
		indices = make([]uint32, len(positions)-len(positions)%3)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	normalMatrix := world.Mat3().Inv().Transpose()
	mesh := &Mesh{
		Positions: make([]mgl64.Vec3, len(positions)),
		Indices:   make([]int, len(indices)),
	}
	for i, p := range positions {
		mesh.Positions[i] = world.Mul4x1(mgl64.Vec4{float64(p[0]), float64(p[1]), float64(p[2]), 1}).Vec3()
	}
	if len(normals) == len(positions) {
		mesh.Normals = make([]mgl64.Vec3, len(normals))
		for i, n := range normals {
			v := normalMatrix.Mul3x1(mgl64.Vec3{float64(n[0]), float64(n[1]), float64(n[2])})
			if v.Len() > 0 {
				v = v.Normalize()
			}
			mesh.Normals[i] = v
		}
	}

	// a mirroring transform flips the winding
	mirrored := world.Mat3().Det() < 0
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := int(indices[i]), int(indices[i+1]), int(indices[i+2])
		if mirrored {
			b, c = c, b
		}
		mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2] = a, b, c
	}
	mesh.Indices = mesh.Indices[:len(indices)-len(indices)%3]

	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	if !mesh.HasNormals() {
		mesh.CalculateSmoothNormals()
	}

	return mesh, nil
}
