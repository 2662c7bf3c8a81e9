package orbview

// bufferPair owns one vertex and one index buffer. SceneObject copies
// share the pair through a reference count; the buffers are destroyed
// exactly once, when the last reference drops. Single-threaded by design,
// like everything else in the frame loop.
type bufferPair struct {
	vertex BufferHandle
	index  BufferHandle
	refs   int
}

func (bp *bufferPair) acquire() { bp.refs++ }

func (bp *bufferPair) release() {
	if bp.refs <= 0 {
		return
	}
	bp.refs--
	if bp.refs == 0 {
		bp.vertex.Destroy()
		bp.index.Destroy()
		bp.vertex = nil
		bp.index = nil
	}
}

// SceneObject is one drawable mesh resident on the GPU. Cloning shares
// the underlying buffers; counts and stride are per-copy.
type SceneObject struct {
	buffers *bufferPair

	vertexCount uint32
	indexCount  uint32
	stride      uint32
	offset      uint32
}

// NewSceneObject uploads the mesh into freshly allocated GPU buffers.
// On any allocation failure nothing is constructed and the error wraps
// ResourceCreationError; a partially created buffer is destroyed.
func NewSceneObject(r Renderer, mesh *Mesh) (*SceneObject, error) {
	vb, err := r.CreateVertexBuffer(mesh.VertexBytes())
	if err != nil {
		return nil, &ResourceCreationError{Resource: "vertex buffer", Err: err}
	}
	ib, err := r.CreateIndexBuffer(mesh.IndexBytes())
	if err != nil {
		vb.Destroy()
		return nil, &ResourceCreationError{Resource: "index buffer", Err: err}
	}

	return &SceneObject{
		buffers:     &bufferPair{vertex: vb, index: ib, refs: 1},
		vertexCount: uint32(len(mesh.Vertices)),
		indexCount:  uint32(len(mesh.Indices)),
		stride:      VertexStride,
	}, nil
}

// Clone returns a copy sharing the GPU buffers with the receiver.
func (o *SceneObject) Clone() *SceneObject {
	o.buffers.acquire()
	clone := *o
	return &clone
}

// Release drops this object's reference to its buffers. The buffers are
// freed when no copy references them anymore.
func (o *SceneObject) Release() {
	if o.buffers == nil {
		return
	}
	o.buffers.release()
	o.buffers = nil
}

// Draw binds the object's buffers and issues one indexed draw per
// technique pass. Triangle-list topology is assumed.
func (o *SceneObject) Draw(r Renderer, tech Technique) {
	if o.buffers == nil || o.buffers.refs == 0 {
		return
	}
	r.BindBuffers(o.buffers.vertex, o.buffers.index, o.stride)
	for p := 0; p < tech.PassCount(); p++ {
		tech.ApplyPass(p)
		r.DrawIndexed(o.indexCount)
	}
}

// IndexCount reports how many indices one draw submits.
func (o *SceneObject) IndexCount() uint32 { return o.indexCount }

// VertexCount reports the number of uploaded vertices.
func (o *SceneObject) VertexCount() uint32 { return o.vertexCount }

// refCount exposes the shared reference count to tests.
func (o *SceneObject) refCount() int {
	if o.buffers == nil {
		return 0
	}
	return o.buffers.refs
}
