package viewer

import (
	"fmt"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"mesh-editor/core"
	"mesh-editor/editor"
	"mesh-editor/internal/logger"
	"mesh-editor/math"
	"mesh-editor/scene"
)

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	VAO         uint32
	VBO         uint32
	EBO         uint32
	IndexCount  int32
	VertexCount int32
	HasIndices  bool
	Version     uint64
}

// Renderer draws the scene, the handle proxies, the gizmo and the marquee.
type Renderer struct {
	program  uint32
	mvpLoc   int32
	modelLoc int32
	colorLoc int32
	unlitLoc int32
	lightLoc int32

	gpuMeshes map[*scene.Mesh]*GPUMesh

	pivotMesh  *scene.Mesh
	axisMeshes [3]*scene.Mesh

	overlayVAO uint32
	overlayVBO uint32

	log *zap.Logger
}

var axisColors = [3]core.Color{
	{R: 0.9, G: 0.2, B: 0.2, A: 1},
	{R: 0.2, G: 0.85, B: 0.2, A: 1},
	{R: 0.25, G: 0.4, B: 0.95, A: 1},
}

var (
	axisHotColor = core.ColorYellow
	pivotColor   = core.ColorOrange
	marqueeColor = core.Color{R: 0.95, G: 0.95, B: 1, A: 1}
)

// vertex shader: MVP transform, normal in world space
const vertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;

uniform mat4 mvp;
uniform mat4 model;

out vec3 fragNormal;

void main() {
    gl_Position = mvp * vec4(inPosition, 1.0);
    fragNormal  = mat3(model) * inNormal;
}
` + "\x00"

// fragment shader: flat color with simple directional shading
const fragSrc = `
#version 410 core
in vec3 fragNormal;

uniform vec4 color;
uniform int  unlit;
uniform vec3 lightDir;

out vec4 outColor;

void main() {
    if (unlit == 1) {
        outColor = color;
        return;
    }
    float diff = abs(dot(normalize(fragNormal), -lightDir));
    outColor = vec4(color.rgb * (0.3 + 0.7 * diff), color.a);
}
` + "\x00"

// NewRenderer initialises OpenGL.
// Must be called after the GLFW window context is made current.
func NewRenderer() (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log := logger.Named("renderer")
	log.Info("opengl ready", zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))))

	prog, err := newProgram(vertSrc, fragSrc)
	if err != nil {
		return nil, fmt.Errorf("shader compile: %w", err)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	r := &Renderer{
		program:   prog,
		mvpLoc:    gl.GetUniformLocation(prog, gl.Str("mvp\x00")),
		modelLoc:  gl.GetUniformLocation(prog, gl.Str("model\x00")),
		colorLoc:  gl.GetUniformLocation(prog, gl.Str("color\x00")),
		unlitLoc:  gl.GetUniformLocation(prog, gl.Str("unlit\x00")),
		lightLoc:  gl.GetUniformLocation(prog, gl.Str("lightDir\x00")),
		gpuMeshes: make(map[*scene.Mesh]*GPUMesh),
		pivotMesh: scene.CreateBox(0.08, 0.08, 0.08),
		log:       log,
	}
	for i := range r.axisMeshes {
		r.axisMeshes[i] = scene.CreateLineMesh("GizmoAxis", math.Vec3Zero, editor.Axis(i).Direction())
	}

	gl.GenVertexArrays(1, &r.overlayVAO)
	gl.GenBuffers(1, &r.overlayVBO)
	gl.BindVertexArray(r.overlayVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.overlayVBO)
	gl.BufferData(gl.ARRAY_BUFFER, 4*3*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, gl.PtrOffset(0))
	gl.BindVertexArray(0)

	return r, nil
}

// SetViewport resizes the OpenGL viewport.
func (r *Renderer) SetViewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// BeginFrame clears the framebuffer with the given colour.
func (r *Renderer) BeginFrame(sky core.Color) {
	gl.ClearColor(sky.R, sky.G, sky.B, sky.A)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// DrawScene draws every visible mesh node. Handle proxies go last with a
// depth offset so they sit on top of the surface they mark.
func (r *Renderer) DrawScene(s *scene.Scene, camera *scene.Camera, handles *scene.Node) {
	viewProj := camera.GetViewProjectionMatrix()
	gl.UseProgram(r.program)
	dir := s.Light.Direction
	gl.Uniform3f(r.lightLoc, dir.X, dir.Y, dir.Z)

	var proxies []*scene.Node
	s.Root.Traverse(func(node *scene.Node) {
		if node.Mesh == nil || !node.IsVisible() {
			return
		}
		if handles != nil && node.Parent == handles {
			proxies = append(proxies, node)
			return
		}
		r.drawNode(node, viewProj)
	})

	if len(proxies) == 0 {
		return
	}
	gl.Enable(gl.POLYGON_OFFSET_FILL)
	gl.PolygonOffset(-1, -1)
	for _, node := range proxies {
		r.drawNode(node, viewProj)
	}
	gl.Disable(gl.POLYGON_OFFSET_FILL)
}

// DrawPivot marks the multi-selection pivot when it is visible.
func (r *Renderer) DrawPivot(pivot *scene.Node, camera *scene.Camera) {
	if pivot == nil || !pivot.Visible {
		return
	}
	model := math.Mat4Translation(pivot.WorldPosition())
	gl.Disable(gl.DEPTH_TEST)
	r.drawMesh(r.pivotMesh, model, camera.GetViewProjectionMatrix(), pivotColor, true)
	gl.Enable(gl.DEPTH_TEST)
}

// DrawGizmo draws the three translate axes at the gizmo target, the hot
// axis highlighted.
func (r *Renderer) DrawGizmo(g *editor.Gizmo, camera *scene.Camera, hot editor.Axis) {
	target := g.Target()
	if target == nil {
		return
	}
	scale := math.Mat4Scale(math.Vec3{X: g.Length, Y: g.Length, Z: g.Length})
	model := scale.Mul(math.Mat4Translation(target.WorldPosition()))
	viewProj := camera.GetViewProjectionMatrix()

	gl.Disable(gl.DEPTH_TEST)
	for i, mesh := range r.axisMeshes {
		color := axisColors[i]
		if editor.Axis(i) == hot || editor.Axis(i) == g.ActiveAxis() {
			color = axisHotColor
		}
		r.drawMesh(mesh, model, viewProj, color, true)
	}
	gl.Enable(gl.DEPTH_TEST)
}

// DrawMarquee outlines a pixel rectangle on top of everything.
func (r *Renderer) DrawMarquee(rect math.Rect, width, height float64) {
	a := editor.PixelToNDC(float64(rect.Min.X), float64(rect.Min.Y), width, height)
	b := editor.PixelToNDC(float64(rect.Max.X), float64(rect.Max.Y), width, height)
	quad := [12]float32{
		a.X, a.Y, 0,
		b.X, a.Y, 0,
		b.X, b.Y, 0,
		a.X, b.Y, 0,
	}

	identity := math.Mat4Identity()
	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.mvpLoc, 1, false, &identity[0][0])
	gl.UniformMatrix4fv(r.modelLoc, 1, false, &identity[0][0])
	gl.Uniform4f(r.colorLoc, marqueeColor.R, marqueeColor.G, marqueeColor.B, marqueeColor.A)
	gl.Uniform1i(r.unlitLoc, 1)

	gl.Disable(gl.DEPTH_TEST)
	gl.BindVertexArray(r.overlayVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.overlayVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(quad)*4, gl.Ptr(&quad[0]))
	gl.DrawArrays(gl.LINE_LOOP, 0, 4)
	gl.BindVertexArray(0)
	gl.Enable(gl.DEPTH_TEST)
}

func (r *Renderer) drawNode(node *scene.Node, viewProj math.Mat4) {
	mat := node.Material
	if mat == nil {
		mat = scene.DefaultMaterial()
	}
	unlit := mat.Unlit || node.Mesh.DrawMode != scene.DrawTriangles
	r.drawMesh(node.Mesh, node.GetWorldMatrix(), viewProj, mat.Albedo, unlit)
}

func (r *Renderer) drawMesh(mesh *scene.Mesh, model, viewProj math.Mat4, color core.Color, unlit bool) {
	gpu := r.ensureUploaded(mesh)
	if gpu == nil {
		return
	}

	mvp := model.Mul(viewProj)
	gl.UseProgram(r.program)
	// Row-vector Mat4 flattens to the column-major layout GLSL expects.
	gl.UniformMatrix4fv(r.mvpLoc, 1, false, (*float32)(unsafe.Pointer(&mvp[0][0])))
	gl.UniformMatrix4fv(r.modelLoc, 1, false, (*float32)(unsafe.Pointer(&model[0][0])))
	gl.Uniform4f(r.colorLoc, color.R, color.G, color.B, color.A)
	if unlit {
		gl.Uniform1i(r.unlitLoc, 1)
	} else {
		gl.Uniform1i(r.unlitLoc, 0)
	}

	mode := uint32(gl.TRIANGLES)
	switch mesh.DrawMode {
	case scene.DrawLines:
		mode = gl.LINES
	case scene.DrawPoints:
		mode = gl.POINTS
	}

	gl.BindVertexArray(gpu.VAO)
	if gpu.HasIndices {
		gl.DrawElements(mode, gpu.IndexCount, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(mode, 0, gpu.VertexCount)
	}
	gl.BindVertexArray(0)
}

// ReleaseMesh frees GPU buffers for the given mesh.
func (r *Renderer) ReleaseMesh(mesh *scene.Mesh) {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		gl.DeleteVertexArrays(1, &gpu.VAO)
		gl.DeleteBuffers(1, &gpu.VBO)
		if gpu.EBO != 0 {
			gl.DeleteBuffers(1, &gpu.EBO)
		}
		delete(r.gpuMeshes, mesh)
		mesh.GPUData = nil
	}
}

// Prune releases buffers of meshes no longer reachable from s, such as
// proxies of a finished editing session.
func (r *Renderer) Prune(s *scene.Scene) {
	live := make(map[*scene.Mesh]bool, len(r.gpuMeshes))
	s.Root.Traverse(func(node *scene.Node) {
		if node.Mesh != nil {
			live[node.Mesh] = true
		}
	})
	live[r.pivotMesh] = true
	for _, m := range r.axisMeshes {
		live[m] = true
	}
	for mesh := range r.gpuMeshes {
		if !live[mesh] {
			r.ReleaseMesh(mesh)
		}
	}
}

// Destroy releases all GPU resources.
func (r *Renderer) Destroy() {
	for mesh := range r.gpuMeshes {
		r.ReleaseMesh(mesh)
	}
	gl.DeleteVertexArrays(1, &r.overlayVAO)
	gl.DeleteBuffers(1, &r.overlayVBO)
	gl.DeleteProgram(r.program)
}

// ensureUploaded uploads vertex/index data on first use and again whenever
// the mesh version moves on.
func (r *Renderer) ensureUploaded(mesh *scene.Mesh) *GPUMesh {
	gpu, ok := r.gpuMeshes[mesh]
	if ok && gpu.Version == mesh.Version && int(gpu.VertexCount) == len(mesh.Vertices) {
		return gpu
	}
	if len(mesh.Vertices) == 0 {
		return nil
	}

	stride := int32(unsafe.Sizeof(core.Vertex{}))
	if !ok {
		gpu = &GPUMesh{}
		gl.GenVertexArrays(1, &gpu.VAO)
		gl.GenBuffers(1, &gpu.VBO)
		gl.BindVertexArray(gpu.VAO)
		gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)

		var v core.Vertex
		// location 0: Position (vec3)
		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.Position))))
		// location 1: Normal (vec3)
		gl.EnableVertexAttribArray(1)
		gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.Normal))))
		// location 2: UV (vec2)
		gl.EnableVertexAttribArray(2)
		gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, gl.PtrOffset(int(unsafe.Offsetof(v.UV))))

		r.gpuMeshes[mesh] = gpu
		mesh.GPUData = gpu
	} else {
		gl.BindVertexArray(gpu.VAO)
		gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	}

	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*int(stride), gl.Ptr(mesh.Vertices), gl.DYNAMIC_DRAW)

	gpu.HasIndices = len(mesh.Indices) > 0
	gpu.IndexCount = int32(len(mesh.Indices))
	if gpu.HasIndices {
		if gpu.EBO == 0 {
			gl.GenBuffers(1, &gpu.EBO)
		}
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.DYNAMIC_DRAW)
	}
	gl.BindVertexArray(0)

	gpu.VertexCount = int32(len(mesh.Vertices))
	gpu.Version = mesh.Version
	return gpu
}

// ── shader helpers ────────────────────────────────────────────────────────────

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		return 0, fmt.Errorf("link failed: %v", log)
	}

	gl.DeleteShader(vert)
	gl.DeleteShader(frag)
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return shader, nil
}
