package main

import (
	"flag"
	"math"
	"math/rand"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/orbview/orbview"
	"github.com/orbview/orbview/wgpurender"
)

func init() {
	runtime.LockOSThread()
}

// mouseLook tracks a left-button drag and converts cursor movement into
// orbit gestures.
type mouseLook struct {
	active       bool
	lastX, lastY float64
	sensitivity  float64
	controls     *orbview.Controls
}

func (m *mouseLook) move(x, y float64) {
	if !m.active {
		return
	}
	dx := x - m.lastX
	dy := y - m.lastY
	m.lastX, m.lastY = x, y
	if dx != 0 {
		m.controls.MouseLeftRight(dx * m.sensitivity)
	}
	if dy != 0 {
		m.controls.MouseUpDown(dy * m.sensitivity)
	}
}

var spherePalette = []mgl32.Vec4{
	{0.9, 0.2, 0.2, 1},
	{0.2, 0.8, 0.3, 1},
	{0.95, 0.85, 0.2, 1},
	{0.3, 0.4, 0.95, 1},
	{0.85, 0.4, 0.85, 1},
	{0.9, 0.55, 0.15, 1},
}

func main() {
	width := flag.Int("width", 1280, "window width")
	height := flag.Int("height", 720, "window height")
	spheres := flag.Int("spheres", 5, "number of spheres to scatter")
	floorTex := flag.String("floor", "", "path to a PNG or BMP floor texture")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log := orbview.NewDefaultLogger("orbview", *debug)

	if err := glfw.Init(); err != nil {
		log.Errorf("glfw init: %v", err)
		return
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(*width, *height, "OrbView", nil, nil)
	if err != nil {
		log.Errorf("creating window: %v", err)
		return
	}
	defer window.Destroy()

	dev, err := wgpurender.NewDevice(window, log)
	if err != nil {
		log.Errorf("%v", err)
		return
	}
	defer dev.Close()

	renderer := wgpurender.NewSceneRenderer(dev, log)
	shaderState, err := wgpurender.NewShaderState(dev)
	if err != nil {
		log.Errorf("%v", err)
		return
	}
	defer shaderState.Close()
	renderer.AttachShaderState(shaderState)

	technique, err := wgpurender.NewTechnique(dev, renderer, shaderState)
	if err != nil {
		log.Errorf("%v", err)
		return
	}
	defer technique.Close()

	if *floorTex != "" {
		tex, err := wgpurender.LoadTexture(dev, *floorTex)
		if err != nil {
			log.Warnf("floor texture: %v", err)
		} else {
			defer tex.Destroy()
			shaderState.BindFloorTexture(tex)
		}
	}

	camera := orbview.NewCamera()
	camera.SetFoV(float32(math.Pi) / 4)
	camera.SetAspect(dev.AspectRatio())

	shading := orbview.NewShadingState()

	scene := orbview.NewScene()
	defer scene.Close()
	scene.BindRenderer(renderer)
	scene.BindShader(shaderState, technique)
	scene.BindCamera(camera)
	scene.BindShading(shading)

	if err := scene.SetGroundRect(40, 40, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}); err != nil {
		log.Errorf("ground: %v", err)
		return
	}
	populate(scene, *spheres, log)

	controls := orbview.NewControls(camera, shading)
	look := &mouseLook{sensitivity: 0.005, controls: controls}

	window.SetFramebufferSizeCallback(func(w *glfw.Window, fbWidth, fbHeight int) {
		if err := dev.Resize(fbWidth, fbHeight); err != nil {
			log.Errorf("resize: %v", err)
			return
		}
		camera.SetAspect(dev.AspectRatio())
	})

	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		look.active = action == glfw.Press
		look.lastX, look.lastY = w.GetCursorPos()
	})

	window.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		look.move(x, y)
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch {
		case key == glfw.KeyEscape:
			w.SetShouldClose(true)
		case key >= glfw.KeyKP0 && key <= glfw.KeyKP9:
			controls.NumpadNumber(int(key - glfw.KeyKP0))
		case key >= glfw.Key0 && key <= glfw.Key9:
			controls.NumpadNumber(int(key - glfw.Key0))
		case key == glfw.KeyC:
			if scene.Len() > 0 {
				if _, err := scene.InsertCopy(scene.Len() - 1); err != nil {
					log.Warnf("copy: %v", err)
				} else {
					scene.SetPosition(scene.Len()-1, randomSpot())
				}
			}
		case key == glfw.KeyN:
			insertSphere(scene, scene.Len(), log)
		case key == glfw.KeyX:
			if scene.Len() > 0 {
				if err := scene.Remove(scene.Len() - 1); err != nil {
					log.Warnf("remove: %v", err)
				}
			}
		}
	})

	fps := orbview.NewFPSCounter()
	for !window.ShouldClose() {
		glfw.PollEvents()

		rate := float32(fps.Tick())
		camera.SetFPS(rate)
		shading.SetFPS(rate)

		pollHeldKeys(window, controls)
		camera.Decay()

		scene.RenderFrame()
	}
}

// pollHeldKeys feeds continuous gestures from keys held down this frame.
func pollHeldKeys(window *glfw.Window, controls *orbview.Controls) {
	press := func(k glfw.Key) bool { return window.GetKey(k) == glfw.Press }

	switch {
	case press(glfw.KeyUp):
		controls.ArrowsUpDown(1)
	case press(glfw.KeyDown):
		controls.ArrowsUpDown(-1)
	}
	switch {
	case press(glfw.KeyRight):
		controls.ArrowsLeftRight(1)
	case press(glfw.KeyLeft):
		controls.ArrowsLeftRight(-1)
	}
	switch {
	case press(glfw.KeyD):
		controls.WasdLeftRight(1)
	case press(glfw.KeyA):
		controls.WasdLeftRight(-1)
	}
	switch {
	case press(glfw.KeyW):
		controls.WasdUpDown(1)
	case press(glfw.KeyS):
		controls.WasdUpDown(-1)
	}
	switch {
	case press(glfw.KeyKPAdd), press(glfw.KeyEqual):
		controls.NumpadAddSubtract(1)
	case press(glfw.KeyKPSubtract), press(glfw.KeyMinus):
		controls.NumpadAddSubtract(-1)
	}
}

func populate(scene *orbview.Scene, count int, log orbview.Logger) {
	for i := 0; i < count; i++ {
		insertSphere(scene, i, log)
	}
}

func insertSphere(scene *orbview.Scene, seq int, log orbview.Logger) {
	color := spherePalette[seq%len(spherePalette)]
	if _, err := scene.InsertSphere(32, 24, 1, color); err != nil {
		log.Warnf("sphere: %v", err)
		return
	}
	scene.SetPosition(scene.Len()-1, randomSpot())
}

func randomSpot() mgl32.Vec3 {
	return mgl32.Vec3{
		rand.Float32()*12 - 6,
		rand.Float32() * 2,
		rand.Float32()*12 - 6,
	}
}
