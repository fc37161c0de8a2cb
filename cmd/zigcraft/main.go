// Command zigcraft is the engine's entry point: GLFW window/context
// bring-up, RHI device selection, world/player/session wiring, and the
// fixed-timestep-adjacent main loop (spec §6 "External interfaces").
//
// Grounded on the teacher's cmd/mini-mc/main.go (setupWindow, the
// per-frame loop shape: dt, update, stream, drain, render, swap, poll,
// FPS limiter) and internal/game/fps_limiter.go (the hybrid sleep/spin
// limiter, ported to internal/session's caller instead of a package
// global). GLFW window wiring is kept; inventory, pause menu, and HUD
// rendering were dropped along with the packages they depend on
// (see DESIGN.md's M9/M12 scope notes).
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"zigcraft/internal/assets"
	"zigcraft/internal/lighting"
	"zigcraft/internal/mesher"
	"zigcraft/internal/physics"
	"zigcraft/internal/player"
	"zigcraft/internal/profiling"
	"zigcraft/internal/rendergraph"
	"zigcraft/internal/rhi"
	"zigcraft/internal/rhi/glbackend"
	"zigcraft/internal/rhi/vkbackend"
	"zigcraft/internal/session"
	"zigcraft/internal/settings"
	"zigcraft/internal/terrain"
	"zigcraft/internal/world"
)

func init() { runtime.LockOSThread() }

func main() {
	os.Exit(run())
}

// run contains the full bring-up/loop/teardown sequence as a function
// returning an exit code, so smoke-test mode (ZIGCRAFT_SMOKE_FRAMES) can
// return 0 without os.Exit short-circuiting deferred cleanup.
func run() int {
	backend := flag.String("backend", "opengl", "RHI backend: opengl or vulkan")
	seedFlag := flag.String("seed", "", "world seed (digits: literal; otherwise hashed)")
	flag.Parse()

	settingsPath := "settings.json"
	st, err := settings.Load(settingsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zigcraft: settings: %v\n", err)
		st = settings.Default()
	}

	worldSeed := resolveSeed(*seedFlag)

	if err := glfw.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "zigcraft: glfw init: %v\n", err)
		return 1
	}
	defer glfw.Terminate()

	window, err := setupWindow(st.WindowWidth, st.WindowHeight, *backend)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zigcraft: window: %v\n", err)
		return 1
	}

	device, err := newDevice(*backend, st.WindowWidth, st.WindowHeight)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zigcraft: rhi init: %v\n", err)
		return 1
	}
	defer device.Deinit()

	pack := assets.Open("assets", st.ResourcePack)

	gameWorld := world.New(
		terrain.NewGenerator(int64(worldSeed)),
		mesher.NewBuilder(),
		lighting.NewEngine(),
		world.DefaultConfig(),
	)

	gamePlayer := player.New(gameWorld, player.GameModeSurvival, mgl32.Vec3{0, 96, 0})
	groundY := physics.FindGroundLevel(gameWorld, 0, 0, 160, gamePlayer.Width(), gamePlayer.Height())
	gamePlayer.Position = mgl32.Vec3{0, groundY + 2, 0}

	graph := rendergraph.New(device, rendergraph.Handles{})
	sess := session.New(gameWorld, device, graph, pack, st)
	defer sess.Close()

	applyDisableEnvVars(sess)

	if n := smokeFrameCount(); n > 0 {
		runSmoke(sess, gamePlayer, window, n)
		return 0
	}

	runLoop(sess, gamePlayer, window, st)

	if err := st.Save(settingsPath); err != nil {
		fmt.Fprintf(os.Stderr, "zigcraft: settings save: %v\n", err)
	}
	return 0
}

func resolveSeed(text string) uint64 {
	if text == "" {
		return uint64(time.Now().UnixNano())
	}
	return settings.ParseSeed(text)
}

func setupWindow(width, height int, backend string) (*glfw.Window, error) {
	if backend == "opengl" {
		glfw.WindowHint(glfw.ContextVersionMajor, 4)
		glfw.WindowHint(glfw.ContextVersionMinor, 1)
		glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	} else {
		glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	}

	window, err := glfw.CreateWindow(width, height, "zigcraft", nil, nil)
	if err != nil {
		return nil, err
	}
	if backend == "opengl" {
		window.MakeContextCurrent()
		glfw.SwapInterval(0)
	}
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	return window, nil
}

// newDevice picks the RHI backend per --backend (spec §6 "--backend
// {vulkan}"); anything other than "vulkan" defaults to the OpenGL
// backend, the fully-exercised reference implementation (DESIGN.md M7).
func newDevice(backend string, width, height int) (rhi.Device, error) {
	var device rhi.Device
	if backend == "vulkan" {
		device = vkbackend.New()
	} else {
		device = glbackend.New()
	}
	if rerr := device.Init(width, height); rerr != nil {
		return nil, rerr
	}
	return device, nil
}

// applyDisableEnvVars reads the ZIGCRAFT_DISABLE_* bisection switches
// (spec §6) and applies them as render-graph toggles.
func applyDisableEnvVars(sess *session.Session) {
	for _, toggle := range []string{"SHADOWS", "GPASS", "SSAO", "CLOUDS"} {
		if os.Getenv("ZIGCRAFT_DISABLE_"+toggle) != "" {
			name := map[string]string{
				"SHADOWS": "shadows",
				"GPASS":   "gpass",
				"SSAO":    "ssao",
				"CLOUDS":  "clouds",
			}[toggle]
			_ = sess.SetToggle(name, false)
		}
	}
}

// smokeFrameCount reads ZIGCRAFT_SMOKE_FRAMES (spec §6 "runs N frames and
// exits 0"), returning 0 if unset or invalid.
func smokeFrameCount() int {
	v := os.Getenv("ZIGCRAFT_SMOKE_FRAMES")
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func runSmoke(sess *session.Session, p *player.Player, window *glfw.Window, frames int) {
	skipUpdate := os.Getenv("ZIGCRAFT_SKIP_WORLD_UPDATE") != ""
	skipRender := os.Getenv("ZIGCRAFT_SKIP_WORLD_RENDER") != ""
	w, h := window.GetSize()

	for i := 0; i < frames; i++ {
		if !skipUpdate {
			sess.Update(1.0/60, p.Position)
		}
		if !skipRender {
			sess.Render(session.PlayerView{
				Position: p.EyePosition(),
				View:     p.ViewMatrix(),
				Proj:     mgl32.Perspective(mgl32.DegToRad(70), float32(w)/float32(h), 0.1, 1000),
			}, w, h)
			window.SwapBuffers()
		}
		glfw.PollEvents()
	}
}

func runLoop(sess *session.Session, p *player.Player, window *glfw.Window, st *settings.Settings) {
	safeRender := os.Getenv("ZIGCRAFT_SAFE_RENDER") != ""
	skipUpdate := os.Getenv("ZIGCRAFT_SKIP_WORLD_UPDATE") != ""
	skipRender := os.Getenv("ZIGCRAFT_SKIP_WORLD_RENDER") != ""

	lastTime := time.Now()
	var limiterNext time.Time

	for !window.ShouldClose() {
		profiling.ResetFrame()
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		intent := readIntent(window)
		p.Update(dt, intent)

		if !skipUpdate {
			func() { defer profiling.Track("session.Update")(); sess.Update(dt, p.Position) }()
		}

		if !skipRender && !(safeRender && dt > 0.25) {
			w, h := window.GetSize()
			func() {
				defer profiling.Track("session.Render")()
				sess.Render(session.PlayerView{
					Position: p.EyePosition(),
					View:     p.ViewMatrix(),
					Proj:     mgl32.Perspective(mgl32.DegToRad(st.FOV), float32(w)/float32(h), 0.1, 1000),
				}, w, h)
			}()
		}

		window.SwapBuffers()
		glfw.PollEvents()

		waitForFrameBudget(&limiterNext, st.GetFPSLimit())
	}
}

var lastCursorX, lastCursorY float64
var haveLastCursor bool

// readIntent samples GLFW key/mouse state directly into a player.Intent,
// the same translation the teacher's input.InputManager does internally,
// generalized here since this rework dropped that package (M9 scope).
func readIntent(window *glfw.Window) player.Intent {
	down := func(k glfw.Key) bool { return window.GetKey(k) == glfw.Press }

	x, y := window.GetCursorPos()
	var dx, dy float64
	if haveLastCursor {
		dx, dy = x-lastCursorX, y-lastCursorY
	}
	lastCursorX, lastCursorY = x, y
	haveLastCursor = true

	return player.Intent{
		Forward:    down(glfw.KeyW),
		Back:       down(glfw.KeyS),
		Left:       down(glfw.KeyA),
		Right:      down(glfw.KeyD),
		Jump:       down(glfw.KeySpace),
		Sneak:      down(glfw.KeyLeftShift),
		Sprint:     down(glfw.KeyLeftControl),
		LookDeltaX: float32(dx),
		LookDeltaY: float32(dy),
	}
}

// waitForFrameBudget is the teacher's fps_limiter.go hybrid sleep/spin
// loop, inlined here rather than kept as a package since this rework has
// no always-on process-wide FPS-limit singleton to read from (settings
// drives it directly; 0 means uncapped, matching config.GetFPSLimit's
// semantics).
func waitForFrameBudget(next *time.Time, limitFPS int) {
	if limitFPS <= 0 {
		*next = time.Time{}
		return
	}
	target := time.Second / time.Duration(limitFPS)
	if next.IsZero() {
		*next = time.Now().Add(target)
	} else {
		*next = next.Add(target)
	}
	for {
		remaining := time.Until(*next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
		if time.Until(*next) <= 0 {
			break
		}
	}
	if late := -time.Until(*next); late > target {
		*next = time.Now().Add(target)
	}
}
