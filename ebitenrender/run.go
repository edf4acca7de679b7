package ebitenrender

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/grove"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	// ShowFPS draws the frame and tick rates in the top left corner.
	ShowFPS bool `yaml:"show_fps"`
	// ClearColor fills the screen before each frame; zero alpha leaves the
	// screen as ebiten cleared it.
	ClearColor grove.Color `yaml:"clear_color"`
	// TPS is the update rate; 0 keeps ebiten's default.
	TPS       int  `yaml:"tps"`
	Resizable bool `yaml:"resizable"`
	// ScreenshotDir receives the PNG files written when F12 is pressed or
	// a capture is requested on Screenshots.
	ScreenshotDir string `yaml:"screenshot_dir"`
	// Screenshots is the capture queue; nil creates one for ScreenshotDir.
	Screenshots *Screenshots `yaml:"-"`
}

// DefaultRunConfig returns a 640x480 window titled "grove".
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Title:         "grove",
		Width:         640,
		Height:        480,
		ClearColor:    grove.Color{R: 0.1, G: 0.1, B: 0.12, A: 1},
		ScreenshotDir: "screenshots",
	}
}

// LoadRunConfig reads a YAML run config, filling missing fields from
// DefaultRunConfig.
func LoadRunConfig(path string) (RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("read run config: %w", err)
	}
	cfg := DefaultRunConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, fmt.Errorf("%w: %w", grove.ErrConfig, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return RunConfig{}, fmt.Errorf("%w: window size must be positive", grove.ErrConfig)
	}
	return cfg, nil
}

// ErrTerminated is returned by an update callback to end Run cleanly.
var ErrTerminated = errors.New("grove: terminated")

// game adapts a Scene to ebiten.Game.
type game struct {
	scene *grove.Scene
	cfg   RunConfig
	ctx   *Context
	fc    *grove.FrameContext
	shots *Screenshots
	start time.Time
}

func newGame(scene *grove.Scene, cfg RunConfig) *game {
	ctx := NewContext()
	shots := cfg.Screenshots
	if shots == nil {
		shots = NewScreenshots(cfg.ScreenshotDir)
	}
	return &game{
		scene: scene,
		cfg:   cfg,
		ctx:   ctx,
		fc:    scene.NewFrameContext(ctx),
		shots: shots,
		start: time.Now(),
	}
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		g.shots.Request("f12")
	}
	err := g.scene.Update(time.Since(g.start).Seconds())
	if errors.Is(err, ErrTerminated) {
		return ebiten.Termination
	}
	return err
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.cfg.ClearColor.A > 0 {
		screen.Fill(g.cfg.ClearColor.RGBA())
	}
	g.ctx.BeginFrame(screen, g.scene.Camera())
	g.fc.SetCamera(g.scene.Camera(), g.ctx.Aspect())
	g.scene.Display(g.fc)
	if g.cfg.ShowFPS {
		drawFPS(screen, g.fc.Stats(), g.ctx.Triangles)
	}
	g.shots.flush(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.cfg.Resizable {
		return outsideWidth, outsideHeight
	}
	return g.cfg.Width, g.cfg.Height
}

var fpsPanel *ebiten.Image

func drawFPS(screen *ebiten.Image, st grove.FrameStats, tris int) {
	if fpsPanel == nil {
		fpsPanel = ebiten.NewImage(140, 48)
		fpsPanel.Fill(color.RGBA{0, 0, 0, 128})
	}
	screen.DrawImage(fpsPanel, nil)
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nnodes %d tris %d",
		ebiten.ActualFPS(), ebiten.ActualTPS(), st.NodesDisplayed, tris))
}

// Run opens a window and runs scene until the window is closed or the
// update callback returns ErrTerminated.
func Run(scene *grove.Scene, cfg RunConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		d := DefaultRunConfig()
		cfg.Width, cfg.Height = d.Width, d.Height
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}
	return ebiten.RunGame(newGame(scene, cfg))
}
