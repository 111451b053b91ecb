// Command fxdemo renders a particle scene into a sequence of PNG frames.
//
// Usage:
//
//	fxdemo -scene testdata/campfire.toml -frames 60 -out frames
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/gogpu/fxrender"
	"github.com/gogpu/fxrender/fx"
	"github.com/gogpu/fxrender/internal/scene"
	"github.com/gogpu/fxrender/recording"
	_ "github.com/gogpu/fxrender/recording/backends/raster"
	"github.com/gogpu/fxrender/render"
)

// device is what the demo needs from a registered device: replay, offscreen
// targets, sprite uploads and PNG output.
type device interface {
	recording.Device
	render.TargetAllocator
	scene.TextureCreator
	WhiteTexture() uint32
	SavePNG(path string) error
}

type config struct {
	scene        string
	device       string
	out          string
	width        int
	height       int
	frames       int
	framebuffers bool
}

func main() {
	var (
		scenePath    = flag.String("scene", "", "scene file (.toml or .yaml)")
		deviceName   = flag.String("device", "raster", fmt.Sprintf("device, one of %v", recording.Devices()))
		width        = flag.Int("width", 640, "image width")
		height       = flag.Int("height", 480, "image height")
		frames       = flag.Int("frames", 1, "number of frames to render")
		out          = flag.String("out", ".", "output directory")
		framebuffers = flag.Bool("framebuffers", true, "composite through offscreen targets")
		verbose      = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	fxrender.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if *scenePath == "" {
		fmt.Fprintln(os.Stderr, "fxdemo: -scene is required")
		flag.Usage()
		os.Exit(2)
	}
	cfg := config{
		scene:        *scenePath,
		device:       *deviceName,
		out:          *out,
		width:        *width,
		height:       *height,
		frames:       *frames,
		framebuffers: *framebuffers,
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "fxdemo: %v\n", err)
		os.Exit(1)
	}
}

func openDevice(name string, width, height int) (device, error) {
	d, err := recording.NewDevice(name, width, height)
	if err != nil {
		return nil, err
	}
	dev, ok := d.(device)
	if !ok {
		return nil, fmt.Errorf("device %q cannot render offscreen or write PNG files", name)
	}
	return dev, nil
}

func run(cfg config) error {
	width, height, frames, out := cfg.width, cfg.height, cfg.frames, cfg.out
	s, err := scene.Load(cfg.scene)
	if err != nil {
		return err
	}
	dev, err := openDevice(cfg.device, width, height)
	if err != nil {
		return err
	}
	textures, err := scene.LoadTextures(dev, s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}

	sim := scene.NewSim(s)
	q := recording.New(recording.WithFallbackTexture(dev.WhiteTexture()))
	r, err := fx.New(sim, textures, q, dev, fx.WithFramebuffers(cfg.framebuffers))
	if err != nil {
		return err
	}
	defer r.Close()

	cam := s.Camera
	bg := [4]float32{s.Background[0], s.Background[1], s.Background[2], s.Background[3]}
	white := color.RGBA{255, 255, 255, 255}

	bar := progressbar.Default(int64(frames), "rendering")
	for i := 0; i < frames; i++ {
		sim.Step(i)

		recording.SetupView(q, width, height, 1)
		q.Clear(bg, false)
		if err := r.SetView(cam.Zoom, -cam.X*cam.Zoom, -cam.Y*cam.Zoom, width, height); err != nil {
			return err
		}
		if err := r.PrepareOrdered(); err != nil {
			return err
		}
		for _, layer := range sim.Layers() {
			r.DrawUnordered(layer)
		}
		r.DrawOrdered(sim.OrderedIDs(), 0, 0, white)
		r.EndFrame()

		if err := q.Emit(dev); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		name := filepath.Join(out, fmt.Sprintf("frame_%03d.png", i))
		if err := dev.SavePNG(name); err != nil {
			return err
		}
		_ = bar.Add(1)
	}
	fxrender.Logger().Info("fxdemo: done", "frames", frames, "dir", out)
	return nil
}
