//go:generate glslc ../../assets/shaders/vertex/simple_shader.vert -o ../../assets/shaders/vertex/simple_shader.vert.spv
//go:generate glslc ../../assets/shaders/fragment/simple_shader.frag -o ../../assets/shaders/fragment/simple_shader.frag.spv

package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/vulkan-go/vulkan"
	"github.com/xlab/catcher"
	"github.com/xlab/closer"

	"github.com/vulkan-go/tutorial/config"
	"github.com/vulkan-go/tutorial/engine"
	"github.com/vulkan-go/tutorial/logging"
	"github.com/vulkan-go/tutorial/renderer"
	"github.com/vulkan-go/tutorial/window"
)

var (
	configPath  = flag.String("config", "", "path to a YAML config file")
	info        = flag.Bool("info", false, "print the device report after start-up and exit")
	verbose     = flag.Bool("v", false, "log info messages")
	veryVerbose = flag.Bool("vv", false, "log debug messages")
	quiet       = flag.Bool("q", false, "only log errors")
	noColor     = flag.Bool("no-color", false, "disable colored log levels")
)

func init() {
	runtime.LockOSThread()
}

func main() {
	flag.Parse()
	defer closer.Close()
	defer catcher.Catch(
		catcher.RecvLog(true),
		catcher.RecvDie(-1),
	)

	cfg, err := config.Load(*configPath)
	if err != nil {
		closer.Fatalln(err)
	}
	if err := cfg.Validate(renderer.Presets()); err != nil {
		closer.Fatalln(err)
	}
	if _, err := renderer.ParseDepthFormat(cfg.Pipeline.DepthFormat); err != nil {
		closer.Fatalln(err)
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	log, handler, err := logging.NewLogger(os.Stdout, logging.Options{
		Level:   logging.LevelFromFlags(*veryVerbose, *verbose, *quiet, level),
		File:    cfg.Log.File,
		NoColor: *noColor,
	})
	if err != nil {
		closer.Fatalln(err)
	}
	defer handler.Close()

	if err := glfw.Init(); err != nil {
		closer.Fatalln(err)
	}
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vk.Init(); err != nil {
		glfw.Terminate()
		closer.Fatalln(err)
	}

	win, err := window.New(window.Options{
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		Title:     cfg.Window.Title,
		Resizable: cfg.Window.Resizable,
	})
	if err != nil {
		glfw.Terminate()
		closer.Fatalln(err)
	}

	r := renderer.New(renderer.Options{
		AppName: cfg.AppName,
		Validation: renderer.ValidationOptions{
			Enabled: cfg.Validation.Enabled,
			Layers:  cfg.Validation.Layers,
		},
		DeviceExtensions: cfg.DeviceExtensions,
		VertexShader:     cfg.Shaders.Vertex,
		FragmentShader:   cfg.Shaders.Fragment,
		Preset:           cfg.Pipeline.Preset,
		Samples:          cfg.Pipeline.Samples,
		DepthFormat:      cfg.Pipeline.DepthFormat,
	}, log)

	if *info {
		err := r.Init(win)
		fmt.Println("\n\n" + r.Report().Render())
		r.Destroy()
		win.Destroy()
		glfw.Terminate()
		if err != nil {
			closer.Fatalln(err)
		}
		return
	}

	e := engine.New(win, r, cfg.FramesPerSecond, log)
	closer.Bind(e.Stop)
	err = e.Run()
	glfw.Terminate()
	if err != nil {
		log.Error("start-up failed", "err", err)
		closer.Fatalln(err)
	}
	log.Info("Bye!")
}
