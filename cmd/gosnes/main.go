// Package main implements the gosnes SNES emulator executable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rng999/gosnes/internal/app"
	"github.com/rng999/gosnes/internal/scheduler"
	"github.com/rng999/gosnes/internal/version"
)

func main() {
	var (
		romFile    = flag.String("rom", "", "Path to SNES ROM file (optional for GUI mode)")
		configFile = flag.String("config", "", "Path to configuration file")
		nogui      = flag.Bool("nogui", false, "Run without GUI (headless mode)")
		frames     = flag.Int("frames", 120, "Frames to run in headless mode")
		help       = flag.Bool("help", false, "Show help message")
		showVer    = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}

	if *showVer {
		version.PrintBuildInfo()
		os.Exit(0)
	}

	setupGracefulShutdown()

	configPath := *configFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}

	application, err := app.NewApplicationWithMode(configPath, *nogui)
	if err != nil {
		log.Fatalf("failed to create application: %v", err)
	}

	if *nogui {
		application.GetConfig().Video.Backend = "headless"
	}

	defer func() {
		if err := application.Cleanup(); err != nil {
			log.Printf("application cleanup error: %v", err)
		}
	}()

	if *romFile != "" {
		if err := application.LoadROM(*romFile); err != nil {
			log.Fatalf("failed to load ROM: %v", err)
		}
	}

	if *nogui {
		if *romFile == "" {
			log.Fatal("ROM file required for headless mode")
		}
		runHeadlessMode(application, *frames)
		return
	}

	if err := runGUIMode(application); err != nil {
		log.Fatalf("GUI mode failed: %v", err)
	}
}

// runGUIMode runs the full GUI application
func runGUIMode(application *app.Application) error {
	config := application.GetConfig()
	windowWidth, windowHeight := config.GetWindowResolution()
	fmt.Printf("Window: %dx%d (scale %dx)\n", windowWidth, windowHeight, config.Window.Scale)
	fmt.Printf("Audio: %s (%d Hz, %.0f%% volume)\n",
		enabledString(config.Audio.Enabled), config.Audio.SampleRate, config.Audio.Volume*100)
	fmt.Printf("Video: %s filter, %s aspect, vsync %s\n",
		config.Video.Filter, config.Video.AspectRatio, enabledString(config.Video.VSync))

	if err := application.Run(); err != nil {
		return fmt.Errorf("application run failed: %v", err)
	}

	fmt.Printf("Frames rendered: %d\n", application.GetFrameCount())
	fmt.Printf("Session time: %v\n", application.GetUptime())
	fmt.Printf("Average FPS: %.1f\n", application.GetFPS())

	return nil
}

// runHeadlessMode steps emulation directly for a fixed number of frames,
// dumping a handful of frame buffers to PPM files for inspection.
func runHeadlessMode(application *app.Application, targetFrames int) {
	fmt.Printf("running %d frames headless\n", targetFrames)

	for frame := 0; frame < targetFrames; frame++ {
		result := application.StepFrame()
		if result.Status != scheduler.StatusOK {
			log.Printf("frame %d: stopped with status %v at %02x:%04x",
				frame, result.Status, result.HaltedAt.Bank, result.HaltedAt.Offset)
			break
		}

		if frame == 30 || frame == 60 || frame == targetFrames-1 {
			filename := fmt.Sprintf("frame_%03d.ppm", frame+1)
			if err := saveFrameBufferAsPPM(application.GetFrameBuffer(), filename); err != nil {
				log.Printf("failed to save %s: %v", filename, err)
			} else {
				fmt.Printf("saved %s\n", filename)
			}
		}
	}
}

// saveFrameBufferAsPPM saves an RGBA frame buffer as a PPM image file
func saveFrameBufferAsPPM(frame []byte, filename string) error {
	const w, h = 256, 224

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintf(file, "P3\n%d %d\n255\n", w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			fmt.Fprintf(file, "%d %d %d ", frame[i], frame[i+1], frame[i+2])
		}
		fmt.Fprintf(file, "\n")
	}

	return nil
}

// setupGracefulShutdown sets up signal handling for graceful shutdown
func setupGracefulShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Println("\ninterrupt received, shutting down")
		os.Exit(0)
	}()
}

func enabledString(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}

func printUsage() {
	fmt.Println("gosnes - Go SNES Emulator")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  gosnes [options]                     start GUI mode without ROM")
	fmt.Println("  gosnes -rom <file> [options]         start with ROM loaded")
	fmt.Println("  gosnes -nogui -rom <file> [options]  run headless mode")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("CONTROLS (default, player 1):")
	fmt.Println("  WASD          d-pad")
	fmt.Println("  L / K / I / J A / B / X / Y")
	fmt.Println("  U / O         L / R shoulder")
	fmt.Println("  Enter/Space   Start/Select")
	fmt.Println()
	fmt.Println("  Escape (2x)   quit (double-tap within 3 seconds)")
	fmt.Println("  F1-F10        save state")
	fmt.Println("  Shift+F1-F10  load state")
	fmt.Println()
	fmt.Println("CONFIGURATION:")
	fmt.Println("  Config file: ./config/gosnes.json")
	fmt.Println("  ROMs:        ./roms/")
	fmt.Println("  Save states: ./states/")
}
