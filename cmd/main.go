// joybind - window capture and vJoy keybinding replay for Windows
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"joybind/internal/binding"
	"joybind/internal/calibrate"
	"joybind/internal/capture"
	"joybind/internal/config"
	"joybind/internal/isolate"
	"joybind/internal/logging"
	"joybind/internal/osutils"
	"joybind/internal/vjoy"
	"joybind/internal/window"
)

var (
	version = "0.1.0"

	configPath = flag.String("config", "", "Configuration file (default %APPDATA%\\joybind\\config.toml)")
	deviceID   = flag.Uint("device", 0, "vJoy device number (overrides config)")
	libPath    = flag.String("dll", "", "Path to vJoyInterface.dll (overrides config)")
	debug      = flag.Bool("debug", false, "Log every driver call")
	showVer    = flag.Bool("version", false, "Show version")

	listDevices = flag.Bool("devices", false, "List vJoy devices and their owners")
	listWindows = flag.Bool("windows", false, "List windows matching the filter flags")
	doCapture   = flag.Bool("capture", false, "Capture matching windows, or every monitor when no filter is given")
	doCalibrate = flag.Bool("calibrate", false, "Interactively discover and name keybindings")
	doSelect    = flag.Bool("select-window", false, "Interactively pick the window under the cursor")
	replayName  = flag.String("replay", "", "Replay the named binding")
	runTray     = flag.Bool("tray", false, "Run in the system tray with binding hotkeys")

	title     = flag.String("title", "", "Exact window title")
	class     = flag.String("class", "", "Exact window class")
	titleRe   = flag.String("title-re", "", "Window title regular expression")
	classRe   = flag.String("class-re", "", "Window class regular expression")
	pid       = flag.Uint("pid", 0, "Owning process id")
	hwnd      = flag.String("hwnd", "", "Window handle (decimal or 0x hex)")
	outDir    = flag.String("out", "", "Capture output directory (overrides config)")
	isolated  = flag.Bool("isolated", false, "Capture windows in a worker process")
	preview   = flag.Bool("preview", false, "Open captures in the default image viewer")
	focus     = flag.Bool("focus", false, "Bring the first matching window to the front before replaying")
	workerRun = flag.Bool(isolate.WorkerFlag, false, "Internal: capture -hwnd and write a PNG to stdout")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("joybind version %s\n", version)
		return
	}

	// The worker writes image data to stdout, so it must not load config or log files.
	if *workerRun {
		runWorker()
		return
	}

	cfgMgr, err := config.NewManager(*configPath)
	if err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}
	cfgMgr.SetOverrides(applyFlags)
	if err := cfgMgr.Load(); err != nil {
		log.Printf("Warning: failed to load config: %v", err)
	}
	cfg := cfgMgr.Get()

	closer, err := logging.Setup(logging.Options{Debug: cfg.Logging.Debug, Dir: cfg.Logging.Dir})
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closer.Close()

	switch {
	case *listDevices:
		runDevices(cfg)
	case *listWindows:
		runWindows()
	case *doCapture:
		runCapture(cfg)
	case *doCalibrate:
		runCalibrate(cfg)
	case *doSelect:
		runSelect(cfg)
	case *replayName != "":
		if err := runReplay(cfg, *replayName); err != nil {
			log.Fatalf("Failed to replay %q: %v", *replayName, err)
		}
	case *runTray:
		runTrayMode(cfgMgr)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

// applyFlags lets command-line flags override the loaded configuration.
func applyFlags(cfg *config.Config) {
	if *deviceID != 0 {
		cfg.Device.ID = *deviceID
	}
	if *libPath != "" {
		cfg.Device.LibraryPath = *libPath
	}
	if *debug {
		cfg.Logging.Debug = true
	}
	if *outDir != "" {
		cfg.Capture.OutputDir = *outDir
	}
	if *isolated {
		cfg.Capture.Isolated = true
	}
	if *preview {
		cfg.Capture.Preview = true
	}
}

func filterFromFlags() (window.Filter, error) {
	f := window.Filter{
		Title:      *title,
		Class:      *class,
		TitleRegex: *titleRe,
		ClassRegex: *classRe,
		ProcessID:  uint32(*pid),
	}
	if *hwnd != "" {
		h, err := window.ParseHandle(*hwnd)
		if err != nil {
			return f, err
		}
		f.Handle = h
	}
	return f, nil
}

func newLocator() *window.Locator {
	sys, err := window.NewSystem()
	if err != nil {
		log.Fatalf("Failed to access windows: %v", err)
	}
	return window.NewLocator(sys)
}

func newCapturer(cfg *config.Config) *capture.Capturer {
	gfx, err := capture.NewGraphics(cfg.Capture.FullContent)
	if err != nil {
		log.Fatalf("Failed to access graphics: %v", err)
	}
	return capture.New(gfx, capture.NewDisplay())
}

func openDevice(cfg *config.Config) *vjoy.Device {
	drv, err := vjoy.Load(cfg.Device.LibraryPath)
	if err != nil {
		log.Fatalf("Failed to load vJoy: %v", err)
	}
	dev, err := vjoy.Open(drv, cfg.Device.ID)
	if err != nil {
		log.Fatalf("Failed to open vJoy device %d: %v", cfg.Device.ID, err)
	}
	return dev
}

func closeDevice(dev *vjoy.Device) {
	if err := dev.Close(); err != nil {
		log.Printf("Warning: %v", err)
	}
}

func runWorker() {
	h, err := window.ParseHandle(*hwnd)
	if err != nil {
		log.Fatalf("Capture worker: %v", err)
	}
	gfx, err := capture.NewGraphics(true)
	if err != nil {
		log.Fatalf("Capture worker: %v", err)
	}
	c := capture.New(gfx, capture.NewDisplay())
	if err := isolate.RunWorker(os.Stdout, h, c.Window); err != nil {
		log.Fatalf("Capture worker: %v", err)
	}
}

func runDevices(cfg *config.Config) {
	drv, err := vjoy.Load(cfg.Device.LibraryPath)
	if err != nil {
		log.Fatalf("Failed to load vJoy: %v", err)
	}
	s, err := vjoy.Inventory(drv)
	if err != nil {
		log.Fatalf("Failed to list devices: %v", err)
	}

	fmt.Printf("vJoy %#x (%s, %s, serial %s)\n", s.Version, s.Product, s.Manufacturer, s.SerialNumber)
	fmt.Printf("Devices: %d of %d configured\n", s.Existing, s.MaxDevices)
	fmt.Println("-------------------")
	for _, d := range s.Devices {
		fmt.Printf("ID: %d\n", d.ID)
		fmt.Printf("  Status: %s\n", d.Status)
		if d.Status == vjoy.StatusBusy || d.Status == vjoy.StatusOwn {
			fmt.Printf("  Owner PID: %d\n", d.OwnerPID)
		}
	}
}

func runWindows() {
	f, err := filterFromFlags()
	if err != nil {
		log.Fatalf("%v", err)
	}
	if f.IsEmpty() {
		log.Fatalf("-windows needs at least one of -title, -class, -title-re, -class-re, -pid, -hwnd")
	}
	loc := newLocator()
	set, err := loc.Find(f)
	if err != nil {
		log.Fatalf("Failed to find windows: %v", err)
	}
	for _, h := range set.Sorted() {
		info, err := loc.Describe(h)
		if err != nil {
			log.Printf("Warning: %s: %v", h, err)
			continue
		}
		fmt.Println(info)
	}
}

func runCapture(cfg *config.Config) {
	f, err := filterFromFlags()
	if err != nil {
		log.Fatalf("%v", err)
	}
	var handles []window.Handle
	if !f.IsEmpty() {
		set, err := newLocator().Find(f)
		if err != nil {
			log.Fatalf("Failed to find windows: %v", err)
		}
		if len(set) == 0 {
			log.Fatalf("No window matches the filter")
		}
		handles = set.Sorted()
	}

	var bufs []*capture.PixelBuffer
	if cfg.Capture.Isolated && len(handles) > 0 {
		runner, err := isolate.NewRunner()
		if err != nil {
			log.Fatalf("%v", err)
		}
		for _, h := range handles {
			buf, err := runner.CaptureWindow(h)
			if err != nil {
				log.Fatalf("Failed to capture %s: %v", h, err)
			}
			bufs = append(bufs, buf)
		}
	} else {
		seq := newCapturer(cfg).Shots(handles)
		defer seq.Close()
		if bufs, err = seq.Collect(); err != nil {
			log.Fatalf("Capture failed: %v", err)
		}
	}

	paths, err := saveShots(cfg, bufs, time.Now(), capture.Show)
	for _, path := range paths {
		fmt.Println(path)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

// saveShots writes each buffer to its own shot file and, when previews are
// enabled, opens the written file with show.
func saveShots(cfg *config.Config, bufs []*capture.PixelBuffer, now time.Time, show func(string) error) ([]string, error) {
	var paths []string
	for i, buf := range bufs {
		path := capture.ShotName(cfg.Capture.OutputDir, now, i)
		if err := capture.SavePNG(path, buf); err != nil {
			return paths, fmt.Errorf("failed to save %s: %w", path, err)
		}
		paths = append(paths, path)
		if cfg.Capture.Preview {
			if err := show(path); err != nil {
				log.Printf("Warning: %v", err)
			}
		}
	}
	return paths, nil
}

func runCalibrate(cfg *config.Config) {
	bindings, err := binding.Load(cfg.Bindings.File)
	if err != nil {
		log.Fatalf("Failed to load bindings: %v", err)
	}
	dev := openDevice(cfg)
	defer closeDevice(dev)

	p := calibrate.NewPrompter(os.Stdin, os.Stdout)
	kb := calibrate.NewKeyBinder(p, bindings, cfg.Calibration.Repeat, cfg.Calibration.Delay.Duration)
	setupErr := kb.Setup(dev)

	for _, b := range bindings.All() {
		fmt.Printf("%s: %s\n", b.Name, b)
	}
	if err := bindings.Save(cfg.Bindings.File); err != nil {
		log.Printf("Failed to save bindings: %v", err)
	}
	if setupErr != nil {
		log.Printf("Calibration ended: %v", setupErr)
	}
}

// previewFunc captures a window the configured way and opens the result.
func previewFunc(cfg *config.Config) calibrate.PreviewFunc {
	grab := func(h window.Handle) (*capture.PixelBuffer, error) {
		return newCapturer(cfg).Window(h)
	}
	if cfg.Capture.Isolated {
		runner, err := isolate.NewRunner()
		if err != nil {
			log.Fatalf("%v", err)
		}
		grab = runner.CaptureWindow
	}
	return func(h window.Handle) error {
		buf, err := grab(h)
		if err != nil {
			return err
		}
		_, err = capture.Preview(buf, cfg.Capture.OutputDir)
		return err
	}
}

func runSelect(cfg *config.Config) {
	var show calibrate.PreviewFunc
	if cfg.Capture.Preview {
		show = previewFunc(cfg)
	}
	loc := newLocator()
	p := calibrate.NewPrompter(os.Stdin, os.Stdout)
	info, err := calibrate.SelectWindow(p, loc, show)
	if err != nil {
		log.Fatalf("No window selected: %v", err)
	}
	fmt.Println(info)

	siblings, err := loc.ProcessWindows(info.ProcessID)
	if err != nil {
		log.Printf("Warning: %v", err)
		return
	}
	fmt.Printf("Windows of process %d:\n", info.ProcessID)
	for _, w := range siblings {
		fmt.Printf("  %s\n", w)
	}
}

// runReplay returns replay failures so that the device is released and focus
// restored before the process exits.
func runReplay(cfg *config.Config, name string) error {
	bindings, err := binding.Load(cfg.Bindings.File)
	if err != nil {
		log.Fatalf("Failed to load bindings: %v", err)
	}
	if *focus {
		f, err := filterFromFlags()
		if err != nil {
			log.Fatalf("%v", err)
		}
		set, err := newLocator().Find(f)
		if err != nil {
			log.Fatalf("Failed to find windows: %v", err)
		}
		if len(set) == 0 {
			log.Fatalf("No window matches the filter")
		}
		prev, err := osutils.ForegroundWindow()
		if err != nil {
			log.Printf("Warning: %v", err)
		}
		if err := osutils.SetForegroundWindow(set.Sorted()[0]); err != nil {
			log.Fatalf("Failed to focus window: %v", err)
		}
		if prev != 0 {
			defer func() {
				if err := osutils.SetForegroundWindow(prev); err != nil {
					log.Printf("Warning: could not restore %s: %v", prev, err)
				}
			}()
		}
	}

	dev := openDevice(cfg)
	defer closeDevice(dev)
	if err := bindings.Replay(name, dev); err != nil {
		return err
	}
	b, _ := bindings.Get(name)
	fmt.Printf("Replayed %s: %s\n", name, b)
	return nil
}
