package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"joybind/internal/autostart"
	"joybind/internal/binding"
	"joybind/internal/config"
	"joybind/internal/hotkey"
	"joybind/internal/logging"
	"joybind/internal/osutils"
	"joybind/internal/tray"
	"joybind/internal/vjoy"
)

// replayer serializes access to the device; hotkeys and menu clicks arrive on
// their own goroutines and may still be running at shutdown.
type replayer struct {
	mu  sync.Mutex
	dev *vjoy.Device
	set *binding.Set
}

func (r *replayer) replay(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.set.Replay(name, r.dev); err != nil {
		log.Printf("Bindings: replay %q: %v", name, err)
		return err
	}
	log.Printf("Bindings: replayed %q", name)
	return nil
}

func (r *replayer) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.dev.Reset(); err != nil {
		log.Printf("vJoy: reset failed: %v", err)
	}
}

// close resets and relinquishes the device once in-flight replays are done.
// Later replays fail with vjoy.ErrSessionClosed.
func (r *replayer) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.dev.Reset(); err != nil && !errors.Is(err, vjoy.ErrSessionClosed) {
		log.Printf("vJoy: reset failed: %v", err)
	}
	closeDevice(r.dev)
}

// menuEntries lists the current bindings as Replay submenu items.
func (r *replayer) menuEntries() []tray.Entry {
	var entries []tray.Entry
	for _, b := range r.set.All() {
		name := b.Name
		title := name
		if b.Hotkey != "" {
			title = fmt.Sprintf("%s (%s)", name, b.Hotkey)
		}
		entries = append(entries, tray.Entry{
			Title:    title,
			Tooltip:  b.String(),
			Callback: func() { r.replay(name) },
		})
	}
	return entries
}

func runTrayMode(cfgMgr *config.Manager) {
	cfg := cfgMgr.Get()
	if !osutils.IsElevated() {
		log.Println("Warning: not running elevated; hotkeys will not reach elevated windows")
	}

	set, err := binding.Load(cfg.Bindings.File)
	if err != nil {
		log.Fatalf("Failed to load bindings: %v", err)
	}
	dev := openDevice(cfg)
	r := &replayer{dev: dev, set: set}
	defer r.close()

	hk := hotkey.NewManager()
	bindHotkeys := func() {
		hk.Clear()
		n := hk.BindAll(set.All(), func(b binding.Binding) { r.replay(b.Name) })
		log.Printf("Hotkey: %d of %d bindings have hotkeys", n, set.Len())
	}
	bindHotkeys()

	t := tray.New("joybind", fmt.Sprintf("joybind - vJoy device %d", dev.ID()), func() {
		if err := hk.Start(); err != nil {
			log.Printf("Failed to start hotkey listener: %v", err)
		}
	})
	replayMenu := t.AddMenuItem("Replay", "Replay a recorded binding", nil)
	t.SetSubMenu(replayMenu, r.menuEntries())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgMgr.RegisterChangeCallback(func(c *config.Config) {
		logging.SetDebug(c.Logging.Debug)
	})
	if err := cfgMgr.Watch(ctx); err != nil {
		log.Printf("Warning: config changes will not be picked up: %v", err)
	}
	err = config.WatchFile(ctx, cfg.Bindings.File, func() {
		fresh, err := binding.Load(cfg.Bindings.File)
		if err != nil {
			log.Printf("Bindings: reload failed: %v", err)
			return
		}
		set.Replace(fresh)
		log.Printf("Bindings: reloaded %d bindings", set.Len())
		bindHotkeys()
		t.SetSubMenu(replayMenu, r.menuEntries())
	})
	if err != nil {
		log.Printf("Warning: binding changes will not be picked up: %v", err)
	}

	t.AddMenuItem("Reset device", "Return every control to its neutral state", r.reset)
	addAutostartItem(t, cfgMgr.Path())
	t.AddSeparator()
	t.AddMenuItem("Quit", "Exit joybind", func() {
		log.Println("Quit requested")
		t.Stop()
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutting down...")
		t.Stop()
	}()

	log.Println("joybind running. Press Ctrl+C to stop.")
	t.Run()

	hk.Stop()
}

func autostartTitle(on bool) string {
	if on {
		return "Start at login: on"
	}
	return "Start at login: off"
}

// addAutostartItem adds a menu item that toggles launching the tray at login.
func addAutostartItem(t *tray.Tray, cfgPath string) {
	store, err := autostart.NewStore()
	if err != nil {
		log.Printf("Autostart unavailable: %v", err)
		return
	}
	entry, err := autostart.NewEntry(store, "-tray", "-config", cfgPath)
	if err != nil {
		log.Printf("Autostart unavailable: %v", err)
		return
	}
	var id int
	id = t.AddMenuItem(autostartTitle(entry.IsEnabled()), entry.Command(), func() {
		on, err := entry.Toggle()
		if err != nil {
			log.Printf("Failed to change autostart: %v", err)
			return
		}
		t.SetItemTitle(id, autostartTitle(on))
	})
}
