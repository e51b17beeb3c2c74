// Package app wires the capture, tracking, recognition, and dispatch stages
// into the running Mudra application.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ayusman/mudra/internal/bus"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/filter"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/handler"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tracking"
	"github.com/ayusman/mudra/internal/validator"
)

// App owns every pipeline stage and the single detection goroutine that
// drives them.
type App struct {
	cfg   config.Config
	store *store.Store
	log   zerolog.Logger

	camera   capture.Camera
	motion   *capture.MotionGate
	tracker  tracking.Tracker
	filter   *filter.LandmarkFilter
	frames   *gesture.Context
	detector *gesture.Detector
	valid    *validator.Validator
	bus      *bus.Bus
	handlers *handler.Manager
	plugins  *plugin.Manager
	exec     *plugin.Executor

	mu         sync.RWMutex
	enabled    bool
	stopCh     chan struct{}
	wg         sync.WaitGroup
	handlerSub int
	journalSub int
	journalCh  chan bus.Event
	journalWG  sync.WaitGroup
}

// New builds an App from validated configuration. The store may be nil, in
// which case templates, bindings, and the event journal are skipped.
func New(cfg config.Config, st *store.Store, log zerolog.Logger) (*App, error) {
	f, err := filter.New(cfg.Pipeline.FilterWindow)
	if err != nil {
		return nil, fmt.Errorf("creating landmark filter: %w", err)
	}
	frames, err := gesture.NewContext(cfg.Pipeline.ContextFrames)
	if err != nil {
		return nil, fmt.Errorf("creating frame context: %w", err)
	}
	v, err := validator.New(cfg.Pipeline.StabilityFrames, log)
	if err != nil {
		return nil, fmt.Errorf("creating stability validator: %w", err)
	}

	a := &App{
		cfg:      cfg,
		store:    st,
		log:      log.With().Str("component", "app").Logger(),
		camera:   capture.NewCamera(cfg.Camera.ID, cfg.Camera.IdleFPS, log),
		motion:   capture.NewMotionGate(cfg.Camera.MotionThreshold),
		filter:   f,
		frames:   frames,
		detector: gesture.NewDetector(cfg.Pipeline.MinConfidence, log),
		valid:    v,
		bus:      bus.New(log),
		handlers: handler.NewManager(log),
		plugins:  plugin.NewManager(cfg.Plugins.Dir, log),
		exec:     plugin.NewExecutor(cfg.Plugins.Timeout),
		enabled:  true,
	}
	gesture.RegisterBuiltins(a.detector)

	trackerCfg := tracking.Config{
		MaxHands:               cfg.Tracking.MaxHands,
		MinDetectionConfidence: cfg.Tracking.MinDetectionConfidence,
		MinTrackingConfidence:  cfg.Tracking.MinTrackingConfidence,
	}
	if mp, err := tracking.NewMediaPipeTracker(trackerCfg); err == nil {
		a.tracker = mp
		a.log.Info().Msg("using mediapipe hand tracking")
	} else {
		a.log.Warn().Err(err).Msg("mediapipe unavailable, using mock tracker")
		a.tracker = tracking.NewMockTracker()
	}

	return a, nil
}

// SetTracker swaps the tracking backend. Must be called before Start.
func (a *App) SetTracker(t tracking.Tracker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tracker = t
}

// SetCamera swaps the camera. Must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// SetEnabled pauses or resumes recognition without stopping the pipeline.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
	if !enabled {
		a.filter.Reset()
		a.frames.Reset()
		a.valid.Reset()
	}
}

// IsEnabled reports whether recognition is active.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// LoadTemplates registers stored gesture templates with the detector.
// Templates with missing or broken payloads are skipped with a warning.
func (a *App) LoadTemplates() error {
	if a.store == nil {
		return nil
	}
	templates, err := a.store.Templates().List()
	if err != nil {
		return fmt.Errorf("listing templates: %w", err)
	}

	loaded := 0
	for _, t := range templates {
		tmpl, err := a.store.Templates().LoadGesture(t.ID)
		if err != nil {
			a.log.Warn().Err(err).Str("template", t.Name).Msg("skipping broken template")
			continue
		}
		a.detector.Register(gesture.NewTemplateGesture(tmpl, 0))
		loaded++
	}
	a.log.Info().Int("count", loaded).Msg("loaded gesture templates")
	return nil
}

// LoadBindings registers an action handler for every enabled binding,
// dispatching to the bound plugin when its gesture fires.
func (a *App) LoadBindings() error {
	if a.store == nil {
		return nil
	}
	bindings, err := a.store.Bindings().ListEnabled()
	if err != nil {
		return fmt.Errorf("listing bindings: %w", err)
	}

	for _, b := range bindings {
		name := b.PluginName + "/" + b.ActionName
		fn := a.bindingFunc(b)
		if _, err := a.handlers.Register(name, b.Priority, []string{b.Gesture}, b.Cooldown, fn); err != nil {
			a.log.Warn().Err(err).Str("binding", b.ID).Msg("skipping invalid binding")
			continue
		}
	}
	a.log.Info().Int("count", a.handlers.HandlerCount()).Msg("registered action handlers")
	return nil
}

// bindingFunc builds the handler.Func that runs one binding's plugin action.
func (a *App) bindingFunc(b *store.Binding) handler.Func {
	pluginName := b.PluginName
	action := b.ActionName
	pluginCfg := b.Config

	return func(evt bus.Event) (*handler.Outcome, error) {
		p, err := a.plugins.Get(pluginName)
		if err != nil {
			return nil, err
		}
		req := &plugin.Request{
			Action:     action,
			Gesture:    evt.Gesture,
			Confidence: evt.Confidence,
			Data:       evt.Data,
			Config:     pluginCfg,
		}
		resp, err := a.exec.Execute(context.Background(), p, req)
		if err != nil {
			return nil, err
		}
		if !resp.Success {
			return nil, fmt.Errorf("plugin %s: %s", pluginName, resp.Error)
		}
		var data map[string]any
		if len(resp.Data) > 0 {
			if err := json.Unmarshal(resp.Data, &data); err != nil {
				a.log.Debug().Err(err).Str("plugin", pluginName).Msg("plugin returned non-object data")
			}
		}
		return &handler.Outcome{Message: action, Data: data}, nil
	}
}

// DiscoverPlugins scans the plugin directory.
func (a *App) DiscoverPlugins() error {
	return a.plugins.Discover()
}

// Start opens the camera and launches the detection goroutine. Calling Start
// on a running App is a no-op.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("opening camera: %w", err)
	}
	a.camera.SetFPS(a.cfg.Camera.IdleFPS)

	a.handlerSub = a.bus.Subscribe(func(evt bus.Event) {
		a.handlers.HandleEvent(evt)
	}, bus.EventGesture)
	if a.store != nil {
		// The journal writes through sqlite, so it runs on its own
		// goroutine behind a bounded queue rather than on the publish path.
		a.journalCh = make(chan bus.Event, 64)
		a.journalSub = a.bus.Subscribe(a.enqueueJournal)
		a.journalWG.Add(1)
		go a.journalWorker()
	}

	a.stopCh = make(chan struct{})
	a.wg.Add(1)
	go a.runPipeline(a.stopCh)

	a.log.Info().Msg("detection pipeline started")
	return nil
}

// Stop halts the pipeline and releases the camera and tracker. Safe to call
// more than once.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh := a.stopCh
	a.stopCh = nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	a.wg.Wait()

	a.bus.Unsubscribe(a.handlerSub)
	if a.journalSub != 0 {
		a.bus.Unsubscribe(a.journalSub)
		a.journalSub = 0
		// Ingestion is stopped and the subscription removed, so no more
		// events can arrive; drain what is queued and stop the worker.
		close(a.journalCh)
		a.journalWG.Wait()
		a.journalCh = nil
	}

	if err := a.camera.Close(); err != nil {
		a.log.Warn().Err(err).Msg("closing camera")
	}
	if err := a.tracker.Close(); err != nil {
		a.log.Warn().Err(err).Msg("closing tracker")
	}
	a.motion.Close()

	a.log.Info().Msg("detection pipeline stopped")
}

// enqueueJournal runs on the bus's publish path and must never block. If the
// journal worker falls behind its queue, events are dropped from the journal
// only; delivery to other subscribers is unaffected.
func (a *App) enqueueJournal(evt bus.Event) {
	select {
	case a.journalCh <- evt:
	default:
		a.log.Warn().Str("event", evt.ID).Msg("journal queue full, dropping event")
	}
}

func (a *App) journalWorker() {
	defer a.journalWG.Done()
	for evt := range a.journalCh {
		a.journal(evt)
	}
}

// journal persists one bus event for the API's event log.
func (a *App) journal(evt bus.Event) {
	var data json.RawMessage
	if evt.Data != nil {
		if b, err := json.Marshal(evt.Data); err == nil {
			data = b
		}
	}
	entry := &store.JournalEntry{
		ID:         evt.ID,
		Type:       string(evt.Type),
		Gesture:    evt.Gesture,
		Confidence: evt.Confidence,
		Data:       data,
		CreatedAt:  evt.Timestamp,
	}
	if err := a.store.Journal().Append(entry); err != nil {
		a.log.Warn().Err(err).Msg("appending journal entry")
	}
}

// Bus returns the event bus.
func (a *App) Bus() *bus.Bus {
	return a.bus
}

// Detector returns the gesture detector registry.
func (a *App) Detector() *gesture.Detector {
	return a.detector
}

// Handlers returns the action handler manager.
func (a *App) Handlers() *handler.Manager {
	return a.handlers
}

// Camera returns the camera in use.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Plugins returns the plugin manager.
func (a *App) Plugins() *plugin.Manager {
	return a.plugins
}
