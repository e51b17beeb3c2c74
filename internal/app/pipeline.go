package app

import (
	"time"
)

// runPipeline is the single detection goroutine. Each tick it reads a frame,
// gates on motion, tracks the hand, smooths the landmarks, runs the gesture
// catalog, and feeds the winner through the stability validator. Confirmed
// gestures go out on the bus.
//
// The loop runs at the idle rate until motion appears, then at the active
// rate until the idle timeout elapses with no motion.
func (a *App) runPipeline(stopCh <-chan struct{}) {
	defer a.wg.Done()

	idleInterval := time.Second / time.Duration(a.cfg.Camera.IdleFPS)
	activeInterval := time.Second / time.Duration(a.cfg.Camera.ActiveFPS)

	active := false
	lastMotion := time.Now()
	missed := 0

	ticker := time.NewTicker(idleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
		}
		if !a.IsEnabled() {
			continue
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			a.log.Warn().Err(err).Msg("reading frame")
			continue
		}

		moving, _ := a.motion.Detect(frame)
		if moving {
			lastMotion = time.Now()
			if !active {
				active = true
				a.camera.SetFPS(a.cfg.Camera.ActiveFPS)
				ticker.Reset(activeInterval)
				a.log.Debug().Msg("motion detected, switching to active rate")
			}
		} else if active && time.Since(lastMotion) > a.cfg.Camera.IdleTimeout {
			active = false
			a.camera.SetFPS(a.cfg.Camera.IdleFPS)
			ticker.Reset(idleInterval)
			a.filter.Reset()
			a.frames.Reset()
			a.valid.Observe(nil)
			missed = 0
			a.log.Debug().Msg("motion gone, switching to idle rate")
		}

		if !active {
			frame.Close()
			continue
		}

		hands, err := a.tracker.Track(frame)
		frame.Close()
		if err != nil {
			a.log.Warn().Err(err).Msg("tracking hand")
			continue
		}

		// Low-quality landmarks are treated as no detection, same as an
		// empty frame.
		if len(hands) > 0 && !hands[0].Quality() {
			hands = nil
		}
		if len(hands) == 0 {
			a.valid.Observe(nil)
			missed++
			if missed > a.cfg.Tracking.LossFrames {
				a.filter.Reset()
				a.frames.Reset()
				missed = 0
			}
			continue
		}
		missed = 0

		// One hand drives recognition; a second hand in frame is ignored.
		smoothed := a.filter.Update(&hands[0])
		a.frames.Push(smoothed)

		res := a.detector.DetectBest(smoothed, a.frames)
		if evt := a.valid.Observe(res); evt != nil {
			a.bus.Publish(*evt)
		}
	}
}
