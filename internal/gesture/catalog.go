package gesture

// RegisterBuiltins registers the full built-in gesture catalog with the
// detector. Registration order is stable so ties resolve deterministically.
func RegisterBuiltins(d *Detector) {
	d.Register(OpenPalmGesture{})
	d.Register(ClosedFistGesture{})
	d.Register(PointingGesture{})
	d.Register(PeaceSignGesture{})
	d.Register(ThumbsUpGesture{})
	d.Register(RockOnGesture{})
	d.Register(PinchGesture{})
	d.Register(PinchDragGesture{})
	d.Register(VMoveGesture{})
	d.Register(NewSwipeLeft())
	d.Register(NewSwipeRight())
	d.Register(NewSwipeUp())
	d.Register(NewSwipeDown())
	d.Register(WaveGesture{})
	d.Register(RotateCWGesture{})
}
