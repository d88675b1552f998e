package theme

// Bootstrap is the host-startup hook: it initializes e when the
// configuration enables auto-init and returns a channel that is already
// closed, so hosts can sequence on "theme setup finished" without waiting on
// real work.
func Bootstrap(e *Engine, ec ExecutionContext) <-chan struct{} {
	if e.Config().EnableAutoInit {
		e.Initialize(ec)
	}
	done := make(chan struct{})
	close(done)
	return done
}
