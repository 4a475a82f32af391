package runner

// Callback is a user hook invoked through the frequency gate with the runner
// and the index of the training session that triggered it. Returning false
// requests a graceful stop.
type Callback func(r *Runner, session int) bool

// callbackGate fires the registered callbacks whenever the gated counter
// crosses a multiple of the configured frequency.
type callbackGate struct {
	everyEpisodes  int
	everyTimesteps int
	callbacks      []Callback
}

func newCallbackGate(opts RunOptions) *callbackGate {
	return &callbackGate{
		everyEpisodes:  opts.CallbackEveryEpisodes,
		everyTimesteps: opts.CallbackEveryTimesteps,
		callbacks:      opts.Callbacks,
	}
}

func (g *callbackGate) onEpisode(r *Runner, rs *runState, session int) {
	if g.everyEpisodes <= 0 || len(g.callbacks) == 0 {
		return
	}
	if rs.episodes%g.everyEpisodes != 0 {
		return
	}
	if !g.invoke(r, session) {
		rs.finished = true
	}
}

func (g *callbackGate) onTimestep(r *Runner, rs *runState, session int) {
	if g.everyTimesteps <= 0 || len(g.callbacks) == 0 {
		return
	}
	if rs.timesteps%g.everyTimesteps != 0 {
		return
	}
	if !g.invoke(r, session) {
		rs.finished = true
	}
}

// invoke calls every registered callback and ANDs the results. All callbacks
// run even after one returns false; side-effecting callbacks rely on that.
func (g *callbackGate) invoke(r *Runner, session int) bool {
	result := true
	for _, cb := range g.callbacks {
		ok := cb(r, session)
		result = result && ok
	}
	return result
}
