package rfe

// testApp is a minimal App used across scheduler tests. Each callback
// is optional; a nil hook is simply skipped.
type testApp struct {
	rate      Rate
	onInit    func(h *Handle) error
	onRun     func(h *Handle)
	onHk      func(h *Handle)
	onOutData func(h *Handle)
}

func (a *testApp) Init(h *Handle) error {
	if a.onInit != nil {
		return a.onInit(h)
	}
	return nil
}

func (a *testApp) Run(h *Handle) {
	if a.onRun != nil {
		a.onRun(h)
	}
}

func (a *testApp) Hk(h *Handle) {
	if a.onHk != nil {
		a.onHk(h)
	}
}

func (a *testApp) OutData(h *Handle) {
	if a.onOutData != nil {
		a.onOutData(h)
	}
}

func (a *testApp) Rate() Rate { return a.rate }
