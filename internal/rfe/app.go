package rfe

// App is the contract every scheduled application implements. Init
// runs once at registration; Run, Hk, and OutData are invoked every
// tick the app's corresponding rate is due, in that order.
type App interface {
	Init(h *Handle) error
	Run(h *Handle)
	Hk(h *Handle)
	OutData(h *Handle)
	Rate() Rate
}
