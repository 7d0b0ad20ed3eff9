package facade

// State is the confirmation slot. It is either Idle or AwaitingConfirmation.
type State interface {
	isState()
}

// Idle means no cache-vs-live choice is pending.
type Idle struct{}

// AwaitingConfirmation holds the name that was just offered a cached result.
type AwaitingConfirmation struct {
	Name string
}

func (Idle) isState()                 {}
func (AwaitingConfirmation) isState() {}

// Outcome tells a Search caller what happened.
type Outcome int

const (
	// Searched: a lookup ran and the current entity was replaced.
	Searched Outcome = iota
	// NeedsConfirmation: the name is cached. Nothing was fetched and the
	// entity is unchanged. Call LoadFromCache to accept, or Search again with
	// the same name to force a live lookup.
	NeedsConfirmation
)

func (o Outcome) String() string {
	if o == NeedsConfirmation {
		return "needs-confirmation"
	}
	return "searched"
}

// Listener receives facade notifications synchronously, in registration order,
// on the goroutine that triggered them.
type Listener interface {
	EntityUpdated(f *Facade)
	ReportURLUpdated(f *Facade)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	OnEntity    func(f *Facade)
	OnReportURL func(f *Facade)
}

func (l ListenerFuncs) EntityUpdated(f *Facade) {
	if l.OnEntity != nil {
		l.OnEntity(f)
	}
}

func (l ListenerFuncs) ReportURLUpdated(f *Facade) {
	if l.OnReportURL != nil {
		l.OnReportURL(f)
	}
}
