package app

import "modul_ajar_generator/generator"

// Operation names what a Loading controller is busy with.
type Operation string

const (
	OpGenerate   Operation = "generate"
	OpExportPDF  Operation = "export_pdf"
	OpExportText Operation = "export_txt"
)

// State is one of Idle, Loading, Ready or Failed.
type State interface {
	Name() string
	isState()
}

// Idle: nothing submitted yet.
type Idle struct{}

// Loading: a generation or export is in flight.
type Loading struct {
	Op Operation
}

// Ready: the last operation succeeded and a plan is available.
type Ready struct {
	Plan generator.Plan
}

// Failed: the last operation failed. Plan is set only when an export failed,
// so the plan generated earlier stays available.
type Failed struct {
	Err     error
	Message string
	Plan    *generator.Plan
}

func (Idle) Name() string    { return "idle" }
func (Loading) Name() string { return "loading" }
func (Ready) Name() string   { return "ready" }
func (Failed) Name() string  { return "failed" }

func (Idle) isState()    {}
func (Loading) isState() {}
func (Ready) isState()   {}
func (Failed) isState()  {}

// PlanOf returns the plan carried by s, if any.
func PlanOf(s State) (generator.Plan, bool) {
	switch s := s.(type) {
	case Ready:
		return s.Plan, true
	case Failed:
		if s.Plan != nil {
			return *s.Plan, true
		}
	}
	return generator.Plan{}, false
}
