package orchestrator

import "sync/atomic"

// Mode is the orchestrator's single operating mode, derived from three
// independent capability flags rather than stored as its own bit.
type Mode string

const (
	ModeLegacy   Mode = "legacy"
	ModeMinimal  Mode = "minimal"
	ModeStandard Mode = "standard"
	ModeFull     Mode = "full"
)

// modeFlags is the projection state Mode is computed from: planning
// selects the planning workflow over the legacy sequential one,
// reflection gates the critic pass, guardrails gates the input/output
// safety checks.
type modeFlags struct {
	planning   bool
	reflection bool
	guardrails bool
}

func (f modeFlags) derive() Mode {
	switch {
	case f.planning && f.reflection && f.guardrails:
		return ModeFull
	case f.planning && f.guardrails:
		return ModeStandard
	case f.guardrails:
		return ModeMinimal
	default:
		return ModeLegacy
	}
}

// modeState holds the current flags plus the Mode they derive, cached
// together so Mode() never recomputes on the read path.
type modeState struct {
	flags modeFlags
	mode  Mode
}

// modeHolder is an atomically-swapped modeState, mirroring
// internal/policy.Policy's atomic.Pointer[Settings] cache idiom.
type modeHolder struct {
	current atomic.Pointer[modeState]
}

func newModeHolder(planning, reflection, guardrails bool) *modeHolder {
	h := &modeHolder{}
	h.set(modeFlags{planning: planning, reflection: reflection, guardrails: guardrails})
	return h
}

func (h *modeHolder) set(f modeFlags) {
	h.current.Store(&modeState{flags: f, mode: f.derive()})
}

func (h *modeHolder) Mode() Mode {
	return h.current.Load().mode
}

func (h *modeHolder) flagsNow() modeFlags {
	return h.current.Load().flags
}

// SetPlanning enables or disables the planning workflow, recomputing Mode.
func (h *modeHolder) SetPlanning(on bool) {
	f := h.flagsNow()
	f.planning = on
	h.set(f)
}

// SetReflection enables or disables the generator/critic reflection pass.
func (h *modeHolder) SetReflection(on bool) {
	f := h.flagsNow()
	f.reflection = on
	h.set(f)
}

// SetGuardrails enables or disables the input/output safety checks.
func (h *modeHolder) SetGuardrails(on bool) {
	f := h.flagsNow()
	f.guardrails = on
	h.set(f)
}
