package ingot

// StepKind identifies one abstract remote mutation.
type StepKind string

const (
	StepCreateNode   StepKind = "create_node"
	StepCreateMedia  StepKind = "create_media"
	StepUpdateNode   StepKind = "update_node"
	StepSetReference StepKind = "set_reference"
	StepDeleteNode   StepKind = "delete_node"
	StepDeleteMedia  StepKind = "delete_media"
)

// DeferredSlot is a field slot whose value is a remote ID that does not
// exist until a dependency step executes.
type DeferredSlot struct {
	// Field is the field machine name to fill, e.g. "field_member_of"
	Field string

	// DependsOn is the record ID whose created remote ID fills the slot
	DependsOn string

	// TargetID is the resolved remote ID; zero until resolved
	TargetID int64

	// Resolved is set once TargetID has been filled in
	Resolved bool
}

// ExecutionStep is one abstract remote mutation derived from the validated
// graph. Steps are created by the plan builder, mutated in place by the
// executor as dependency IDs resolve, and never reordered after creation.
type ExecutionStep struct {
	// Kind is the mutation variant
	Kind StepKind

	// Record is the source record; nil for cascade media deletions and
	// follow-up reference steps
	Record *Record

	// NodeID is the remote node ID this step targets. For create steps
	// it is zero until the executor reports the created ID.
	NodeID int64

	// MediaID is the remote media ID this step targets (media steps only)
	MediaID int64

	// File is the file reference for media creation steps
	File string

	// Weight is the relative ordering weight for directory-derived pages
	Weight int

	// Bundle, when non-empty, overrides the batch content type for this
	// step (directory-derived pages use a dedicated bundle)
	Bundle string

	// Deferred lists field slots awaiting remote IDs from earlier steps
	Deferred []*DeferredSlot

	// Executed is set by the executor once the remote mutation completed
	Executed bool
}

// UnresolvedSlots returns the deferred slots that still await a remote ID.
func (s *ExecutionStep) UnresolvedSlots() []*DeferredSlot {
	var pending []*DeferredSlot
	for _, slot := range s.Deferred {
		if !slot.Resolved {
			pending = append(pending, slot)
		}
	}
	return pending
}

// Plan is the ordered sequence of execution steps for one batch, together
// with the bookkeeping needed to feed created remote IDs forward into
// dependent steps.
//
// Thread-Safety: NOT safe for concurrent use. The pipeline is a
// single-threaded, synchronous sequence by design: later steps depend on
// remote IDs produced by earlier ones, so no concurrent in-flight
// mutations are permitted.
type Plan struct {
	steps     []*ExecutionStep
	cursor    int
	remoteIDs map[string]int64
}

// NewPlan creates an empty plan.
func NewPlan() *Plan {
	return &Plan{remoteIDs: make(map[string]int64)}
}

// Append adds steps to the end of the plan.
func (p *Plan) Append(steps ...*ExecutionStep) {
	p.steps = append(p.steps, steps...)
}

// Steps returns the current ordered step sequence.
func (p *Plan) Steps() []*ExecutionStep {
	return p.steps
}

// Len returns the number of steps currently in the plan, including
// follow-up steps appended during execution.
func (p *Plan) Len() int { return len(p.steps) }

// Next returns the next unexecuted step, or nil when the plan is
// exhausted. The executor must mark the returned step via MarkExecuted
// (or Resolve, for create steps) before calling Next again.
func (p *Plan) Next() *ExecutionStep {
	if p.cursor >= len(p.steps) {
		return nil
	}
	step := p.steps[p.cursor]
	p.cursor++
	return step
}

// MarkExecuted records that a step's remote mutation completed.
func (p *Plan) MarkExecuted(step *ExecutionStep) {
	step.Executed = true
}

// Resolve feeds a created remote ID forward: every pending step with a
// deferred slot depending on recordID gets the slot filled in place, and
// for any already-executed step still holding an unresolved slot a
// follow-up set-reference step is appended to the plan.
func (p *Plan) Resolve(recordID string, remoteID int64) {
	p.remoteIDs[recordID] = remoteID

	for i, step := range p.steps {
		for _, slot := range step.Deferred {
			if slot.Resolved || slot.DependsOn != recordID {
				continue
			}
			slot.TargetID = remoteID
			slot.Resolved = true

			// The step already ran without this reference; patch it
			// remotely with a follow-up step.
			if step.Executed || i < p.cursor {
				p.steps = append(p.steps, &ExecutionStep{
					Kind:   StepSetReference,
					Record: step.Record,
					NodeID: step.NodeID,
					Deferred: []*DeferredSlot{{
						Field:     slot.Field,
						DependsOn: recordID,
						TargetID:  remoteID,
						Resolved:  true,
					}},
				})
			}
		}
	}
}

// RemoteID returns the created remote ID for a record, when known.
func (p *Plan) RemoteID(recordID string) (int64, bool) {
	id, ok := p.remoteIDs[recordID]
	return id, ok
}
