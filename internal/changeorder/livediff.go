package changeorder

// LiveDiff splits an order into the two documents shown side by side when
// comparing the live state of a stack with its spec: Runtime holds every
// step's "from" snapshot, Spec every step's "to" snapshot.
type LiveDiff struct {
	Runtime map[string]*ResourceSnapshot `yaml:"runtime"`
	Spec    map[string]*ResourceSnapshot `yaml:"spec"`
}

// NewLiveDiff builds the runtime/spec documents of an order.
func NewLiveDiff(o *ChangeOrder) *LiveDiff {
	diff := &LiveDiff{
		Runtime: make(map[string]*ResourceSnapshot),
		Spec:    make(map[string]*ResourceSnapshot),
	}
	for _, id := range o.SortedIDs() {
		step := o.ChangeSteps[id]
		diff.Runtime[id] = step.From
		diff.Spec[id] = step.To
	}
	return diff
}
