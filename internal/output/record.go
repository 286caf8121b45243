package output

// Record is the final outcome for one branch, the unit every sink consumes.
// States mirror the classification lifecycle: a removable branch that was
// actually deleted reports "removed", a dry run leaves it at "removable".
type Record struct {
	Branch        string `json:"branch"`
	State         string `json:"state"`
	Kind          string `json:"kind,omitempty"`
	Match         string `json:"match,omitempty"`
	Steps         int    `json:"steps,omitempty"`
	RequiresForce bool   `json:"requires_force,omitempty"`
	DryRun        bool   `json:"dry_run,omitempty"`
	Error         string `json:"error,omitempty"`
}
