package output

// Event is a lifecycle record for NDJSON streaming output.
//
// In NDJSON mode, sinks emit Events (one JSON object per line), including:
// - run.started
// - strategy.started
// - branch.result
// - run.finished
//
// JSON mode remains an aggregate of Record values.
type Event struct {
	Type string `json:"type"`
	*Record
	Target     string `json:"target,omitempty"`
	Strategy   string `json:"strategy,omitempty"`
	Branches   int    `json:"branches,omitempty"`
	TotalSteps int    `json:"total_steps,omitempty"`
	Removed    int    `json:"removed,omitempty"`
	Kept       int    `json:"kept,omitempty"`
	Failed     int    `json:"failed,omitempty"`
	DryRun     bool   `json:"dry_run,omitempty"`
	ExitCode   int    `json:"exit_code,omitempty"`
}

func RunStarted(target string, branches int) Event {
	return Event{Type: "run.started", Target: target, Branches: branches}
}

func StrategyStarted(strategy string, branches, totalSteps int) Event {
	return Event{Type: "strategy.started", Strategy: strategy, Branches: branches, TotalSteps: totalSteps}
}

func RunFinished(removed, kept, failed, exitCode int) Event {
	return Event{Type: "run.finished", Removed: removed, Kept: kept, Failed: failed, ExitCode: exitCode}
}

func eventFromRecord(r Record) Event {
	return Event{Type: "branch.result", Record: &r}
}
