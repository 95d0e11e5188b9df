package pipeline

// RunStats tracks counters and byte totals across one orchestrator run.
type RunStats struct {
	Total         int // groups planned
	Done          int // groups attempted
	Succeeded     int
	Failed        int
	JournalErrors int // records that could not be appended
	Stopped       bool
	OutputBytes   int64
}

// Remaining returns how many planned groups were never attempted.
func (s RunStats) Remaining() int {
	return s.Total - s.Done
}
