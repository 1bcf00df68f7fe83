package domain

// JobState is the lifecycle state of an asynchronous search job as reported
// by the Sumo Logic API.
type JobState string

// Search job lifecycle states.
const (
	JobStateNotStarted JobState = "NOT STARTED"
	JobStateGathering  JobState = "GATHERING RESULTS"
	JobStateDone       JobState = "DONE GATHERING RESULTS"
	JobStateCancelled  JobState = "CANCELLED"
	JobStatePaused     JobState = "FORCE PAUSED"
)

// Terminal reports whether no further polling should occur for this state.
func (s JobState) Terminal() bool {
	return s == JobStateDone || s == JobStateCancelled
}

// SearchJob identifies a submitted asynchronous search job. It is owned by
// the extraction that created it and discarded when extraction completes;
// there is no persistence across runs.
type SearchJob struct {
	ID        string
	QueryType QueryType
}

// JobStatus is a point-in-time status snapshot of a search job. The API also
// reports a histogram alongside these fields, which the extractor discards.
type JobStatus struct {
	State        JobState
	RecordCount  int
	MessageCount int
}

// Total returns the reported result count for the given query type.
func (s JobStatus) Total(t QueryType) int {
	if t == QueryTypeMessages {
		return s.MessageCount
	}
	return s.RecordCount
}
