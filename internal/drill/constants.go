package drill

// Pool shape the service plays with.
const (
	PoolSize       = 10
	TeamSize       = 5
	CandidateCount = 20
	RatingStep     = 8
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
	PercentageMultiplier    = 100
)

// Status strings in API acknowledgements.
const (
	statusExhausted = "exhausted"
	statusDuplicate = "duplicate"
)
