package hermes

const (
	SubjectRunWildcard = "promethee.run.>"
	SubjectEngineStats = "promethee.engine.stats"

	StreamName   = "PROMETHEE_EVENTS"
	StreamMaxAge = "168h" // 7 days
)

func SubjectRunSubmitted(runID string) string { return "promethee.run." + runID + ".submitted" }
func SubjectRunStarted(runID string) string   { return "promethee.run." + runID + ".started" }
func SubjectRunCompleted(runID string) string { return "promethee.run." + runID + ".completed" }
func SubjectRunFailed(runID string) string    { return "promethee.run." + runID + ".failed" }
