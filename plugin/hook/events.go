package hook

// Test lifecycle events. Handlers receive the live *roll.Test.
const (
	// TestPrepared fires after base values and pool modifiers are computed.
	TestPrepared = "test_prepared"
	// BeforeTestEvaluate fires before dice are rolled. ErrInterrupt aborts the roll.
	BeforeTestEvaluate = "before_test_evaluate"
	// AfterTestResults fires once results are processed, also after extensions.
	AfterTestResults = "after_test_results"
)

// Matrix events.
const (
	// BeforeSetMarks fires with a *matrix.MarksChange before marks are
	// written. Handlers may change After; ErrInterrupt rejects the change.
	BeforeSetMarks = "before_set_marks"
	// NetworkChanged fires with a *matrix.NetworkChange after a controller's
	// device list changed.
	NetworkChanged = "network_changed"
)

// Events lists every event the rules engine triggers.
func Events() []string {
	return []string{TestPrepared, BeforeTestEvaluate, AfterTestResults, BeforeSetMarks, NetworkChanged}
}
