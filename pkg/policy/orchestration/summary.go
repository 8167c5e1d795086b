package orchestration

import "fmt"

func formatSummary(r AggregatedResult) string {
	return fmt.Sprintf(
		"%d/%d satisfied, %d failed (%d compliance), %d errors, %.1f%% success",
		r.SatisfiedRules, r.TotalRules, r.FailedRules, r.ComplianceFailures, r.ErrorRules, r.SuccessRate(),
	)
}
