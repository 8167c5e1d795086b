package memory

import (
	"context"

	"github.com/opsnet/unet/pkg/policy"
)

func (s *Store) StorePolicyResult(ctx context.Context, nodeID, ruleID string, result policy.PolicyExecutionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policyResults[nodeID] = append(s.policyResults[nodeID], storedPolicyResult{ruleID: ruleID, result: result})
	return nil
}

func (s *Store) ListPolicyResultsForNode(ctx context.Context, nodeID string) ([]policy.PolicyExecutionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := s.policyResults[nodeID]
	out := make([]policy.PolicyExecutionResult, len(records))
	for i, r := range records {
		out[i] = r.result
	}
	return out, nil
}

func (s *Store) LatestPolicyResultsForNode(ctx context.Context, nodeID string) (map[string]policy.PolicyExecutionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]policy.PolicyExecutionResult{}
	for _, r := range s.policyResults[nodeID] {
		out[r.ruleID] = r.result
	}
	return out, nil
}

func (s *Store) ListPolicyResultsForRule(ctx context.Context, ruleID string) ([]policy.PolicyExecutionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []policy.PolicyExecutionResult
	for _, records := range s.policyResults {
		for _, r := range records {
			if r.ruleID == ruleID {
				out = append(out, r.result)
			}
		}
	}
	return out, nil
}
