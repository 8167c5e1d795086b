package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/opsnet/unet/pkg/policy"
)

type policyResultRow struct {
	RuleID string `db:"rule_id"`
	Result []byte `db:"result"`
}

func (r policyResultRow) toModel() (policy.PolicyExecutionResult, error) {
	var result policy.PolicyExecutionResult
	if err := json.Unmarshal(r.Result, &result); err != nil {
		return policy.PolicyExecutionResult{}, fmt.Errorf("decode policy result: %w", err)
	}
	return result, nil
}

func (s *Store) StorePolicyResult(ctx context.Context, nodeID, ruleID string, result policy.PolicyExecutionResult) error {
	blob, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode policy result: %w", err)
	}
	_, err = s.querierFrom(ctx).ExecContext(ctx, `
		INSERT INTO policy_results (node_id, rule_id, result) VALUES ($1, $2, $3)
	`, nodeID, ruleID, blob)
	if err != nil {
		return fmt.Errorf("insert policy result: %w", err)
	}
	return nil
}

func (s *Store) ListPolicyResultsForNode(ctx context.Context, nodeID string) ([]policy.PolicyExecutionResult, error) {
	var rows []policyResultRow
	if err := s.querierFrom(ctx).SelectContext(ctx, &rows, `
		SELECT rule_id, result FROM policy_results WHERE node_id = $1 ORDER BY created_at
	`, nodeID); err != nil {
		return nil, fmt.Errorf("list policy results for node: %w", err)
	}
	out := make([]policy.PolicyExecutionResult, 0, len(rows))
	for _, r := range rows {
		result, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, result)
	}
	return out, nil
}

func (s *Store) LatestPolicyResultsForNode(ctx context.Context, nodeID string) (map[string]policy.PolicyExecutionResult, error) {
	var rows []policyResultRow
	if err := s.querierFrom(ctx).SelectContext(ctx, &rows, `
		SELECT DISTINCT ON (rule_id) rule_id, result
		FROM policy_results WHERE node_id = $1
		ORDER BY rule_id, created_at DESC
	`, nodeID); err != nil {
		return nil, fmt.Errorf("latest policy results for node: %w", err)
	}
	out := map[string]policy.PolicyExecutionResult{}
	for _, r := range rows {
		result, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out[r.RuleID] = result
	}
	return out, nil
}

func (s *Store) ListPolicyResultsForRule(ctx context.Context, ruleID string) ([]policy.PolicyExecutionResult, error) {
	var rows []policyResultRow
	if err := s.querierFrom(ctx).SelectContext(ctx, &rows, `
		SELECT rule_id, result FROM policy_results WHERE rule_id = $1 ORDER BY created_at
	`, ruleID); err != nil {
		return nil, fmt.Errorf("list policy results for rule: %w", err)
	}
	out := make([]policy.PolicyExecutionResult, 0, len(rows))
	for _, r := range rows {
		result, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, result)
	}
	return out, nil
}
