package orchestration

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/opsnet/unet/pkg/policy"
	"github.com/opsnet/unet/pkg/value"
)

// ResultCache stores an AggregatedResult keyed by the content hash of the
// rule-set that produced it. Implementations decide their own TTL and
// eviction policy; a miss is reported via the bool return, not an error.
type ResultCache interface {
	Get(ctx context.Context, key string) (AggregatedResult, bool, error)
	Set(ctx context.Context, key string, result AggregatedResult) error
}

// contentHash hashes (node_id, rule ASTs, priorities, orders) for batch,
// excluding the evaluation context, so an unchanged rule-set for a node
// hits the cache across evaluation cycles even as its live SNMP-derived
// data changes.
func contentHash(batch Batch) string {
	h := sha256.New()
	fmt.Fprintf(h, "node:%s\n", batch.NodeID)
	for _, r := range batch.sortedRules() {
		fmt.Fprintf(h, "rule:%s|prio:%d|order:%d\n", ruleFingerprint(r.Rule), r.Priority, r.Order)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ruleFingerprint renders a PolicyRule's condition and action as a
// deterministic string for hashing; it intentionally ignores nothing the
// rule's behavior depends on.
func ruleFingerprint(rule policy.PolicyRule) string {
	var b strings.Builder
	b.WriteString(rule.ID)
	b.WriteByte('|')
	writeCondition(&b, rule.Condition)
	b.WriteByte('|')
	writeAction(&b, rule.Action)
	return b.String()
}

func writeCondition(b *strings.Builder, c policy.Condition) {
	switch c.Kind {
	case policy.CondTrue:
		b.WriteString("TRUE")
	case policy.CondFalse:
		b.WriteString("FALSE")
	case policy.CondComparison:
		b.WriteString(c.Field.String())
		b.WriteString(c.Op.String())
		b.WriteString(renderValue(c.Value))
	case policy.CondExistence:
		b.WriteString(c.Field.String())
		b.WriteString(" IS ")
		if c.IsNull {
			b.WriteString("NULL")
		} else {
			b.WriteString("NOT NULL")
		}
	case policy.CondAnd:
		b.WriteByte('(')
		writeCondition(b, *c.Left)
		b.WriteString(" AND ")
		writeCondition(b, *c.Right)
		b.WriteByte(')')
	case policy.CondOr:
		b.WriteByte('(')
		writeCondition(b, *c.Left)
		b.WriteString(" OR ")
		writeCondition(b, *c.Right)
		b.WriteByte(')')
	case policy.CondNot:
		b.WriteString("NOT(")
		writeCondition(b, *c.Operand)
		b.WriteByte(')')
	}
}

func writeAction(b *strings.Builder, a policy.Action) {
	switch a.Kind {
	case policy.ActionAssert:
		b.WriteString("ASSERT ")
		b.WriteString(a.Field.String())
		b.WriteString("=")
		b.WriteString(renderValue(a.Expected))
	case policy.ActionSet:
		b.WriteString("SET ")
		b.WriteString(a.Field.String())
		b.WriteString("=")
		b.WriteString(renderValue(a.Value))
	case policy.ActionApplyTemplate:
		b.WriteString("APPLY ")
		b.WriteString(a.TemplatePath)
	}
}

func renderValue(v value.Value) string {
	switch v.Kind() {
	case value.KindNull:
		return "null"
	case value.KindBool:
		b, _ := v.AsBool()
		return strconv.FormatBool(b)
	case value.KindInt:
		i, _ := v.AsInt()
		return strconv.FormatInt(i, 10)
	case value.KindFloat:
		f, _ := v.AsFloat()
		return strconv.FormatFloat(f, 'g', -1, 64)
	case value.KindString:
		s, _ := v.AsString()
		return s
	default:
		// Regex, sequence and map values render as their JSON encoding,
		// which carries the pattern and every element.
		data, err := json.Marshal(&v)
		if err != nil {
			return v.Kind().String()
		}
		return string(data)
	}
}

// MemoryCache is the default in-process ResultCache, grounded on the
// teacher's infrastructure/cache.TTLCache (per-entry expiry over a single
// mutex-guarded map).
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	result  AggregatedResult
	expires time.Time
}

// NewMemoryCache returns a MemoryCache evicting entries ttl after they were
// set.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) (AggregatedResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return AggregatedResult{}, false, nil
	}
	if c.now().After(e.expires) {
		delete(c.entries, key)
		return AggregatedResult{}, false, nil
	}
	return e.result, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, result AggregatedResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{result: result, expires: c.now().Add(c.ttl)}
	return nil
}

// EvictExpired removes every entry past its TTL. Nothing in this package
// calls it on a schedule and there is no background sweeper; Get drops an
// expired entry when it looks that entry up.
func (c *MemoryCache) EvictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}
}

// Size reports the number of entries currently cached, expired or not.
func (c *MemoryCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
