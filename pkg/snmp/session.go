package snmp

import (
	"context"
	"sync"
	"time"

	"github.com/opsnet/unet/infrastructure/resilience"
)

// CredentialKind discriminates the two credential shapes a Session can
// hold.
type CredentialKind int

const (
	CredentialCommunity CredentialKind = iota
	CredentialUserBased
)

// Credentials is either a v1/v2c Community string or a v3 UserBased
// username plus optional auth/privacy secrets.
type Credentials struct {
	Kind      CredentialKind
	Community string

	Username string
	AuthKey  string
	PrivKey  string
}

func CommunityCredentials(community string) Credentials {
	return Credentials{Kind: CredentialCommunity, Community: community}
}

func UserBasedCredentials(username, authKey, privKey string) Credentials {
	return Credentials{Kind: CredentialUserBased, Username: username, AuthKey: authKey, PrivKey: privKey}
}

// Transport is the narrow capability a Session drives: one GET-style call
// and one GETNEXT-style call against a live or fake SNMP endpoint. The
// production implementation wraps a third-party SNMP client library;
// pkg/snmp/snmptest provides a fake for tests.
type Transport interface {
	Get(ctx context.Context, oids []string) (map[string]SnmpValue, error)
	GetNext(ctx context.Context, startOID string) (map[string]SnmpValue, error)
	Close() error
}

// TransportFactory constructs the Transport for a Session on first use.
// Session is agnostic to how the transport is built (community vs v3,
// which underlying library) so it can be swapped per deployment.
type TransportFactory func(target string, creds Credentials, timeout time.Duration) (Transport, error)

// Session represents a (target, credentials, version, retries, timeout)
// tuple with a lazily-initialised Transport. All exported methods are
// safe for concurrent use.
type Session struct {
	Target  string
	Creds   Credentials
	Retries int
	Timeout time.Duration

	newTransport TransportFactory

	mu                 sync.Mutex
	transport          Transport
	lastSuccess        *time.Time
	connectionAttempts int64
}

// NewSession builds a Session; the transport is not dialed until the
// first Get/GetNext call.
func NewSession(target string, creds Credentials, retries int, timeout time.Duration, factory TransportFactory) *Session {
	return &Session{
		Target:       target,
		Creds:        creds,
		Retries:      retries,
		Timeout:      timeout,
		newTransport: factory,
	}
}

func (s *Session) transportFor() (Transport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport != nil {
		return s.transport, nil
	}
	if s.Creds.Kind == CredentialUserBased {
		return nil, &ProtocolError{Message: "SNMPv3 UserBased credentials are not implemented by the configured transport"}
	}
	t, err := s.newTransport(s.Target, s.Creds, s.Timeout)
	if err != nil {
		return nil, &NetworkError{Target: s.Target, Cause: err}
	}
	s.transport = t
	return t, nil
}

func (s *Session) retryConfig() resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	if s.Retries > 0 {
		cfg.MaxAttempts = s.Retries
	}
	return cfg
}

// Get requests each of oids, returning a map with one entry per
// requested OID: the transport's value on per-OID success, or
// NoSuchObject() substituted on a per-OID failure the transport itself
// reported that way. A result with at least one non-error value advances
// last_success. Total failure to reach the transport after retries
// surfaces as *NetworkError.
func (s *Session) Get(ctx context.Context, oids []string) (map[string]SnmpValue, error) {
	t, err := s.transportFor()
	if err != nil {
		return nil, err
	}

	var result map[string]SnmpValue
	attemptErr := resilience.Retry(ctx, s.retryConfig(), func() error {
		s.mu.Lock()
		s.connectionAttempts++
		s.mu.Unlock()
		res, err := t.Get(ctx, oids)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if attemptErr != nil {
		return nil, &NetworkError{Target: s.Target, Cause: attemptErr}
	}

	if result == nil {
		result = map[string]SnmpValue{}
	}
	for _, oid := range oids {
		if _, ok := result[oid]; !ok {
			result[oid] = NoSuchObject()
		}
	}

	for _, v := range result {
		if !v.IsError() {
			now := time.Now()
			s.mu.Lock()
			s.lastSuccess = &now
			s.mu.Unlock()
			break
		}
	}
	return result, nil
}

// GetNext performs a single GETNEXT step starting at startOID; callers
// iterate to walk a subtree.
func (s *Session) GetNext(ctx context.Context, startOID string) (map[string]SnmpValue, error) {
	t, err := s.transportFor()
	if err != nil {
		return nil, err
	}

	var result map[string]SnmpValue
	attemptErr := resilience.Retry(ctx, s.retryConfig(), func() error {
		s.mu.Lock()
		s.connectionAttempts++
		s.mu.Unlock()
		res, err := t.GetNext(ctx, startOID)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if attemptErr != nil {
		return nil, &NetworkError{Target: s.Target, Cause: attemptErr}
	}

	for _, v := range result {
		if !v.IsError() {
			now := time.Now()
			s.mu.Lock()
			s.lastSuccess = &now
			s.mu.Unlock()
			break
		}
	}
	return result, nil
}

// IsHealthy reports whether the session has had a successful exchange
// within maxAge.
func (s *Session) IsHealthy(maxAge time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSuccess != nil && time.Since(*s.lastSuccess) <= maxAge
}

// ConnectionAttempts returns the monotonically increasing count of
// transport calls made so far.
func (s *Session) ConnectionAttempts() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connectionAttempts
}

// Close releases the underlying transport, if one was ever created.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return nil
	}
	err := s.transport.Close()
	s.transport = nil
	return err
}
