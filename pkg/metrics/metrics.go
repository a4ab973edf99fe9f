package metrics

import "time"

type Metrics interface {
	// Coordination
	RecordRepositorySwitch(domain, repositoryType string)
	RecordMutation(domain, kind, outcome string)
	RecordUseCaseExecution(useCaseName string, success bool, duration time.Duration)

	// Cache
	IncCacheHit(domain string)
	IncCacheMiss(domain string)
	IncStaleReadDiscarded(domain string)

	// HTTP
	ObserveHTTPRequestDuration(method, path, statusCode string, duration float64)
}

// Nop returns a Metrics that records nothing.
func Nop() Metrics { return nop{} }

type nop struct{}

func (nop) RecordRepositorySwitch(string, string)                     {}
func (nop) RecordMutation(string, string, string)                     {}
func (nop) RecordUseCaseExecution(string, bool, time.Duration)        {}
func (nop) IncCacheHit(string)                                        {}
func (nop) IncCacheMiss(string)                                       {}
func (nop) IncStaleReadDiscarded(string)                              {}
func (nop) ObserveHTTPRequestDuration(string, string, string, float64) {}
