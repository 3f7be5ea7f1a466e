// Package resilience provides reliability and fault tolerance patterns for the application.
// It currently hosts circuit breakers protecting the shared cache and database
// from cascading failures; when a dependency degrades, callers fall back to
// direct computation instead of stacking up timeouts.
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.CacheConfig(), logger)
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return callDependency()
//	})
package resilience
