// Package notify defines the outbound notification boundary used for timeout
// warnings and operator notices, plus transport adapters and decorators.
//
// Delivery is best effort. Callers bound every Send with a context deadline and
// never retry; decorators ([Throttle], [WithBreaker]) only shape or short-circuit
// traffic.
package notify
