package api

// Option configures a Server.
type Option func(*Server)

// WithMetricsEndpoint toggles the /metrics route. It is on by default.
func WithMetricsEndpoint(enabled bool) Option {
	return func(s *Server) {
		s.metricsEnabled = enabled
	}
}
