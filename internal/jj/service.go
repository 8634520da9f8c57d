// Package jj drives the jj engine through its command line and decodes its
// templated output into typed records.
package jj

// Executor runs engine commands. *backend.Runner is the production
// implementation.
type Executor interface {
	Execute(args []string, color, quiet bool) (string, error)
	ExecuteVoid(args []string) error
}

// Service bundles every query and command the front-end issues. Revision
// identity operations live on the embedded Tracker.
type Service struct {
	*Tracker

	exec Executor
}

func NewService(exec Executor) *Service {
	return &Service{Tracker: NewTracker(exec), exec: exec}
}

// Run executes a free-form command typed by the user and returns its output.
func (s *Service) Run(args []string) (string, error) {
	return s.exec.Execute(args, true, false)
}
