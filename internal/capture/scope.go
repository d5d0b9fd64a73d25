package capture

import (
	"errors"
	"log"
)

// scope is a stack of release actions for acquired system resources.
// Close runs them in reverse order of acquisition and joins their failures.
type scope struct {
	releases []release
}

type release struct {
	name string
	fn   func() error
}

func (s *scope) push(name string, fn func() error) {
	s.releases = append(s.releases, release{name: name, fn: fn})
}

func (s *scope) Close() error {
	var errs []error
	for i := len(s.releases) - 1; i >= 0; i-- {
		r := s.releases[i]
		if err := r.fn(); err != nil {
			log.Printf("Capture: releasing %s failed: %v", r.name, err)
			errs = append(errs, err)
		}
	}
	s.releases = nil
	return errors.Join(errs...)
}
