package capture

// Sequence yields pixel buffers one at a time. It cannot be restarted: once
// Next has returned false it keeps returning false.
//
//	seq := c.Monitors()
//	defer seq.Close()
//	for seq.Next() {
//		use(seq.Buffer())
//	}
//	if err := seq.Err(); err != nil { ... }
type Sequence struct {
	next    func() (*PixelBuffer, bool, error)
	closeFn func() error
	cur     *PixelBuffer
	err     error
	done    bool
}

func newSequence(next func() (*PixelBuffer, bool, error), closeFn func() error) *Sequence {
	return &Sequence{next: next, closeFn: closeFn}
}

// Next materializes the next buffer. It returns false when the sequence is
// exhausted, failed or closed; the underlying session is released at that point.
func (s *Sequence) Next() bool {
	if s.done {
		return false
	}
	buf, ok, err := s.next()
	if err != nil || !ok {
		s.err = err
		s.cur = nil
		if cerr := s.Close(); cerr != nil && s.err == nil {
			s.err = cerr
		}
		return false
	}
	s.cur = buf
	return true
}

// Buffer returns the buffer produced by the last successful Next.
func (s *Sequence) Buffer() *PixelBuffer { return s.cur }

// Err returns the first error met while iterating or closing.
func (s *Sequence) Err() error { return s.err }

// Close abandons the sequence and releases its session. It is safe to call more than once.
func (s *Sequence) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

// Collect drains the sequence.
func (s *Sequence) Collect() ([]*PixelBuffer, error) {
	var out []*PixelBuffer
	for s.Next() {
		out = append(out, s.Buffer())
	}
	return out, s.Err()
}
