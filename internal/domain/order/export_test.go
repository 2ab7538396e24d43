package order

// SetIDGenerator replaces the customer-facing id source
func (s *Service) SetIDGenerator(f func() (string, error)) {
	s.newID = f
}
