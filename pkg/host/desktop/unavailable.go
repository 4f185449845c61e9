package desktop

// unavailableBackend stands in when the notification service cannot be
// reached.
type unavailableBackend struct {
	err error
}

func (b unavailableBackend) Available() bool { return false }

func (b unavailableBackend) Send(Message) (uint32, error) { return 0, b.err }

func (b unavailableBackend) Dismiss(uint32) error { return b.err }

func (b unavailableBackend) Subscribe(func(uint32, string)) bool { return false }

func (b unavailableBackend) Close() error { return nil }
