package contactbook

// Status is the coarse lifecycle tag the view layer uses to decide what to render.
type Status int

const (
	// StatusLoading means storage has not been read yet, or the last read
	// failed.
	StatusLoading Status = iota
	// StatusReady means the list is non-empty and can be displayed.
	StatusReady
	// StatusEmpty means the list is empty and the sample contacts are on offer.
	StatusEmpty
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

func statusFor(count int) Status {
	if count == 0 {
		return StatusEmpty
	}
	return StatusReady
}
