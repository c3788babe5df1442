package models

// Document lifecycle: pending -> uploaded -> processing -> completed|failed.
// completed and failed are terminal; the only way out of failed is an
// explicit operator re-enqueue, which re-enters processing.
const (
	StatusPending    = "pending"    // record created, bytes not yet durably stored
	StatusUploaded   = "uploaded"   // bytes stored, not yet picked up by a worker
	StatusProcessing = "processing" // a worker holds the job
	StatusCompleted  = "completed"  // terminal
	StatusFailed     = "failed"     // terminal, error_message populated
)

// allowedTransitions encodes the state machine. The failed -> processing
// edge exists only for the operator re-enqueue path.
var allowedTransitions = map[string][]string{
	StatusPending:    {StatusUploaded, StatusFailed},
	StatusUploaded:   {StatusProcessing, StatusFailed},
	StatusProcessing: {StatusCompleted, StatusFailed},
	StatusFailed:     {StatusProcessing},
	StatusCompleted:  {},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionTo moves the document to the given status, enforcing the state
// machine. Once completed, no caller may downgrade the document.
func (d *Document) TransitionTo(status string) error {
	if d.Status == status {
		return nil
	}
	if !CanTransition(d.Status, status) {
		return &TransitionError{From: d.Status, To: status}
	}
	d.Status = status
	return nil
}

// IsTerminal reports whether the status admits no further transitions short
// of an operator re-enqueue.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}
