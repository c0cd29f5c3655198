package mover

// TransferError identifies why a transfer terminated unsuccessfully.
type TransferError int

// The possible transfer error codes.
const (
	// ErrNone marks a transfer that has not failed.
	ErrNone TransferError = iota

	// ErrResponseFault marks a transfer aborted because the memory
	// subsystem flagged a faulted response.
	ErrResponseFault

	// ErrAlignmentOrLength marks a transfer rejected because its source
	// address or byte length is not a multiple of the word size.
	ErrAlignmentOrLength
)

func (e TransferError) String() string {
	switch e {
	case ErrNone:
		return "none"
	case ErrResponseFault:
		return "response fault"
	case ErrAlignmentOrLength:
		return "alignment or length invalid"
	}

	return "unknown"
}

// TransferStatus is a snapshot of the transfer-level status bits.
type TransferStatus struct {
	// Busy is true while a transfer is in flight.
	Busy bool

	// Done is true for exactly one tick when a transfer completes
	// successfully.
	Done bool

	// Err is sticky until the next start command or reset.
	Err TransferError

	// WordsSent counts the words handed to the output stage so far.
	WordsSent uint64

	// TotalWords is the word count of the current or last transfer.
	TotalWords uint64
}
