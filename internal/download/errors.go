package download

import "fmt"

// Kind classifies a download failure.
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindDisk
	KindContent
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindDisk:
		return "disk"
	case KindContent:
		return "invalid content"
	default:
		return "unknown"
	}
}

// Error is a classified download failure. Every kind means the same
// thing to the poll loop: the entry was not downloaded and stays
// eligible next cycle.
type Error struct {
	Kind  Kind
	Entry string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error downloading %q: %v", e.Kind, e.Entry, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func netErr(entry string, err error) *Error {
	return &Error{Kind: KindNetwork, Entry: entry, Err: err}
}

func diskErr(entry string, err error) *Error {
	return &Error{Kind: KindDisk, Entry: entry, Err: err}
}

func contentErr(entry string, err error) *Error {
	return &Error{Kind: KindContent, Entry: entry, Err: err}
}
