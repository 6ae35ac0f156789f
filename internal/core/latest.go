package core

// Latest is a single-slot mailbox that keeps only the newest value.
// Put never blocks as long as there is a single producer.
type Latest[T any] struct {
	ch chan T
}

func NewLatest[T any]() *Latest[T] {
	return &Latest[T]{ch: make(chan T, 1)}
}

// Put replaces any value not yet received.
func (l *Latest[T]) Put(v T) {
	for {
		select {
		case l.ch <- v:
			return
		default:
		}
		select {
		case <-l.ch:
		default:
		}
	}
}

func (l *Latest[T]) C() <-chan T {
	return l.ch
}
