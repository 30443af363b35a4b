package types

// Kind discriminates the units of work the commit log executor accepts.
type Kind uint8

const (
	// KindOther is any deferred operation that is not a log append. It is always
	// executed on its own and never batched.
	KindOther Kind = iota

	// KindLogAppend is an append to the log. In batch mode it may share one sync
	// with its queued neighbours.
	KindLogAppend
)

func (k Kind) String() string {
	switch k {
	case KindLogAppend:
		return "append"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// ProcessFunc is the side effect of a unit of work.
type ProcessFunc[R any] func() (R, error)

// SubmittedTask pairs a unit of work with the Future its caller waits on.
// Id is the submission sequence number and doubles as the Future key.
type SubmittedTask[R any] struct {
	Id     int64
	Kind   Kind
	Fn     ProcessFunc[R]
	Future *Future[R, int64]
}

// NewSubmittedTask creates a task with a fresh, unresolved Future.
func NewSubmittedTask[R any](id int64, kind Kind, fn ProcessFunc[R]) *SubmittedTask[R] {
	return &SubmittedTask[R]{
		Id:     id,
		Kind:   kind,
		Fn:     fn,
		Future: NewFuture[R, int64](),
	}
}

// IsAppend reports whether the task may join a batch group.
func (t *SubmittedTask[R]) IsAppend() bool {
	return t.Kind == KindLogAppend
}

// Resolve delivers the outcome to the task's Future.
func (t *SubmittedTask[R]) Resolve(value R, err error) {
	t.Future.Resolve(NewResult(value, t.Id, err))
}
