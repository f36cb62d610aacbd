package assignment

// applyOptimistic runs the three-step optimistic-update protocol: snapshot
// the current local value, apply the new one, attempt the durable write. If
// the write fails the snapshot is reapplied and the error returned.
func applyOptimistic[T any](read func() T, write func(T), value T, attempt func() error) error {
	prev := read()
	write(value)

	if err := attempt(); err != nil {
		write(prev)
		return err
	}
	return nil
}
