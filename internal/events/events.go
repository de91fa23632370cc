package events

// CallbackEvent delivers each notified value to registered callbacks, synchronously
type CallbackEvent[T any] struct {
	reg *registry[T, func(T)]
}

// NewCallbackEvent creates a CallbackEvent.
// With sendLastEventOnListen, a new listener is called at once with the last value, if any.
func NewCallbackEvent[T any](sendLastEventOnListen bool) *CallbackEvent[T] {
	return &CallbackEvent[T]{reg: newRegistry[T, func(T)](sendLastEventOnListen)}
}

// Listen registers callback and returns its deregistration function
func (e *CallbackEvent[T]) Listen(callback func(T)) func() {
	if callback == nil {
		panic("callback cannot be nil")
	}
	id, last, replay := e.reg.add(callback)
	if replay {
		callback(last)
	}
	return func() { e.reg.remove(id) }
}

// Notify calls every registered callback with value
func (e *CallbackEvent[T]) Notify(value T) {
	for _, callback := range e.reg.snapshot(value) {
		callback(value)
	}
}

// ListenerCount returns the number of registered listeners
func (e *CallbackEvent[T]) ListenerCount() int {
	return e.reg.count()
}

// ChannelEvent delivers each notified value to registered channels.
// Sends never block: a full channel misses the value.
type ChannelEvent[T any] struct {
	reg *registry[T, chan<- T]
}

// NewChannelEvent creates a ChannelEvent.
// With sendLastEventOnListen, a new channel receives the last value, if any.
func NewChannelEvent[T any](sendLastEventOnListen bool) *ChannelEvent[T] {
	return &ChannelEvent[T]{reg: newRegistry[T, chan<- T](sendLastEventOnListen)}
}

// Listen registers ch and returns its deregistration function
func (e *ChannelEvent[T]) Listen(ch chan<- T) func() {
	if ch == nil {
		panic("channel cannot be nil")
	}
	id, last, replay := e.reg.add(ch)
	if replay {
		trySend(ch, last)
	}
	return func() { e.reg.remove(id) }
}

// Notify sends value to every registered channel
func (e *ChannelEvent[T]) Notify(value T) {
	for _, ch := range e.reg.snapshot(value) {
		trySend(ch, value)
	}
}

// ListenerCount returns the number of registered listeners
func (e *ChannelEvent[T]) ListenerCount() int {
	return e.reg.count()
}

func trySend[T any](ch chan<- T, value T) {
	select {
	case ch <- value:
	default:
	}
}
