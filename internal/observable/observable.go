package observable

// ChangeHandler receives the name of the property that changed.
type ChangeHandler func(property string)

// Entity is the embeddable base for objects whose fields publish change
// notifications. The zero value is ready to use.
type Entity struct {
	handlers []ChangeHandler
}

// OnChange registers a handler for property change notifications.
// It returns an unsubscribe function; calling it more than once is a no-op.
func (e *Entity) OnChange(handler ChangeHandler) func() {
	e.handlers = append(e.handlers, handler)
	index := len(e.handlers) - 1
	return func() {
		if index < len(e.handlers) {
			e.handlers[index] = nil
		}
	}
}

// RaiseChanged notifies all handlers that the named property changed.
// Exposed directly so derived properties can re-publish without a backing
// field assignment. Handlers run inline, in registration order.
func (e *Entity) RaiseChanged(property string) {
	for _, handler := range e.handlers {
		if handler != nil {
			handler(property)
		}
	}
}

// SetField assigns value to *field if it differs from the current value,
// raising a change notification for property. Returns true if the field
// changed, false if the values were equal and nothing happened.
func SetField[T comparable](e *Entity, field *T, value T, property string) bool {
	if *field == value {
		return false
	}
	*field = value
	e.RaiseChanged(property)
	return true
}
