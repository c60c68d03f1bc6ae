package runner

// CallbackFunc is a handler registered on the runner's callback
// registry. Handlers receive whatever arguments the invoker passed.
type CallbackFunc func(args ...interface{}) error

// CallbackRegistry maps callback names to ordered handler lists.
// Handlers run synchronously in registration order; the first handler
// error aborts the remaining handlers for that invocation and is
// returned to the invoker. Invoking a name with no handlers is a
// no-op.
type CallbackRegistry struct {
	handlers map[string][]CallbackFunc
}

func NewCallbackRegistry() *CallbackRegistry {
	return &CallbackRegistry{
		handlers: map[string][]CallbackFunc{},
	}
}

// Register appends the handler to the list for name. The same handler
// may register multiple times and will be invoked that many times.
func (registry *CallbackRegistry) Register(name string, handler CallbackFunc) {
	registry.handlers[name] = append(registry.handlers[name], handler)
}

func (registry *CallbackRegistry) Invoke(name string, args ...interface{}) error {
	for _, handler := range registry.handlers[name] {
		err := handler(args...)
		if err != nil {
			return err
		}
	}

	return nil
}
