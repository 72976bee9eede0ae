package queryparams

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by the error types below via errors.Is.
var (
	// ErrKeyNotFound is matched by *KeyError.
	ErrKeyNotFound = errors.New("queryparams: key not found")

	// ErrNoAttribute is matched by *AttributeError.
	ErrNoAttribute = errors.New("queryparams: no such attribute")
)

// KeyError is returned by item-style reads and deletes of a missing key.
type KeyError struct {
	Store string // public name of the store, e.g. "query_params"
	Key   string
}

// Error returns the user-facing message.
func (e *KeyError) Error() string {
	return missingKeyMessage(e.Store, e.Key)
}

// Is reports whether target is ErrKeyNotFound.
func (e *KeyError) Is(target error) bool {
	return target == ErrKeyNotFound
}

// AttributeError is the attribute-style counterpart of KeyError.
type AttributeError struct {
	Store string
	Key   string
}

// Error returns the same message as the equivalent KeyError.
func (e *AttributeError) Error() string {
	return missingKeyMessage(e.Store, e.Key)
}

// Is reports whether target is ErrNoAttribute.
func (e *AttributeError) Is(target error) bool {
	return target == ErrNoAttribute
}

// PublishError wraps a failure of the publish step that follows a mutation.
// The mutation itself has already been applied when it is returned.
type PublishError struct {
	Op  string // "set", "delete" or "clear"
	Key string // empty for clear
	Err error
}

func (e *PublishError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("queryparams: %s: publish: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("queryparams: %s %q: publish: %v", e.Op, e.Key, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *PublishError) Unwrap() error {
	return e.Err
}

func missingKeyMessage(store, key string) string {
	return fmt.Sprintf(`%s has no key "%s". Did you forget to initialize it?`, store, key)
}
