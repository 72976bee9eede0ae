package queryparams

import "errors"

// Attrs is the attribute-style view of a Store. It shares storage, coercion
// and publishing with the Store and differs only in the error it reports for
// missing keys.
type Attrs struct {
	store *Store
}

// Get is Store.Get, reporting *AttributeError for a missing key.
func (a Attrs) Get(name string) (string, error) {
	v, err := a.store.Get(name)
	return v, toAttributeError(err)
}

// Set is Store.Set.
func (a Attrs) Set(name string, v Value) error {
	return toAttributeError(a.store.Set(name, v))
}

// SetAny is Store.SetAny.
func (a Attrs) SetAny(name string, v any) error {
	return toAttributeError(a.store.SetAny(name, v))
}

// Delete is Store.Delete, reporting *AttributeError for a missing key.
func (a Attrs) Delete(name string) error {
	return toAttributeError(a.store.Delete(name))
}

func toAttributeError(err error) error {
	var ke *KeyError
	if errors.As(err, &ke) {
		return &AttributeError{Store: ke.Store, Key: ke.Key}
	}
	return err
}
