package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownEvent returned when a message carries an unregistered event name.
var ErrUnknownEvent = errors.New("unknown event")

// ErrDecode returned when a payload does not match the event's contract.
var ErrDecode = errors.New("failed to decode event")

type validatable interface {
	Event
	validate() error
}

// decoders is the exhaustive name->constructor table. Registration is
// compile-time; dispatch never sees a name outside of it.
var decoders = map[string]func() validatable{
	NamePostCreated:    func() validatable { return &PostCreated{} },
	NamePostUpdated:    func() validatable { return &PostUpdated{} },
	NamePostDeleted:    func() validatable { return &PostDeleted{} },
	NamePostLiked:      func() validatable { return &PostLiked{} },
	NamePostUnliked:    func() validatable { return &PostUnliked{} },
	NamePostReposted:   func() validatable { return &PostReposted{} },
	NamePostDereposted: func() validatable { return &PostDereposted{} },
}

// IsKnownName reports whether handlers may be registered for the name.
func IsKnownName(name string) bool {
	_, ok := decoders[name]
	return ok
}

// Marshal serializes an event to its wire body.
func Marshal(e Event) ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", e.Name(), err)
	}
	return b, nil
}

// Decode reconstructs an event from its name and wire body. A missing or
// mis-typed required field fails with ErrDecode instead of silently
// defaulting.
func Decode(name string, payload []byte) (Event, error) {
	newEvent, ok := decoders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, name)
	}

	e := newEvent()

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(e); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrDecode, name, err)
	}

	if err := e.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrDecode, name, err)
	}

	return deref(e), nil
}

type field struct {
	name string
	ok   bool
}

func requireFields(ff ...field) error {
	var missing []string
	for _, f := range ff {
		if !f.ok {
			missing = append(missing, f.name)
		}
	}

	if len(missing) != 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	return nil
}

// deref unwraps the decoder's pointer so that decoded events compare equal
// to the values they were marshaled from.
func deref(e validatable) Event {
	switch v := e.(type) {
	case *PostCreated:
		return *v
	case *PostUpdated:
		return *v
	case *PostDeleted:
		return *v
	case *PostLiked:
		return *v
	case *PostUnliked:
		return *v
	case *PostReposted:
		return *v
	case *PostDereposted:
		return *v
	default:
		return e
	}
}
