package aggregator

import (
	"encoding/json"
	"fmt"
)

// Status tells why an optional value is or is not present
type Status int

const (
	// StatusNotApplicable: the value cannot exist, e.g. a mechanism for a medication with no known class
	StatusNotApplicable Status = iota
	// StatusNotYetAuthored: the value could exist but no content has been written
	StatusNotYetAuthored
	StatusAvailable
)

var statusNames = map[Status]string{
	StatusNotApplicable:  "not_applicable",
	StatusNotYetAuthored: "not_yet_authored",
	StatusAvailable:      "available",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

func parseStatus(raw string) (Status, error) {
	for s, name := range statusNames {
		if name == raw {
			return s, nil
		}
	}
	return StatusNotApplicable, fmt.Errorf("unknown optional status %q", raw)
}

// Optional holds a value from a store that may legitimately be missing.
// The zero value is not applicable.
type Optional[T any] struct {
	status Status
	value  T
}

func Available[T any](v T) Optional[T] {
	return Optional[T]{status: StatusAvailable, value: v}
}

func NotYetAuthored[T any]() Optional[T] {
	return Optional[T]{status: StatusNotYetAuthored}
}

func NotApplicable[T any]() Optional[T] {
	return Optional[T]{status: StatusNotApplicable}
}

func (o Optional[T]) Status() Status {
	return o.status
}

func (o Optional[T]) IsAvailable() bool {
	return o.status == StatusAvailable
}

// Get returns the value and whether it is available
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.status == StatusAvailable
}

type optionalJSON[T any] struct {
	Status string `json:"status"`
	Value  *T     `json:"value,omitempty"`
}

// MarshalJSON encodes {"status":"available","value":...} or just the status
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	out := optionalJSON[T]{Status: o.status.String()}
	if o.status == StatusAvailable {
		out.Value = &o.value
	}
	return json.Marshal(out)
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	var in optionalJSON[T]
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	status, err := parseStatus(in.Status)
	if err != nil {
		return err
	}

	*o = Optional[T]{status: status}
	if status == StatusAvailable {
		if in.Value == nil {
			return fmt.Errorf("optional value missing for status %q", in.Status)
		}
		o.value = *in.Value
	}
	return nil
}
