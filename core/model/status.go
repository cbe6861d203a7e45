package model

import (
	"encoding/json"
	"fmt"
)

// Status describes the reported health of an allocation.
type Status int

const (
	StatusPlanned Status = iota
	StatusOnTrack
	StatusAtRisk
	StatusDelayed
	StatusCompleted
)

var statusNames = map[Status]string{
	StatusPlanned:   "planned",
	StatusOnTrack:   "on_track",
	StatusAtRisk:    "at_risk",
	StatusDelayed:   "delayed",
	StatusCompleted: "completed",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ParseStatus converts the wire form back to a Status.
func ParseStatus(v string) (Status, error) {
	for s, n := range statusNames {
		if n == v {
			return s, nil
		}
	}
	return StatusPlanned, fmt.Errorf("unknown status %q", v)
}

// MarshalJSON encodes the status as its string name.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status from its string name.
func (s *Status) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	parsed, err := ParseStatus(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
