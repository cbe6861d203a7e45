package model

import "errors"

var errScopeProject = errors.New("scope: project id is required")

// Conflict is a backend-detected inconsistency between allocations. The
// engine never mutates conflicts; it only filters and pages them.
type Conflict struct {
	ConflictType string   `json:"conflictType"`
	ScheduleIDs  []string `json:"scheduleIds"`
	Message      string   `json:"message"`
}

// Scope identifies the slice of the program a workspace operates on.
// Passed explicitly to the workspace constructor; there is no process-wide
// scope state.
type Scope struct {
	ProjectID  string `json:"projectId"`
	ContractID string `json:"contractId,omitempty"`
	SOWID      string `json:"sowId,omitempty"`
	ProcessID  string `json:"processId,omitempty"`
}

// Validate requires at least a project.
func (s Scope) Validate() error {
	if s.ProjectID == "" {
		return errScopeProject
	}
	return nil
}

// String renders the scope as a compact label for logs and metrics.
func (s Scope) String() string {
	out := s.ProjectID
	for _, part := range []string{s.ContractID, s.SOWID, s.ProcessID} {
		if part != "" {
			out += "/" + part
		}
	}
	return out
}
