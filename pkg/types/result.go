package types

// Status classifies the outcome of a dispatched command.
type Status string

const (
	StatusOk       Status = "ok"
	StatusRejected Status = "rejected"
	StatusFailed   Status = "failed"
)

// Reason refines a Rejected or Failed status.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonNoActiveProject  Reason = "no_active_project"
	ReasonInvalidArgument  Reason = "invalid_argument"
	ReasonAlreadyExists    Reason = "already_exists"
	ReasonNotFound         Reason = "not_found"
	ReasonBackupFailed     Reason = "backup_failed"
	ReasonGenerationFailed Reason = "generation_failed"
	ReasonTranscription    Reason = "transcription_error"
	ReasonRateLimited      Reason = "rate_limited"
	ReasonTimeout          Reason = "timeout"
	ReasonCollaborator     Reason = "collaborator_error"
)

// Result is the outcome of executing a command. Results are returned, never
// used as control flow.
type Result struct {
	Status  Status `json:"status"`
	Reason  Reason `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// OkResult builds a success result.
func OkResult(message string, payload any) Result {
	return Result{Status: StatusOk, Message: message, Payload: payload}
}

// RejectResult builds a rejection (precondition failure, no manager ran).
func RejectResult(reason Reason, message string) Result {
	return Result{Status: StatusRejected, Reason: reason, Message: message}
}

// FailResult builds a failure result from a manager or collaborator.
func FailResult(reason Reason, message string) Result {
	return Result{Status: StatusFailed, Reason: reason, Message: message}
}

// IsOk reports whether the result is a success.
func (r Result) IsOk() bool { return r.Status == StatusOk }
