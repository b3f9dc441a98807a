package domain

type UploadPhase string

const (
	PhaseIdle      UploadPhase = "idle"
	PhaseUploading UploadPhase = "uploading"
	PhaseSucceeded UploadPhase = "succeeded"
	PhaseFailed    UploadPhase = "failed"
)

// UploadState is the controller's view of the most recent submission.
// Text is set only in PhaseSucceeded and Reason only in PhaseFailed.
type UploadState struct {
	Phase     UploadPhase `json:"phase"`
	Text      string      `json:"text,omitempty"`
	Reason    string      `json:"reason,omitempty"`
	AttemptID string      `json:"attempt_id,omitempty"`
}

func IdleState() UploadState {
	return UploadState{Phase: PhaseIdle}
}

// Snapshot is a consistent read of the controller for rendering.
type Snapshot struct {
	FileName  string      `json:"file_name,omitempty"`
	FileSize  int         `json:"file_size,omitempty"`
	State     UploadState `json:"state"`
	Summary   string      `json:"summary"`
	CanUpload bool        `json:"can_upload"`
	CanCopy   bool        `json:"can_copy"`
}

func (s Snapshot) Uploading() bool {
	return s.State.Phase == PhaseUploading
}

func (s Snapshot) Failed() bool {
	return s.State.Phase == PhaseFailed
}
