package server

import "github.com/Martin-Chauke/Legend-Cut/internal/overlay"

// ProcessFrameRequest is one camera frame to composite. Frame is a base64
// JPEG or PNG, with or without a data URI prefix.
type ProcessFrameRequest struct {
	Frame     string `json:"frame" validate:"required"`
	Gender    string `json:"gender" validate:"omitempty,alphanum"`
	Haircut   string `json:"haircut" validate:"required"`
	SessionID string `json:"session_id"`
}

// AdjustmentsPatch mirrors overlay.Adjustments with optional fields so a
// request can name only the knobs it wants to set.
type AdjustmentsPatch struct {
	Scale    *float64 `json:"scale" validate:"omitempty,gt=0,lte=5"`
	Rotation *float64 `json:"rotation" validate:"omitempty,gte=-180,lte=180"`
	X        *int     `json:"x"`
	Y        *int     `json:"y"`
}

// AdjustRequest updates a session's haircut fit.
type AdjustRequest struct {
	SessionID   string           `json:"session_id" validate:"required"`
	Adjustments AdjustmentsPatch `json:"adjustments"`
}

// ResetRequest clears a session back to default fit.
type ResetRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

type processFrameResponse struct {
	Success      bool   `json:"success"`
	Frame        string `json:"frame"`
	FaceDetected bool   `json:"face_detected"`
}

type haircutsResponse struct {
	Success  bool     `json:"success"`
	Category string   `json:"category"`
	Haircuts []string `json:"haircuts"`
}

type uploadResponse struct {
	Success   bool   `json:"success"`
	Filename  string `json:"filename"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

type adjustResponse struct {
	Success     bool                `json:"success"`
	Adjustments overlay.Adjustments `json:"adjustments"`
}

type sessionResponse struct {
	Success     bool                `json:"success"`
	SessionID   string              `json:"session_id"`
	Exists      bool                `json:"exists"`
	Adjustments overlay.Adjustments `json:"adjustments"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func newErrorResponse(msg string) errorResponse {
	return errorResponse{Success: false, Error: msg}
}
