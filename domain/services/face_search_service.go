package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Custom errors for face search
var (
	ErrInvalidScope         = errors.New("unit or camera not found")
	ErrDepartmentNotInScope = errors.New("department does not belong to unit")
	ErrDetectionUnavailable = errors.New("face detection service unavailable")
	ErrNoFaceDetected       = errors.New("no face detected in image")
	ErrLowQuality           = errors.New("face quality below required minimum")
)

// LowQualityError carries the measured quality. It matches ErrLowQuality.
type LowQualityError struct {
	Quality float64
	Minimum float64
}

func (e *LowQualityError) Error() string {
	return fmt.Sprintf("face quality %.2f below required %.2f", e.Quality, e.Minimum)
}

func (e *LowQualityError) Is(target error) bool {
	return target == ErrLowQuality
}

// DetectionResult is the detector's answer for a single face.
type DetectionResult struct {
	Feature       []float64 `json:"feature,omitempty"`
	FaceRectangle []int     `json:"face_rectangle,omitempty"`
	Quality       float64   `json:"quality"`
	WearMask      bool      `json:"wearmask"`
	DecodeTime    float64   `json:"decode_time"`
	ProcessTime   float64   `json:"process_time"`
}

// WithoutFeature returns a copy suitable for API responses.
func (d DetectionResult) WithoutFeature() DetectionResult {
	d.Feature = nil
	return d
}

// FaceDetector extracts a face embedding from a base64 image.
type FaceDetector interface {
	Detect(ctx context.Context, base64Image string) (*DetectionResult, error)
	Health(ctx context.Context) error
}

// ScopeFilter restricts a search to one unit and optionally one of its departments.
type ScopeFilter struct {
	UnitID       int
	DepartmentID *int
}

// Narrow returns the department IDs eligible for the search given the
// unit's live departments.
func (f ScopeFilter) Narrow(unitDepartmentIDs []int) ([]int, error) {
	if f.DepartmentID == nil {
		return unitDepartmentIDs, nil
	}
	if !slices.Contains(unitDepartmentIDs, *f.DepartmentID) {
		return nil, fmt.Errorf("department %d in unit %d: %w", *f.DepartmentID, f.UnitID, ErrDepartmentNotInScope)
	}
	return []int{*f.DepartmentID}, nil
}

// SearchRequest is one search-face or search-face-camera call.
type SearchRequest struct {
	Image     string
	Scope     ScopeFilter
	Threshold float64
	Quality   float64
	NumResult int
	DeviceID  *int // Set for camera searches
}

// SearchResult describes one candidate person.
type SearchResult struct {
	PersonID     uuid.UUID `json:"person_id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	DepartmentID int       `json:"department_id"`
	Type         int       `json:"type"`
	Similarity   float64   `json:"similarity"`
	Image        string    `json:"image,omitempty"`
}

// SearchOutcome is the result of a successful search.
type SearchOutcome struct {
	RequestTime float64 // Seconds spent in the detection call
	Results     []SearchResult
	Nearest     *SearchResult
	Detection   DetectionResult
}

// FaceSearchService ranks registered persons against a captured face.
type FaceSearchService interface {
	Search(ctx context.Context, req SearchRequest) (*SearchOutcome, error)
}

// CaptureEvent is queued once per search that reaches a logging point.
type CaptureEvent struct {
	EventID    uuid.UUID  `json:"event_id"`
	UnitID     int        `json:"unit_id"`
	DeviceID   *int       `json:"device_id,omitempty"`
	PersonID   *uuid.UUID `json:"person_id,omitempty"`
	PersonCode string     `json:"person_code,omitempty"`
	Score      *float64   `json:"score,omitempty"`
	Quality    float64    `json:"quality"`
	Feature    []float64  `json:"feature,omitempty"`
	Image      string     `json:"image"`
	Directory  string     `json:"directory"`
	Filename   string     `json:"filename"`
	CapturedAt time.Time  `json:"captured_at"`
}

// Known reports whether the capture matched a registered person.
func (e *CaptureEvent) Known() bool {
	return e.PersonID != nil
}

// EventLogger hands capture events to background processing. Submit never
// blocks on the image write and never reports failure to the caller.
type EventLogger interface {
	Submit(ctx context.Context, event *CaptureEvent)
}
