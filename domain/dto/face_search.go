package dto

import "face-attendance/domain/services"

// Defaults applied when optional fields are omitted
const (
	DefaultThreshold = 0.6
	DefaultQuality   = 0.3
	DefaultNumResult = 1
)

type FaceSearchRequest struct {
	Base64Image  string   `json:"base64_image" validate:"required"`
	UnitID       int      `json:"unit_id" validate:"required,gt=0"`
	DepartmentID *int     `json:"department_id" validate:"omitempty,gt=0"`
	Threshold    *float64 `json:"threshold" validate:"omitempty,gte=0,lte=1"`
	Quality      *float64 `json:"quality" validate:"omitempty,gte=0,lte=1"`
	NumResult    *int     `json:"num_result" validate:"omitempty,gte=1,lte=100"`
}

// FaceSearchCameraRequest is the kiosk variant. Without a device_id it behaves
// like a plain search.
type FaceSearchCameraRequest struct {
	FaceSearchRequest
	DeviceID *int `json:"device_id" validate:"omitempty,gt=0"`
}

type FaceSearchResponse struct {
	RequestTime   float64                    `json:"request_time"`
	Data          []services.DetectionResult `json:"data"`
	Results       []services.SearchResult    `json:"results"`
	NearestResult *services.SearchResult     `json:"nearest_result"`
}
