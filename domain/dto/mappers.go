package dto

import "face-attendance/domain/services"

func FaceSearchRequestToSearchRequest(req *FaceSearchRequest) services.SearchRequest {
	out := services.SearchRequest{
		Image: req.Base64Image,
		Scope: services.ScopeFilter{
			UnitID:       req.UnitID,
			DepartmentID: req.DepartmentID,
		},
		Threshold: DefaultThreshold,
		Quality:   DefaultQuality,
		NumResult: DefaultNumResult,
	}
	if req.Threshold != nil {
		out.Threshold = *req.Threshold
	}
	if req.Quality != nil {
		out.Quality = *req.Quality
	}
	if req.NumResult != nil {
		out.NumResult = *req.NumResult
	}
	return out
}

func FaceSearchCameraRequestToSearchRequest(req *FaceSearchCameraRequest) services.SearchRequest {
	out := FaceSearchRequestToSearchRequest(&req.FaceSearchRequest)
	if req.DeviceID != nil {
		device := *req.DeviceID
		out.DeviceID = &device
	}
	return out
}

func SearchOutcomeToResponse(outcome *services.SearchOutcome) *FaceSearchResponse {
	results := outcome.Results
	if results == nil {
		results = []services.SearchResult{}
	}
	return &FaceSearchResponse{
		RequestTime:   outcome.RequestTime,
		Data:          []services.DetectionResult{outcome.Detection.WithoutFeature()},
		Results:       results,
		NearestResult: outcome.Nearest,
	}
}
