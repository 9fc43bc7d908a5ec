package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"face-attendance/domain/models"
	"face-attendance/domain/repositories"
	"face-attendance/domain/services"
	"face-attendance/infrastructure/storage"
	"face-attendance/pkg/logger"
	"face-attendance/pkg/similarity"
)

// FaceSearchConfig holds the search settings taken from config.Config.
type FaceSearchConfig struct {
	MaskThresholdSub float64
	EventRoot        string
	Now              func() time.Time // Local wall clock used for image names
}

type FaceSearchServiceImpl struct {
	unitRepo   repositories.UnitRepository
	deptRepo   repositories.DepartmentRepository
	personRepo repositories.PersonRepository
	cameraRepo repositories.CameraRepository
	detector   services.FaceDetector
	events     services.EventLogger
	cfg        FaceSearchConfig
}

func NewFaceSearchService(
	unitRepo repositories.UnitRepository,
	deptRepo repositories.DepartmentRepository,
	personRepo repositories.PersonRepository,
	cameraRepo repositories.CameraRepository,
	detector services.FaceDetector,
	events services.EventLogger,
	cfg FaceSearchConfig,
) services.FaceSearchService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &FaceSearchServiceImpl{
		unitRepo:   unitRepo,
		deptRepo:   deptRepo,
		personRepo: personRepo,
		cameraRepo: cameraRepo,
		detector:   detector,
		events:     events,
		cfg:        cfg,
	}
}

func (s *FaceSearchServiceImpl) Search(ctx context.Context, req services.SearchRequest) (*services.SearchOutcome, error) {
	if err := s.validateScope(ctx, req); err != nil {
		return nil, err
	}

	started := time.Now()
	detection, err := s.detector.Detect(ctx, req.Image)
	requestTime := time.Since(started).Seconds()
	if err != nil {
		logger.FaceError("detect", "Face detection failed", err, map[string]interface{}{"unit_id": req.Scope.UnitID})
		return nil, err
	}

	if detection.Quality < req.Quality {
		s.logCapture(ctx, req, detection, nil)
		logger.FaceWarn("low_quality", "Face quality below minimum", map[string]interface{}{
			"unit_id": req.Scope.UnitID,
			"quality": detection.Quality,
			"minimum": req.Quality,
		})
		return nil, &services.LowQualityError{Quality: detection.Quality, Minimum: req.Quality}
	}

	outcome := &services.SearchOutcome{
		RequestTime: requestTime,
		Results:     []services.SearchResult{},
		Detection:   detection.WithoutFeature(),
	}

	unitDepartments, err := s.deptRepo.ListIDsByUnit(ctx, req.Scope.UnitID)
	if err != nil {
		return nil, fmt.Errorf("failed to load departments: %w", err)
	}
	if len(unitDepartments) == 0 {
		s.logCapture(ctx, req, detection, nil)
		return outcome, nil
	}

	departmentIDs, err := req.Scope.Narrow(unitDepartments)
	if err != nil {
		return nil, err
	}

	candidates, err := s.personRepo.ListSearchable(ctx, departmentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidates: %w", err)
	}
	if len(candidates) == 0 {
		s.logCapture(ctx, req, detection, nil)
		return outcome, nil
	}

	ranking := similarity.Rank(detection.Feature, candidates, models.Person.Embedding, similarity.Options{
		Threshold:      req.Threshold,
		WearMask:       detection.WearMask,
		MaskSubtrahend: s.cfg.MaskThresholdSub,
		Limit:          req.NumResult,
	})
	if ranking.Skipped > 0 {
		logger.FaceWarn("skipped_candidates", "Candidates with unusable features were skipped", map[string]interface{}{
			"unit_id": req.Scope.UnitID,
			"skipped": ranking.Skipped,
		})
	}

	for _, m := range ranking.Matches {
		outcome.Results = append(outcome.Results, toSearchResult(m))
	}
	if ranking.Nearest != nil {
		nearest := toSearchResult(*ranking.Nearest)
		outcome.Nearest = &nearest
	}

	var best *services.SearchResult
	if len(outcome.Results) > 0 {
		best = &outcome.Results[0]
	}
	s.logCapture(ctx, req, detection, best)

	logger.Face("search", "Face search completed", map[string]interface{}{
		"unit_id":    req.Scope.UnitID,
		"candidates": len(candidates),
		"matches":    len(outcome.Results),
		"threshold":  ranking.EffectiveThreshold,
		"wearmask":   detection.WearMask,
	})

	return outcome, nil
}

func (s *FaceSearchServiceImpl) validateScope(ctx context.Context, req services.SearchRequest) error {
	ok, err := s.unitRepo.Exists(ctx, req.Scope.UnitID)
	if err != nil {
		return fmt.Errorf("failed to load unit: %w", err)
	}
	if !ok {
		return fmt.Errorf("unit %d: %w", req.Scope.UnitID, services.ErrInvalidScope)
	}

	if req.DeviceID == nil {
		return nil
	}

	camera, err := s.cameraRepo.GetByID(ctx, *req.DeviceID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("camera %d: %w", *req.DeviceID, services.ErrInvalidScope)
		}
		return fmt.Errorf("failed to load camera: %w", err)
	}
	if camera.Area.UnitID != req.Scope.UnitID {
		return fmt.Errorf("camera %d not in unit %d: %w", camera.ID, req.Scope.UnitID, services.ErrInvalidScope)
	}
	return nil
}

// logCapture submits exactly one capture event. A nil match logs an unknown face.
func (s *FaceSearchServiceImpl) logCapture(ctx context.Context, req services.SearchRequest, detection *services.DetectionResult, match *services.SearchResult) {
	now := s.cfg.Now()
	code := "unknown"

	event := &services.CaptureEvent{
		EventID:    uuid.New(),
		UnitID:     req.Scope.UnitID,
		DeviceID:   req.DeviceID,
		Quality:    detection.Quality,
		Feature:    detection.Feature,
		Image:      req.Image,
		Directory:  filepath.Join(s.cfg.EventRoot, now.Format(storage.DayLayout)),
		CapturedAt: now,
	}
	if match != nil {
		personID := match.PersonID
		score := match.Similarity
		event.PersonID = &personID
		event.PersonCode = match.Code
		event.Score = &score
		if match.Code != "" {
			code = match.Code
		}
	}
	event.Filename = fmt.Sprintf("%s_%s.jpg", now.Format("150405"), fileSafeCode(code))

	s.events.Submit(ctx, event)
}

var codeReplacer = strings.NewReplacer("/", "_", "\\", "_", "..", "_")

// fileSafeCode keeps a person code whole inside a single path segment.
func fileSafeCode(code string) string {
	return codeReplacer.Replace(code)
}

func toSearchResult(s similarity.Scored[models.Person]) services.SearchResult {
	return services.SearchResult{
		PersonID:     s.Item.ID,
		Name:         s.Item.Name,
		Code:         s.Item.Code,
		DepartmentID: s.Item.DepartmentID,
		Type:         s.Item.Type,
		Similarity:   s.Similarity,
		Image:        s.Item.Image,
	}
}
