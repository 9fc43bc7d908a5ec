package serviceimpl

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"face-attendance/domain/models"
	"face-attendance/domain/repositories"
	"face-attendance/domain/services"
)

type fakeUnitRepo struct {
	units map[int]bool
	err   error
}

func (f *fakeUnitRepo) GetByID(ctx context.Context, id int) (*models.Unit, error) {
	if !f.units[id] {
		return nil, repositories.ErrNotFound
	}
	return &models.Unit{ID: id}, nil
}

func (f *fakeUnitRepo) Exists(ctx context.Context, id int) (bool, error) {
	return f.units[id], f.err
}

type fakeDeptRepo struct {
	byUnit map[int][]int
}

func (f *fakeDeptRepo) ListIDsByUnit(ctx context.Context, unitID int) ([]int, error) {
	return f.byUnit[unitID], nil
}

func (f *fakeDeptRepo) GetByID(ctx context.Context, id int) (*models.Department, error) {
	return nil, repositories.ErrNotFound
}

type fakePersonRepo struct {
	persons []models.Person
	asked   []int
	lookups int
}

func (f *fakePersonRepo) Create(ctx context.Context, person *models.Person) error {
	f.persons = append(f.persons, *person)
	return nil
}

func (f *fakePersonRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Person, error) {
	for _, p := range f.persons {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakePersonRepo) ListSearchable(ctx context.Context, departmentIDs []int) ([]models.Person, error) {
	f.asked = departmentIDs
	f.lookups++
	var out []models.Person
	for _, p := range f.persons {
		if p.Feature == nil {
			continue
		}
		for _, d := range departmentIDs {
			if p.DepartmentID == d {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (f *fakePersonRepo) CountSearchable(ctx context.Context, departmentIDs []int) (int64, error) {
	list, _ := f.ListSearchable(ctx, departmentIDs)
	return int64(len(list)), nil
}

func (f *fakePersonRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

type fakeCameraRepo struct {
	cameras map[int]models.Camera
}

func (f *fakeCameraRepo) GetByID(ctx context.Context, id int) (*models.Camera, error) {
	c, ok := f.cameras[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

type fakeDetector struct {
	result *services.DetectionResult
	err    error
	calls  int
}

func (f *fakeDetector) Detect(ctx context.Context, base64Image string) (*services.DetectionResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	r := *f.result
	return &r, nil
}

func (f *fakeDetector) Health(ctx context.Context) error { return f.err }

type recordingLogger struct {
	mu     sync.Mutex
	events []*services.CaptureEvent
}

func (r *recordingLogger) Submit(ctx context.Context, event *services.CaptureEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}
