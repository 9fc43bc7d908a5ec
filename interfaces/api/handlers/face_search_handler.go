package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"face-attendance/domain/dto"
	"face-attendance/domain/services"
	"face-attendance/pkg/logger"
	"face-attendance/pkg/utils"
)

type FaceSearchHandler struct {
	searchService services.FaceSearchService
	validate      *validator.Validate
}

func NewFaceSearchHandler(searchService services.FaceSearchService) *FaceSearchHandler {
	return &FaceSearchHandler{
		searchService: searchService,
		validate:      validator.New(),
	}
}

// SearchFace ranks the unit's persons against the submitted face
// @Summary Search persons by face
// @Tags Persons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.FaceSearchRequest true "Search request"
// @Success 200 {object} dto.FaceSearchResponse
// @Router /api/v1/persons/search-face [post]
func (h *FaceSearchHandler) SearchFace(c *fiber.Ctx) error {
	var req dto.FaceSearchRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := h.validate.Struct(&req); err != nil {
		return utils.ValidationErrorResponse(c, err)
	}

	return h.search(c, dto.FaceSearchRequestToSearchRequest(&req))
}

// SearchFaceCamera is SearchFace for a capture from a registered camera
// @Summary Search persons by camera capture
// @Tags Persons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.FaceSearchCameraRequest true "Search request"
// @Success 200 {object} dto.FaceSearchResponse
// @Router /api/v1/persons/search-face-camera [post]
func (h *FaceSearchHandler) SearchFaceCamera(c *fiber.Ctx) error {
	var req dto.FaceSearchCameraRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := h.validate.Struct(&req); err != nil {
		return utils.ValidationErrorResponse(c, err)
	}

	return h.search(c, dto.FaceSearchCameraRequestToSearchRequest(&req))
}

func (h *FaceSearchHandler) search(c *fiber.Ctx, req services.SearchRequest) error {
	outcome, err := h.searchService.Search(c.UserContext(), req)
	if err != nil {
		status, message := searchErrorStatus(err)
		if status >= fiber.StatusInternalServerError {
			logger.FaceError("search_failed", message, err, map[string]interface{}{
				"unit_id": req.Scope.UnitID,
			})
		}
		return utils.ErrorResponse(c, status, message, err)
	}

	return c.JSON(dto.SearchOutcomeToResponse(outcome))
}

func searchErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidScope):
		return fiber.StatusBadRequest, "Unit or camera not found"
	case errors.Is(err, services.ErrDepartmentNotInScope):
		return fiber.StatusBadRequest, "Department does not belong to unit"
	case errors.Is(err, services.ErrNoFaceDetected):
		return fiber.StatusBadRequest, "No face detected"
	case errors.Is(err, services.ErrLowQuality):
		return fiber.StatusBadRequest, "Face quality too low"
	case errors.Is(err, services.ErrDetectionUnavailable):
		return fiber.StatusServiceUnavailable, "Face detection service unavailable"
	default:
		return fiber.StatusInternalServerError, "Face search failed"
	}
}
