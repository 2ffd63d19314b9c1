package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campus-hub/scheduling-api/internal/models"
	appErrors "github.com/campus-hub/scheduling-api/pkg/errors"
)

type roomReader interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
	Search(ctx context.Context, classRoomTypeID, departmentID string) ([]models.Room, error)
}

type occupancyReader interface {
	FindOccupants(ctx context.Context, dayOfWeek int, timeSlotID string) ([]models.SlotDetail, error)
}

type exceptionDateReader interface {
	ListApprovedForDate(ctx context.Context, date time.Time) ([]models.ExceptionDetail, error)
}

// AvailabilityService decides whether rooms are free for a recurring
// day/time slot, optionally on one specific calendar date.
type AvailabilityService struct {
	rooms      roomReader
	slots      occupancyReader
	exceptions exceptionDateReader
	labTypes   map[string]struct{}
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewAvailabilityService instantiates AvailabilityService. labRoomTypeIDs
// lists room types whose capacity check is skipped (parallel lab groups).
func NewAvailabilityService(rooms roomReader, slots occupancyReader, exceptions exceptionDateReader, labRoomTypeIDs []string, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	labTypes := make(map[string]struct{}, len(labRoomTypeIDs))
	for _, id := range labRoomTypeIDs {
		labTypes[id] = struct{}{}
	}
	return &AvailabilityService{rooms: rooms, slots: slots, exceptions: exceptions, labTypes: labTypes, validator: validate, logger: logger}
}

// occupancy captures who holds a room at the searched day/slot, and whether
// an approved exception vacates that hold on the searched date.
type occupancy struct {
	holder  models.SlotDetail
	freedBy *models.ExceptionDetail
}

// IsRoomFree reports whether the room can take a new booking at the given
// recurring day/time, on the specific date when one is provided.
func (s *AvailabilityService) IsRoomFree(ctx context.Context, roomID string, dayOfWeek int, timeSlotID string, onDate *time.Time) (bool, error) {
	holds, err := s.resolveOccupancy(ctx, dayOfWeek, timeSlotID, onDate)
	if err != nil {
		return false, err
	}
	occ, held := holds[roomID]
	if !held {
		return true, nil
	}
	return occ.freedBy != nil, nil
}

// ListFreeRooms classifies candidate rooms for the given criteria into
// normal, freed-by-exception and occupied buckets.
func (s *AvailabilityService) ListFreeRooms(ctx context.Context, criteria models.RoomSearchCriteria) (*models.RoomAvailabilityResult, error) {
	if err := s.validator.Struct(criteria); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability criteria")
	}

	candidates, err := s.rooms.Search(ctx, criteria.ClassRoomTypeID, criteria.DepartmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search rooms")
	}

	holds, err := s.resolveOccupancy(ctx, criteria.DayOfWeek, criteria.TimeSlotID, criteria.Date)
	if err != nil {
		return nil, err
	}

	result := &models.RoomAvailabilityResult{
		NormalRooms:   []models.Room{},
		FreedRooms:    []models.FreedRoom{},
		OccupiedRooms: []models.OccupiedRoom{},
	}

	for _, room := range candidates {
		// Lab-type rooms host parallel groups; their capacity is not a
		// per-class constraint.
		if criteria.Capacity > 0 && room.Capacity < criteria.Capacity {
			if _, lab := s.labTypes[room.ClassRoomTypeID]; !lab {
				continue
			}
		}

		occ, held := holds[room.ID]
		if !held {
			result.NormalRooms = append(result.NormalRooms, room)
			continue
		}
		if occ.freedBy != nil {
			result.FreedRooms = append(result.FreedRooms, models.FreedRoom{
				Room:         room,
				FreedByType:  occ.freedBy.ExceptionType,
				FreedByClass: occ.freedBy.ClassName,
				Reason:       occ.freedBy.Reason,
			})
			continue
		}
		result.OccupiedRooms = append(result.OccupiedRooms, models.OccupiedRoom{
			Room: room,
			OccupiedBy: models.RoomConflict{
				ScheduleID:  occ.holder.ID,
				ClassID:     occ.holder.ClassID,
				ClassName:   occ.holder.ClassName,
				TeacherID:   occ.holder.TeacherID,
				TeacherName: occ.holder.TeacherName,
				DayOfWeek:   occ.holder.DayOfWeek,
				TimeSlotID:  occ.holder.TimeSlotID,
				RoomID:      room.ID,
			},
		})
	}

	result.TotalAvailable = len(result.NormalRooms) + len(result.FreedRooms)
	return result, nil
}

// resolveOccupancy builds the room occupancy map for a day/slot. When a date
// is given, approved exceptions effective that date vacate their original
// rooms and redirected occurrences claim their target rooms.
func (s *AvailabilityService) resolveOccupancy(ctx context.Context, dayOfWeek int, timeSlotID string, onDate *time.Time) (map[string]occupancy, error) {
	occupants, err := s.slots.FindOccupants(ctx, dayOfWeek, timeSlotID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot occupancy")
	}

	holds := make(map[string]occupancy, len(occupants))
	for _, slot := range occupants {
		if slot.RoomID == nil {
			continue
		}
		holds[*slot.RoomID] = occupancy{holder: slot}
	}

	if onDate == nil {
		return holds, nil
	}
	date := models.Midnight(*onDate)

	effective, err := s.exceptions.ListApprovedForDate(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exceptions")
	}

	for i := range effective {
		exc := effective[i]

		// Vacate the original room when the occupying class is cancelled,
		// moved away or sitting an exam on this date.
		if exc.ClassScheduleID != nil && exc.ExceptionType.Vacates() && models.SameDate(exc.ExceptionDate, date) {
			for roomID, occ := range holds {
				if occ.holder.ID == *exc.ClassScheduleID && occ.freedBy == nil {
					occ.freedBy = &effective[i]
					holds[roomID] = occ
				}
			}
		}

		// A redirect landing on this date and time slot claims its target.
		if exc.ExceptionType.Redirects() && exc.MovedToRoomID != nil && exc.MovedToTimeSlotID != nil &&
			*exc.MovedToTimeSlotID == timeSlotID && exc.MovedToDate != nil && models.SameDate(*exc.MovedToDate, date) {
			roomID := *exc.MovedToRoomID
			if existing, held := holds[roomID]; held && existing.freedBy == nil {
				continue // already occupied by a recurring slot
			}
			holds[roomID] = occupancy{holder: models.SlotDetail{
				ClassSchedule: models.ClassSchedule{
					ID:         stringValue(exc.ClassScheduleID),
					ClassID:    exc.ClassID,
					DayOfWeek:  dayOfWeek,
					TimeSlotID: timeSlotID,
					RoomID:     exc.MovedToRoomID,
					Status:     models.SlotExam,
				},
				ClassName: exc.ClassName,
			}}
		}
	}

	return holds, nil
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
