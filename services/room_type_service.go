package services

import (
	"context"
	"strings"

	"hotel-frontdesk/failure"
	"hotel-frontdesk/models"
	"hotel-frontdesk/utils"
)

type RoomTypeService struct {
	Deps
}

func NewRoomTypeService(deps Deps) *RoomTypeService {
	return &RoomTypeService{Deps: deps}
}

type RoomTypeInput struct {
	TypeName    string `json:"typeName" validate:"required,max=100"`
	Description string `json:"description" validate:"max=255"`
	MaxGuests   uint   `json:"maxGuests"`
}

func (s *RoomTypeService) Create(ctx context.Context, in RoomTypeInput) (*models.RoomType, error) {
	if err := utils.ValidateStruct(&in); err != nil {
		return nil, err
	}
	rt := models.RoomType{
		TypeName:    strings.TrimSpace(in.TypeName),
		Description: in.Description,
		MaxGuests:   in.MaxGuests,
	}
	if err := s.DB.WithContext(ctx).Create(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

func (s *RoomTypeService) GetAll(ctx context.Context) ([]models.RoomType, error) {
	var types []models.RoomType
	err := s.DB.WithContext(ctx).Order("id").Find(&types).Error
	return types, err
}

func (s *RoomTypeService) GetByID(ctx context.Context, id uint) (*models.RoomType, error) {
	var rt models.RoomType
	if err := s.DB.WithContext(ctx).First(&rt, id).Error; err != nil {
		return nil, notFound(err, "room type not found")
	}
	return &rt, nil
}

func (s *RoomTypeService) Update(ctx context.Context, id uint, in RoomTypeInput) (*models.RoomType, error) {
	if err := utils.ValidateStruct(&in); err != nil {
		return nil, err
	}
	rt, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rt.TypeName = strings.TrimSpace(in.TypeName)
	rt.Description = in.Description
	rt.MaxGuests = in.MaxGuests
	if err := s.DB.WithContext(ctx).Save(rt).Error; err != nil {
		return nil, err
	}
	return rt, nil
}

// Delete removes the type; types still referenced by rooms are kept.
func (s *RoomTypeService) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.RoomType{}, id)
	if res.Error != nil {
		if isForeignKeyError(res.Error) {
			return failure.Conflict("room type is used by rooms")
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return failure.NotFound("room type not found")
	}
	return nil
}

type FloorService struct {
	Deps
}

func NewFloorService(deps Deps) *FloorService {
	return &FloorService{Deps: deps}
}

type FloorInput struct {
	Name  string `json:"name" validate:"required,max=50"`
	Level int    `json:"level"`
}

func (s *FloorService) Create(ctx context.Context, in FloorInput) (*models.Floor, error) {
	if err := utils.ValidateStruct(&in); err != nil {
		return nil, err
	}
	f := models.Floor{Name: strings.TrimSpace(in.Name), Level: in.Level}
	if err := s.DB.WithContext(ctx).Create(&f).Error; err != nil {
		if isDuplicateError(err) {
			return nil, failure.Conflict("floor level already exists")
		}
		return nil, err
	}
	return &f, nil
}

func (s *FloorService) GetAll(ctx context.Context) ([]models.Floor, error) {
	var floors []models.Floor
	err := s.DB.WithContext(ctx).Order("level").Find(&floors).Error
	return floors, err
}

func (s *FloorService) Delete(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Floor{}, id)
	if res.Error != nil {
		if isForeignKeyError(res.Error) {
			return failure.Conflict("floor is used by rooms")
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return failure.NotFound("floor not found")
	}
	return nil
}
