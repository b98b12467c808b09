package service

import (
	"context"

	"equiplend-backend/internal/domain"
	"equiplend-backend/internal/repository"
)

type equipmentService struct {
	store repository.Store
}

func NewEquipmentService(store repository.Store) EquipmentService {
	return &equipmentService{store: store}
}

func (s *equipmentService) GetAvailability(ctx context.Context, equipmentID int32) (*domain.Availability, error) {
	return s.store.Repos().Equipment.GetAvailability(ctx, equipmentID)
}
