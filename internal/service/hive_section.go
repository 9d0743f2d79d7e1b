package service

import (
	"context"

	"hivecore/internal/datacontext"
	"hivecore/internal/events"
	"hivecore/internal/mapping"
	"hivecore/pkg/domain"
	"hivecore/pkg/dto"
)

// HiveSectionService manages the sections of store hives.
type HiveSectionService struct {
	instrumentation
	data datacontext.HiveContext
}

// NewHiveSectionService builds a section service over data.
func NewHiveSectionService(data datacontext.HiveContext, mapper *mapping.Registry, opts ...Option) *HiveSectionService {
	return &HiveSectionService{instrumentation: newInstrumentation(domain.EntityHiveSection, mapper, opts), data: data}
}

// ListHiveSections returns every section ordered by id.
func (s *HiveSectionService) ListHiveSections(ctx context.Context) (items []dto.HiveSectionListItem, err error) {
	ctx, done := s.begin(ctx, domain.EntityHiveSection, opList, 0)
	defer done(&err)
	err = s.data.View(ctx, func(ctx context.Context) error {
		sections, err := byID(s.data.Sections()).ToList(ctx)
		if err != nil {
			return err
		}
		items, err = mapping.MapAll[*domain.StoreHiveSection, dto.HiveSectionListItem](s.mapper, sections)
		return err
	})
	return items, err
}

// GetHiveSection returns a section that exists and is not soft-deleted.
func (s *HiveSectionService) GetHiveSection(ctx context.Context, id int) (view dto.HiveSection, err error) {
	ctx, done := s.begin(ctx, domain.EntityHiveSection, opGet, id)
	defer done(&err)
	err = s.data.View(ctx, func(ctx context.Context) error {
		sec, err := findActive(ctx, s.data.Sections(), domain.EntityHiveSection, id)
		if err != nil {
			return err
		}
		view, err = mapping.Map[*domain.StoreHiveSection, dto.HiveSection](s.mapper, sec)
		return err
	})
	return view, err
}

// CreateHiveSection adds a section to an active hive.
func (s *HiveSectionService) CreateHiveSection(ctx context.Context, req dto.UpdateHiveSectionRequest) (view dto.HiveSection, err error) {
	ctx, done := s.begin(ctx, domain.EntityHiveSection, opCreate, 0)
	defer done(&err)
	var evt events.Event
	err = s.data.Run(ctx, func(ctx context.Context) error {
		if err := ownerExists(ctx, s.data.Hives(), domain.EntityHive, req.StoreHiveID); err != nil {
			return err
		}
		sec, err := insert(ctx, &s.instrumentation, s.data.Sections(), domain.EntityHiveSection, req, req.Code, func(id int) *domain.StoreHiveSection {
			return &domain.StoreHiveSection{Base: domain.Base{ID: id}}
		})
		if err != nil {
			return err
		}
		evt = events.New(domain.EntityHiveSection, events.ActionCreated, sec, sec.UpdatedAt)
		view, err = mapping.Map[*domain.StoreHiveSection, dto.HiveSection](s.mapper, sec)
		return err
	})
	if err == nil {
		s.publish(ctx, evt)
	}
	return view, err
}

// UpdateHiveSection overwrites the mutable fields of section id, which may
// move it to another active hive.
func (s *HiveSectionService) UpdateHiveSection(ctx context.Context, id int, req dto.UpdateHiveSectionRequest) (view dto.HiveSection, err error) {
	ctx, done := s.begin(ctx, domain.EntityHiveSection, opUpdate, id)
	defer done(&err)
	var evt events.Event
	err = s.data.Run(ctx, func(ctx context.Context) error {
		if _, err := findExisting(ctx, s.data.Sections(), domain.EntityHiveSection, id); err != nil {
			return err
		}
		if err := ownerExists(ctx, s.data.Hives(), domain.EntityHive, req.StoreHiveID); err != nil {
			return err
		}
		sec, err := modify(ctx, &s.instrumentation, s.data.Sections(), domain.EntityHiveSection, id, req, req.Code)
		if err != nil {
			return err
		}
		evt = events.New(domain.EntityHiveSection, events.ActionUpdated, sec, sec.UpdatedAt)
		view, err = mapping.Map[*domain.StoreHiveSection, dto.HiveSection](s.mapper, sec)
		return err
	})
	if err == nil {
		s.publish(ctx, evt)
	}
	return view, err
}

// SetStatus sets or clears the soft-delete flag of section id.
func (s *HiveSectionService) SetStatus(ctx context.Context, id int, deleted bool) (err error) {
	ctx, done := s.begin(ctx, domain.EntityHiveSection, opSetStatus, id)
	defer done(&err)
	var evt events.Event
	err = s.data.Run(ctx, func(ctx context.Context) error {
		sec, err := changeStatus(ctx, &s.instrumentation, s.data.Sections(), domain.EntityHiveSection, id, deleted)
		if err != nil {
			return err
		}
		evt = events.New(domain.EntityHiveSection, events.ActionStatusChanged, sec, s.now())
		return nil
	})
	if err == nil {
		s.publish(ctx, evt)
	}
	return err
}

// DeleteHiveSection purges a soft-deleted section.
func (s *HiveSectionService) DeleteHiveSection(ctx context.Context, id int) (err error) {
	ctx, done := s.begin(ctx, domain.EntityHiveSection, opDelete, id)
	defer done(&err)
	var evt events.Event
	err = s.data.Run(ctx, func(ctx context.Context) error {
		sec, err := purge(ctx, s.data.Sections(), domain.EntityHiveSection, id, nil)
		if err != nil {
			return err
		}
		evt = events.New(domain.EntityHiveSection, events.ActionPurged, sec, s.now())
		return nil
	})
	if err == nil {
		s.publish(ctx, evt)
	}
	return err
}
