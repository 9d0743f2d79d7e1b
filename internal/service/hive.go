package service

import (
	"context"

	"hivecore/internal/datacontext"
	"hivecore/internal/events"
	"hivecore/internal/mapping"
	"hivecore/pkg/domain"
	"hivecore/pkg/dto"
	"hivecore/pkg/entityset"
)

// HiveService manages store hives.
type HiveService struct {
	instrumentation
	data datacontext.HiveContext
}

// NewHiveService builds a hive service over data. A nil mapper selects
// mapping.Default().
func NewHiveService(data datacontext.HiveContext, mapper *mapping.Registry, opts ...Option) *HiveService {
	return &HiveService{instrumentation: newInstrumentation(domain.EntityHive, mapper, opts), data: data}
}

// ListHives returns every hive, soft-deleted ones included, ordered by id,
// with the number of sections each one owns.
func (s *HiveService) ListHives(ctx context.Context) (items []dto.HiveListItem, err error) {
	ctx, done := s.begin(ctx, domain.EntityHive, opList, 0)
	defer done(&err)
	err = s.data.View(ctx, func(ctx context.Context) error {
		counts, err := sectionCounts(ctx, s.data.Sections())
		if err != nil {
			return err
		}
		hives, err := byID(s.data.Hives()).ToList(ctx)
		if err != nil {
			return err
		}
		if items, err = mapping.MapAll[*domain.StoreHive, dto.HiveListItem](s.mapper, hives); err != nil {
			return err
		}
		for n := range items {
			items[n].HiveSectionCount = counts[items[n].ID]
		}
		return nil
	})
	return items, err
}

// GetHive returns a hive that exists and is not soft-deleted.
func (s *HiveService) GetHive(ctx context.Context, id int) (view dto.Hive, err error) {
	ctx, done := s.begin(ctx, domain.EntityHive, opGet, id)
	defer done(&err)
	err = s.data.View(ctx, func(ctx context.Context) error {
		h, err := findActive(ctx, s.data.Hives(), domain.EntityHive, id)
		if err != nil {
			return err
		}
		view, err = mapping.Map[*domain.StoreHive, dto.Hive](s.mapper, h)
		return err
	})
	return view, err
}

// ListHiveSections returns the sections of an existing hive ordered by id.
func (s *HiveService) ListHiveSections(ctx context.Context, hiveID int) (items []dto.HiveSectionListItem, err error) {
	ctx, done := s.begin(ctx, domain.EntityHive, opChildren, hiveID)
	defer done(&err)
	err = s.data.View(ctx, func(ctx context.Context) error {
		if _, err := findExisting(ctx, s.data.Hives(), domain.EntityHive, hiveID); err != nil {
			return err
		}
		sections, err := byID(s.data.Sections()).
			Where(func(sec *domain.StoreHiveSection) bool { return sec.StoreHiveID == hiveID }).
			ToList(ctx)
		if err != nil {
			return err
		}
		items, err = mapping.MapAll[*domain.StoreHiveSection, dto.HiveSectionListItem](s.mapper, sections)
		return err
	})
	return items, err
}

// CreateHive adds a hive. The code must not be used by another active hive.
func (s *HiveService) CreateHive(ctx context.Context, req dto.UpdateHiveRequest) (view dto.Hive, err error) {
	ctx, done := s.begin(ctx, domain.EntityHive, opCreate, 0)
	defer done(&err)
	var evt events.Event
	err = s.data.Run(ctx, func(ctx context.Context) error {
		h, err := insert(ctx, &s.instrumentation, s.data.Hives(), domain.EntityHive, req, req.Code, func(id int) *domain.StoreHive {
			return &domain.StoreHive{Base: domain.Base{ID: id}}
		})
		if err != nil {
			return err
		}
		evt = events.New(domain.EntityHive, events.ActionCreated, h, h.UpdatedAt)
		view, err = mapping.Map[*domain.StoreHive, dto.Hive](s.mapper, h)
		return err
	})
	if err == nil {
		s.publish(ctx, evt)
	}
	return view, err
}

// UpdateHive overwrites the mutable fields of hive id.
func (s *HiveService) UpdateHive(ctx context.Context, id int, req dto.UpdateHiveRequest) (view dto.Hive, err error) {
	ctx, done := s.begin(ctx, domain.EntityHive, opUpdate, id)
	defer done(&err)
	var evt events.Event
	err = s.data.Run(ctx, func(ctx context.Context) error {
		h, err := modify(ctx, &s.instrumentation, s.data.Hives(), domain.EntityHive, id, req, req.Code)
		if err != nil {
			return err
		}
		evt = events.New(domain.EntityHive, events.ActionUpdated, h, h.UpdatedAt)
		view, err = mapping.Map[*domain.StoreHive, dto.Hive](s.mapper, h)
		return err
	})
	if err == nil {
		s.publish(ctx, evt)
	}
	return view, err
}

// SetStatus sets or clears the soft-delete flag of hive id.
func (s *HiveService) SetStatus(ctx context.Context, id int, deleted bool) (err error) {
	ctx, done := s.begin(ctx, domain.EntityHive, opSetStatus, id)
	defer done(&err)
	var evt events.Event
	err = s.data.Run(ctx, func(ctx context.Context) error {
		h, err := changeStatus(ctx, &s.instrumentation, s.data.Hives(), domain.EntityHive, id, deleted)
		if err != nil {
			return err
		}
		evt = events.New(domain.EntityHive, events.ActionStatusChanged, h, s.now())
		return nil
	})
	if err == nil {
		s.publish(ctx, evt)
	}
	return err
}

// DeleteHive purges a soft-deleted hive that owns no sections.
func (s *HiveService) DeleteHive(ctx context.Context, id int) (err error) {
	ctx, done := s.begin(ctx, domain.EntityHive, opDelete, id)
	defer done(&err)
	var evt events.Event
	err = s.data.Run(ctx, func(ctx context.Context) error {
		h, err := purge(ctx, s.data.Hives(), domain.EntityHive, id, func(h *domain.StoreHive) error {
			owns, err := s.data.Sections().Query().
				Where(func(sec *domain.StoreHiveSection) bool { return sec.StoreHiveID == h.ID }).
				Any(ctx)
			if err != nil {
				return err
			}
			if owns {
				return domain.ConflictError{Entity: domain.EntityHive, ID: h.ID, Reason: "hive still has sections"}
			}
			return nil
		})
		if err != nil {
			return err
		}
		evt = events.New(domain.EntityHive, events.ActionPurged, h, s.now())
		return nil
	})
	if err == nil {
		s.publish(ctx, evt)
	}
	return err
}

func sectionCounts(ctx context.Context, sections *entityset.Set[*domain.StoreHiveSection]) (map[int]int, error) {
	owners, err := entityset.Select(sections.Query(), func(sec *domain.StoreHiveSection) int { return sec.StoreHiveID }).ToList(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[int]int, len(owners))
	for _, id := range owners {
		counts[id]++
	}
	return counts, nil
}
