// Package modeler coordinates the metadata store, table introspection and
// annotation replay into model builds.
package modeler

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/starford/modeler/internal/annotation"
	"github.com/starford/modeler/internal/apperr"
	"github.com/starford/modeler/internal/datasource"
	"github.com/starford/modeler/internal/metastore"
	"github.com/starford/modeler/internal/metrics"
	"github.com/starford/modeler/internal/model"
	"github.com/starford/modeler/internal/schema"
)

// GroupDetail is the full representation of a stored group.
type GroupDetail struct {
	*annotation.Group
	Summaries []string `json:"summaries"`
}

// GroupListItem is a lightweight item in a group listing.
type GroupListItem struct {
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	SharedDimension bool   `json:"shared_dimension"`
	Annotations     int    `json:"annotations"`
}

// Link asks BuildModel to attach a shared group under Name, joined on Column.
type Link struct {
	Name            string `json:"name" yaml:"name"`
	SharedDimension string `json:"shared_dimension" yaml:"shared_dimension"`
	Column          string `json:"column" yaml:"column"`
}

// BuildRequest describes one model build.
type BuildRequest struct {
	Name          string            `json:"name" yaml:"name"`
	ConnectionRef string            `json:"connection_ref" yaml:"connection_ref"`
	Table         string            `json:"table" yaml:"table"`
	AutoModel     bool              `json:"auto_model" yaml:"auto_model"`
	Groups        []string          `json:"groups,omitempty" yaml:"groups,omitempty"`
	Group         *annotation.Group `json:"group,omitempty" yaml:"group,omitempty"`
	Links         []Link            `json:"links,omitempty" yaml:"links,omitempty"`
}

// BuildResult holds the logical models of a finished build.
type BuildResult struct {
	Name      string              `json:"name"`
	Reporting *model.LogicalModel `json:"reporting"`
	Analysis  *model.LogicalModel `json:"analysis"`
	Cube      *model.Cube         `json:"cube"`
}

// Opener opens a database connection. Tests substitute it.
type Opener func(datasource.ConnectionMeta) (*sqlx.DB, error)

// Service coordinates store, introspection and annotation operations.
type Service struct {
	store   metastore.Store
	manager annotation.Manager
	metrics *metrics.Metrics
	logger  *slog.Logger
	locale  string
	open    Opener
}

// NewService creates a new modeler service. m may be nil.
func NewService(store metastore.Store, m *metrics.Metrics, logger *slog.Logger, locale string) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if locale == "" {
		locale = model.DefaultLocale
	}
	return &Service{
		store:   store,
		metrics: m,
		logger:  logger,
		locale:  locale,
		open:    datasource.Open,
	}
}

// WithOpener replaces the function used to open data sources.
func (s *Service) WithOpener(open Opener) *Service {
	s.open = open
	return s
}

// Store returns the metadata store the service works against.
func (s *Service) Store() metastore.Store { return s.store }

// StoreConnection saves a connection and returns its reference.
func (s *Service) StoreConnection(_ context.Context, meta datasource.ConnectionMeta) (string, error) {
	ref, err := s.manager.StoreConnection(meta, s.store)
	s.recordStore("store_connection", err)
	if err != nil {
		return "", err
	}
	s.logger.Info("connection stored", slog.String("name", meta.Name), slog.String("ref", ref))
	return ref, nil
}

// CreateGroup stores a new group; the name must be free.
func (s *Service) CreateGroup(_ context.Context, g *annotation.Group) (*GroupDetail, error) {
	err := s.manager.CreateGroup(g, s.store)
	s.recordStore("create_group", err)
	if err != nil {
		return nil, err
	}
	s.refreshGroupCount()
	s.logger.Info("group created", slog.String("group", g.Name), slog.Int("annotations", len(g.Annotations)))
	return detail(g), nil
}

// SaveGroup stores g, replacing any group of the same name.
func (s *Service) SaveGroup(_ context.Context, g *annotation.Group) (*GroupDetail, error) {
	err := s.manager.SaveGroup(g, s.store)
	s.recordStore("save_group", err)
	if err != nil {
		return nil, err
	}
	s.refreshGroupCount()
	return detail(g), nil
}

// SyncGroup stores g unless the stored copy is identical. It reports
// whether the store changed.
func (s *Service) SyncGroup(ctx context.Context, g *annotation.Group) (bool, error) {
	blob, err := annotation.EncodeGroup(g)
	if err != nil {
		return false, err
	}
	sums, err := s.store.Checksums(metastore.KindAnnotationGroup)
	if err != nil {
		return false, err
	}
	if sums[g.Name] == metastore.Checksum(blob) {
		return false, nil
	}
	if _, err := s.SaveGroup(ctx, g); err != nil {
		return false, err
	}
	return true, nil
}

// GetGroup loads a stored group.
func (s *Service) GetGroup(_ context.Context, name string) (*GroupDetail, error) {
	g, err := s.manager.LoadGroup(name, s.store)
	if err != nil {
		return nil, err
	}
	return detail(g), nil
}

// DeleteGroup removes a stored group.
func (s *Service) DeleteGroup(_ context.Context, name string) error {
	if _, err := s.manager.LoadGroup(name, s.store); err != nil {
		return err
	}
	err := s.manager.DeleteGroup(name, s.store)
	s.recordStore("delete_group", err)
	if err != nil {
		return err
	}
	s.refreshGroupCount()
	return nil
}

// ListGroups returns every stored group, sorted by name.
func (s *Service) ListGroups(_ context.Context) ([]GroupListItem, error) {
	names, err := s.manager.ListGroups(s.store)
	if err != nil {
		return nil, err
	}
	items := make([]GroupListItem, 0, len(names))
	for _, n := range names {
		g, err := s.manager.LoadGroup(n, s.store)
		if err != nil {
			return nil, err
		}
		items = append(items, GroupListItem{
			Name:            g.Name,
			Description:     g.Description,
			SharedDimension: g.SharedDimension,
			Annotations:     len(g.Annotations),
		})
	}
	return items, nil
}

// BuildModel introspects the fact table, optionally seeds a flat model,
// replays the requested groups and links the requested shared dimensions.
func (s *Service) BuildModel(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	start := time.Now()
	res, err := s.buildModel(ctx, req)
	if s.metrics != nil {
		s.metrics.RecordModelBuild(time.Since(start), err)
	}
	if err != nil {
		s.logger.Error("model build failed",
			slog.String("model", req.Name),
			slog.String("table", req.Table),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	s.logger.Info("model built",
		slog.String("model", req.Name),
		slog.Int("usages", len(res.Cube.Usages)),
		slog.Int("measures", len(res.Cube.Measures)),
		slog.Duration("took", time.Since(start)),
	)
	return res, nil
}

func (s *Service) buildModel(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	if req.Name == "" || req.Table == "" || req.ConnectionRef == "" {
		return nil, apperr.ErrInvalid.New("build request", "name, table and connection_ref are required")
	}
	meta, err := s.manager.LoadConnection(req.ConnectionRef, s.store)
	if err != nil {
		return nil, err
	}
	db, err := s.open(meta)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	fact, err := datasource.Introspect(ctx, db, req.Table, s.locale)
	if err != nil {
		return nil, err
	}
	ws := model.NewWorkspace(req.Name, s.locale, fact)
	if req.AutoModel {
		if err := schema.AutoModelFlat(ws); err != nil {
			return nil, err
		}
	}

	for _, name := range req.Groups {
		g, err := s.manager.LoadGroup(name, s.store)
		if err != nil {
			return nil, err
		}
		if err := s.applyGroup(ws, g); err != nil {
			return nil, err
		}
	}
	if req.Group != nil {
		if req.Group.Name == "" {
			req.Group.Name = req.Name
		}
		if err := req.Group.Validate(); err != nil {
			return nil, apperr.ErrInvalid.New("annotation group", err.Error())
		}
		if err := s.applyGroup(ws, req.Group); err != nil {
			return nil, err
		}
	}

	for _, l := range req.Links {
		link := &annotation.LinkDimension{Name: l.Name, SharedDimension: l.SharedDimension}
		if err := link.Validate(); err != nil {
			return nil, apperr.ErrInvalid.New("link", err.Error())
		}
		err := link.Apply(ws, l.Column, s.store)
		if s.metrics != nil {
			s.metrics.RecordLink(l.SharedDimension, err)
		}
		if err != nil {
			return nil, err
		}
	}

	return &BuildResult{
		Name:      ws.Name(),
		Reporting: ws.LogicalModel(model.PerspectiveReporting),
		Analysis:  ws.LogicalModel(model.PerspectiveAnalysis),
		Cube:      ws.Cube(),
	}, nil
}

func (s *Service) applyGroup(ws *model.Workspace, g *annotation.Group) error {
	err := g.Apply(ws, s.store)
	if s.metrics != nil {
		s.metrics.RecordGroupApply(err)
	}
	return err
}

func (s *Service) recordStore(op string, err error) {
	if s.metrics != nil {
		s.metrics.RecordStoreOperation(op, err)
	}
}

func (s *Service) refreshGroupCount() {
	if s.metrics == nil {
		return
	}
	names, err := s.manager.ListGroups(s.store)
	if err != nil {
		return
	}
	s.metrics.SetGroupsStored(len(names))
}

func detail(g *annotation.Group) *GroupDetail {
	return &GroupDetail{Group: g, Summaries: g.Summaries()}
}
