package acads

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/SamuelLeutner/notion-acads/logger"
	"github.com/SamuelLeutner/notion-acads/models"
)

type WorkspaceIDs struct {
	CourseCollectionID   string
	SemesterCollectionID string
}

// Setup discovers the course and semester databases under a parent page and
// makes sure they carry the columns the rest of the package writes.
type Setup struct {
	Store  Store
	Schema Schema
}

// Resolve expects exactly two child databases under parentPageID, one titled
// with "semester" and one with "course".
func (s *Setup) Resolve(ctx context.Context, parentPageID string) (WorkspaceIDs, error) {
	blocks, err := s.Store.ListChildRecords(ctx, parentPageID)
	if err != nil {
		l := logger.Op("list_children", parentPageID)
		l.Error().Err(err).Msg("Failed to list parent page children")
		return WorkspaceIDs{}, errors.Wrapf(err, "listing children of %s", parentPageID)
	}

	var dbs []models.Block
	for _, b := range blocks {
		if b.Type == models.BlockChildDatabase && !b.Archived {
			dbs = append(dbs, b)
		}
	}
	if len(dbs) != 2 {
		return WorkspaceIDs{}, dataShapef("expected exactly 2 databases under the parent page, found %d", len(dbs))
	}

	var ids WorkspaceIDs
	for _, db := range dbs {
		title := strings.ToLower(db.Text())
		isSemester := strings.Contains(title, "semester")
		isCourse := strings.Contains(title, "course")
		switch {
		case isSemester && !isCourse && ids.SemesterCollectionID == "":
			ids.SemesterCollectionID = db.ID
		case isCourse && !isSemester && ids.CourseCollectionID == "":
			ids.CourseCollectionID = db.ID
		default:
			return WorkspaceIDs{}, dataShapef("cannot tell whether database %q holds semesters or courses", db.Text())
		}
	}
	if ids.SemesterCollectionID == "" || ids.CourseCollectionID == "" {
		return WorkspaceIDs{}, dataShapef("need one semester database and one course database")
	}

	logger.Info().
		Str("courses", ids.CourseCollectionID).
		Str("semesters", ids.SemesterCollectionID).
		Msg("Resolved workspace databases")
	return ids, nil
}

// EnsureSchema adds any missing columns. Columns that already exist are not
// sent, so their formats and select options stay as the user set them.
func (s *Setup) EnsureSchema(ctx context.Context, ids WorkspaceIDs) error {
	if err := s.addMissing(ctx, ids.SemesterCollectionID, s.Schema.SemesterFields()); err != nil {
		return errors.Wrap(err, "updating semester database schema")
	}
	if err := s.addMissing(ctx, ids.CourseCollectionID, s.Schema.CourseFields()); err != nil {
		return errors.Wrap(err, "updating course database schema")
	}
	return nil
}

func (s *Setup) addMissing(ctx context.Context, collectionID string, want models.PropertySchema) error {
	// An empty update returns the current schema without changing it.
	current, err := s.Store.UpdateCollectionSchema(ctx, collectionID, models.PropertySchema{})
	if err != nil {
		return err
	}

	missing := models.PropertySchema{}
	for name, def := range want {
		if _, ok := current.Properties[name]; !ok {
			missing[name] = def
		}
	}
	if len(missing) == 0 {
		return nil
	}

	if _, err := s.Store.UpdateCollectionSchema(ctx, collectionID, missing); err != nil {
		return err
	}
	logger.Info().Str("collection", collectionID).Int("added", len(missing)).Msg("Added missing database columns")
	return nil
}
