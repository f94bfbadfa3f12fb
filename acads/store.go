// Package acads keeps the semester, course and results databases of a Notion
// workspace in step: it creates semester and course pages without
// duplicating semesters, aggregates grade points into SGPA/CGPA and writes
// the aggregates back.
package acads

import (
	"context"

	"github.com/SamuelLeutner/notion-acads/models"
)

// FallbackImageURL is the cover used whenever a random image cannot be fetched.
const FallbackImageURL = "https://images.unsplash.com/photo-1753262081045-ff9b365ef62a?q=80&w=680&auto=format&fit=crop&ixlib=rb-4.1.0&ixid=M3wxMjA3fDB8MHxwaG90by1wYWdlfHx8fGVufDB8fHx8fA%3D%3D"

// Store is the remote document store the sync and aggregation code talks to.
// Every call blocks until the remote answers.
type Store interface {
	CreateRecord(ctx context.Context, req models.CreateRecordRequest) (*models.Record, error)
	QueryCollection(ctx context.Context, collectionID string, q models.Query) (*models.RecordList, error)
	UpdateRecordFields(ctx context.Context, recordID string, fields models.Properties) (*models.Record, error)
	UpdateCollectionSchema(ctx context.Context, collectionID string, defs models.PropertySchema) (*models.Collection, error)
	CreateCollection(ctx context.Context, parentPageID, title string, defs models.PropertySchema) (*models.Collection, error)
	ListChildRecords(ctx context.Context, parentID string) ([]models.Block, error)
	UpdateBlockContent(ctx context.Context, blockID string, content models.BlockContent) (*models.Block, error)
}

// TokenVerifier is implemented by stores that can confirm their credentials.
type TokenVerifier interface {
	WhoAmI(ctx context.Context) (*models.User, error)
}

// ImageProvider never fails: implementations return FallbackImageURL instead.
type ImageProvider interface {
	RandomImage(ctx context.Context, query string) string
}

// StaticImage is an ImageProvider that always answers with the same URL.
type StaticImage string

func (s StaticImage) RandomImage(context.Context, string) string {
	return string(s)
}

// ReportWriter receives a tabular copy of a CGPA report.
type ReportWriter interface {
	EnsureSheetExists(ctx context.Context, sheetName string) error
	Clear(ctx context.Context, sheetName string) error
	SetHeaders(ctx context.Context, sheetName string, headers []string) error
	AppendRows(ctx context.Context, sheetName string, rows [][]interface{}) error
}
