package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/bidportal-archiver/internal/models"
	appErrors "github.com/noah-isme/bidportal-archiver/pkg/errors"
	"github.com/noah-isme/bidportal-archiver/pkg/export"
)

type detailLoaderStub struct {
	detail *models.ArchivedProjectDetail
	err    error
}

func (s detailLoaderStub) GetDetail(ctx context.Context, id string) (*models.ArchivedProjectDetail, error) {
	return s.detail, s.err
}

func sampleArchivedDetail() *models.ArchivedProjectDetail {
	return &models.ArchivedProjectDetail{
		ArchivedProject: models.ArchivedProject{
			ID:                "a-1",
			OriginalProjectID: "p-1",
			Name:              "Riverside Clinic",
			Status:            "completed",
			TotalTasks:        2,
			TotalBids:         3,
			TotalValue:        150,
			ArchivedBy:        "u-admin",
			ArchivedAt:        time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		Categories: []models.ArchivedCategoryDetail{
			{
				ArchivedCategory: models.ArchivedCategory{ID: "ac-2", Name: "Plumbing", DisplayOrder: 2},
				Tasks: []models.ArchivedTaskDetail{
					{ArchivedTask: models.ArchivedTask{ID: "at-2", Name: "Pipes", Status: "open"}},
				},
			},
			{
				ArchivedCategory: models.ArchivedCategory{ID: "ac-1", Name: "Electrical", DisplayOrder: 1},
				Tasks: []models.ArchivedTaskDetail{
					{
						ArchivedTask: models.ArchivedTask{ID: "at-1", Name: "Wiring", Status: "completed"},
						Bids: []models.ArchivedBid{
							{SubcontractorID: "s-2", Status: models.BidStatusRejected, Price: price(90)},
							{SubcontractorID: "s-1", Status: models.BidStatusAccepted, Price: price(150)},
						},
						Ratings:   []models.ArchivedRating{{Rating: 8}, {Rating: 9}},
						Documents: []models.ArchivedDocument{{FileName: "layout.pdf"}},
					},
				},
			},
		},
	}
}

func TestBuildArchiveReport(t *testing.T) {
	report := BuildArchiveReport(sampleArchivedDetail())

	assert.Equal(t, "Archived project: Riverside Clinic", report.Title)
	assert.Contains(t, report.Summary, export.Field{Label: "Total value", Value: "150.00"})
	require.Len(t, report.Table.Rows, 2)

	first := report.Table.Rows[0]
	assert.Equal(t, "Electrical", first["Category"])
	assert.Equal(t, "s-1", first["Accepted Subcontractor"])
	assert.Equal(t, "150.00", first["Accepted Price"])
	assert.Equal(t, "8.5", first["Avg Rating"])
	assert.Equal(t, "2", first["Bids"])
	assert.Equal(t, "1", first["Documents"])

	second := report.Table.Rows[1]
	assert.Equal(t, "Plumbing", second["Category"])
	assert.Empty(t, second["Accepted Price"])
}

func TestExportServiceCSV(t *testing.T) {
	svc := NewExportService(detailLoaderStub{detail: sampleArchivedDetail()}, zap.NewNop(), nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 7, 1, 8, 30, 0, 0, time.UTC) }

	file, err := svc.Export(context.Background(), "a-1", "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "archive_riverside_clinic_20240701_083000.csv", file.FileName)

	reader := csv.NewReader(bytes.NewReader(file.Data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Original project", "p-1"}, records[0])
	assert.Equal(t, "Category", records[len(records)-3][0])
}

func TestExportServicePDF(t *testing.T) {
	svc := NewExportService(detailLoaderStub{detail: sampleArchivedDetail()}, nil, nil, nil)

	file, err := svc.Export(context.Background(), "a-1", "PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))
}

func TestExportServicePropagatesNotFound(t *testing.T) {
	svc := NewExportService(detailLoaderStub{err: appErrors.Clone(appErrors.ErrNotFound, "gone")}, nil, nil, nil)

	_, err := svc.Export(context.Background(), "a-1", "csv")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(detailLoaderStub{detail: sampleArchivedDetail()}, nil, nil, nil)

	_, err := svc.Export(context.Background(), "a-1", "xlsx")
	assert.Error(t, err)
}
