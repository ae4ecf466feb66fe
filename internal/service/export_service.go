package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/bidportal-archiver/internal/models"
	"github.com/noah-isme/bidportal-archiver/pkg/export"
)

// Report formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type archiveDetailLoader interface {
	GetDetail(ctx context.Context, id string) (*models.ArchivedProjectDetail, error)
}

type reportRenderer interface {
	Render(report export.Report) ([]byte, error)
}

// ExportFile is a rendered report ready to be streamed.
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportService renders archived project reports.
type ExportService struct {
	archives archiveDetailLoader
	csv      reportRenderer
	pdf      reportRenderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to pkg/export.
func NewExportService(archives archiveDetailLoader, logger *zap.Logger, csv, pdf reportRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{archives: archives, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// Export renders the archived project as csv (default) or pdf.
func (s *ExportService) Export(ctx context.Context, archivedProjectID, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}

	detail, err := s.archives.GetDetail(ctx, archivedProjectID)
	if err != nil {
		return nil, err
	}
	report := BuildArchiveReport(detail)

	file := &ExportFile{FileName: s.buildFilename(detail, format)}
	switch format {
	case ExportFormatCSV:
		file.ContentType = "text/csv"
		file.Data, err = s.csv.Render(report)
	case ExportFormatPDF:
		file.ContentType = "application/pdf"
		file.Data, err = s.pdf.Render(report)
	default:
		return nil, fmt.Errorf("unsupported format %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s report: %w", format, err)
	}

	s.logger.Info("archive report exported",
		zap.String("archived_project_id", archivedProjectID),
		zap.String("format", format),
		zap.Int("bytes", len(file.Data)),
	)
	return file, nil
}

func (s *ExportService) buildFilename(detail *models.ArchivedProjectDetail, format string) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("archive_%s_%s.%s", sanitizeFilename(detail.Name), timestamp, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_", "\"", "")
	result := replacer.Replace(strings.ToLower(raw))
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

// BuildArchiveReport lays out one row per archived task with its accepted bid and average rating.
func BuildArchiveReport(detail *models.ArchivedProjectDetail) export.Report {
	report := export.Report{
		Title: "Archived project: " + detail.Name,
		Summary: []export.Field{
			{Label: "Original project", Value: detail.OriginalProjectID},
			{Label: "Status", Value: detail.Status},
			{Label: "Archived by", Value: detail.ArchivedBy},
			{Label: "Archived at", Value: detail.ArchivedAt.UTC().Format(time.RFC3339)},
			{Label: "Total tasks", Value: strconv.Itoa(detail.TotalTasks)},
			{Label: "Total bids", Value: strconv.Itoa(detail.TotalBids)},
			{Label: "Total value", Value: formatMoney(detail.TotalValue)},
		},
		Table: export.Dataset{
			Headers: []string{"Category", "Task", "Status", "Bids", "Accepted Subcontractor", "Accepted Price", "Avg Rating", "Documents"},
		},
	}

	categories := append([]models.ArchivedCategoryDetail(nil), detail.Categories...)
	sort.SliceStable(categories, func(i, j int) bool { return categories[i].DisplayOrder < categories[j].DisplayOrder })

	for _, category := range categories {
		for _, task := range category.Tasks {
			row := map[string]string{
				"Category":  category.Name,
				"Task":      task.Name,
				"Status":    task.Status,
				"Bids":      strconv.Itoa(len(task.Bids)),
				"Documents": strconv.Itoa(len(task.Documents)),
			}
			for _, bid := range task.Bids {
				if bid.Status != models.BidStatusAccepted {
					continue
				}
				row["Accepted Subcontractor"] = bid.SubcontractorID
				if bid.Price != nil {
					row["Accepted Price"] = formatMoney(*bid.Price)
				}
				break
			}
			if len(task.Ratings) > 0 {
				sum := 0
				for _, r := range task.Ratings {
					sum += r.Rating
				}
				row["Avg Rating"] = strconv.FormatFloat(float64(sum)/float64(len(task.Ratings)), 'f', 1, 64)
			}
			report.Table.Rows = append(report.Table.Rows, row)
		}
	}
	return report
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
