package service

import (
	"net/url"
	"path"
	"strings"

	"github.com/noah-isme/bidportal-archiver/internal/models"
)

// Storage prefixes the portal uploads each asset kind under.
const (
	projectImagePrefix = "projects/"
	ganttChartPrefix   = "gantt/"
	documentPrefix     = "documents/"
)

// AssetBuckets names the bucket holding each asset kind.
type AssetBuckets struct {
	ProjectImages string
	GanttCharts   string
	Documents     string
}

func (b AssetBuckets) withDefaults() AssetBuckets {
	if b.ProjectImages == "" {
		b.ProjectImages = "project-images"
	}
	if b.GanttCharts == "" {
		b.GanttCharts = "gantt-charts"
	}
	if b.Documents == "" {
		b.Documents = "task-documents"
	}
	return b
}

// CollectAssetKeys maps stored asset URLs back to object keys.
// Blank or unparseable URLs are skipped and duplicate keys are collapsed.
func CollectAssetKeys(project models.Project, documents []models.TaskDocument, buckets AssetBuckets) []models.AssetKey {
	buckets = buckets.withDefaults()
	keys := make([]models.AssetKey, 0, len(documents)+2)
	seen := make(map[string]struct{}, len(documents)+2)

	add := func(kind models.AssetKind, bucket, prefix string, rawURL *string) {
		if rawURL == nil {
			return
		}
		name, ok := assetFileName(*rawURL)
		if !ok {
			return
		}
		key := models.AssetKey{Kind: kind, Bucket: bucket, Key: prefix + name}
		id := key.Bucket + "/" + key.Key
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		keys = append(keys, key)
	}

	add(models.AssetKindProjectImage, buckets.ProjectImages, projectImagePrefix, project.ImageURL)
	add(models.AssetKindGanttChart, buckets.GanttCharts, ganttChartPrefix, project.GanttChartURL)
	for i := range documents {
		add(models.AssetKindDocument, buckets.Documents, documentPrefix, &documents[i].FileURL)
	}
	return keys
}

// assetFileName returns the last path segment of rawURL, ignoring query and fragment.
func assetFileName(rawURL string) (string, bool) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return "", false
	}

	p := raw
	if u, err := url.Parse(raw); err == nil {
		p = u.Path
	} else if i := strings.IndexAny(raw, "?#"); i >= 0 {
		p = raw[:i]
	}

	p = strings.TrimRight(p, "/")
	if p == "" {
		return "", false
	}
	name := path.Base(p)
	if name == "." || name == "/" || name == ".." {
		return "", false
	}
	return name, true
}
