package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bidportal-archiver/internal/models"
	appErrors "github.com/noah-isme/bidportal-archiver/pkg/errors"
	"github.com/noah-isme/bidportal-archiver/pkg/jobs"
)

// memoryPortal is a live + archive store with cascade deletes and all-or-nothing transactions.
type memoryPortal struct {
	mu sync.Mutex
	memoryState

	failInsert string
	loadErr    error
	queries    []string
	onLoad     func()
}

type memoryState struct {
	projects   map[string]models.Project
	categories []models.Category
	tasks      []models.Task
	bids       []models.Bid
	ratings    []models.TaskRating
	documents  []models.TaskDocument

	archivedProjects   []models.ArchivedProject
	archivedCategories []models.ArchivedCategory
	archivedTasks      []models.ArchivedTask
	archivedBids       []models.ArchivedBid
	archivedRatings    []models.ArchivedRating
	archivedDocuments  []models.ArchivedDocument
	audits             []models.AuditLog
}

func newMemoryPortal() *memoryPortal {
	return &memoryPortal{memoryState: memoryState{projects: map[string]models.Project{}}}
}

func (m *memoryState) clone() memoryState {
	c := *m
	c.projects = make(map[string]models.Project, len(m.projects))
	for k, v := range m.projects {
		c.projects[k] = v
	}
	c.categories = append([]models.Category(nil), m.categories...)
	c.tasks = append([]models.Task(nil), m.tasks...)
	c.bids = append([]models.Bid(nil), m.bids...)
	c.ratings = append([]models.TaskRating(nil), m.ratings...)
	c.documents = append([]models.TaskDocument(nil), m.documents...)
	c.archivedProjects = append([]models.ArchivedProject(nil), m.archivedProjects...)
	c.archivedCategories = append([]models.ArchivedCategory(nil), m.archivedCategories...)
	c.archivedTasks = append([]models.ArchivedTask(nil), m.archivedTasks...)
	c.archivedBids = append([]models.ArchivedBid(nil), m.archivedBids...)
	c.archivedRatings = append([]models.ArchivedRating(nil), m.archivedRatings...)
	c.archivedDocuments = append([]models.ArchivedDocument(nil), m.archivedDocuments...)
	c.audits = append([]models.AuditLog(nil), m.audits...)
	return c
}

func (m *memoryPortal) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	saved := m.memoryState.clone()
	m.mu.Unlock()
	if err := fn(ctx); err != nil {
		m.mu.Lock()
		m.memoryState = saved
		m.mu.Unlock()
		return err
	}
	return ctx.Err()
}

func (m *memoryPortal) record(q string) {
	m.mu.Lock()
	m.queries = append(m.queries, q)
	m.mu.Unlock()
}

func (m *memoryPortal) FindByIDForUpdate(ctx context.Context, id string) (*models.Project, error) {
	m.record("project")
	if m.onLoad != nil {
		m.onLoad()
	}
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (m *memoryPortal) ListCategories(ctx context.Context, projectID string) ([]models.Category, error) {
	m.record("categories")
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Category
	for _, c := range m.categories {
		if c.ProjectID == projectID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memoryPortal) ListTasksByCategories(ctx context.Context, ids []string) ([]models.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	m.record("tasks")
	m.mu.Lock()
	defer m.mu.Unlock()
	set := toSet(ids)
	var out []models.Task
	for _, t := range m.tasks {
		if _, ok := set[t.CategoryID]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memoryPortal) ListBidsByTasks(ctx context.Context, ids []string) ([]models.Bid, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	m.record("bids")
	m.mu.Lock()
	defer m.mu.Unlock()
	set := toSet(ids)
	var out []models.Bid
	for _, b := range m.bids {
		if _, ok := set[b.TaskID]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memoryPortal) ListRatingsByTasks(ctx context.Context, ids []string) ([]models.TaskRating, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	m.record("ratings")
	m.mu.Lock()
	defer m.mu.Unlock()
	set := toSet(ids)
	var out []models.TaskRating
	for _, r := range m.ratings {
		if _, ok := set[r.TaskID]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryPortal) ListDocumentsByTasks(ctx context.Context, ids []string) ([]models.TaskDocument, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	m.record("documents")
	m.mu.Lock()
	defer m.mu.Unlock()
	set := toSet(ids)
	var out []models.TaskDocument
	for _, d := range m.documents {
		if _, ok := set[d.TaskID]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memoryPortal) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.projects, id)

	categories := map[string]struct{}{}
	keptCategories := m.categories[:0]
	for _, c := range m.categories {
		if c.ProjectID == id {
			categories[c.ID] = struct{}{}
			continue
		}
		keptCategories = append(keptCategories, c)
	}
	m.categories = keptCategories

	tasks := map[string]struct{}{}
	keptTasks := m.tasks[:0]
	for _, t := range m.tasks {
		if _, ok := categories[t.CategoryID]; ok {
			tasks[t.ID] = struct{}{}
			continue
		}
		keptTasks = append(keptTasks, t)
	}
	m.tasks = keptTasks

	keptBids := m.bids[:0]
	for _, b := range m.bids {
		if _, ok := tasks[b.TaskID]; !ok {
			keptBids = append(keptBids, b)
		}
	}
	m.bids = keptBids
	keptRatings := m.ratings[:0]
	for _, r := range m.ratings {
		if _, ok := tasks[r.TaskID]; !ok {
			keptRatings = append(keptRatings, r)
		}
	}
	m.ratings = keptRatings
	keptDocs := m.documents[:0]
	for _, d := range m.documents {
		if _, ok := tasks[d.TaskID]; !ok {
			keptDocs = append(keptDocs, d)
		}
	}
	m.documents = keptDocs
	return nil
}

func (m *memoryPortal) insert(kind string, apply func()) error {
	if m.failInsert == kind {
		return fmt.Errorf("insert archived %s: connection reset", kind)
	}
	m.mu.Lock()
	apply()
	m.mu.Unlock()
	return nil
}

func (m *memoryPortal) InsertProject(ctx context.Context, p *models.ArchivedProject) error {
	return m.insert("project", func() { m.archivedProjects = append(m.archivedProjects, *p) })
}

func (m *memoryPortal) InsertCategories(ctx context.Context, rows []models.ArchivedCategory) error {
	return m.insert("categories", func() { m.archivedCategories = append(m.archivedCategories, rows...) })
}

func (m *memoryPortal) InsertTasks(ctx context.Context, rows []models.ArchivedTask) error {
	return m.insert("tasks", func() { m.archivedTasks = append(m.archivedTasks, rows...) })
}

func (m *memoryPortal) InsertBids(ctx context.Context, rows []models.ArchivedBid) error {
	return m.insert("bids", func() { m.archivedBids = append(m.archivedBids, rows...) })
}

func (m *memoryPortal) InsertRatings(ctx context.Context, rows []models.ArchivedRating) error {
	return m.insert("ratings", func() { m.archivedRatings = append(m.archivedRatings, rows...) })
}

func (m *memoryPortal) InsertDocuments(ctx context.Context, rows []models.ArchivedDocument) error {
	return m.insert("documents", func() { m.archivedDocuments = append(m.archivedDocuments, rows...) })
}

func (m *memoryPortal) Create(ctx context.Context, log *models.AuditLog) error {
	return m.insert("audit", func() { m.audits = append(m.audits, *log) })
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

type objectStoreStub struct {
	mu      sync.Mutex
	fail    map[string]error
	removed []string
}

func (s *objectStoreStub) Remove(ctx context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.fail[key]; ok {
		return err
	}
	s.removed = append(s.removed, bucket+"/"+key)
	return nil
}

type queueStub struct {
	jobs []jobs.Job
}

func (q *queueStub) TryEnqueue(job jobs.Job) error {
	q.jobs = append(q.jobs, job)
	return nil
}

type lockerStub struct {
	held     map[string]string
	released []string
	err      error
}

func (l *lockerStub) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l.err != nil {
		return "", false, l.err
	}
	if _, ok := l.held[key]; ok {
		return "", false, nil
	}
	l.held[key] = "token-" + key
	return l.held[key], true, nil
}

func (l *lockerStub) ReleaseLock(ctx context.Context, key, token string) error {
	if l.held[key] == token {
		delete(l.held, key)
	}
	l.released = append(l.released, key)
	return nil
}

func price(v float64) *float64 { return &v }

// seedPortal builds project p-1 with two categories, three tasks, four bids, a rating and one document.
func seedPortal() *memoryPortal {
	m := newMemoryPortal()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	m.projects["p-1"] = models.Project{
		ID:            "p-1",
		Name:          "Riverside Clinic",
		Status:        "completed",
		ImageURL:      strPtr("https://cdn.example.com/public/project-images/projects/front.jpg"),
		GanttChartURL: strPtr("https://cdn.example.com/public/gantt-charts/gantt/plan.pdf"),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.projects["p-2"] = models.Project{ID: "p-2", Name: "Untouched"}
	m.categories = []models.Category{
		{ID: "c-1", ProjectID: "p-1", Name: "Electrical"},
		{ID: "c-2", ProjectID: "p-1", Name: "Plumbing"},
		{ID: "c-9", ProjectID: "p-2", Name: "Other"},
	}
	m.tasks = []models.Task{
		{ID: "t-1", CategoryID: "c-1", Name: "Wiring"},
		{ID: "t-2", CategoryID: "c-1", Name: "Lighting"},
		{ID: "t-3", CategoryID: "c-2", Name: "Pipes"},
		{ID: "t-9", CategoryID: "c-9", Name: "Elsewhere"},
	}
	m.bids = []models.Bid{
		{ID: "b-1", TaskID: "t-1", Status: models.BidStatusAccepted, Price: price(100)},
		{ID: "b-2", TaskID: "t-2", Status: models.BidStatusAccepted, Price: price(50)},
		{ID: "b-3", TaskID: "t-2", Status: models.BidStatusPending, Price: price(200)},
		{ID: "b-4", TaskID: "t-3", Status: models.BidStatusRejected, Price: price(75)},
		{ID: "b-9", TaskID: "t-9", Status: models.BidStatusAccepted, Price: price(999)},
	}
	m.ratings = []models.TaskRating{{ID: "r-1", TaskID: "t-1", Rating: 9}}
	m.documents = []models.TaskDocument{{ID: "d-1", TaskID: "t-3", FileName: "layout.pdf", FileURL: "https://cdn.example.com/public/task-documents/documents/layout.pdf"}}
	return m
}

func newTestArchiveService(m *memoryPortal, store *objectStoreStub, extra func(*ArchiveDependencies)) *ArchiveService {
	deps := ArchiveDependencies{Tx: m, Projects: m, Archives: m, Audit: m, Store: store}
	if extra != nil {
		extra(&deps)
	}
	svc := NewArchiveService(deps, ArchiveServiceConfig{Timeout: time.Minute}, nil)
	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("arch-%d", seq)
	}
	return svc
}

func TestArchiveProjectSuccess(t *testing.T) {
	m := seedPortal()
	store := &objectStoreStub{}
	svc := newTestArchiveService(m, store, nil)

	result := svc.ArchiveProject(context.Background(), "p-1", "u-admin")

	require.True(t, result.Success, result.Error)
	assert.Equal(t, "Project archived successfully. 3 file(s) deleted.", result.Message)
	require.NotNil(t, result.Stats)
	assert.Equal(t, models.ArchiveStats{TotalTasks: 3, TotalBids: 4, TotalValue: 150, FilesDeleted: 3}, *result.Stats)
	assert.Equal(t, "arch-1", result.ArchivedProjectID)

	require.Len(t, m.archivedProjects, 1)
	ap := m.archivedProjects[0]
	assert.Equal(t, "p-1", ap.OriginalProjectID)
	assert.Equal(t, "u-admin", ap.ArchivedBy)
	assert.InDelta(t, 150, ap.TotalValue, 0.0001)
	assert.Len(t, m.archivedCategories, 2)
	assert.Len(t, m.archivedTasks, 3)
	assert.Len(t, m.archivedBids, 4)
	assert.Len(t, m.archivedRatings, 1)
	require.Len(t, m.archivedDocuments, 1)
	assert.Equal(t, "layout.pdf", m.archivedDocuments[0].FileName)
	require.Len(t, m.audits, 1)
	assert.Equal(t, models.AuditActionProjectArchive, m.audits[0].Action)

	assert.ElementsMatch(t, []string{
		"project-images/projects/front.jpg",
		"gantt-charts/gantt/plan.pdf",
		"task-documents/documents/layout.pdf",
	}, store.removed)

	// live deletion cascades and leaves other projects alone
	_, stillThere := m.projects["p-1"]
	assert.False(t, stillThere)
	assert.Len(t, m.categories, 1)
	assert.Len(t, m.tasks, 1)
	assert.Len(t, m.bids, 1)
	assert.Empty(t, m.ratings)
	assert.Empty(t, m.documents)
	_, other := m.projects["p-2"]
	assert.True(t, other)
}

func TestArchiveRemapsToArchivedParents(t *testing.T) {
	m := seedPortal()
	svc := newTestArchiveService(m, &objectStoreStub{}, nil)

	_, err := svc.Archive(context.Background(), "p-1", "u-admin")
	require.NoError(t, err)

	archivedProjectID := m.archivedProjects[0].ID
	categoryOwner := map[string]string{}
	archivedByOriginalCategory := map[string]string{}
	for _, c := range m.archivedCategories {
		categoryOwner[c.ID] = c.ArchivedProjectID
		archivedByOriginalCategory[c.OriginalCategoryID] = c.ID
	}
	taskCategory := map[string]string{}
	for _, task := range m.archivedTasks {
		live := map[string]string{"t-1": "c-1", "t-2": "c-1", "t-3": "c-2"}[task.OriginalTaskID]
		assert.Equal(t, archivedByOriginalCategory[live], task.ArchivedCategoryID)
		assert.NotEqual(t, live, task.ArchivedCategoryID)
		taskCategory[task.ID] = task.ArchivedCategoryID
	}
	for _, bid := range m.archivedBids {
		category, ok := taskCategory[bid.ArchivedTaskID]
		require.True(t, ok, "bid %s points at unknown archived task", bid.OriginalBidID)
		assert.Equal(t, archivedProjectID, bid.ArchivedProjectID)
		assert.Equal(t, bid.ArchivedProjectID, categoryOwner[category])
	}
}

func TestArchiveProjectWithoutCategories(t *testing.T) {
	m := newMemoryPortal()
	m.projects["empty"] = models.Project{ID: "empty", Name: "Greenfield"}
	svc := newTestArchiveService(m, &objectStoreStub{}, nil)

	result := svc.ArchiveProject(context.Background(), "empty", "u-1")

	require.True(t, result.Success, result.Error)
	assert.Equal(t, models.ArchiveStats{}, *result.Stats)
	assert.Equal(t, "Project archived successfully. 0 file(s) deleted.", result.Message)
	require.Len(t, m.archivedProjects, 1)
	assert.Empty(t, m.archivedCategories)
	assert.Equal(t, []string{"project", "categories"}, m.queries)
}

func TestArchiveProjectNotFound(t *testing.T) {
	m := seedPortal()
	svc := newTestArchiveService(m, &objectStoreStub{}, nil)

	_, err := svc.Archive(context.Background(), "missing", "u-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	result := BuildArchiveResult(nil, err)
	assert.False(t, result.Success)
	assert.Equal(t, "NOT_FOUND", result.ErrorCode)
	assert.Contains(t, result.Error, "missing")
	assert.Empty(t, m.archivedProjects)
}

func TestArchiveProjectMalformedIDIsNotFound(t *testing.T) {
	m := seedPortal()
	m.loadErr = fmt.Errorf("load: %w", &pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "not-a-uuid"`})
	svc := newTestArchiveService(m, &objectStoreStub{}, nil)

	result := svc.ArchiveProject(context.Background(), "not-a-uuid", "u-1")

	assert.False(t, result.Success)
	assert.Equal(t, "NOT_FOUND", result.ErrorCode)
	assert.Contains(t, result.Error, "not-a-uuid")
	assert.Empty(t, m.archivedProjects)
	assert.Len(t, m.projects, 2)
}

func TestArchiveProjectBidInsertFailureRollsBack(t *testing.T) {
	m := seedPortal()
	m.failInsert = "bids"
	store := &objectStoreStub{}
	svc := newTestArchiveService(m, store, nil)

	result := svc.ArchiveProject(context.Background(), "p-1", "u-admin")

	assert.False(t, result.Success)
	assert.Equal(t, "ARCHIVE_WRITE_FAILED", result.ErrorCode)
	assert.Contains(t, result.Error, "archive bids failed")
	assert.Contains(t, result.Error, "connection reset")
	_, live := m.projects["p-1"]
	assert.True(t, live)
	assert.Len(t, m.bids, 5)
	assert.Empty(t, m.archivedProjects)
	assert.Empty(t, m.archivedCategories)
	assert.Empty(t, m.archivedTasks)
	assert.Empty(t, store.removed)
}

func TestArchiveProjectAssetFailureIsNonFatal(t *testing.T) {
	m := seedPortal()
	store := &objectStoreStub{fail: map[string]error{"gantt/plan.pdf": errors.New("access denied")}}
	queue := &queueStub{}
	svc := newTestArchiveService(m, store, func(d *ArchiveDependencies) { d.CleanupQueue = queue })

	result := svc.ArchiveProject(context.Background(), "p-1", "u-admin")

	require.True(t, result.Success, result.Error)
	assert.Equal(t, 2, result.Stats.FilesDeleted)
	assert.Equal(t, "Project archived successfully. 2 file(s) deleted.", result.Message)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "access denied")

	var failed []models.AssetDeletion
	for _, a := range result.Assets {
		if a.Status == models.AssetFailed {
			failed = append(failed, a)
		}
	}
	require.Len(t, failed, 1)
	assert.Equal(t, "gantt/plan.pdf", failed[0].Key)
	assert.Equal(t, "access denied", failed[0].Reason)

	require.Len(t, queue.jobs, 1)
	assert.Equal(t, AssetCleanupJobType, queue.jobs[0].Type)
	assert.Equal(t, failed[0].AssetKey, queue.jobs[0].Payload)

	_, live := m.projects["p-1"]
	assert.False(t, live)
}

func TestArchiveRejectsConcurrentArchivalOfSameProject(t *testing.T) {
	m := seedPortal()
	svc := newTestArchiveService(m, &objectStoreStub{}, nil)

	inside := make(chan struct{})
	proceed := make(chan struct{})
	var once sync.Once
	m.onLoad = func() {
		once.Do(func() {
			close(inside)
			<-proceed
		})
	}

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = svc.Archive(context.Background(), "p-1", "u-1")
	}()

	<-inside
	_, err := svc.Archive(context.Background(), "p-1", "u-2")
	assert.True(t, appErrors.Is(err, appErrors.ErrArchiveInProgress))

	close(proceed)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.Len(t, m.archivedProjects, 1)
}

func TestArchiveHonoursDistributedLock(t *testing.T) {
	m := seedPortal()
	locker := &lockerStub{held: map[string]string{archiveLockKey("p-1"): "other-instance"}}
	svc := newTestArchiveService(m, &objectStoreStub{}, func(d *ArchiveDependencies) { d.Locker = locker })

	_, err := svc.Archive(context.Background(), "p-1", "u-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrArchiveInProgress))

	delete(locker.held, archiveLockKey("p-1"))
	_, err = svc.Archive(context.Background(), "p-1", "u-1")
	require.NoError(t, err)
	assert.Empty(t, locker.held)
	assert.Equal(t, []string{archiveLockKey("p-1")}, locker.released)
}

func TestArchiveContinuesWhenLockBackendIsDown(t *testing.T) {
	m := seedPortal()
	locker := &lockerStub{held: map[string]string{}, err: errors.New("redis: connection refused")}
	svc := newTestArchiveService(m, &objectStoreStub{}, func(d *ArchiveDependencies) { d.Locker = locker })

	_, err := svc.Archive(context.Background(), "p-1", "u-1")
	require.NoError(t, err)
}

func TestArchiveValidatesIdentifiers(t *testing.T) {
	svc := newTestArchiveService(newMemoryPortal(), &objectStoreStub{}, nil)

	_, err := svc.Archive(context.Background(), "  ", "u-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	_, err = svc.Archive(context.Background(), "p-1", "")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestArchiveProjectRecoversFromPanics(t *testing.T) {
	m := seedPortal()
	m.onLoad = func() { panic("driver bug") }
	svc := newTestArchiveService(m, &objectStoreStub{}, nil)

	result := svc.ArchiveProject(context.Background(), "p-1", "u-1")
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "driver bug")
	assert.Equal(t, appErrors.ErrInternal.Code, result.ErrorCode)

	// the in-flight guard was released
	m.onLoad = nil
	assert.True(t, svc.ArchiveProject(context.Background(), "p-1", "u-1").Success)
}

func TestComputeArchiveStats(t *testing.T) {
	stats := ComputeArchiveStats(
		[]models.Task{{ID: "t-1"}, {ID: "t-2"}},
		[]models.Bid{
			{Status: models.BidStatusAccepted, Price: price(100)},
			{Status: models.BidStatusAccepted, Price: price(50)},
			{Status: models.BidStatusPending, Price: price(200)},
			{Status: models.BidStatusRejected, Price: price(75)},
			{Status: models.BidStatusAccepted},
		},
	)
	assert.Equal(t, models.ArchiveStats{TotalTasks: 2, TotalBids: 5, TotalValue: 150}, stats)
}

func TestComputeArchiveStatsRoundsToCents(t *testing.T) {
	stats := ComputeArchiveStats(nil, []models.Bid{
		{Status: models.BidStatusAccepted, Price: price(0.1)},
		{Status: models.BidStatusAccepted, Price: price(0.2)},
		{Status: models.BidStatusAccepted, Price: price(10.004)},
	})
	assert.Equal(t, 10.3, stats.TotalValue)
}

func TestBuildArchivePlanRejectsOrphans(t *testing.T) {
	graph := &models.ProjectGraph{
		Project: models.Project{ID: "p-1"},
		Tasks:   []models.Task{{ID: "t-1", CategoryID: "c-unknown"}},
	}
	_, err := buildArchivePlan(graph, "u-1", time.Now(), func() string { return "x" }, AssetBuckets{})
	assert.Error(t, err)
}
