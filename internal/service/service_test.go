package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Harshul8824/BIM/internal/apperr"
	"github.com/Harshul8824/BIM/internal/model"
	"github.com/Harshul8824/BIM/internal/repository"
	"github.com/Harshul8824/BIM/internal/repository/memory"
	"github.com/Harshul8824/BIM/internal/validation"
	"github.com/Harshul8824/BIM/pkg/mailer"
	"github.com/Harshul8824/BIM/pkg/rbac"
	"github.com/Harshul8824/BIM/pkg/util"
)

type recordedEvent struct {
	Type string
	Data any
}

type fakeEvents struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeEvents) Publish(_ context.Context, eventType string, data any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{Type: eventType, Data: data})
}

func (f *fakeEvents) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeSender struct {
	err  error
	sent []mailer.Message
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeDeduper struct {
	keys     map[string]bool
	released int
}

func newFakeDeduper() *fakeDeduper {
	return &fakeDeduper{keys: make(map[string]bool)}
}

func (f *fakeDeduper) AcquireOnce(_ context.Context, scope, id string) bool {
	key := scope + ":" + id
	if f.keys[key] {
		return false
	}
	f.keys[key] = true
	return true
}

func (f *fakeDeduper) Release(_ context.Context, scope, id string) {
	delete(f.keys, scope+":"+id)
	f.released++
}

func userDoc(name, email, role string) validation.Document {
	doc := validation.Document{
		model.FieldName:     name,
		model.FieldEmail:    email,
		model.FieldPassword: "secret123",
	}
	if role != "" {
		doc[model.FieldRole] = role
	}
	return doc
}

func mustCreateUser(t *testing.T, svc *UserService, name, email, role string) *model.User {
	t.Helper()
	u, err := svc.Create(context.Background(), userDoc(name, email, role))
	require.NoError(t, err)
	return u
}

func newStore() *repository.Store {
	return memory.New()
}

func TestUserCreateDefaultsAndHashesPassword(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	events := &fakeEvents{}
	svc := NewUserService(store.Users, events, zap.NewNop())

	u, err := svc.Create(ctx, userDoc("Ann", "ann@example.com", ""))
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleCustomer, u.Role)
	assert.NotEqual(t, "secret123", u.Password)
	assert.True(t, util.CheckPassword("secret123", u.Password))
	assert.Equal(t, []string{"user.created"}, events.types())
}

func TestUserCreateReportsAllMissingFields(t *testing.T) {
	svc := NewUserService(newStore().Users, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), validation.Document{model.FieldRole: "admin"})
	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.HasField(model.FieldName))
	assert.True(t, ve.HasField(model.FieldEmail))
	assert.True(t, ve.HasField(model.FieldPassword))
	assert.True(t, ve.HasField(model.FieldRole))
	assert.Contains(t, ve.Messages(), "Please tell us your name!")
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	svc := NewUserService(newStore().Users, nil, zap.NewNop())
	mustCreateUser(t, svc, "Ann", "ann@example.com", "")

	_, err := svc.Create(context.Background(), userDoc("Other", "ann@example.com", ""))
	var dup *apperr.DuplicateKeyError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "email", dup.Field)
}

func TestUserGetErrors(t *testing.T) {
	svc := NewUserService(newStore().Users, nil, zap.NewNop())

	_, err := svc.Get(context.Background(), "not-an-id")
	assert.ErrorIs(t, err, apperr.ErrInvalidID)

	_, err = svc.Get(context.Background(), model.NewID())
	var nf *apperr.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, model.EntityUser, nf.Entity)
}

func TestUserPartialUpdate(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(newStore().Users, nil, zap.NewNop())
	u := mustCreateUser(t, svc, "Ann", "ann@example.com", "")

	updated, err := svc.Update(ctx, u.ID, validation.Document{model.FieldRole: rbac.RoleManager})
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleManager, updated.Role)
	assert.Equal(t, "Ann", updated.Name)
	assert.Equal(t, u.Password, updated.Password)

	// 出现在 patch 中的空值需要重新校验
	_, err = svc.Update(ctx, u.ID, validation.Document{model.FieldName: ""})
	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.HasField(model.FieldName))

	_, err = svc.Update(ctx, model.NewID(), validation.Document{model.FieldName: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUserDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(newStore().Users, nil, zap.NewNop())
	u := mustCreateUser(t, svc, "Ann", "ann@example.com", "")

	require.NoError(t, svc.Delete(ctx, u.ID))
	require.NoError(t, svc.Delete(ctx, u.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "bad"), apperr.ErrInvalidID)
}

func TestListManagers(t *testing.T) {
	svc := NewUserService(newStore().Users, nil, zap.NewNop())
	mustCreateUser(t, svc, "Ann", "ann@example.com", "")
	mustCreateUser(t, svc, "Max", "max@example.com", rbac.RoleManager)

	managers, err := svc.ListManagers(context.Background())
	require.NoError(t, err)
	require.Len(t, managers, 1)
	assert.Equal(t, "Max", managers[0].Name)
}

func TestAddClient(t *testing.T) {
	ctx := context.Background()
	events := &fakeEvents{}
	svc := NewUserService(newStore().Users, events, zap.NewNop())
	manager := mustCreateUser(t, svc, "Max", "max@example.com", rbac.RoleManager)
	client := mustCreateUser(t, svc, "Ann", "ann@example.com", "")

	_, err := svc.AddClient(ctx, manager.ID, "")
	var missing *apperr.MissingFieldError
	require.True(t, errors.As(err, &missing))

	_, err = svc.AddClient(ctx, manager.ID, "bad")
	assert.ErrorIs(t, err, apperr.ErrInvalidID)

	_, err = svc.AddClient(ctx, model.NewID(), client.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.AddClient(ctx, client.ID, manager.ID)
	var rv *rbac.RoleViolationError
	require.True(t, errors.As(err, &rv))
	assert.Equal(t, "Only managers can have clients", rv.Error())

	for i := 0; i < 2; i++ {
		updated, err := svc.AddClient(ctx, manager.ID, client.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{client.ID}, updated.Clients)
	}
}

func projectDoc(client, manager string) validation.Document {
	return validation.Document{
		model.FieldTitle:         "Tower A",
		model.FieldDescription:   "Twelve floors",
		model.FieldClient:        client,
		model.FieldManager:       manager,
		model.FieldCost:          1200000.0,
		model.FieldPlannedLabour: 40.0,
	}
}

func TestProjectCreateDefaults(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := NewProjectService(newStore().Projects, nil, zap.NewNop(), func() time.Time { return now })

	p, err := svc.Create(context.Background(), projectDoc(model.NewID(), model.NewID()))
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, p.Status)
	assert.True(t, now.Equal(p.StartDate))
	assert.Nil(t, p.EndDate)
}

func TestProjectCreateValidation(t *testing.T) {
	svc := NewProjectService(newStore().Projects, nil, zap.NewNop(), nil)

	doc := projectDoc("", model.NewID())
	doc[model.FieldStatus] = "done"
	delete(doc, model.FieldTitle)

	_, err := svc.Create(context.Background(), doc)
	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.HasField(model.FieldTitle))
	assert.True(t, ve.HasField(model.FieldStatus))
	assert.True(t, ve.HasField(model.FieldClient))
	assert.Contains(t, ve.Messages(), "Please provide a project title")
	assert.Contains(t, ve.Messages(), "Please provide a client")
}

func TestProjectCreateAcceptsOpaqueReferences(t *testing.T) {
	svc := NewProjectService(newStore().Projects, nil, zap.NewNop(), nil)

	p, err := svc.Create(context.Background(), validation.Document{
		model.FieldTitle:         "Tower A",
		model.FieldDescription:   "desc",
		model.FieldCost:          1000.0,
		model.FieldPlannedLabour: 5.0,
		model.FieldClient:        "u1",
		model.FieldManager:       "u2",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, model.StatusPending, p.Status)
	assert.Equal(t, "u1", p.Client)
	assert.Equal(t, "u2", p.Manager)
}

func TestProjectUpdateAndGet(t *testing.T) {
	ctx := context.Background()
	svc := NewProjectService(newStore().Projects, nil, zap.NewNop(), nil)
	p, err := svc.Create(ctx, projectDoc(model.NewID(), model.NewID()))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, p.ID, validation.Document{model.FieldStatus: model.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, updated.Status)
	assert.Equal(t, "Tower A", updated.Title)

	_, err = svc.Get(ctx, model.NewID())
	var nf *apperr.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, model.EntityProject, nf.Entity)
}

func progressDoc(project, client, manager string) validation.Document {
	return validation.Document{
		model.FieldProject:                 project,
		model.FieldClient:                  client,
		model.FieldManager:                 manager,
		model.FieldDescription:             "Week 1",
		model.FieldStartDate:               time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		model.FieldEndDate:                 time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		model.FieldFiveDayCost:             5000.0,
		model.FieldLaboursWorked:           12.0,
		model.FieldActualMaterialUsedToday: "40 bags cement",
		model.FieldWorkCompletedToday:      2.5,
		model.FieldExternalDelay:           0.0,
		model.FieldInternalDelay:           1.0,
		model.FieldMaterialCostInDays:      800.0,
	}
}

func TestProgressListByProjectPopulates(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	users := NewUserService(store.Users, nil, zap.NewNop())
	projects := NewProjectService(store.Projects, nil, zap.NewNop(), nil)
	progress := NewProgressService(store.Progress, store.Projects, store.Users, nil, zap.NewNop())

	client := mustCreateUser(t, users, "Ann", "ann@example.com", "")
	manager := mustCreateUser(t, users, "Max", "max@example.com", rbac.RoleManager)
	projectA, err := projects.Create(ctx, projectDoc(client.ID, manager.ID))
	require.NoError(t, err)
	projectB, err := projects.Create(ctx, projectDoc(client.ID, manager.ID))
	require.NoError(t, err)

	for _, p := range []string{projectA.ID, projectB.ID, projectA.ID} {
		_, err := progress.Create(ctx, progressDoc(p, client.ID, manager.ID))
		require.NoError(t, err)
	}

	entries, err := progress.ListByProject(ctx, projectA.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		require.NotNil(t, e.Project)
		assert.Equal(t, projectA.ID, e.Project.ID)
		require.NotNil(t, e.Client)
		assert.Equal(t, "Ann", e.Client.Name)
		require.NotNil(t, e.Manager)
		assert.Equal(t, "Max", e.Manager.Name)
	}

	_, err = progress.ListByProject(ctx, "bad")
	assert.ErrorIs(t, err, apperr.ErrInvalidID)
}

func TestProgressDanglingReferenceIsNil(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	users := NewUserService(store.Users, nil, zap.NewNop())
	progress := NewProgressService(store.Progress, store.Projects, store.Users, nil, zap.NewNop())

	client := mustCreateUser(t, users, "Ann", "ann@example.com", "")
	created, err := progress.Create(ctx, progressDoc(model.NewID(), client.ID, model.NewID()))
	require.NoError(t, err)

	got, err := progress.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Project)
	assert.Nil(t, got.Manager)
	require.NotNil(t, got.Client)
	assert.Equal(t, client.ID, got.Client.ID)
	assert.Equal(t, "40 bags cement", got.ActualMaterialUsedToday)
}

func TestProgressOpaqueReferencesPopulateAsNil(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	progress := NewProgressService(store.Progress, store.Projects, store.Users, nil, zap.NewNop())

	created, err := progress.Create(ctx, progressDoc("p1", "u1", "u2"))
	require.NoError(t, err)

	got, err := progress.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Project)
	assert.Nil(t, got.Client)
	assert.Nil(t, got.Manager)
}

func TestProgressCreateValidation(t *testing.T) {
	progress := NewProgressService(newStore().Progress, nil, nil, nil, zap.NewNop())

	doc := progressDoc(model.NewID(), model.NewID(), model.NewID())
	delete(doc, model.FieldWorkCompletedToday)
	_, err := progress.Create(context.Background(), doc)

	var ve *apperr.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.HasField(model.FieldWorkCompletedToday))
}

type managerRequestFixture struct {
	svc     *ManagerRequestService
	sender  *fakeSender
	dedup   *fakeDeduper
	events  *fakeEvents
	client  *model.User
	manager *model.User
}

func newManagerRequestFixture(t *testing.T, opts ...ManagerRequestOption) *managerRequestFixture {
	t.Helper()
	store := newStore()
	users := NewUserService(store.Users, nil, zap.NewNop())
	f := &managerRequestFixture{
		sender: &fakeSender{},
		dedup:  newFakeDeduper(),
		events: &fakeEvents{},
	}
	f.client = mustCreateUser(t, users, "Ann", "ann@example.com", "")
	f.manager = mustCreateUser(t, users, "Max", "max@example.com", rbac.RoleManager)
	received := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	opts = append([]ManagerRequestOption{
		WithDeduper(f.dedup),
		WithEvents(f.events),
		WithClock(func() time.Time { return received }),
	}, opts...)
	f.svc = NewManagerRequestService(store.Users, f.sender, zap.NewNop(), opts...)
	return f
}

func TestManagerRequestSends(t *testing.T) {
	f := newManagerRequestFixture(t)

	err := f.svc.Send(context.Background(), ManagerRequest{
		ClientID:  f.client.ID,
		ManagerID: f.manager.ID,
		Message:   "<b>When</b> does work start?",
	})
	require.NoError(t, err)
	require.Len(t, f.sender.sent, 1)

	msg := f.sender.sent[0]
	assert.Equal(t, "max@example.com", msg.To)
	assert.Equal(t, "ann@example.com", msg.ReplyTo)
	assert.Equal(t, "New Project Message", msg.Subject)
	assert.Contains(t, msg.HTML, "&lt;b&gt;When&lt;/b&gt;")
	assert.NotContains(t, msg.HTML, "<b>When</b>")
	assert.Contains(t, msg.Text, "<b>When</b> does work start?")
	assert.Equal(t, []string{"manager_request.sent"}, f.events.types())
	assert.NotContains(t, msg.HTML, "View in Dashboard")
}

func TestManagerRequestCarriesAppNameAndDashboardLink(t *testing.T) {
	f := newManagerRequestFixture(t,
		WithAppName("Site Desk"),
		WithDashboardURL("https://bim.example.com/dashboard"),
	)

	err := f.svc.Send(context.Background(), ManagerRequest{
		ClientID:  f.client.ID,
		ManagerID: f.manager.ID,
		Message:   "Need an update",
	})
	require.NoError(t, err)
	require.Len(t, f.sender.sent, 1)

	msg := f.sender.sent[0]
	assert.Contains(t, msg.HTML, `href="https://bim.example.com/dashboard"`)
	assert.Contains(t, msg.Text, "View in Dashboard: https://bim.example.com/dashboard")
	assert.Contains(t, msg.Text, "automated notification from Site Desk.")
}

func TestManagerRequestMissingFields(t *testing.T) {
	f := newManagerRequestFixture(t)

	err := f.svc.Send(context.Background(), ManagerRequest{ClientID: f.client.ID, Message: "  "})
	var missing *apperr.MissingFieldError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"managerId", "message"}, missing.Fields)
	assert.Empty(t, f.sender.sent)
}

func TestManagerRequestLookupErrors(t *testing.T) {
	f := newManagerRequestFixture(t)
	ctx := context.Background()

	err := f.svc.Send(ctx, ManagerRequest{ClientID: "bad", ManagerID: f.manager.ID, Message: "hi"})
	assert.ErrorIs(t, err, apperr.ErrInvalidID)

	err = f.svc.Send(ctx, ManagerRequest{ClientID: f.client.ID, ManagerID: model.NewID(), Message: "hi"})
	var nf *apperr.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Manager", nf.Entity)
	assert.Empty(t, f.sender.sent)
}

func TestManagerRequestRoleViolationSendsNoMail(t *testing.T) {
	f := newManagerRequestFixture(t)
	ctx := context.Background()

	// 角色反过来：经理给客户发
	err := f.svc.Send(ctx, ManagerRequest{ClientID: f.manager.ID, ManagerID: f.client.ID, Message: "hi"})
	var rv *rbac.RoleViolationError
	require.True(t, errors.As(err, &rv))
	assert.Equal(t, "Only clients can send messages to managers", rv.Error())

	err = f.svc.Send(ctx, ManagerRequest{ClientID: f.client.ID, ManagerID: f.client.ID, Message: "hi"})
	require.True(t, errors.As(err, &rv))
	assert.Equal(t, "Invalid manager role", rv.Error())

	assert.Empty(t, f.sender.sent)
	assert.Empty(t, f.events.types())
}

func TestManagerRequestDuplicateSuppressed(t *testing.T) {
	f := newManagerRequestFixture(t)
	ctx := context.Background()
	req := ManagerRequest{ClientID: f.client.ID, ManagerID: f.manager.ID, Message: "hi"}

	require.NoError(t, f.svc.Send(ctx, req))
	assert.ErrorIs(t, f.svc.Send(ctx, req), apperr.ErrDuplicateRequest)
	assert.Len(t, f.sender.sent, 1)

	req.Message = "something else"
	require.NoError(t, f.svc.Send(ctx, req))
	assert.Len(t, f.sender.sent, 2)
}

func TestManagerRequestTransportFailureReleasesKey(t *testing.T) {
	f := newManagerRequestFixture(t)
	ctx := context.Background()
	req := ManagerRequest{ClientID: f.client.ID, ManagerID: f.manager.ID, Message: "hi", Subject: "Site visit"}

	f.sender.err = errors.New("connection refused")
	err := f.svc.Send(ctx, req)
	var te *apperr.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 1, f.dedup.released)
	assert.Empty(t, f.events.types())

	f.sender.err = nil
	require.NoError(t, f.svc.Send(ctx, req))
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, "Site visit", f.sender.sent[0].Subject)
}
