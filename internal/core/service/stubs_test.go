package service

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/civicwatch/report-system/internal/core/domain"
	"github.com/civicwatch/report-system/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users map[string]*domain.User
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = cloneUser(u)
	}
	return r
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrUserExists
		}
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByIDs(_ context.Context, ids []string) (map[string]*domain.User, error) {
	out := make(map[string]*domain.User, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = cloneUser(u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id string, upd ports.ProfileUpdate) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.HomeAddress != nil {
		u.HomeAddress = *upd.HomeAddress
	}
	if upd.Lat != nil {
		u.Lat, u.Lng = upd.Lat, upd.Lng
	}
	if upd.MunicipalityID != nil {
		u.MunicipalityID = *upd.MunicipalityID
	}
	return cloneUser(u), nil
}

// ---------------------------------------------------------------------------
// Municipalities and geocoding
// ---------------------------------------------------------------------------

type stubMunicipalityRepo struct {
	items map[string]*domain.Municipality
}

func newStubMunicipalityRepo(ids ...string) *stubMunicipalityRepo {
	r := &stubMunicipalityRepo{items: make(map[string]*domain.Municipality)}
	for _, id := range ids {
		r.items[id] = &domain.Municipality{ID: id, Name: "Municipality " + id, Province: "North"}
	}
	return r
}

func (r *stubMunicipalityRepo) List(_ context.Context) ([]*domain.Municipality, error) {
	out := make([]*domain.Municipality, 0, len(r.items))
	for _, m := range r.items {
		out = append(out, m)
	}
	return out, nil
}

func (r *stubMunicipalityRepo) FindByID(_ context.Context, id string) (*domain.Municipality, error) {
	m, ok := r.items[id]
	if !ok {
		return nil, domain.ErrMunicipalityNotFound
	}
	return m, nil
}

// stubGeocoder maps latitude to a municipality id.
type stubGeocoder struct {
	byLat map[float64]string
	err   error
	calls int
}

func (g *stubGeocoder) ResolveMunicipality(_ context.Context, lat, _ float64) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.byLat[lat], nil
}

// ---------------------------------------------------------------------------
// Reports
// ---------------------------------------------------------------------------

type stubReportRepo struct {
	byID      map[string]*domain.Report
	createErr error
	updates   int
}

func newStubReportRepo() *stubReportRepo {
	return &stubReportRepo{byID: make(map[string]*domain.Report)}
}

func (r *stubReportRepo) Create(_ context.Context, rep *domain.Report) error {
	if r.createErr != nil {
		return r.createErr
	}
	clone := *rep
	r.byID[rep.ID] = &clone
	return nil
}

func (r *stubReportRepo) FindByID(_ context.Context, id string) (*domain.Report, error) {
	rep, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	clone := *rep
	return &clone, nil
}

// List applies the same filters and ordering the Mongo repository uses.
func (r *stubReportRepo) List(_ context.Context, f ports.ListReportsFilter) ([]*domain.Report, int64, error) {
	var matched []*domain.Report
	for _, rep := range r.byID {
		if f.CreatedBy != "" && rep.CreatedBy != f.CreatedBy {
			continue
		}
		if f.MunicipalityID != "" && rep.MunicipalityID != f.MunicipalityID {
			continue
		}
		if f.Status != "" && string(rep.Status) != f.Status {
			continue
		}
		if f.Category != "" && rep.Category != f.Category {
			continue
		}
		clone := *rep
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if f.Offset >= len(matched) {
		return []*domain.Report{}, total, nil
	}
	end := f.Offset + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[f.Offset:end], total, nil
}

func (r *stubReportRepo) Update(_ context.Context, id string, p domain.ReportPatch) (*domain.Report, error) {
	rep, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrReportNotFound
	}
	r.updates++
	if p.Status != nil {
		rep.Status = *p.Status
	}
	if p.AssignedOfficial != nil {
		rep.AssignedOfficial = *p.AssignedOfficial
	}
	if p.Category != nil {
		rep.Category = *p.Category
	}
	clone := *rep
	return &clone, nil
}

// ---------------------------------------------------------------------------
// Upvotes
// ---------------------------------------------------------------------------

type stubUpvoteRepo struct {
	mu   sync.Mutex
	rows map[[2]string]struct{}
	// insertErr, when set, is returned by Insert without storing a row.
	insertErr error
}

func newStubUpvoteRepo() *stubUpvoteRepo {
	return &stubUpvoteRepo{rows: make(map[[2]string]struct{})}
}

func (r *stubUpvoteRepo) Exists(_ context.Context, reportID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rows[[2]string{reportID, userID}]
	return ok, nil
}

func (r *stubUpvoteRepo) Insert(_ context.Context, u *domain.Upvote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	key := [2]string{u.ReportID, u.UserID}
	if _, ok := r.rows[key]; ok {
		return domain.ErrUpvoteExists
	}
	r.rows[key] = struct{}{}
	return nil
}

func (r *stubUpvoteRepo) Delete(_ context.Context, reportID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, [2]string{reportID, userID})
	return nil
}

func (r *stubUpvoteRepo) CountByReports(_ context.Context, ids []string) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int64, len(ids))
	for key := range r.rows {
		for _, id := range ids {
			if key[0] == id {
				out[id]++
			}
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Activity
// ---------------------------------------------------------------------------

type stubActivity struct {
	published []domain.ReportActivity
}

func (a *stubActivity) Publish(act domain.ReportActivity) {
	a.published = append(a.published, act)
}

func (a *stubActivity) Insert(_ context.Context, act *domain.ReportActivity) error {
	a.published = append(a.published, *act)
	return nil
}

func (a *stubActivity) ListByReport(_ context.Context, reportID string, _ int) ([]*domain.ReportActivity, error) {
	var out []*domain.ReportActivity
	for i := len(a.published) - 1; i >= 0; i-- {
		if a.published[i].ReportID == reportID {
			act := a.published[i]
			out = append(out, &act)
		}
	}
	return out, nil
}
