package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"testing"

	"github.com/sakif/users-api/internal/apperror"
	"github.com/sakif/users-api/internal/model"
	"github.com/sakif/users-api/internal/repository"
)

// =========================================================================
// MOCK REPOSITORY
// =========================================================================
//
// mockUserRepo implements repository.UserRepository in memory. The err*
// fields let a test force a store failure on one method.

type mockUserRepo struct {
	users  map[int64]*model.User
	nextID int64

	errList   error
	errGet    error
	errCreate error
	errUpdate error
	errDelete error
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

func newMockRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*model.User)}
}

func (m *mockUserRepo) List(_ context.Context) ([]model.User, error) {
	if m.errList != nil {
		return nil, m.errList
	}
	result := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if m.errGet != nil {
		return nil, m.errGet
	}
	key, ok := repository.ParseID(id)
	if !ok {
		return nil, apperror.NotFound("User", id)
	}
	u, ok := m.users[key]
	if !ok {
		return nil, apperror.NotFound("User", id)
	}
	result := *u
	return &result, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if m.errGet != nil {
		return nil, m.errGet
	}
	for _, u := range m.users {
		if u.Email == email {
			result := *u
			return &result, nil
		}
	}
	return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "no user with this email"}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if m.errCreate != nil {
		return m.errCreate
	}
	m.nextID++
	user.ID = m.nextID
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if m.errUpdate != nil {
		return m.errUpdate
	}
	if _, ok := m.users[user.ID]; !ok {
		return apperror.NotFound("User", "x")
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id int64) error {
	if m.errDelete != nil {
		return m.errDelete
	}
	if _, ok := m.users[id]; !ok {
		return apperror.NotFound("User", "x")
	}
	delete(m.users, id)
	return nil
}

// =========================================================================
// TEST HELPERS
// =========================================================================

func newTestService(t *testing.T) (*UserService, *mockUserRepo) {
	t.Helper()
	repo := newMockRepo()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewUserService(repo, logger), repo
}

func ptr(s string) *string { return &s }

func input(email string) model.UserInput {
	return model.UserInput{
		FirstName: ptr("Ada"),
		LastName:  ptr("Lovelace"),
		Email:     ptr(email),
		Password:  ptr("analytical"),
		Birthday:  ptr("1815-12-10"),
	}
}

func mustCreate(t *testing.T, svc *UserService, email string) *model.User {
	t.Helper()
	u, err := svc.Create(context.Background(), input(email))
	if err != nil {
		t.Fatalf("setup: Create() error = %v", err)
	}
	return u
}

var errBoom = errors.New("disk on fire")

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreate_Success(t *testing.T) {
	svc, repo := newTestService(t)

	u := mustCreate(t, svc, "ada@example.com")

	if u.ID != 1 {
		t.Errorf("ID = %d, want 1", u.ID)
	}
	if u.Password != "analytical" {
		t.Errorf("Password = %q, want the stored value in the create response", u.Password)
	}
	if len(repo.users) != 1 {
		t.Errorf("repo has %d users, want 1", len(repo.users))
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	svc, repo := newTestService(t)
	mustCreate(t, svc, "dup@example.com")

	_, err := svc.Create(context.Background(), input("dup@example.com"))
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
	if err.Error() != MsgEmailExists {
		t.Errorf("message = %q, want %q", err.Error(), MsgEmailExists)
	}
	if len(repo.users) != 1 {
		t.Errorf("repo has %d users, want 1", len(repo.users))
	}
}

func TestCreate_StoreConflictLosesRace(t *testing.T) {
	svc, repo := newTestService(t)
	repo.errCreate = apperror.Conflict("email", "constraint")

	_, err := svc.Create(context.Background(), input("race@example.com"))
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
	if err.Error() != MsgEmailExists {
		t.Errorf("message = %q, want %q", err.Error(), MsgEmailExists)
	}
}

func TestCreate_StoreFailure(t *testing.T) {
	svc, repo := newTestService(t)
	repo.errCreate = errBoom

	_, err := svc.Create(context.Background(), input("x@example.com"))
	if !errors.Is(err, errBoom) {
		t.Fatalf("error = %v, want wrapped store error", err)
	}
}

// =========================================================================
// READ TESTS
// =========================================================================

func TestGetByID_HidesPassword(t *testing.T) {
	svc, repo := newTestService(t)
	created := mustCreate(t, svc, "hidden@example.com")

	found, err := svc.GetByID(context.Background(), "1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Password != "" {
		t.Errorf("Password = %q, want empty", found.Password)
	}
	if found.Email != created.Email {
		t.Errorf("Email = %q, want %q", found.Email, created.Email)
	}
	if repo.users[1].Password != "analytical" {
		t.Error("GetByID() must not clear the stored password")
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	for _, id := range []string{"7", "abc", "0"} {
		_, err := svc.GetByID(context.Background(), id)
		if !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("GetByID(%q) error = %v, want ErrNotFound", id, err)
			continue
		}
		want := "User with id " + id + " not found"
		if err.Error() != want {
			t.Errorf("message = %q, want %q", err.Error(), want)
		}
	}
}

func TestGetByID_StoreFailure(t *testing.T) {
	svc, repo := newTestService(t)
	repo.errGet = errBoom

	_, err := svc.GetByID(context.Background(), "1")
	if !errors.Is(err, errBoom) {
		t.Fatalf("error = %v, want wrapped store error", err)
	}
	if errors.Is(err, apperror.ErrNotFound) {
		t.Error("store failure must not look like not found")
	}
}

func TestList_HidesPasswords(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, "a@example.com")
	mustCreate(t, svc, "b@example.com")

	users, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("List() returned %d users, want 2", len(users))
	}
	for _, u := range users {
		if u.Password != "" {
			t.Errorf("user %d Password = %q, want empty", u.ID, u.Password)
		}
	}
}

func TestList_StoreFailure(t *testing.T) {
	svc, repo := newTestService(t)
	repo.errList = errBoom

	if _, err := svc.List(context.Background()); !errors.Is(err, errBoom) {
		t.Fatalf("error = %v, want wrapped store error", err)
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestUpdate_MergesNonEmptyFields(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, "merge@example.com")

	updated, err := svc.Update(context.Background(), "1", model.UserInput{
		FirstName: ptr("Augusta"),
		LastName:  ptr(""),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.FirstName != "Augusta" {
		t.Errorf("FirstName = %q, want %q", updated.FirstName, "Augusta")
	}
	if updated.LastName != "Lovelace" {
		t.Errorf("LastName = %q, empty value must keep the stored one", updated.LastName)
	}
	if updated.Email != "merge@example.com" || updated.Birthday != "1815-12-10" {
		t.Errorf("absent fields changed: %+v", updated)
	}
	if updated.Password != "analytical" {
		t.Errorf("Password = %q, update response carries the stored password", updated.Password)
	}
}

func TestUpdate_EmptyPayloadIsNoop(t *testing.T) {
	svc, repo := newTestService(t)
	before := *mustCreate(t, svc, "same@example.com")

	if _, err := svc.Update(context.Background(), "1", model.UserInput{}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	after := repo.users[1]
	if after.FirstName != before.FirstName || after.Email != before.Email || after.Password != before.Password {
		t.Errorf("empty update changed the record: %+v -> %+v", before, *after)
	}
}

func TestUpdate_SameEmailIsNotAConflict(t *testing.T) {
	svc, _ := newTestService(t)
	mustCreate(t, svc, "keep@example.com")

	if _, err := svc.Update(context.Background(), "1", model.UserInput{Email: ptr("keep@example.com")}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
}

func TestUpdate_EmailTakenByAnotherUser(t *testing.T) {
	svc, repo := newTestService(t)
	mustCreate(t, svc, "first@example.com")
	mustCreate(t, svc, "second@example.com")

	_, err := svc.Update(context.Background(), "2", model.UserInput{Email: ptr("first@example.com")})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
	if repo.users[2].Email != "second@example.com" {
		t.Error("rejected update must not be persisted")
	}
}

func TestUpdate_StoreConflict(t *testing.T) {
	svc, repo := newTestService(t)
	mustCreate(t, svc, "a@example.com")
	repo.errUpdate = apperror.Conflict("email", "constraint")

	_, err := svc.Update(context.Background(), "1", model.UserInput{Email: ptr("b@example.com")})
	if !errors.Is(err, apperror.ErrConflict) || err.Error() != MsgEmailExists {
		t.Fatalf("error = %v, want conflict with %q", err, MsgEmailExists)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Update(context.Background(), "42", model.UserInput{FirstName: ptr("X")})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestUpdate_StoreFailure(t *testing.T) {
	svc, repo := newTestService(t)
	mustCreate(t, svc, "a@example.com")
	repo.errUpdate = errBoom

	if _, err := svc.Update(context.Background(), "1", model.UserInput{FirstName: ptr("X")}); !errors.Is(err, errBoom) {
		t.Fatalf("error = %v, want wrapped store error", err)
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestDelete_Success(t *testing.T) {
	svc, repo := newTestService(t)
	mustCreate(t, svc, "bye@example.com")

	if err := svc.Delete(context.Background(), "1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(repo.users) != 0 {
		t.Errorf("repo has %d users, want 0", len(repo.users))
	}

	if err := svc.Delete(context.Background(), "1"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestDelete_StoreFailure(t *testing.T) {
	svc, repo := newTestService(t)
	mustCreate(t, svc, "a@example.com")
	repo.errDelete = errBoom

	if err := svc.Delete(context.Background(), "1"); !errors.Is(err, errBoom) {
		t.Fatalf("error = %v, want wrapped store error", err)
	}
}
