package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/users-api/internal/model"
)

// Response messages. Failure messages for 400/404 come from the service's
// AppError values; these are the success messages and the generic 500s.
const (
	MsgListOK       = "Users retrieved successfully"
	MsgListFailed   = "Error retrieving users"
	MsgGetOK        = "User retrieved successfully"
	MsgGetFailed    = "Error retrieving user"
	MsgCreateOK     = "User created successfully"
	MsgCreateFailed = "Error creating user"
	MsgUpdateOK     = "User updated successfully"
	MsgUpdateFailed = "Error updating user"
	MsgDeleteOK     = "User deleted successfully"
	MsgDeleteFailed = "Error deleting user"

	MsgInternalError = "Internal server error"
)

// UserService is the business layer the handler depends on.
// *service.UserService satisfies it; tests pass a stub.
type UserService interface {
	List(ctx context.Context) ([]model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	Create(ctx context.Context, in model.UserInput) (*model.User, error)
	Update(ctx context.Context, id string, in model.UserInput) (*model.User, error)
	Delete(ctx context.Context, id string) error
}

// UserHandler serves the /users routes.
type UserHandler struct {
	service      UserService
	validator    Validator
	logger       *slog.Logger
	exposeErrors bool
}

// NewUserHandler creates a UserHandler. exposeErrors adds the underlying
// error text to 500 responses and should be false in production.
func NewUserHandler(svc UserService, v Validator, logger *slog.Logger, exposeErrors bool) *UserHandler {
	return &UserHandler{
		service:      svc,
		validator:    v,
		logger:       logger,
		exposeErrors: exposeErrors,
	}
}

// deletedUser echoes the id exactly as it appeared in the path.
type deletedUser struct {
	ID string `json:"id"`
}

// HandleList returns every user, passwords omitted, with a count.
//
// HTTP: GET {prefix}/users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err, MsgListFailed, h.exposeErrors)
		return
	}

	count := len(users)
	writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Message: MsgListOK,
		Data:    users,
		Count:   &count,
	})
}

// HandleGetByID returns one user, password omitted.
//
// HTTP: GET {prefix}/users/{id}
// The id segment goes to the service unconverted.
func (h *UserHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, MsgGetFailed, h.exposeErrors)
		return
	}
	writeSuccess(w, http.StatusOK, MsgGetOK, user)
}

// HandleCreate inserts a user from a payload already checked by
// ValidateCreate.
//
// HTTP: POST {prefix}/users
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := h.input(w, r)
	if !ok {
		return
	}

	user, err := h.service.Create(r.Context(), in)
	if err != nil {
		writeError(w, err, MsgCreateFailed, h.exposeErrors)
		return
	}
	writeSuccess(w, http.StatusCreated, MsgCreateOK, user)
}

// HandleUpdate merges a payload already checked by ValidateUpdate.
//
// HTTP: PUT {prefix}/users/{id}
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	in, ok := h.input(w, r)
	if !ok {
		return
	}

	user, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err, MsgUpdateFailed, h.exposeErrors)
		return
	}
	writeSuccess(w, http.StatusOK, MsgUpdateOK, user)
}

// HandleDelete removes a user and echoes its id.
//
// HTTP: DELETE {prefix}/users/{id}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err, MsgDeleteFailed, h.exposeErrors)
		return
	}
	writeSuccess(w, http.StatusOK, MsgDeleteOK, deletedUser{ID: id})
}

// input returns the validated payload from the context. Every body-carrying
// route mounts ValidateCreate or ValidateUpdate; a route without one is a
// wiring bug and answers 500 rather than running on unvalidated input.
func (h *UserHandler) input(w http.ResponseWriter, r *http.Request) (model.UserInput, bool) {
	in, ok := inputFromContext(r.Context())
	if !ok {
		h.logger.Error("no validated payload in context",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		writeFailure(w, http.StatusInternalServerError, MsgInternalError)
		return model.UserInput{}, false
	}
	return in, true
}
