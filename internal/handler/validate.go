package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/users-api/internal/model"
)

// maxBodyBytes caps a create/update payload.
const maxBodyBytes = 1 << 20

// MsgInvalidBody is returned when the request body is not a JSON object.
const MsgInvalidBody = "Invalid request body"

// Validator checks a decoded payload. *validation.Validator satisfies it.
type Validator interface {
	Create(in model.UserInput) error
	Update(in model.UserInput) error
}

// contextKey is unexported so no other package can read or shadow the value.
type contextKey string

const inputKey contextKey = "userInput"

// ValidateCreate decodes the body, runs the create rules and stores the
// payload in the request context. A failure ends the request with 400 and
// the handler is never invoked.
func (h *UserHandler) ValidateCreate(next http.Handler) http.Handler {
	return h.validate(h.validator.Create, next)
}

// ValidateUpdate is ValidateCreate with the partial-update rules.
func (h *UserHandler) ValidateUpdate(next http.Handler) http.Handler {
	return h.validate(h.validator.Update, next)
}

func (h *UserHandler) validate(check func(model.UserInput) error, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		in, err := decodeInput(w, r)
		if err != nil {
			h.logger.Warn("invalid user payload", slog.String("error", err.Error()))
			env := Envelope{Success: false, Message: MsgInvalidBody}
			if h.exposeErrors {
				env.Error = err.Error()
			}
			writeJSON(w, http.StatusBadRequest, env)
			return
		}

		if err := check(in); err != nil {
			writeError(w, err, MsgInvalidBody, h.exposeErrors)
			return
		}

		ctx := context.WithValue(r.Context(), inputKey, in)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// inputFromContext returns the payload stored by ValidateCreate/ValidateUpdate.
func inputFromContext(ctx context.Context) (model.UserInput, bool) {
	in, ok := ctx.Value(inputKey).(model.UserInput)
	return in, ok
}

var errTrailingData = errors.New("request body must contain a single JSON object")

// decodeInput reads a JSON object into a UserInput. An empty body decodes to
// the zero value, which create rejects as missing fields and update treats
// as a no-op. Anything after the object other than whitespace is rejected.
func decodeInput(w http.ResponseWriter, r *http.Request) (model.UserInput, error) {
	var in model.UserInput
	if r.Body == nil {
		return in, nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(&in)
	if errors.Is(err, io.EOF) {
		return in, nil
	}
	if err != nil {
		return model.UserInput{}, err
	}

	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return model.UserInput{}, errTrailingData
	}
	return in, nil
}
