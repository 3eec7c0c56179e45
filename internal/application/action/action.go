package action

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
)

// Func is a validated action ready to be invoked by a transport.
type Func func(ctx context.Context, raw Raw) (Result, error)

type Handler[T any] func(ctx context.Context, in T, raw Raw) (Result, error)

type UserHandler[T any] func(ctx context.Context, in T, raw Raw, user domain.User) (Result, error)

// UserResolver resolves the identity behind the current request. A nil
// user with a nil error means there is no session.
type UserResolver interface {
	CurrentUser(ctx context.Context) (*domain.User, error)
}

// Validated parses raw into T and only invokes handle when T is valid.
func Validated[T any](v *Validator, handle Handler[T]) Func {
	return func(ctx context.Context, raw Raw) (Result, error) {
		in, failure, ok := parse[T](v, raw)
		if !ok {
			return failure, nil
		}
		return handle(ctx, in, raw)
	}
}

// ValidatedWithUser requires a session before validating. A missing
// session is returned as domain.ErrUnauthorized, not as a Result.
func ValidatedWithUser[T any](v *Validator, users UserResolver, handle UserHandler[T]) Func {
	return func(ctx context.Context, raw Raw) (Result, error) {
		user, err := users.CurrentUser(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("resolve session: %w", err)
		}
		if user == nil {
			return Result{}, domain.ErrUnauthorized
		}
		in, failure, ok := parse[T](v, raw)
		if !ok {
			return failure, nil
		}
		return handle(ctx, in, raw, *user)
	}
}

func parse[T any](v *Validator, raw Raw) (T, Result, bool) {
	var in T
	encoded, err := json.Marshal(map[string]any(raw))
	if err != nil {
		return in, invalid("", "Invalid input", raw), false
	}
	if err := json.Unmarshal(encoded, &in); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return in, invalid(typeErr.Field, fmt.Sprintf("%s has an invalid type", typeErr.Field), raw), false
		}
		return in, invalid("", "Invalid input", raw), false
	}
	if fe := v.Check(in); fe != nil {
		return in, invalid(fe.Field, fe.Message, raw), false
	}
	return in, Result{}, true
}

func invalid(field, message string, raw Raw) Result {
	return Result{
		Kind:  KindValidation,
		Code:  "VALIDATION_ERROR",
		Error: message,
		Field: field,
		Input: raw.Echo(),
	}
}
