package action

import (
	"strings"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
)

// Kind tells a client-facing failure apart from a successful Result.
type Kind string

const (
	KindValidation Kind = "validation"
	KindDomain     Kind = "domain"
)

// Raw is the untrusted, decoded request payload.
type Raw map[string]any

// Result is what an action hands back to the transport. Failures carry the
// first error message and echo the submitted input so forms can be refilled.
type Result struct {
	Kind       Kind           `json:"kind,omitempty"`
	Code       string         `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	Success    string         `json:"success,omitempty"`
	Input      map[string]any `json:"input,omitempty"`
	Data       any            `json:"data,omitempty"`
	RedirectTo string         `json:"redirect_to,omitempty"`
}

func (r Result) Failed() bool {
	return r.Error != ""
}

func Succeed(message string, data any) Result {
	return Result{Success: message, Data: data}
}

// Reject turns a business-rule violation into a Result.
func Reject(rule *domain.RuleError, raw Raw) Result {
	return Result{
		Kind:  KindDomain,
		Code:  rule.Code,
		Error: rule.Message,
		Input: raw.Echo(),
	}
}

// FromError reports rule violations as data; every other error propagates.
func FromError(err error, raw Raw) (Result, error) {
	if rule, ok := domain.AsRuleError(err); ok {
		return Reject(rule, raw), nil
	}
	return Result{}, err
}

// Echo copies the input for the response, blanking password fields.
func (r Raw) Echo() map[string]any {
	if len(r) == 0 {
		return nil
	}
	out := make(map[string]any, len(r))
	for k, v := range r {
		if strings.Contains(strings.ToLower(k), "password") {
			out[k] = ""
			continue
		}
		out[k] = v
	}
	return out
}
