// Package engine decides, with an OPA Rego policy, whether a caller may execute a command against an org.
package engine

import (
	"context"
	"os"

	"github.com/go-faster/errors"
	"github.com/open-policy-agent/opa/v1/rego"
)

// Query is the rule every policy module must define.
const Query = "data.f3.catalog.authz.allow"

// DefaultPolicy lets admins of the target org, or of its parent org, run any command.
const DefaultPolicy = `package f3.catalog.authz

default allow := false

allow if input.subject.user_id in input.org.admins

allow if input.subject.user_id in input.parent.admins
`

// Input is what the policy sees for one command.
type Input struct {
	UserID       int64
	Kind         string
	OrgID        int64
	OrgType      string
	Admins       []int64
	ParentID     int64
	ParentAdmins []int64
}

func (in Input) document() map[string]any {
	ids := func(v []int64) []any {
		out := make([]any, len(v))
		for i, id := range v {
			out[i] = id
		}
		return out
	}
	return map[string]any{
		"subject": map[string]any{"user_id": in.UserID},
		"command": map[string]any{"kind": in.Kind},
		"org": map[string]any{
			"id":     in.OrgID,
			"type":   in.OrgType,
			"admins": ids(in.Admins),
		},
		"parent": map[string]any{
			"id":     in.ParentID,
			"admins": ids(in.ParentAdmins),
		},
	}
}

// Authorizer evaluates a policy module compiled once at construction.
type Authorizer struct {
	query rego.PreparedEvalQuery
}

// NewAuthorizer compiles the policy at policyFile, or DefaultPolicy when policyFile is empty.
func NewAuthorizer(ctx context.Context, policyFile string) (*Authorizer, error) {
	name, src := "default.rego", DefaultPolicy
	if policyFile != "" {
		b, err := os.ReadFile(policyFile)
		if err != nil {
			return nil, errors.Wrap(err, "read policy file")
		}
		name, src = policyFile, string(b)
	}
	return newAuthorizer(ctx, name, src)
}

func newAuthorizer(ctx context.Context, name, src string) (*Authorizer, error) {
	q, err := rego.New(
		rego.Query(Query),
		rego.Module(name, src),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "compile policy")
	}
	return &Authorizer{query: q}, nil
}

// Allow reports whether the policy allows in. An undefined result denies.
func (a *Authorizer) Allow(ctx context.Context, in Input) (bool, error) {
	rs, err := a.query.Eval(ctx, rego.EvalInput(in.document()))
	if err != nil {
		return false, errors.Wrap(err, "evaluate policy")
	}
	return rs.Allowed(), nil
}

// HealthCheck evaluates the compiled policy against a synthetic input.
func (a *Authorizer) HealthCheck(ctx context.Context) error {
	_, err := a.Allow(ctx, Input{UserID: 1, Kind: "health_check", OrgID: 1, Admins: []int64{1}})
	return err
}
