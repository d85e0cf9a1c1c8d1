package scenario

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/funvibe/tower/internal/checker"
	"github.com/funvibe/tower/internal/diagnostics"
	"github.com/funvibe/tower/internal/tower"
)

// Result is the outcome of one case.
type Result struct {
	Case    *Case
	Outcome *tower.Outcome
}

// Run resolves every case of s in order. The resolver uses the scenario's
// configuration unless opts override it.
func Run(ctx context.Context, s *Scenario, opts ...tower.Option) ([]*Result, error) {
	opts = append([]tower.Option{tower.WithConfig(s.Config)}, opts...)
	r := tower.NewResolver(s.Universe, checker.New(s.Universe), opts...)

	results := make([]*Result, 0, len(s.Cases))
	for _, c := range s.Cases {
		var (
			out *tower.Outcome
			err error
		)
		if c.Target != nil {
			out, err = r.ResolveDelegatingConstructor(ctx, s.Env, c.Call, c.Target)
		} else {
			out, err = r.Resolve(ctx, s.Env, c.Call)
		}
		if err != nil {
			return results, errors.Wrapf(err, "%s: calls[%d] (%s)", s.Path, c.Index, c.Call.Name)
		}
		results = append(results, &Result{Case: c, Outcome: out})
	}
	return results, nil
}

// Check compares the outcome with the case expectation. It returns nil
// when there is nothing to check or everything matches.
func (r *Result) Check() error {
	e := r.Case.Expect
	if e == nil {
		return nil
	}
	out := r.Outcome
	var problems []string
	mismatch := func(what, want, got string) {
		problems = append(problems, fmt.Sprintf("%s: want %s, got %s", what, want, got))
	}

	if e.Outcome != "" && e.Outcome != out.Kind.String() {
		mismatch("outcome", e.Outcome, out.Kind.String())
	}
	if e.Group != "" {
		got := "none"
		if out.Best != nil {
			got = out.Best.String()
		}
		if e.Group != got {
			mismatch("group", e.Group, got)
		}
	}
	if e.Applicability != "" && len(out.Candidates) > 0 && e.Applicability != out.Applicability.String() {
		mismatch("applicability", e.Applicability, out.Applicability.String())
	}
	if e.Candidates != 0 && e.Candidates != len(out.Candidates) {
		mismatch("candidates", fmt.Sprint(e.Candidates), fmt.Sprint(len(out.Candidates)))
	}
	if e.Owner != "" || e.Invoked != "" {
		c, ok := out.Single()
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("want a single successful candidate, got %d", len(out.Candidates)))
		default:
			if e.Owner != "" && e.Owner != c.Owner() {
				mismatch("owner", e.Owner, c.Owner())
			}
			if e.Invoked != "" {
				got := "none"
				if c.Invoked != nil {
					got = c.Invoked.Symbol.Name
				}
				if e.Invoked != got {
					mismatch("invoked", e.Invoked, got)
				}
			}
		}
	}

	if len(problems) == 0 {
		return nil
	}
	err := diagnostics.NewError(diagnostics.ErrS003, r.Outcome.Call.String(), "%s", strings.Join(problems, "; "))
	for _, c := range out.Candidates {
		err.Candidates = append(err.Candidates, c.String())
	}
	return err
}
