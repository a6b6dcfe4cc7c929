// Package policy gates mint requests with CEL rules. Rules are evaluated
// in file order and the first whose expression matches decides; with no
// rules, or no match, minting is allowed.
package policy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"sigs.k8s.io/yaml"

	"github.com/glyphforge/sphinx"
	"github.com/glyphforge/sphinx/internal"
)

const (
	ActionAllow = "allow"
	ActionDeny  = "deny"
)

var (
	ErrNoRuleName      = errors.New("policy: rule has no name")
	ErrUnknownAction   = errors.New("policy: unknown rule action")
	ErrCantCompileRule = errors.New("policy: can't compile rule expression")
)

// Config is the on-disk shape of a rule file (YAML or JSON).
type Config struct {
	Rules []RuleConfig `json:"rules"`
}

type RuleConfig struct {
	Name       string     `json:"name"`
	Action     string     `json:"action"`
	Expression Expression `json:"expression"`
}

func (r *RuleConfig) Valid() error {
	var errs []error

	if r.Name == "" {
		errs = append(errs, ErrNoRuleName)
	}

	switch r.Action {
	case ActionAllow, ActionDeny:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownAction, r.Action))
	}

	if err := r.Expression.Valid(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) != 0 {
		return errors.Join(errs...)
	}

	return nil
}

type compiledRule struct {
	name    string
	deny    bool
	hash    string
	program cel.Program
}

// Policy is a compiled rule set. A nil *Policy admits every mint request.
type Policy struct {
	rules []compiledRule
}

// Load parses and compiles a rule file. sigs.k8s.io/yaml treats JSON as a
// YAML subset, so both file shapes go through the same path.
func Load(fin io.Reader, fname string) (*Policy, error) {
	data, err := io.ReadAll(fin)
	if err != nil {
		return nil, fmt.Errorf("policy: can't read %s: %w", fname, err)
	}

	var cfg Config
	if strings.HasSuffix(fname, ".yaml") || strings.HasSuffix(fname, ".yml") {
		err = yaml.Unmarshal(data, &cfg)
	} else {
		err = yaml.UnmarshalStrict(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("policy: can't parse %s: %w", fname, err)
	}

	env, err := NewEnvironment()
	if err != nil {
		return nil, err
	}

	result := &Policy{}
	var errs []error

	for _, rc := range cfg.Rules {
		if err := rc.Valid(); err != nil {
			errs = append(errs, fmt.Errorf("rule %q: %w", rc.Name, err))
			continue
		}

		src := rc.Expression.String()
		ast, iss := env.Compile(src)
		if iss != nil && iss.Err() != nil {
			errs = append(errs, fmt.Errorf("%w: rule %q: %w", ErrCantCompileRule, rc.Name, iss.Err()))
			continue
		}

		if ast.OutputType() != cel.BoolType {
			errs = append(errs, fmt.Errorf("%w: rule %q: expression yields %s, not bool", ErrCantCompileRule, rc.Name, ast.OutputType()))
			continue
		}

		program, err := Compile(env, ast)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: rule %q: %w", ErrCantCompileRule, rc.Name, err))
			continue
		}

		result.rules = append(result.rules, compiledRule{
			name:    rc.Name,
			deny:    rc.Action == ActionDeny,
			hash:    internal.FastHash(src),
			program: program,
		})
	}

	if len(errs) != 0 {
		return nil, fmt.Errorf("policy: can't load %s: %w", fname, errors.Join(errs...))
	}

	return result, nil
}

// Check is the mint request metadata rules evaluate over.
type Check struct {
	Requester  sphinx.Identity
	PuzzleType string
	Difficulty uint8
}

func (c *Check) Parent() cel.Activation { return nil }

func (c *Check) ResolveName(name string) (any, bool) {
	switch name {
	case "requester":
		return c.Requester.String(), true
	case "puzzleType":
		return c.PuzzleType, true
	case "difficulty":
		return int64(c.Difficulty), true
	default:
		return nil, false
	}
}

// Evaluate runs the rules against a mint request. It reports whether the
// mint is allowed and, when a rule decided, that rule's name.
func (p *Policy) Evaluate(ctx context.Context, check *Check) (bool, string, error) {
	if p == nil {
		return true, "", nil
	}

	for _, rule := range p.rules {
		result, _, err := rule.program.ContextEval(ctx, check)
		if err != nil {
			return false, rule.name, fmt.Errorf("policy: rule %q (hash %s): %w", rule.name, rule.hash, err)
		}

		matched, ok := result.(types.Bool)
		if !ok {
			continue
		}

		if bool(matched) {
			return !rule.deny, rule.name, nil
		}
	}

	return true, "", nil
}
