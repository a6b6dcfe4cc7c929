package policy

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExpressionMustBeStringOrObject = errors.New("policy: expression must be a string or an object")
	ErrExpressionEmpty                = errors.New("policy: expression is empty")
	ErrExpressionCantHaveBoth         = errors.New("policy: expression block can't mix all and any")
)

// Expression is either a single CEL expression or an all/any list of
// them, matching how rule files are written by hand.
type Expression struct {
	Single string   `json:"-"`
	All    []string `json:"all,omitempty"`
	Any    []string `json:"any,omitempty"`
}

func (e Expression) String() string {
	switch {
	case e.Single != "":
		return e.Single
	case len(e.All) != 0:
		return joinPredicates(e.All, " && ")
	case len(e.Any) != 0:
		return joinPredicates(e.Any, " || ")
	}
	return ""
}

func joinPredicates(preds []string, op string) string {
	var sb strings.Builder
	for i, pred := range preds {
		if i != 0 {
			sb.WriteString(op)
		}
		fmt.Fprintf(&sb, "( %s )", pred)
	}
	return sb.String()
}

func (e *Expression) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return ErrExpressionMustBeStringOrObject
	}

	switch data[0] {
	case '"':
		return json.Unmarshal(data, &e.Single)
	case '{':
		type rawExpression Expression
		var val rawExpression
		if err := json.Unmarshal(data, &val); err != nil {
			return err
		}
		e.All = val.All
		e.Any = val.Any
		return nil
	}

	return ErrExpressionMustBeStringOrObject
}

func (e *Expression) Valid() error {
	if e.Single == "" && len(e.All) == 0 && len(e.Any) == 0 {
		return ErrExpressionEmpty
	}
	if len(e.All) != 0 && len(e.Any) != 0 {
		return ErrExpressionCantHaveBoth
	}
	return nil
}
