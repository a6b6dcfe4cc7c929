package policy

import (
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"
)

// NewEnvironment builds the CEL scope mint rules are compiled in. Keeping
// the variable set explicit means a bad rule fails at load time instead of
// at mint time.
func NewEnvironment() (*cel.Env, error) {
	return cel.NewEnv(
		ext.Strings(
			ext.StringsLocale("en_US"),
			ext.StringsValidateFormatCalls(true),
		),

		cel.DefaultUTCTimeZone(true),

		// Mint request metadata
		cel.Variable("requester", cel.StringType),
		cel.Variable("puzzleType", cel.StringType),
		cel.Variable("difficulty", cel.IntType),
	)
}

// Compile turns a checked syntax tree into an optimized Program.
func Compile(env *cel.Env, ast *cel.Ast) (cel.Program, error) {
	return env.Program(
		ast,
		cel.EvalOptions(
			// optimize regular expressions now instead of per evaluation
			cel.OptOptimize,
		),
	)
}
