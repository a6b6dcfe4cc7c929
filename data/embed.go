// Package data embeds the default mint rule set sphinxd falls back to
// when the operator does not configure one.
package data

import "embed"

var (
	//go:embed mint_rules.yaml
	MintRules embed.FS
)

// MintRulesFname is the path of the default rule file inside MintRules.
const MintRulesFname = "mint_rules.yaml"
