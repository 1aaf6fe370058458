package prompts

import (
	_ "embed"
)

//go:embed decision.txt
var DecisionTemplate string

//go:embed recovery.txt
var RecoveryTemplate string
