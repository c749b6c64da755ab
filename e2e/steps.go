//go:build e2e

package e2e

import (
	"github.com/cucumber/godog"

	"personpatch/e2e/steps/people"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	people.RegisterSteps(ctx, tc)
}
