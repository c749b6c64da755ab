package people

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
)

const mergePatchContentType = "application/merge-patch+json"

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string) error
	POST(path string, body string) error
	PATCH(path, contentType, body string) error
	Status() int
	Header(key string) string
	Body() string
	ResponseJSON() (any, error)
	RememberPerson(alias, personID string)
	PersonID(alias string) (string, error)
	EventCount() int
}

// RegisterSteps registers people-related step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &peopleSteps{tc: tc}

	// Setup steps
	ctx.Step(`^a person "([^"]*)" exists with contact email "([^"]*)"$`, steps.personExistsWithEmail)
	ctx.Step(`^I create a person with:$`, steps.createPerson)
	ctx.Step(`^I remember the created person as "([^"]*)"$`, steps.rememberCreatedPerson)

	// Request steps
	ctx.Step(`^I list all people$`, steps.listPeople)
	ctx.Step(`^I fetch person "([^"]*)"$`, steps.fetchPerson)
	ctx.Step(`^I fetch the person with id "([^"]*)"$`, steps.fetchPersonByRawID)
	ctx.Step(`^I merge-patch person "([^"]*)" with:$`, steps.mergePatchPerson)
	ctx.Step(`^I merge-patch the person with id "([^"]*)" with:$`, steps.mergePatchRawID)
	ctx.Step(`^I patch person "([^"]*)" with content type "([^"]*)" and body:$`, steps.patchWithContentType)

	// Assertion steps
	ctx.Step(`^the response status should be (\d+)$`, steps.statusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, steps.fieldShouldBe)
	ctx.Step(`^the response should not contain "([^"]*)"$`, steps.responseShouldNotContain)
	ctx.Step(`^the error code should be "([^"]*)"$`, steps.errorCodeShouldBe)
	ctx.Step(`^the violations should include "([^"]*)"$`, steps.violationsShouldInclude)
	ctx.Step(`^the response should list (\d+) (?:person|people)$`, steps.responseShouldList)
	ctx.Step(`^(\d+) change events? should have been recorded$`, steps.changeEventsRecorded)
}

type peopleSteps struct {
	tc TestContext
}

func (s *peopleSteps) personExistsWithEmail(ctx context.Context, alias, email string) error {
	body := fmt.Sprintf(`{"contact":{"email":%q}}`, email)
	if err := s.createPerson(ctx, &godog.DocString{Content: body}); err != nil {
		return err
	}
	if err := s.statusShouldBe(ctx, 201); err != nil {
		return err
	}
	return s.rememberCreatedPerson(ctx, alias)
}

func (s *peopleSteps) createPerson(ctx context.Context, doc *godog.DocString) error {
	return s.tc.POST("/people", doc.Content)
}

func (s *peopleSteps) rememberCreatedPerson(ctx context.Context, alias string) error {
	personID := strings.TrimSpace(s.tc.Body())
	if personID == "" {
		return fmt.Errorf("create response carried no id")
	}
	if loc := s.tc.Header("Location"); loc != "/people/"+personID {
		return fmt.Errorf("expected Location /people/%s, got %q", personID, loc)
	}
	s.tc.RememberPerson(alias, personID)
	return nil
}

func (s *peopleSteps) listPeople(ctx context.Context) error {
	return s.tc.GET("/people")
}

func (s *peopleSteps) fetchPerson(ctx context.Context, alias string) error {
	personID, err := s.tc.PersonID(alias)
	if err != nil {
		return err
	}
	return s.tc.GET("/people/" + personID)
}

func (s *peopleSteps) fetchPersonByRawID(ctx context.Context, personID string) error {
	return s.tc.GET("/people/" + personID)
}

func (s *peopleSteps) mergePatchPerson(ctx context.Context, alias string, doc *godog.DocString) error {
	personID, err := s.tc.PersonID(alias)
	if err != nil {
		return err
	}
	return s.tc.PATCH("/people/"+personID, mergePatchContentType, doc.Content)
}

func (s *peopleSteps) mergePatchRawID(ctx context.Context, personID string, doc *godog.DocString) error {
	return s.tc.PATCH("/people/"+personID, mergePatchContentType, doc.Content)
}

func (s *peopleSteps) patchWithContentType(ctx context.Context, alias, contentType string, doc *godog.DocString) error {
	personID, err := s.tc.PersonID(alias)
	if err != nil {
		return err
	}
	return s.tc.PATCH("/people/"+personID, contentType, doc.Content)
}

func (s *peopleSteps) statusShouldBe(ctx context.Context, expected int) error {
	if got := s.tc.Status(); got != expected {
		return fmt.Errorf("expected status %d, got %d (body: %s)", expected, got, s.tc.Body())
	}
	return nil
}

func (s *peopleSteps) fieldShouldBe(ctx context.Context, path, expected string) error {
	value, err := s.lookup(path)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(value); got != expected {
		return fmt.Errorf("expected %s to be %q, got %q", path, expected, got)
	}
	return nil
}

func (s *peopleSteps) responseShouldNotContain(ctx context.Context, path string) error {
	if _, err := s.lookup(path); err == nil {
		return fmt.Errorf("expected %s to be absent (body: %s)", path, s.tc.Body())
	}
	return nil
}

func (s *peopleSteps) errorCodeShouldBe(ctx context.Context, code string) error {
	return s.fieldShouldBe(ctx, "error", code)
}

func (s *peopleSteps) violationsShouldInclude(ctx context.Context, field string) error {
	value, err := s.lookup("violations")
	if err != nil {
		return err
	}
	violations, ok := value.([]any)
	if !ok {
		return fmt.Errorf("violations is not a list: %v", value)
	}
	for _, v := range violations {
		if entry, ok := v.(map[string]any); ok && entry["field"] == field {
			return nil
		}
	}
	return fmt.Errorf("no violation for %q in %s", field, s.tc.Body())
}

func (s *peopleSteps) responseShouldList(ctx context.Context, count int) error {
	doc, err := s.tc.ResponseJSON()
	if err != nil {
		return err
	}
	items, ok := doc.([]any)
	if !ok {
		return fmt.Errorf("expected a JSON array, got %s", s.tc.Body())
	}
	if len(items) != count {
		return fmt.Errorf("expected %d people, got %d", count, len(items))
	}
	return nil
}

func (s *peopleSteps) changeEventsRecorded(ctx context.Context, count int) error {
	got := s.tc.EventCount()
	if got < 0 {
		// Events are not observable against an external server.
		return nil
	}
	if got != count {
		return fmt.Errorf("expected %d change events, got %d", count, got)
	}
	return nil
}

// lookup walks a dotted path such as "contact.email" or "violations.0.field"
// through the last JSON response.
func (s *peopleSteps) lookup(path string) (any, error) {
	current, err := s.tc.ResponseJSON()
	if err != nil {
		return nil, err
	}
	for _, part := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("field %q not found in %s", path, s.tc.Body())
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, fmt.Errorf("index %q out of range in %s", part, path)
			}
			current = node[idx]
		default:
			return nil, fmt.Errorf("field %q not found in %s", path, s.tc.Body())
		}
	}
	return current, nil
}
