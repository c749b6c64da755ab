// Package merge applies JSON merge patches to stored people.
//
// The stored Person is rendered as the request that would have created it,
// the patch is merged into that document, and the result goes through the
// same validation as a creation request before it becomes a Person again.
// Nothing here performs I/O, and the input Person is never modified.
package merge

import (
	"context"

	"personpatch/internal/person/models"
	id "personpatch/pkg/domain"
	dErrors "personpatch/pkg/domain-errors"
	"personpatch/pkg/mergepatch"
	"personpatch/pkg/requestcontext"
)

// Apply merges patch into person and returns the validated result, keeping
// person's ID.
//
// Errors:
//   - CodeMalformedPatch when the merged document no longer fits PersonRequest
//   - CodeValidation, wrapping validation.Errors, when the merged request breaks a rule
func Apply(ctx context.Context, person *models.Person, patch mergepatch.Node) (*models.Person, error) {
	target, err := mergepatch.FromValue(models.ToRequest(person))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render person as merge target")
	}

	patched := mergepatch.Apply(target, patch)
	if !patched.IsObject() {
		return nil, dErrors.New(dErrors.CodeMalformedPatch, "patched document must be a JSON object")
	}

	var req models.PersonRequest
	if err := mergepatch.Decode(patched, &req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeMalformedPatch, "patched document does not match the person shape")
	}

	today := id.TodayUTC(requestcontext.Now(ctx))
	if err := req.Validate(today); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "patched person is invalid")
	}

	return models.ToDomain(person.ID, &req), nil
}
