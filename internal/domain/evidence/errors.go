package evidence

import "errors"

var (
	ErrMissingTenantColumn = errors.New("tenant id column not found in frame")
	ErrMissingIDColumn     = errors.New("id column not found in frame")
	ErrInvalidEvidenceType = errors.New("invalid evidence type")
	ErrEphemeralDatabase   = errors.New("ephemeral database requires a file path outside an interactive session")

	ErrDuplicateQueryID = errors.New("search query id already recorded")
)
