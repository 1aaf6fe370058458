package output

import "webagent/internal/domain/entity"

// CredentialPort resolves an opaque handle into credentials at execution
// time. The core never stores or logs the resolved values.
type CredentialPort interface {
	Resolve(handle string) (*entity.Credentials, error)
}
