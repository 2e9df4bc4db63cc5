package repository

import "context"

// RepositoryFactory hands out repository instances bound to one transaction.
type RepositoryFactory interface {
	Users() UserRepository
	Tokens() TokenRepository
}

// TransactionManager runs a function within a single database transaction.
// The registration flow uses it so validation reads and the user insert
// commit or roll back together.
type TransactionManager interface {
	Execute(ctx context.Context, fn func(repoFactory RepositoryFactory) error) error
}
