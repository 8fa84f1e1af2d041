package model

import "github.com/noders-team/go-dbmgmt/pkg/schema"

// Registry holds every record type declared in this package.
var Registry = schema.MustRegistry(
	DatabaseCredentialDetailsFamily.Base(),
	PasswordCredentialDetailsType,
	SecretCredentialDetailsType,
	ConnectionStringType,
	ManagedDatabaseMemberType,
	ManagedDatabaseType,
)

// Ptr returns a pointer to v, for filling optional fields.
func Ptr[T any](v T) *T {
	return &v
}
