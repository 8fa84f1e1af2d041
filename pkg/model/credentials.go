package model

import (
	"github.com/noders-team/go-dbmgmt/pkg/schema"
	"github.com/noders-team/go-dbmgmt/pkg/types"
)

const (
	CredentialTypePassword = "PASSWORD"
	CredentialTypeSecret   = "SECRET"
)

// CredentialRole is the role the database user connects with.
type CredentialRole string

const (
	CredentialRoleNormal           CredentialRole = "NORMAL"
	CredentialRoleSysdba           CredentialRole = "SYSDBA"
	CredentialRoleSysdg            CredentialRole = "SYSDG"
	CredentialRoleUnknownEnumValue CredentialRole = schema.UnknownEnumValue
)

// DatabaseCredentialDetails is implemented by every credential variant. The
// concrete variant is chosen by the credentialType discriminator.
type DatabaseCredentialDetails interface {
	schema.Record
	GetCredentialType() *string
	isDatabaseCredentialDetails()
}

var (
	credentialTypeEnum = schema.NewEnum(CredentialTypePassword, CredentialTypeSecret)
	credentialRoleEnum = schema.NewEnum(string(CredentialRoleNormal), string(CredentialRoleSysdba), string(CredentialRoleSysdg))
)

// BaseDatabaseCredentialDetails is used when the credential type is missing
// or not known to this client.
type BaseDatabaseCredentialDetails struct {
	schema.Presence
	CredentialType *string `json:"credentialType,omitempty"`
}

var BaseDatabaseCredentialDetailsType = schema.MustRecordType("DatabaseCredentialDetails",
	func() schema.Record { return &BaseDatabaseCredentialDetails{} },
	schema.Scalar("credential_type", "credentialType", types.String,
		func(m *BaseDatabaseCredentialDetails) **string { return &m.CredentialType }).WithEnum(credentialTypeEnum),
)

func (*BaseDatabaseCredentialDetails) RecordType() *schema.RecordType {
	return BaseDatabaseCredentialDetailsType
}

func (m *BaseDatabaseCredentialDetails) GetCredentialType() *string {
	return m.CredentialType
}

func (*BaseDatabaseCredentialDetails) isDatabaseCredentialDetails() {}

// PasswordCredentialDetails authenticates with a clear-text password.
type PasswordCredentialDetails struct {
	schema.Presence
	CredentialType *string         `json:"credentialType,omitempty"`
	UserName       *string         `json:"userName,omitempty"`
	Password       *string         `json:"password,omitempty"`
	Role           *CredentialRole `json:"role,omitempty"`
}

var PasswordCredentialDetailsType = schema.MustRecordType("PasswordCredentialDetails",
	func() schema.Record { return &PasswordCredentialDetails{} },
	schema.Scalar("credential_type", "credentialType", types.String,
		func(m *PasswordCredentialDetails) **string { return &m.CredentialType }).WithEnum(credentialTypeEnum),
	schema.Scalar("user_name", "userName", types.String,
		func(m *PasswordCredentialDetails) **string { return &m.UserName }),
	schema.Scalar("password", "password", types.String,
		func(m *PasswordCredentialDetails) **string { return &m.Password }),
	schema.Scalar("role", "role", types.String,
		func(m *PasswordCredentialDetails) **CredentialRole { return &m.Role }).WithEnum(credentialRoleEnum),
)

// NewPasswordCredentialDetails returns an empty password credential with its
// credential type set.
func NewPasswordCredentialDetails() *PasswordCredentialDetails {
	return PasswordCredentialDetailsType.New().(*PasswordCredentialDetails)
}

func (*PasswordCredentialDetails) RecordType() *schema.RecordType {
	return PasswordCredentialDetailsType
}

func (m *PasswordCredentialDetails) GetCredentialType() *string {
	return m.CredentialType
}

func (*PasswordCredentialDetails) isDatabaseCredentialDetails() {}

// SecretCredentialDetails references a password stored in a vault secret.
type SecretCredentialDetails struct {
	schema.Presence
	CredentialType   *string         `json:"credentialType,omitempty"`
	UserName         *string         `json:"userName,omitempty"`
	PasswordSecretID *string         `json:"passwordSecretId,omitempty"`
	Role             *CredentialRole `json:"role,omitempty"`
}

var SecretCredentialDetailsType = schema.MustRecordType("SecretCredentialDetails",
	func() schema.Record { return &SecretCredentialDetails{} },
	schema.Scalar("credential_type", "credentialType", types.String,
		func(m *SecretCredentialDetails) **string { return &m.CredentialType }).WithEnum(credentialTypeEnum),
	schema.Scalar("user_name", "userName", types.String,
		func(m *SecretCredentialDetails) **string { return &m.UserName }),
	schema.Scalar("password_secret_id", "passwordSecretId", types.String,
		func(m *SecretCredentialDetails) **string { return &m.PasswordSecretID }),
	schema.Scalar("role", "role", types.String,
		func(m *SecretCredentialDetails) **CredentialRole { return &m.Role }).WithEnum(credentialRoleEnum),
)

func NewSecretCredentialDetails() *SecretCredentialDetails {
	return SecretCredentialDetailsType.New().(*SecretCredentialDetails)
}

func (*SecretCredentialDetails) RecordType() *schema.RecordType {
	return SecretCredentialDetailsType
}

func (m *SecretCredentialDetails) GetCredentialType() *string {
	return m.CredentialType
}

func (*SecretCredentialDetails) isDatabaseCredentialDetails() {}

// DatabaseCredentialDetailsFamily maps credentialType values to variants.
var DatabaseCredentialDetailsFamily = schema.MustFamily(BaseDatabaseCredentialDetailsType, "credentialType",
	schema.Variant{Tag: CredentialTypePassword, Type: PasswordCredentialDetailsType},
	schema.Variant{Tag: CredentialTypeSecret, Type: SecretCredentialDetailsType},
)
