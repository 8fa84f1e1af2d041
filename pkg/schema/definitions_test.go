package schema

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const credentialDefinitions = `
types:
  - name: DatabaseCredentialDetails
    discriminator: credentialType
    fields:
      - name: credential_type
        enum: [PASSWORD, SECRET]
      - name: user_name
      - name: role
        enum: [NORMAL, SYSDBA, SYSDG]
  - name: PasswordCredentialDetails
    extends: DatabaseCredentialDetails
    tag: PASSWORD
    fields:
      - name: password
  - name: SecretCredentialDetails
    extends: DatabaseCredentialDetails
    tag: SECRET
    fields:
      - wire: passwordSecretId
  - name: Connection
    fields:
      - name: host_name
      - name: port
        type: integer
      - name: credentials
        type: DatabaseCredentialDetails
      - name: aliases
        type: list[str]
`

func TestParseDefinitions(t *testing.T) {
	reg, err := ParseDefinitions([]byte(credentialDefinitions))
	require.NoError(t, err)
	assert.Equal(t, 4, reg.Len())

	base, ok := reg.Lookup("DatabaseCredentialDetails")
	require.True(t, ok)
	require.True(t, base.IsPolymorphicBase())
	assert.Equal(t, "credentialType", base.Family().Discriminator())
	assert.Equal(t, []string{"PASSWORD", "SECRET"}, base.Family().Tags())

	secret, ok := reg.Lookup("SecretCredentialDetails")
	require.True(t, ok)
	assert.Equal(t, "SECRET", secret.Tag())
	f, ok := secret.FieldByWire("passwordSecretId")
	require.True(t, ok)
	assert.Equal(t, "password_secret_id", f.Name)

	role, ok := secret.Field("role")
	require.True(t, ok, "variants inherit base fields")
	require.NotNil(t, role.Enum)
	assert.Equal(t, []string{"NORMAL", "SYSDBA", "SYSDG"}, role.Enum.Values)
	assert.Equal(t, UnknownEnumValue, role.Enum.Fallback)

	conn, ok := reg.Lookup("Connection")
	require.True(t, ok)
	wire, _ := conn.WireNameOf("host_name")
	assert.Equal(t, "hostName", wire)
	typ, _ := conn.DeclaredTypeOf("credentials")
	assert.Equal(t, "DatabaseCredentialDetails", typ.String())
	typ, _ = conn.DeclaredTypeOf("aliases")
	assert.Equal(t, "list[string]", typ.String())
}

func TestParseDefinitions_DefaultTagAndDiscriminatorField(t *testing.T) {
	reg, err := ParseDefinitions([]byte(`
types:
  - name: Shape
    discriminator: kind
  - name: Circle
    extends: Shape
    fields:
      - name: radius
        type: float
        fallback: ignored-without-enum
`))
	require.NoError(t, err)

	shape, _ := reg.Lookup("Shape")
	f, ok := shape.FieldByWire("kind")
	require.True(t, ok)
	assert.Equal(t, "kind", f.Name)

	circle, ok := shape.Family().Lookup("Circle")
	require.True(t, ok)
	rec := circle.New().(*Dynamic)
	v, _ := rec.Get("kind")
	assert.Equal(t, "Circle", v)
}

func TestParseDefinitions_JSON(t *testing.T) {
	reg, err := ParseDefinitions([]byte(`{"types": [{"name": "Tag", "fields": [{"name": "key"}, {"name": "value"}]}]}`))
	require.NoError(t, err)
	rt, ok := reg.Lookup("Tag")
	require.True(t, ok)
	assert.Equal(t, 2, rt.NumFields())
}

func TestParseDefinitions_Errors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{name: "not yaml", input: "types: [", errMsg: "failed to parse definitions"},
		{name: "unknown key", input: "types:\n  - name: A\n    colour: red\n", errMsg: "failed to decode definitions"},
		{name: "unnamed", input: "types:\n  - fields: []\n", errMsg: "has no name"},
		{name: "duplicate", input: "types:\n  - name: A\n  - name: A\n", errMsg: "duplicate definition A"},
		{name: "unknown base", input: "types:\n  - name: A\n    extends: B\n", errMsg: "extends unknown type B"},
		{name: "cycle", input: "types:\n  - name: A\n    extends: B\n  - name: B\n    extends: A\n", errMsg: "extends itself"},
		{name: "bad type", input: "types:\n  - name: A\n    fields:\n      - name: x\n        type: dict(int, str)\n", errMsg: "field x"},
		{name: "unknown nested type", input: "types:\n  - name: A\n    fields:\n      - name: x\n        type: B\n", errMsg: "unknown record type B"},
		{name: "tag without discriminator", input: "types:\n  - name: A\n  - name: B\n    extends: A\n    tag: X\n", errMsg: "declares no discriminator"},
		{name: "field without names", input: "types:\n  - name: A\n    fields:\n      - type: str\n", errMsg: "needs a name or a wire name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDefinitions([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadDefinitions(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/dbmgmt/models.yaml", []byte(credentialDefinitions), 0o644))

	reg, err := LoadDefinitions(fs, "/etc/dbmgmt/models.yaml")
	require.NoError(t, err)
	_, ok := reg.Lookup("PasswordCredentialDetails")
	assert.True(t, ok)

	_, err = LoadDefinitions(fs, "/missing.yaml")
	require.ErrorContains(t, err, "failed to read definitions")
}
