package openapi

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noders-team/go-dbmgmt/pkg/codec"
	"github.com/noders-team/go-dbmgmt/pkg/schema"
	"github.com/noders-team/go-dbmgmt/pkg/types"
)

const databaseManagementDoc = `
openapi: 3.0.3
info:
  title: Database Management
  version: "20201101"
paths: {}
components:
  schemas:
    LifecycleState:
      type: string
      enum: [CREATING, ACTIVE, INACTIVE]
    DatabaseCredentialDetails:
      type: object
      required: [credentialType]
      discriminator:
        propertyName: credentialType
        mapping:
          PASSWORD: '#/components/schemas/PasswordCredentialDetails'
          SECRET: '#/components/schemas/SecretCredentialDetails'
      properties:
        credentialType:
          type: string
          enum: [PASSWORD, SECRET]
    PasswordCredentialDetails:
      allOf:
        - $ref: '#/components/schemas/DatabaseCredentialDetails'
        - type: object
          properties:
            userName:
              type: string
            password:
              type: string
    SecretCredentialDetails:
      allOf:
        - $ref: '#/components/schemas/DatabaseCredentialDetails'
        - type: object
          properties:
            userName:
              type: string
            passwordSecretId:
              type: string
    ManagedDatabaseMember:
      type: object
      properties:
        id:
          type: string
        port:
          type: integer
    ManagedDatabase:
      type: object
      properties:
        id:
          type: string
        lifecycleState:
          $ref: '#/components/schemas/LifecycleState'
        timeCreated:
          type: string
          format: date-time
        timeLastBackup:
          type: string
          format: date
        storageSizeInGBs:
          type: number
          format: decimal
        usedPercent:
          type: number
        isCluster:
          type: boolean
        tags:
          type: array
          items:
            type: string
        freeformTags:
          type: object
          additionalProperties:
            type: string
        credentials:
          $ref: '#/components/schemas/DatabaseCredentialDetails'
        members:
          type: array
          items:
            $ref: '#/components/schemas/ManagedDatabaseMember'
`

func TestLoad(t *testing.T) {
	registry, err := Load(context.Background(), []byte(databaseManagementDoc))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"DatabaseCredentialDetails",
		"ManagedDatabase",
		"ManagedDatabaseMember",
		"PasswordCredentialDetails",
		"SecretCredentialDetails",
	}, registry.Names())

	db, ok := registry.Lookup("ManagedDatabase")
	require.True(t, ok)

	tests := []struct {
		name     string
		wire     string
		expected types.Type
	}{
		{name: "id", wire: "id", expected: types.String},
		{name: "lifecycle_state", wire: "lifecycleState", expected: types.String},
		{name: "time_created", wire: "timeCreated", expected: types.DateTime},
		{name: "time_last_backup", wire: "timeLastBackup", expected: types.Date},
		{name: "storage_size_in_gbs", wire: "storageSizeInGBs", expected: types.Decimal},
		{name: "used_percent", wire: "usedPercent", expected: types.Float},
		{name: "is_cluster", wire: "isCluster", expected: types.Boolean},
		{name: "tags", wire: "tags", expected: types.ListOf(types.String)},
		{name: "freeform_tags", wire: "freeformTags", expected: types.MapOf(types.String)},
		{name: "credentials", wire: "credentials", expected: types.RecordOf("DatabaseCredentialDetails")},
		{name: "members", wire: "members", expected: types.ListOf(types.RecordOf("ManagedDatabaseMember"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire, ok := db.WireNameOf(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.wire, wire)

			typ, _ := db.DeclaredTypeOf(tt.name)
			assert.True(t, tt.expected.Equal(typ), "declared %s, expected %s", typ, tt.expected)
		})
	}

	f, ok := db.Field("lifecycle_state")
	require.True(t, ok)
	require.NotNil(t, f.Enum)
	assert.Equal(t, []string{"CREATING", "ACTIVE", "INACTIVE"}, f.Enum.Values)
}

func TestLoad_Family(t *testing.T) {
	registry, err := Load(context.Background(), []byte(databaseManagementDoc))
	require.NoError(t, err)

	base, _ := registry.Lookup("DatabaseCredentialDetails")
	password, _ := registry.Lookup("PasswordCredentialDetails")
	require.True(t, base.IsPolymorphicBase())
	assert.Equal(t, []string{"PASSWORD", "SECRET"}, base.Family().Tags())
	assert.Equal(t, "PASSWORD", password.Tag())

	var wires []string
	for _, f := range password.Fields() {
		wires = append(wires, f.Wire)
	}
	assert.Equal(t, []string{"credentialType", "password", "userName"}, wires)
}

func TestLoad_Decode(t *testing.T) {
	registry, err := Load(context.Background(), []byte(databaseManagementDoc))
	require.NoError(t, err)
	rt, _ := registry.Lookup("ManagedDatabase")

	c := codec.New(registry)
	r, err := c.Decode(rt, map[string]any{
		"id":             "db1",
		"lifecycleState": "MIGRATING",
		"credentials":    map[string]any{"credentialType": "SECRET", "passwordSecretId": "s1"},
		"members":        []any{map[string]any{"id": "m1", "port": "1521"}},
	})
	require.NoError(t, err)

	d := r.(*schema.Dynamic)
	state, _ := d.Get("lifecycle_state")
	assert.Equal(t, schema.UnknownEnumValue, state)

	cred, _ := d.Get("credentials")
	require.IsType(t, &schema.Dynamic{}, cred)
	assert.Equal(t, "SecretCredentialDetails", cred.(*schema.Dynamic).RecordType().Name())

	members, _ := d.Get("members")
	require.Len(t, members, 1)
	port, _ := members.([]any)[0].(*schema.Dynamic).Get("port")
	assert.Equal(t, int64(1521), port)
}

func TestLoad_DefaultTagAndImplicitDiscriminator(t *testing.T) {
	doc := `
openapi: 3.0.3
info: {title: t, version: "1"}
paths: {}
components:
  schemas:
    Credential:
      type: object
      discriminator:
        propertyName: kind
      properties:
        userName: {type: string}
    Wallet:
      allOf:
        - $ref: '#/components/schemas/Credential'
        - type: object
          properties:
            walletId: {type: string}
`
	registry, err := Load(context.Background(), []byte(doc))
	require.NoError(t, err)

	base, _ := registry.Lookup("Credential")
	_, ok := base.FieldByWire("kind")
	assert.True(t, ok)
	assert.Equal(t, []string{"Wallet"}, base.Family().Tags())
}

func TestLoad_MappingTargets(t *testing.T) {
	doc := `
openapi: 3.0.3
info: {title: t, version: "1"}
paths: {}
components:
  schemas:
    Credential:
      type: object
      discriminator:
        propertyName: kind
        mapping:
          VAULT: Vault
          WALLET: '#/components/schemas/Wallet'
      properties:
        kind: {type: string}
    Vault:
      allOf:
        - $ref: '#/components/schemas/Credential'
        - type: object
          properties:
            secretId: {type: string}
    Wallet:
      allOf:
        - $ref: '#/components/schemas/Credential'
        - type: object
          properties:
            walletId: {type: string}
`
	registry, err := Load(context.Background(), []byte(doc))
	require.NoError(t, err)

	base, _ := registry.Lookup("Credential")
	assert.Equal(t, []string{"VAULT", "WALLET"}, base.Family().Tags())

	vault, ok := base.Family().Lookup("VAULT")
	require.True(t, ok)
	assert.Equal(t, "Vault", vault.Name())
}

func TestLoadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/specs/dbmgmt.yaml", []byte(databaseManagementDoc), 0o644))

	registry, err := LoadFile(context.Background(), fs, "/specs/dbmgmt.yaml")
	require.NoError(t, err)
	assert.Equal(t, 5, registry.Len())

	_, err = LoadFile(context.Background(), fs, "/specs/missing.yaml")
	assert.Error(t, err)
}

func TestLoad_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Load(ctx, nil)
	assert.EqualError(t, err, "openapi: document payload is empty")

	_, err = Load(ctx, []byte("openapi: 3.0.3\ninfo: {title: t, version: '1'}\npaths: {}\n"))
	assert.EqualError(t, err, "openapi: document has no component schemas")

	_, err = Load(ctx, []byte("{not yaml"))
	assert.ErrorContains(t, err, "openapi: load document")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Load(cancelled, []byte(databaseManagementDoc))
	assert.ErrorIs(t, err, context.Canceled)
}
