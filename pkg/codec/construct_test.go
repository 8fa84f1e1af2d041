package codec

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noders-team/go-dbmgmt/pkg/model"
	"github.com/noders-team/go-dbmgmt/pkg/testutil"
)

func TestCodec_Construct_Keys(t *testing.T) {
	c := New(model.Registry)

	tests := []struct {
		name  string
		props map[string]any
	}{
		{name: "wire names", props: map[string]any{"hostName": "db1", "port": 1521}},
		{name: "canonical names", props: map[string]any{"host_name": "db1", "port": 1521}},
		{name: "mixed", props: map[string]any{"host_name": "db1", "port": "1521"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := c.Construct(model.ConnectionStringType, tt.props)
			require.NoError(t, err)

			cs := r.(*model.ConnectionString)
			assert.Equal(t, "db1", *cs.HostName)
			assert.Equal(t, 1521, *cs.Port)
			assert.Nil(t, cs.Service)
			assert.False(t, cs.IsAssigned("service"))
		})
	}
}

func TestCodec_Construct_DualKey(t *testing.T) {
	c := New(model.Registry)

	tests := []struct {
		name  string
		props map[string]any
		field string
	}{
		{name: "same value", props: map[string]any{"host_name": "db1", "hostName": "db1"}, field: "host_name"},
		{name: "different values", props: map[string]any{"host_name": "db1", "hostName": "db2"}, field: "host_name"},
		{name: "null under one key", props: map[string]any{"host_name": nil, "hostName": "db2"}, field: "host_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := c.Construct(model.ConnectionStringType, tt.props)
			require.Error(t, err)
			assert.Nil(t, r)
			assert.True(t, errors.Is(err, ErrAmbiguousField))

			var dualErr *DualKeyError
			require.True(t, errors.As(err, &dualErr))
			assert.Equal(t, tt.field, dualErr.Field)
			assert.Equal(t, "hostName", dualErr.Wire)
			assert.Equal(t, "record type ConnectionString: cannot specify both host_name and hostName", err.Error())
		})
	}

	// name and wire coincide for port, so the key is not ambiguous.
	r, err := c.Construct(model.ConnectionStringType, map[string]any{"port": 1})
	require.NoError(t, err)
	assert.Equal(t, 1, *r.(*model.ConnectionString).Port)
}

func TestCodec_Construct_ExplicitNull(t *testing.T) {
	c := New(model.Registry)

	r, err := c.Construct(model.ConnectionStringType, map[string]any{"hostName": "db1", "service": nil})
	require.NoError(t, err)

	cs := r.(*model.ConnectionString)
	assert.Nil(t, cs.Service)
	assert.True(t, cs.IsAssigned("service"))

	s, err := c.ToStructure(cs)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"hostName": "db1", "service": nil}, s)
}

func TestCodec_Construct_Variant(t *testing.T) {
	c := New(model.Registry)

	r, err := c.Construct(model.PasswordCredentialDetailsType, map[string]any{"user_name": "dbsnmp", "role": "SYSDG"})
	require.NoError(t, err)
	p := r.(*model.PasswordCredentialDetails)
	assert.Equal(t, model.CredentialTypePassword, *p.CredentialType)
	assert.Equal(t, model.CredentialRoleSysdg, *p.Role)

	// The discriminator always follows the constructed type.
	r, err = c.Construct(model.PasswordCredentialDetailsType, map[string]any{"credentialType": "SECRET"})
	require.NoError(t, err)
	assert.Equal(t, model.CredentialTypePassword, *r.(*model.PasswordCredentialDetails).CredentialType)

	_, err = c.Construct(model.PasswordCredentialDetailsType, map[string]any{"credential_type": "PASSWORD"})
	assert.ErrorIs(t, err, ErrAmbiguousField)

	props := map[string]any{"userName": "sys"}
	_, err = c.Construct(model.SecretCredentialDetailsType, props)
	require.NoError(t, err)
	assert.NotContains(t, props, "credentialType")
}

func TestCodec_Construct_EnumAndUnknownKeys(t *testing.T) {
	logger, logs := testutil.NewLogger()
	c := New(model.Registry, WithLogger(logger))

	r, err := c.Construct(model.PasswordCredentialDetailsType, map[string]any{"role": "ROOT", "sid": "orcl"})
	require.NoError(t, err)
	assert.Equal(t, model.CredentialRoleUnknownEnumValue, *r.(*model.PasswordCredentialDetails).Role)

	unknown := logs.Find(zerolog.DebugLevel, "ignoring unknown attribute")
	require.Len(t, unknown, 1)
	assert.Equal(t, "sid", unknown[0]["key"])
}

func TestCodec_Construct_Nested(t *testing.T) {
	c := New(model.Registry)

	r, err := c.Construct(model.ManagedDatabaseType, map[string]any{
		"name":              "orcl",
		"connection_string": testutil.ConnectionStringProps(),
		"credentials":       model.NewSecretCredentialDetails(),
		"members":           []any{map[string]any{"id": "m1"}, nil},
	})
	require.NoError(t, err)

	db := r.(*model.ManagedDatabase)
	assert.Equal(t, "db1.example.com", *db.ConnectionString.HostName)
	assert.IsType(t, &model.SecretCredentialDetails{}, db.Credentials)
	require.Len(t, db.Members, 2)
	assert.Equal(t, "m1", *db.Members[0].ID)
	assert.Nil(t, db.Members[1])

	_, err = c.Construct(model.ManagedDatabaseType, map[string]any{"credentials": &model.ConnectionString{}})
	assert.Error(t, err)
}

func TestCodec_Assign(t *testing.T) {
	c := New(model.Registry)
	db := &model.ManagedDatabase{}

	require.NoError(t, c.Assign(db, "storage_size_in_gbs", "10.50"))
	require.NoError(t, c.Assign(db, "isCluster", "true"))
	require.NoError(t, c.Assign(db, "lifecycle_state", "MIGRATING"))

	assert.Equal(t, "10.5", db.StorageSizeInGBs.String())
	assert.True(t, *db.IsCluster)
	assert.Equal(t, model.LifecycleState("UNKNOWN_ENUM_VALUE"), *db.LifecycleState)

	err := c.Assign(db, "size", 1)
	assert.EqualError(t, err, "record type ManagedDatabase has no field size")
}
