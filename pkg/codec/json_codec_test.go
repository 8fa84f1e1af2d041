package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/noders-team/go-dbmgmt/pkg/model"
	"github.com/noders-team/go-dbmgmt/pkg/testutil"
)

func TestCodec_Marshal(t *testing.T) {
	c := New(model.Registry)

	tests := []struct {
		name     string
		input    func() *model.ManagedDatabase
		expected string
	}{
		{
			name: "scalars",
			input: func() *model.ManagedDatabase {
				return &model.ManagedDatabase{Name: model.Ptr("orcl"), IsCluster: model.Ptr(false)}
			},
			expected: `{"name":"orcl","isCluster":false}`,
		},
		{
			name: "nested record and enum",
			input: func() *model.ManagedDatabase {
				return &model.ManagedDatabase{
					LifecycleState:   model.Ptr(model.LifecycleStateActive),
					ConnectionString: &model.ConnectionString{HostName: model.Ptr("db1"), Port: model.Ptr(1521)},
				}
			},
			expected: `{"lifecycleState":"ACTIVE","connectionString":{"hostName":"db1","port":1521}}`,
		},
		{
			name: "decimal as string",
			input: func() *model.ManagedDatabase {
				r, err := c.Construct(model.ManagedDatabaseType, map[string]any{"storage_size_in_gbs": 12.5})
				require.NoError(t, err)
				return r.(*model.ManagedDatabase)
			},
			expected: `{"storageSizeInGBs":"12.5"}`,
		},
		{
			name: "polymorphic field",
			input: func() *model.ManagedDatabase {
				cred := model.NewSecretCredentialDetails()
				cred.PasswordSecretID = model.Ptr("secret-1")
				return &model.ManagedDatabase{Credentials: cred}
			},
			expected: `{"credentials":{"credentialType":"SECRET","passwordSecretId":"secret-1"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := c.Marshal(tt.input())
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}

func TestCodec_MarshalUnmarshal_RoundTrip(t *testing.T) {
	c := New(model.Registry)
	db := hydrateDatabase(t, c, testutil.ManagedDatabaseProps())

	data, err := c.Marshal(db)
	require.NoError(t, err)

	r, err := c.Unmarshal(data, model.ManagedDatabaseType)
	require.NoError(t, err)
	assert.True(t, Equal(db, r), "unmarshaled: %s", testutil.Dump(r))
}

func TestCodec_Unmarshal(t *testing.T) {
	c := New(model.Registry)

	r, err := c.Unmarshal([]byte(`{"credentialType":"SECRET","userName":"sys","role":"SYSDG"}`),
		model.BaseDatabaseCredentialDetailsType)
	require.NoError(t, err)
	secret, ok := r.(*model.SecretCredentialDetails)
	require.True(t, ok, "got %T", r)
	assert.Equal(t, model.CredentialRoleSysdg, *secret.Role)

	r, err = c.Unmarshal([]byte(`{"port":9223372036854775807}`), model.ConnectionStringType)
	require.NoError(t, err)
	assert.Equal(t, 9223372036854775807, *r.(*model.ConnectionString).Port)

	_, err = c.Unmarshal([]byte(`[1, 2]`), model.ConnectionStringType)
	assert.ErrorContains(t, err, "expected a JSON object")

	_, err = c.Unmarshal([]byte(`{"port":`), model.ConnectionStringType)
	assert.ErrorContains(t, err, "failed to unmarshal JSON")
}

func TestCodec_Proto_RoundTrip(t *testing.T) {
	c := New(model.Registry)
	db := hydrateDatabase(t, c, testutil.ManagedDatabaseProps())

	s, err := c.ToProto(db)
	require.NoError(t, err)
	assert.Equal(t, "orcl", s.GetFields()["name"].GetStringValue())
	assert.Equal(t, "512.25", s.GetFields()["storageSizeInGBs"].GetStringValue())
	assert.Equal(t, "2024-03-01T10:15:30.123Z", s.GetFields()["timeCreated"].GetStringValue())
	assert.Equal(t, float64(1521),
		s.GetFields()["connectionString"].GetStructValue().GetFields()["port"].GetNumberValue())

	r, err := c.FromProto(s, model.ManagedDatabaseType)
	require.NoError(t, err)
	assert.True(t, Equal(db, r), "from proto: %s", testutil.Dump(r))

	r, err = c.FromProto((*structpb.Struct)(nil), model.ManagedDatabaseType)
	require.NoError(t, err)
	assert.Nil(t, r)
}
