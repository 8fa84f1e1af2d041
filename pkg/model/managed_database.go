package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noders-team/go-dbmgmt/pkg/schema"
	"github.com/noders-team/go-dbmgmt/pkg/types"
)

type DatabaseType string

const (
	DatabaseTypeExternalSidb DatabaseType = "EXTERNAL_SIDB"
	DatabaseTypeExternalRac  DatabaseType = "EXTERNAL_RAC"
	DatabaseTypeCloudSidb    DatabaseType = "CLOUD_SIDB"
	DatabaseTypeCloudRac     DatabaseType = "CLOUD_RAC"
	DatabaseTypeShared       DatabaseType = "SHARED"
	DatabaseTypeDedicated    DatabaseType = "DEDICATED"
)

type DeploymentType string

const (
	DeploymentTypeOnpremise  DeploymentType = "ONPREMISE"
	DeploymentTypeBm         DeploymentType = "BM"
	DeploymentTypeVm         DeploymentType = "VM"
	DeploymentTypeExadata    DeploymentType = "EXADATA"
	DeploymentTypeExadataCc  DeploymentType = "EXADATA_CC"
	DeploymentTypeAutonomous DeploymentType = "AUTONOMOUS"
)

type LifecycleState string

const (
	LifecycleStateCreating LifecycleState = "CREATING"
	LifecycleStateActive   LifecycleState = "ACTIVE"
	LifecycleStateInactive LifecycleState = "INACTIVE"
	LifecycleStateDeleting LifecycleState = "DELETING"
	LifecycleStateDeleted  LifecycleState = "DELETED"
	LifecycleStateFailed   LifecycleState = "FAILED"
)

type ConnectionProtocol string

const (
	ConnectionProtocolTCP  ConnectionProtocol = "TCP"
	ConnectionProtocolTCPS ConnectionProtocol = "TCPS"
)

type InstanceRole string

const (
	InstanceRolePrimary         InstanceRole = "PRIMARY"
	InstanceRoleStandby         InstanceRole = "STANDBY"
	InstanceRoleSnapshotStandby InstanceRole = "SNAPSHOT_STANDBY"
)

// ConnectionString describes how to reach a database listener.
type ConnectionString struct {
	schema.Presence
	HostName *string             `json:"hostName,omitempty"`
	Port     *int                `json:"port,omitempty"`
	Service  *string             `json:"service,omitempty"`
	Protocol *ConnectionProtocol `json:"protocol,omitempty"`
}

var ConnectionStringType = schema.MustRecordType("ConnectionString",
	func() schema.Record { return &ConnectionString{} },
	schema.Scalar("host_name", "hostName", types.String,
		func(m *ConnectionString) **string { return &m.HostName }),
	schema.Scalar("port", "port", types.Integer,
		func(m *ConnectionString) **int { return &m.Port }),
	schema.Scalar("service", "service", types.String,
		func(m *ConnectionString) **string { return &m.Service }),
	schema.Scalar("protocol", "protocol", types.String,
		func(m *ConnectionString) **ConnectionProtocol { return &m.Protocol }).
		WithEnum(schema.NewEnum(string(ConnectionProtocolTCP), string(ConnectionProtocolTCPS))),
)

func (*ConnectionString) RecordType() *schema.RecordType {
	return ConnectionStringType
}

// ManagedDatabaseMember is one instance of a clustered or replicated database.
type ManagedDatabaseMember struct {
	schema.Presence
	ID   *string       `json:"id,omitempty"`
	Name *string       `json:"name,omitempty"`
	Role *InstanceRole `json:"role,omitempty"`
}

var ManagedDatabaseMemberType = schema.MustRecordType("ManagedDatabaseMember",
	func() schema.Record { return &ManagedDatabaseMember{} },
	schema.Scalar("id", "id", types.String,
		func(m *ManagedDatabaseMember) **string { return &m.ID }),
	schema.Scalar("name", "name", types.String,
		func(m *ManagedDatabaseMember) **string { return &m.Name }),
	schema.Scalar("role", "role", types.String,
		func(m *ManagedDatabaseMember) **InstanceRole { return &m.Role }).
		WithEnum(schema.NewEnum(string(InstanceRolePrimary), string(InstanceRoleStandby), string(InstanceRoleSnapshotStandby))),
)

func (*ManagedDatabaseMember) RecordType() *schema.RecordType {
	return ManagedDatabaseMemberType
}

// ManagedDatabase is a database registered with the management service.
type ManagedDatabase struct {
	schema.Presence
	ID               *string                   `json:"id,omitempty"`
	Name             *string                   `json:"name,omitempty"`
	CompartmentID    *string                   `json:"compartmentId,omitempty"`
	DatabaseType     *DatabaseType             `json:"databaseType,omitempty"`
	DeploymentType   *DeploymentType           `json:"deploymentType,omitempty"`
	LifecycleState   *LifecycleState           `json:"lifecycleState,omitempty"`
	TimeCreated      *time.Time                `json:"timeCreated,omitempty"`
	StorageSizeInGBs *decimal.Decimal          `json:"storageSizeInGBs,omitempty"`
	IsCluster        *bool                     `json:"isCluster,omitempty"`
	Tags             []string                  `json:"tags,omitempty"`
	FreeformTags     map[string]string         `json:"freeformTags,omitempty"`
	ConnectionString *ConnectionString         `json:"connectionString,omitempty"`
	Credentials      DatabaseCredentialDetails `json:"credentials,omitempty"`
	Members          []*ManagedDatabaseMember  `json:"members,omitempty"`
}

var ManagedDatabaseType = schema.MustRecordType("ManagedDatabase",
	func() schema.Record { return &ManagedDatabase{} },
	schema.Scalar("id", "id", types.String,
		func(m *ManagedDatabase) **string { return &m.ID }),
	schema.Scalar("name", "name", types.String,
		func(m *ManagedDatabase) **string { return &m.Name }),
	schema.Scalar("compartment_id", "compartmentId", types.String,
		func(m *ManagedDatabase) **string { return &m.CompartmentID }),
	schema.Scalar("database_type", "databaseType", types.String,
		func(m *ManagedDatabase) **DatabaseType { return &m.DatabaseType }).
		WithEnum(schema.NewEnum("EXTERNAL_SIDB", "EXTERNAL_RAC", "CLOUD_SIDB", "CLOUD_RAC", "SHARED", "DEDICATED")),
	schema.Scalar("deployment_type", "deploymentType", types.String,
		func(m *ManagedDatabase) **DeploymentType { return &m.DeploymentType }).
		WithEnum(schema.NewEnum("ONPREMISE", "BM", "VM", "EXADATA", "EXADATA_CC", "AUTONOMOUS")),
	schema.Scalar("lifecycle_state", "lifecycleState", types.String,
		func(m *ManagedDatabase) **LifecycleState { return &m.LifecycleState }).
		WithEnum(schema.NewEnum("CREATING", "ACTIVE", "INACTIVE", "DELETING", "DELETED", "FAILED")),
	schema.Scalar("time_created", "timeCreated", types.DateTime,
		func(m *ManagedDatabase) **time.Time { return &m.TimeCreated }),
	schema.Scalar("storage_size_in_gbs", "storageSizeInGBs", types.Decimal,
		func(m *ManagedDatabase) **decimal.Decimal { return &m.StorageSizeInGBs }),
	schema.Scalar("is_cluster", "isCluster", types.Boolean,
		func(m *ManagedDatabase) **bool { return &m.IsCluster }),
	schema.List("tags", "tags", types.ListOf(types.String),
		func(m *ManagedDatabase) *[]string { return &m.Tags }),
	schema.Map("freeform_tags", "freeformTags", types.MapOf(types.String),
		func(m *ManagedDatabase) *map[string]string { return &m.FreeformTags }),
	schema.Scalar("connection_string", "connectionString", types.RecordOf("ConnectionString"),
		func(m *ManagedDatabase) **ConnectionString { return &m.ConnectionString }),
	schema.Value("credentials", "credentials", types.RecordOf("DatabaseCredentialDetails"),
		func(m *ManagedDatabase) *DatabaseCredentialDetails { return &m.Credentials }),
	schema.List("members", "members", types.ListOf(types.RecordOf("ManagedDatabaseMember")),
		func(m *ManagedDatabase) *[]*ManagedDatabaseMember { return &m.Members }),
)

func (*ManagedDatabase) RecordType() *schema.RecordType {
	return ManagedDatabaseType
}
