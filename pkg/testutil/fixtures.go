package testutil

// Fixtures return fresh maps on every call so tests may mutate them.

func PasswordCredentialProps() map[string]any {
	return map[string]any{
		"credentialType": "PASSWORD",
		"userName":       "dbsnmp",
		"password":       "Welcome1#",
		"role":           "NORMAL",
	}
}

func SecretCredentialProps() map[string]any {
	return map[string]any{
		"credentialType":   "SECRET",
		"userName":         "sys",
		"passwordSecretId": "ocid1.vaultsecret.oc1..aaaa",
		"role":             "SYSDBA",
	}
}

func ConnectionStringProps() map[string]any {
	return map[string]any{
		"hostName": "db1.example.com",
		"port":     1521,
		"service":  "orclpdb1",
		"protocol": "TCPS",
	}
}

// ManagedDatabaseProps is a fully populated wire-keyed managed database.
func ManagedDatabaseProps() map[string]any {
	return map[string]any{
		"id":               "ocid1.manageddatabase.oc1..aaaa",
		"name":             "orcl",
		"compartmentId":    "ocid1.compartment.oc1..bbbb",
		"databaseType":     "EXTERNAL_RAC",
		"deploymentType":   "ONPREMISE",
		"lifecycleState":   "ACTIVE",
		"timeCreated":      "2024-03-01T10:15:30.123Z",
		"storageSizeInGBs": "512.25",
		"isCluster":        true,
		"tags":             []any{"prod", "finance"},
		"freeformTags":     map[string]any{"owner": "dba-team", "tier": "gold"},
		"connectionString": ConnectionStringProps(),
		"credentials":      PasswordCredentialProps(),
		"members": []any{
			map[string]any{"id": "m1", "name": "orcl1", "role": "PRIMARY"},
			map[string]any{"id": "m2", "name": "orcl2", "role": "STANDBY"},
		},
	}
}
