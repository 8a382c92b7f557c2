package message

// Limits collects the configurable bounds the codec enforces on
// deserialization. All are process-wide configuration (spec §6); changing
// them at runtime is not supported.
type Limits struct {
	// MaxOperationsPerBlock bounds the Ops list in a DataRequest/
	// DataResponse for a single block.
	MaxOperationsPerBlock int

	// MaxOperations bounds an Operations message's operation list.
	MaxOperations int

	// MaxOperationsPrefixIDs bounds OperationsAnnouncement/
	// AskForOperations prefix lists.
	MaxOperationsPrefixIDs int

	// OperationPrefixLength is the byte length used for compact
	// operation-id announcements.
	OperationPrefixLength int

	// MaxDatastoreValueLength bounds a single datastore value inside a
	// signed operation.
	MaxDatastoreValueLength int

	// MaxFunctionNameLength bounds a smart-contract call's function name.
	MaxFunctionNameLength int

	// MaxParametersSize bounds a smart-contract call's parameter blob.
	MaxParametersSize int

	// MaxOpDatastoreKeyLength bounds a single datastore key inside a
	// signed operation.
	MaxOpDatastoreKeyLength int

	// MaxOpDatastoreEntryCount bounds the number of datastore entries
	// inside a signed operation.
	MaxOpDatastoreEntryCount int

	// MaxDenunciationsInBlockHeader bounds the denunciation list carried
	// by a signed block header.
	MaxDenunciationsInBlockHeader int
}

// DefaultLimits returns conservative defaults suitable for tests and
// local development. Production deployments size these from node
// configuration.
func DefaultLimits() Limits {
	return Limits{
		MaxOperationsPerBlock:         5_000,
		MaxOperations:                 10_000,
		MaxOperationsPrefixIDs:        10_000,
		OperationPrefixLength:         8,
		MaxDatastoreValueLength:       10_000,
		MaxFunctionNameLength:         256,
		MaxParametersSize:             10_000,
		MaxOpDatastoreKeyLength:       255,
		MaxOpDatastoreEntryCount:      128,
		MaxDenunciationsInBlockHeader: 32,
	}
}
