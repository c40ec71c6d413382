package constants

// Session and context keys
const (
	SessionCookieName = "portal_session"
	ContextKeyUserID  = "user_id"
	ContextKeyUser    = "user"
	ContextKeyProject = "project"
)

// Authentication
const (
	MinPasswordLength = 8
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// AI task generation
const (
	MinTranscriptLength = 100
	MaxTranscriptLength = 100000
	MaxAIGeneratedTasks = 50
)

// Finance
const (
	// IVARate is the Mexican VAT rate applied to egresos when aplicarIva is set.
	IVARate = 0.16

	// MinGabyRate is the lowest allowed hourly rate for the Gaby role.
	MinGabyRate = 1000

	// MinDeveloperPercent is the lowest allowed developer share of the
	// cotizaciones percentage distribution.
	MinDeveloperPercent = 27

	// PercentSumTolerance is the allowed drift when validating that the
	// percentage distribution sums to 100.
	PercentSumTolerance = 0.01
)

// Feature ordering
const (
	// UnparseableFeatureNumber sorts features whose id has no trailing
	// numeric suffix after all well-formed ones.
	UnparseableFeatureNumber = 999999
)
