package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodePayloadMismatch      ErrorCode = 102
	ErrCodeInvalidLevel         ErrorCode = 103
	ErrCodeInvalidCategory      ErrorCode = 104
	ErrCodeInvalidRoutingClass  ErrorCode = 105
	ErrCodeMissingParameter     ErrorCode = 106

	// Hot store errors (200-299)
	ErrCodeHotStoreUnavailable ErrorCode = 200
	ErrCodeUpsertFailed        ErrorCode = 201
	ErrCodeBatchUpsertFailed   ErrorCode = 202
	ErrCodeQueryFailed         ErrorCode = 203
	ErrCodeDeleteFailed        ErrorCode = 204
	ErrCodeRecordNotFound      ErrorCode = 205
	ErrCodeSequenceFailed      ErrorCode = 206

	// Cold store errors (300-399)
	ErrCodeColdStoreUnavailable  ErrorCode = 300
	ErrCodeContainerFailed       ErrorCode = 301
	ErrCodeUploadFailed          ErrorCode = 302
	ErrCodeDownloadFailed        ErrorCode = 303
	ErrCodeObjectNotFound        ErrorCode = 304
	ErrCodeCompressionFailed     ErrorCode = 305
	ErrCodeLifecyclePolicyFailed ErrorCode = 306

	// Batching/buffering errors (400-499)
	ErrCodeFlushFailed     ErrorCode = 400
	ErrCodeSerializeFailed ErrorCode = 401
	ErrCodeLoggerClosed    ErrorCode = 402

	// Lifecycle errors (500-599)
	ErrCodeExpiryPassFailed     ErrorCode = 500
	ErrCodeMigrationFailed      ErrorCode = 501
	ErrCodeTransitionFailed     ErrorCode = 502
	ErrCodePruneFailed          ErrorCode = 503
	ErrCodeCostReportFailed     ErrorCode = 504
	ErrCodeLifecycleInterrupted ErrorCode = 505

	// Configuration errors (600-699)
	ErrCodeConfigParseFailed    ErrorCode = 600
	ErrCodeConfigValidateFailed ErrorCode = 601
)
