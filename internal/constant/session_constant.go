package constant

const (
	PlaceholderPatientName = "Processing Session..."
	PlaceholderTranscript  = "Processing audio..."
	FallbackSessionTitle   = "New Session"
	ProcessingFailedText   = "Processing failed. Please check your network and try again."

	ResumeDelimiter = "\n\n[RESUMED SESSION]: "

	// PatientInfoFormat args: name, gender.
	PatientInfoFormat = "%s (%s)"

	// CreateDocumentInstruction args: document type.
	CreateDocumentInstruction = "Create a %s."

	ChatDocumentTitle = "New Document"
	ChatDocumentType  = "Supplemental"

	DefaultDocumentType = "Note"
)

const (
	EventSessionCompleted        = "SESSION_COMPLETED"
	EventSessionProcessingFailed = "SESSION_PROCESSING_FAILED"
	EventSessionResumed          = "SESSION_RESUMED"
	EventSessionResumeFailed     = "SESSION_RESUME_FAILED"
	EventSessionsPurged          = "SESSIONS_PURGED"
)
