package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrSurveyNotFound  ErrCode = "SURVEY_NOT_FOUND"
	ErrSessionNotFound ErrCode = "SESSION_NOT_FOUND"

	// ─── Survey content ────────────────────────────────────────────────
	ErrSurveyInvalid   ErrCode = "SURVEY_INVALID"
	ErrNoDefaultResult ErrCode = "NO_DEFAULT_RESULT"

	// ─── Answer session ────────────────────────────────────────────────
	ErrInvalidStep      ErrCode = "INVALID_STEP"
	ErrQuizNotFound     ErrCode = "QUIZ_NOT_FOUND"
	ErrUnknownChoice    ErrCode = "UNKNOWN_CHOICE"
	ErrTooManyValues    ErrCode = "TOO_MANY_VALUES"
	ErrValueOutOfRange  ErrCode = "VALUE_OUT_OF_RANGE"
	ErrAnswerRequired   ErrCode = "ANSWER_REQUIRED"
	ErrNotInRound       ErrCode = "NOT_IN_ROUND"
	ErrRoundsExhausted  ErrCode = "ROUNDS_EXHAUSTED"
	ErrSubmitInProgress ErrCode = "SUBMIT_IN_PROGRESS"
	ErrSubmitFailed     ErrCode = "SUBMIT_FAILED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrUnavailable ErrCode = "SERVICE_UNAVAILABLE"
	ErrInternal    ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrSurveyNotFound:
		return "Survey not found."
	case ErrSessionNotFound:
		return "Answer session not found or expired."

	// ─── Survey content ────────────────────────────────────────────────
	case ErrSurveyInvalid:
		return "The survey definition is invalid."
	case ErrNoDefaultResult:
		return "No result matched and the survey has no default result."

	// ─── Answer session ────────────────────────────────────────────────
	case ErrInvalidStep:
		return "This action is not allowed at the current step."
	case ErrQuizNotFound:
		return "Quiz not found in this survey."
	case ErrUnknownChoice:
		return "The choice does not belong to this quiz."
	case ErrTooManyValues:
		return "Too many choices selected."
	case ErrValueOutOfRange:
		return "The value is outside the allowed range."
	case ErrAnswerRequired:
		return "This question requires an answer."
	case ErrNotInRound:
		return "The choice is not part of the current round."
	case ErrRoundsExhausted:
		return "All rounds have already been answered."
	case ErrSubmitInProgress:
		return "The answer is already being submitted."
	case ErrSubmitFailed:
		return "Submitting the answer failed. Please try again."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrUnavailable:
		return "The service is temporarily unavailable."
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
