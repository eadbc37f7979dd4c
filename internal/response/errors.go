package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrBadAnswerKey   ErrCode = "UNRESOLVABLE_ANSWER_KEY"
	ErrBadOptions     ErrCode = "INSUFFICIENT_OPTIONS"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrConflict        ErrCode = "CONFLICT"
	ErrActionForbidden ErrCode = "ACTION_FORBIDDEN"

	// ─── Import ────────────────────────────────────────────────────────
	ErrMissingColumns ErrCode = "MISSING_REQUIRED_COLUMNS"
	ErrEmptyImport    ErrCode = "EMPTY_IMPORT"

	// ─── Practice / Exam ───────────────────────────────────────────────
	ErrPoolExhausted ErrCode = "POOL_EXHAUSTED"
	ErrExamFinished  ErrCode = "EXAM_FINISHED"
	ErrNoQuestions   ErrCode = "NO_QUESTIONS"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validação falhou. Verifique os campos enviados."
	case ErrInvalidID:
		return "Formato de ID inválido."
	case ErrInvalidPayload:
		return "Corpo da requisição inválido."
	case ErrBadAnswerKey:
		return "Resposta correta inválida: não corresponde a nenhuma alternativa."
	case ErrBadOptions:
		return "Questão de múltipla escolha requer ao menos 2 alternativas."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Recurso não encontrado."
	case ErrConflict:
		return "Já existe um recurso com esse nome."
	case ErrActionForbidden:
		return "Esta ação não é permitida para questionários reservados."

	// ─── Import ────────────────────────────────────────────────────────
	case ErrMissingColumns:
		return "CSV sem colunas obrigatórias (tipo, questionario, texto, correta)."
	case ErrEmptyImport:
		return "Envie um arquivo ou cole o conteúdo do CSV."

	// ─── Practice / Exam ───────────────────────────────────────────────
	case ErrPoolExhausted:
		return "Acabaram as questões deste questionário."
	case ErrExamFinished:
		return "Este simulado já foi concluído."
	case ErrNoQuestions:
		return "Nenhuma questão disponível para montar o simulado."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Ocorreu um erro interno no servidor."
	default:
		return "Ocorreu um erro inesperado."
	}
}
