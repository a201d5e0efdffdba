package i18n

// Message keys of API error responses.
const (
	ErrKeyInvalidRequest     = "error.invalid_request"
	ErrKeyInvalidRequestBody = "error.invalid_request_body"
	ErrKeyInternalError      = "error.internal_error"
	ErrKeyUnauthorized       = "error.unauthorized"
	ErrKeyAPIKeyRequired     = "error.api_key_required"
	ErrKeyInvalidAPIKey      = "error.invalid_api_key"
	ErrKeyForbidden          = "error.forbidden"
	ErrKeyRateLimitExceeded  = "error.rate_limit_exceeded"
	ErrKeyInvalidToken       = "error.invalid_token"
	ErrKeyTokenRequired      = "error.token_required"

	// ErrKeyTimeout is reported when a pricing transaction is cancelled by its deadline.
	ErrKeyTimeout = "error.timeout"
	// ErrKeyNoSolution is reported when no fare path could be priced.
	ErrKeyNoSolution = "error.no_solution"
	// ErrKeySearchLimitExceeded is reported when the search ran past its combination limits.
	ErrKeySearchLimitExceeded = "error.search_limit_exceeded"
	ErrKeyProfileNotFound     = "error.profile_not_found"
	// ErrKeyServiceUnavailable is reported when the profile or record store cannot be reached.
	ErrKeyServiceUnavailable = "error.service_unavailable"
)

// catalog holds every message of every supported locale, keyed by message key.
var catalog = map[string]map[string]string{
	ErrKeyInvalidRequest: {
		"en": "Invalid request",
		"pt": "Requisição inválida",
		"nl": "Ongeldig verzoek",
	},
	ErrKeyInvalidRequestBody: {
		"en": "Invalid request body",
		"pt": "Corpo da requisição inválido",
		"nl": "Ongeldige aanvraag body",
	},
	ErrKeyInternalError: {
		"en": "An unexpected error occurred",
		"pt": "Ocorreu um erro inesperado",
		"nl": "Er is een onverwachte fout opgetreden",
	},
	ErrKeyUnauthorized: {
		"en": "Unauthorized",
		"pt": "Não autorizado",
		"nl": "Niet geautoriseerd",
	},
	ErrKeyAPIKeyRequired: {
		"en": "API key is required",
		"pt": "Chave de API é obrigatória",
		"nl": "API-sleutel is vereist",
	},
	ErrKeyInvalidAPIKey: {
		"en": "Invalid API key",
		"pt": "Chave de API inválida",
		"nl": "Ongeldige API-sleutel",
	},
	ErrKeyForbidden: {
		"en": "Your role does not allow this operation",
		"pt": "Seu papel não permite esta operação",
		"nl": "Uw rol staat deze bewerking niet toe",
	},
	ErrKeyRateLimitExceeded: {
		"en": "Too many pricing requests, please try again later",
		"pt": "Muitas requisições de tarifação, tente novamente mais tarde",
		"nl": "Te veel tariferingsverzoeken, probeer het later opnieuw",
	},
	ErrKeyInvalidToken: {
		"en": "Invalid or expired token",
		"pt": "Token inválido ou expirado",
		"nl": "Ongeldig of verlopen token",
	},
	ErrKeyTokenRequired: {
		"en": "Authentication token is required",
		"pt": "Token de autenticação é obrigatório",
		"nl": "Authenticatietoken is vereist",
	},
	ErrKeyTimeout: {
		"en": "The pricing transaction timed out",
		"pt": "A transação de tarifação excedeu o tempo limite",
		"nl": "De tariferingstransactie is verlopen",
	},
	ErrKeyNoSolution: {
		"en": "No fare path could be priced for the requested itineraries",
		"pt": "Nenhuma combinação de tarifas pôde ser precificada para os itinerários solicitados",
		"nl": "Voor de gevraagde reisroutes kon geen tariefpad worden geprijsd",
	},
	ErrKeySearchLimitExceeded: {
		"en": "The fare path search exceeded its combination limit",
		"pt": "A busca de combinações de tarifas excedeu seu limite",
		"nl": "De zoektocht naar tariefpaden heeft de combinatielimiet overschreden",
	},
	ErrKeyProfileNotFound: {
		"en": "Search profile not found",
		"pt": "Perfil de busca não encontrado",
		"nl": "Zoekprofiel niet gevonden",
	},
	ErrKeyServiceUnavailable: {
		"en": "Service temporarily unavailable",
		"pt": "Serviço temporariamente indisponível",
		"nl": "Dienst tijdelijk niet beschikbaar",
	},
}
