package assistant

import "github.com/sashabaranov/go-openai"

// Tool names exposed to the model. The frontend dispatches on these, so
// they are a wire contract.
const (
	ToolGetAllCases           = "get_all_cases"
	ToolGetCaseByID           = "get_case_by_id"
	ToolGetAllChatIDs         = "get_all_chat_ids"
	ToolSendNotifications     = "send_notifications"
	ToolNavigateToCase        = "navigate_to_case"
	ToolNavigateToCaseContact = "navigate_to_case_contacts"
)

func caseIDParams(description string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"caseId": map[string]any{
				"type":        "string",
				"description": description,
			},
		},
		"required": []string{"caseId"},
	}
}

// tools is the fixed function schema offered on every chat request.
var tools = []openai.Tool{
	{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        ToolGetAllCases,
			Description: "Obtiene todos los casos de mediación de la base de datos",
		},
	},
	{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        ToolGetCaseByID,
			Description: "Obtiene un caso específico por su ID",
			Parameters:  caseIDParams("ID del caso a buscar"),
		},
	},
	{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        ToolGetAllChatIDs,
			Description: "Obtiene todos los IDs de chat disponibles",
		},
	},
	{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        ToolSendNotifications,
			Description: "Envía notificaciones a los contactos pendientes",
		},
	},
	{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        ToolNavigateToCase,
			Description: "Navega a la página de detalles de un caso",
			Parameters:  caseIDParams("ID del caso al que navegar"),
		},
	},
	{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        ToolNavigateToCaseContact,
			Description: "Navega a la página de contactos de un caso",
			Parameters:  caseIDParams("ID del caso"),
		},
	},
}
