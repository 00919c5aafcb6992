package domain

// Role message author inside an assistant conversation
type Role string

const (
	// RoleUser local user message
	RoleUser Role = "user"
	// RoleAssistant assistant reply
	RoleAssistant Role = "assistant"
)

// Message one conversation entry kept locally. Error replies are regular
// messages flagged IsError so the transcript keeps its shape offline.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt string    `json:"createdAt"`
	IsError   bool      `json:"isError,omitempty"`
	Metadata  *Metadata `json:"metadata,omitempty"`
}

// Metadata structured extras the assistant attaches to a reply
type Metadata struct {
	MessageType        string                  `json:"message_type,omitempty"`
	Intent             string                  `json:"intent,omitempty"`
	Confidence         float64                 `json:"confidence,omitempty"`
	ExtractedInfo      map[string]interface{}  `json:"extracted_info,omitempty"`
	Recommendations    []VillageRecommendation `json:"recommendations,omitempty"`
	SuggestedQuestions []SuggestedQuestion     `json:"suggested_questions,omitempty"`
	Navigation         *NavigationHint         `json:"navigation,omitempty"`
}

// RecommendationReason one scored factor behind a recommendation
type RecommendationReason struct {
	Factor      string  `json:"factor"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// VillageRecommendation one craft village suggestion with scoring
type VillageRecommendation struct {
	VillageID        int64                  `json:"village_id"`
	VillageName      string                 `json:"village_name"`
	Location         string                 `json:"location"`
	MatchScore       float64                `json:"match_score"`
	Reasons          []RecommendationReason `json:"reasons,omitempty"`
	SuggestedActions []string               `json:"suggested_actions,omitempty"`
	ThumbnailURL     string                 `json:"thumbnail_url,omitempty"`
}

// SuggestedQuestion one follow-up the assistant proposes
type SuggestedQuestion struct {
	Text     string `json:"text"`
	Category string `json:"category,omitempty"`
}

// NavigationHint where the client should route after a reply
type NavigationHint struct {
	Action string                 `json:"action"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// ChatRequest assistant send payload
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
	UserID    int64  `json:"user_id,omitempty"`
}

// ChatResponse assistant reply payload
type ChatResponse struct {
	MessageType        string                  `json:"message_type,omitempty"`
	Response           string                  `json:"response"`
	SessionID          string                  `json:"session_id"`
	Intent             string                  `json:"intent,omitempty"`
	Confidence         float64                 `json:"confidence,omitempty"`
	ExtractedInfo      map[string]interface{}  `json:"extracted_info,omitempty"`
	Recommendations    []VillageRecommendation `json:"recommendations,omitempty"`
	SuggestedQuestions []SuggestedQuestion     `json:"suggested_questions,omitempty"`
	Navigation         *NavigationHint         `json:"navigation,omitempty"`
}

// ActionRequest a user interaction with a recommendation
type ActionRequest struct {
	ActionType string                 `json:"action_type"`
	VillageIDs []int64                `json:"village_ids"`
	SessionID  string                 `json:"session_id"`
	Context    map[string]interface{} `json:"context,omitempty"`
}

// NavigationResult routing the action resolved to
type NavigationResult struct {
	NavigateTo string                 `json:"navigate_to"`
	Params     map[string]interface{} `json:"params,omitempty"`
	OpenIn     string                 `json:"open_in,omitempty"`
}

// ActionResponse action result with navigation and optional data
type ActionResponse struct {
	Success             bool                   `json:"success"`
	ActionType          string                 `json:"action_type"`
	Navigation          NavigationResult       `json:"navigation"`
	Data                map[string]interface{} `json:"data,omitempty"`
	Message             string                 `json:"message,omitempty"`
	ConversationContext string                 `json:"conversation_context,omitempty"`
}

// HistoryMessage server-side transcript entry
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// HistoryResponse server-side transcript of one session
type HistoryResponse struct {
	SessionID string           `json:"session_id"`
	Messages  []HistoryMessage `json:"messages"`
}
