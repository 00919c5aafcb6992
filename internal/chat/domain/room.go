package domain

// Participant one side of a room
type Participant struct {
	UserID   string     `bson:"user_id" json:"userId"`
	Name     string     `bson:"name" json:"name"`
	Type     SenderType `bson:"type" json:"type"`
}

// ChatRoom a private conversation between one designer and one village.
// Unread counters are tracked per participant; the JSON projection exposes
// only the viewer's counter.
type ChatRoom struct {
	RoomID   string      `bson:"_id" json:"roomId"`
	Designer Participant `bson:"designer" json:"designer"`
	Village  Participant `bson:"village" json:"village"`

	LastMessageContent    string      `bson:"last_message_content,omitempty" json:"lastMessageContent,omitempty"`
	LastMessageType       MessageType `bson:"last_message_type,omitempty" json:"lastMessageType,omitempty"`
	LastMessageAt         string      `bson:"last_message_at,omitempty" json:"lastMessageAt,omitempty"`
	LastMessageSenderName string      `bson:"last_message_sender_name,omitempty" json:"lastMessageSenderName,omitempty"`

	// unread count per participant user id
	UnreadCounts map[string]int `bson:"unread_counts,omitempty" json:"-"`

	CreatedAt string `bson:"created_at" json:"createdAt"`
	UpdatedAt string `bson:"updated_at" json:"updatedAt"`

	// viewer projection, filled before returning to a client
	OtherParticipantName string     `bson:"-" json:"otherParticipantName,omitempty"`
	OtherParticipantType SenderType `bson:"-" json:"otherParticipantType,omitempty"`
	UnreadCount          int        `bson:"-" json:"unreadCount"`
}

// ProjectForViewer fill the viewer-relative fields
func (r *ChatRoom) ProjectForViewer(viewerID string) {
	if r.Designer.UserID == viewerID {
		r.OtherParticipantName = r.Village.Name
		r.OtherParticipantType = r.Village.Type
	} else {
		r.OtherParticipantName = r.Designer.Name
		r.OtherParticipantType = r.Designer.Type
	}
	if r.UnreadCounts != nil {
		r.UnreadCount = r.UnreadCounts[viewerID]
	}
}

// OtherParticipant returns the participant that is not the viewer
func (r *ChatRoom) OtherParticipant(viewerID string) Participant {
	if r.Designer.UserID == viewerID {
		return r.Village
	}
	return r.Designer
}

// HasParticipant check user is one of the two parties
func (r *ChatRoom) HasParticipant(userID string) bool {
	return r.Designer.UserID == userID || r.Village.UserID == userID
}

// RoomPage one page of the viewer's rooms
type RoomPage struct {
	Rooms         []ChatRoom `json:"rooms"`
	CurrentPage   int        `json:"currentPage"`
	TotalPages    int        `json:"totalPages"`
	TotalElements int64      `json:"totalElements"`
	Size          int        `json:"size"`
}

// StartChatRequest get-or-create payload; the id/name pair of the OTHER
// party is set depending on which side initiates
type StartChatRequest struct {
	VillageID    string `json:"villageId,omitempty"`
	VillageName  string `json:"villageName,omitempty"`
	DesignerID   string `json:"designerId,omitempty"`
	DesignerName string `json:"designerName,omitempty"`
}
