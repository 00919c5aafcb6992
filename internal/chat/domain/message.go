package domain

// MessageType definition chat message payload kind
type MessageType string

const (
	// MessageTypeText plain text message
	MessageTypeText MessageType = "TEXT"
	// MessageTypeImage image attachment message
	MessageTypeImage MessageType = "IMAGE"
	// MessageTypeFile generic file attachment message
	MessageTypeFile MessageType = "FILE"
)

// SenderType definition which side of the marketplace sent a message
type SenderType string

const (
	// SenderDesigner message sent by a designer
	SenderDesigner SenderType = "DESIGNER"
	// SenderVillage message sent by a craft village
	SenderVillage SenderType = "VILLAGE"
)

// ChatMessage a message inside a designer/village room
type ChatMessage struct {
	MessageID   string      `bson:"_id" json:"messageId"`
	RoomID      string      `bson:"room_id" json:"roomId"`
	SenderID    string      `bson:"sender_id" json:"senderId"`
	SenderName  string      `bson:"sender_name" json:"senderName"`
	SenderType  SenderType  `bson:"sender_type" json:"senderType"`
	Content     string      `bson:"content" json:"content"`
	MessageType MessageType `bson:"message_type" json:"messageType"`

	// file metadata, set when MessageType is IMAGE or FILE
	FileURL      string `bson:"file_url,omitempty" json:"fileUrl,omitempty"`
	FileName     string `bson:"file_name,omitempty" json:"fileName,omitempty"`
	FileSize     int64  `bson:"file_size,omitempty" json:"fileSize,omitempty"`
	FileType     string `bson:"file_type,omitempty" json:"fileType,omitempty"`
	ThumbnailURL string `bson:"thumbnail_url,omitempty" json:"thumbnailUrl,omitempty"`

	// IsOwnMessage is viewer relative and never persisted
	IsOwnMessage bool `bson:"-" json:"isOwnMessage"`

	CreatedAt string   `bson:"created_at" json:"createdAt"`
	ReadBy    []string `bson:"read_by,omitempty" json:"-"`
}

// MessagePage one page of room history, newest first
type MessagePage struct {
	Content       []ChatMessage `json:"content"`
	TotalElements int64         `json:"totalElements"`
	TotalPages    int           `json:"totalPages"`
	Size          int           `json:"size"`
	Number        int           `json:"number"`
	First         bool          `json:"first"`
	Last          bool          `json:"last"`
}

// SendMessageRequest payload for the REST send path
type SendMessageRequest struct {
	Content     string      `json:"content"`
	MessageType MessageType `json:"messageType,omitempty"`

	FileURL      string `json:"fileUrl,omitempty"`
	FileName     string `json:"fileName,omitempty"`
	FileSize     int64  `json:"fileSize,omitempty"`
	FileType     string `json:"fileType,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// FileUploadResponse result of a chat upload
type FileUploadResponse struct {
	FileURL      string `json:"fileUrl"`
	FileName     string `json:"fileName"`
	FileSize     int64  `json:"fileSize"`
	FileType     string `json:"fileType"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// TypingIndicator ephemeral typing state for a room, never persisted
type TypingIndicator struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Typing   bool   `json:"typing"`
}

// DeriveMessageType returns IMAGE for image uploads, FILE for any other
// upload, TEXT otherwise
func DeriveMessageType(fileType string) MessageType {
	if fileType == "" {
		return MessageTypeText
	}
	if len(fileType) >= 6 && fileType[:6] == "image/" {
		return MessageTypeImage
	}
	return MessageTypeFile
}
