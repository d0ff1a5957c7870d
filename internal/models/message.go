package models

// MediaKind classifies forwardable media. Other transport media types are
// ignored by the dispatcher.
type MediaKind string

const (
	MediaImage   MediaKind = "image"
	MediaSticker MediaKind = "sticker"
	MediaVideo   MediaKind = "video"
)

// Media is a transport-neutral media reference. The transport forwards by
// reference (file id), so the core never touches the payload bytes.
type Media struct {
	Kind     MediaKind `json:"kind"`
	FileID   string    `json:"fileId"`
	MimeType string    `json:"mimeType,omitempty"`
	// LocalPath points at a file to upload instead of forwarding by id.
	// Set for freshly generated stickers.
	LocalPath string `json:"-"`
}

// Inbound is one message delivered by the transport to the dispatcher.
type Inbound struct {
	// SenderID is the transport account the message came from.
	SenderID string `json:"senderId"`
	// Text is the message body, or the caption when Media is set.
	Text string `json:"text"`
	// Media is nil for plain text messages.
	Media *Media `json:"media,omitempty"`
}

// Outbound is one message the core asks the transport to deliver.
type Outbound struct {
	To      string `json:"to"`
	Text    string `json:"text"`
	Media   *Media `json:"media,omitempty"`
	Caption string `json:"caption,omitempty"`
	// AsSticker re-sends the media as a sticker rather than a plain image.
	AsSticker bool `json:"asSticker,omitempty"`
	// StickerName and StickerAuthor annotate generated stickers.
	StickerName   string `json:"stickerName,omitempty"`
	StickerAuthor string `json:"stickerAuthor,omitempty"`
}
