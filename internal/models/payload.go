package models

// PayloadKind names the content type of a relayed message.
type PayloadKind string

const (
	PayloadText    PayloadKind = "text"
	PayloadSticker PayloadKind = "sticker"
	PayloadPhoto   PayloadKind = "photo"
	PayloadVoice   PayloadKind = "voice"
)

// Payload is user content to relay. Content holds the text for text payloads
// and the transport file reference for media. Caption is optional and only
// kept for photo and voice.
type Payload struct {
	Kind    PayloadKind
	Content string
	Caption string
}

// Supported reports whether the payload kind can be relayed.
func (p Payload) Supported() bool {
	switch p.Kind {
	case PayloadText, PayloadSticker, PayloadPhoto, PayloadVoice:
		return true
	}
	return false
}

func TextPayload(text string) Payload {
	return Payload{Kind: PayloadText, Content: text}
}

func StickerPayload(ref string) Payload {
	return Payload{Kind: PayloadSticker, Content: ref}
}

func PhotoPayload(ref, caption string) Payload {
	return Payload{Kind: PayloadPhoto, Content: ref, Caption: caption}
}

func VoicePayload(ref, caption string) Payload {
	return Payload{Kind: PayloadVoice, Content: ref, Caption: caption}
}
