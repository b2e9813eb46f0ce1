package telegram

// Wire types for the subset of the Bot API this bot exchanges: text and photo
// messages, callback queries, and the two keyboard flavors.

type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// DisplayName returns the best human label we have for the user.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	return name
}

type Chat struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title,omitempty"`
	Username string `json:"username,omitempty"`
}

type PhotoSize struct {
	FileID   string `json:"file_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	FileSize int64  `json:"file_size,omitempty"`
}

type Message struct {
	MessageID int64       `json:"message_id"`
	From      *User       `json:"from,omitempty"`
	Chat      Chat        `json:"chat"`
	Date      int64       `json:"date"`
	Text      string      `json:"text,omitempty"`
	Caption   string      `json:"caption,omitempty"`
	Photo     []PhotoSize `json:"photo,omitempty"`
}

// HasPhoto reports whether the message carries at least one photo rendition.
func (m *Message) HasPhoto() bool {
	return m != nil && len(m.Photo) > 0
}

type CallbackQuery struct {
	ID      string   `json:"id"`
	From    *User    `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

// InlineKeyboardButton is a button attached to a message.
type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// KeyboardButton is a button on the persistent reply keyboard.
type KeyboardButton struct {
	Text string `json:"text"`
}

type ReplyKeyboardMarkup struct {
	Keyboard       [][]KeyboardButton `json:"keyboard"`
	ResizeKeyboard bool               `json:"resize_keyboard,omitempty"`
}

// InlineRow is a convenience constructor for one row of inline buttons.
func InlineRow(buttons ...InlineKeyboardButton) []InlineKeyboardButton {
	return buttons
}

// InlineKeyboard builds a markup from rows.
func InlineKeyboard(rows ...[]InlineKeyboardButton) *InlineKeyboardMarkup {
	return &InlineKeyboardMarkup{InlineKeyboard: rows}
}

// ReplyKeyboard builds a resized persistent keyboard from rows of labels.
func ReplyKeyboard(rows ...[]string) *ReplyKeyboardMarkup {
	kb := &ReplyKeyboardMarkup{ResizeKeyboard: true}
	for _, row := range rows {
		buttons := make([]KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, KeyboardButton{Text: label})
		}
		kb.Keyboard = append(kb.Keyboard, buttons)
	}
	return kb
}
