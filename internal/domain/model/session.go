package model

const GuestName = "Guest"

// セッションのログイン状態
type Session struct {
	ID       string `json:"-"`
	LoggedIn bool   `json:"logged_in"`
	Username string `json:"username"`
	// 注文履歴の持ち主
	Email string `json:"-"`
}

// 表示名（未ログインはGuest）
func (s Session) DisplayName() string {
	if !s.LoggedIn || s.Username == "" {
		return GuestName
	}
	return s.Username
}
