package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// フラッシュメッセージを運ぶクッキー名
const flashCookieName = "tasuku_flash"

// フラッシュメッセージの種別
const (
	flashSuccess = "success"
	flashError   = "error"
	flashInfo    = "info"
)

// flash は次の画面表示で一度だけ表示するメッセージです。
type flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// setFlash はフラッシュメッセージをクッキーに保存します。
func setFlash(w http.ResponseWriter, category, message string) {
	data, err := json.Marshal(flash{Category: category, Message: message})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash はクッキーからフラッシュメッセージを取り出し、クッキーを削除します。
func popFlash(w http.ResponseWriter, r *http.Request) *flash {
	c, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}

	// 読んだら消す
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var f flash
	if err := json.Unmarshal(data, &f); err != nil || f.Message == "" {
		return nil
	}
	return &f
}

// redirectWithFlash はメッセージを保存してトップページへリダイレクトします。
func redirectWithFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	setFlash(w, category, message)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
