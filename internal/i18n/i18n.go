package i18n

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	CookieName = "lang"
	LangVI     = "vi"
	LangEN     = "en"
)

var messages = map[string]map[string]string{
	LangVI: {
		"empty_cart":        "Giỏ hàng của bạn đang trống, không có gì để thanh toán",
		"checkout_failed":   "Thanh toán thất bại, giỏ hàng của bạn vẫn được giữ nguyên",
		"logged_out":        "Đã đăng xuất",
		"too_many_attempts": "Bạn thao tác quá nhanh, vui lòng thử lại sau",
		"invoice_resent":    "Hóa đơn đã được gửi lại",
		"shop_approved":     "Cửa hàng của bạn đã được phê duyệt",
		"shop_rejected":     "Yêu cầu mở cửa hàng của bạn đã bị từ chối",
	},
	LangEN: {
		"empty_cart":        "Your cart is empty, there are no items to check out",
		"checkout_failed":   "Checkout failed, your cart has been kept",
		"logged_out":        "Logged out",
		"too_many_attempts": "Too many attempts, please try again later",
		"invoice_resent":    "The invoice has been resent",
		"shop_approved":     "Your shop has been approved",
		"shop_rejected":     "Your shop request has been rejected",
	},
}

// Lang reads the language cookie, defaulting to Vietnamese.
func Lang(c echo.Context) string {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value != LangEN {
		return LangVI
	}
	return LangEN
}

func T(lang, key string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	if s, ok := messages[LangVI][key]; ok {
		return s
	}
	return key
}

// SetLang drops a plain one-year language cookie.
func SetLang(c echo.Context, lang string) {
	if lang != LangEN {
		lang = LangVI
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    lang,
		Path:     "/",
		Expires:  time.Now().Add(365 * 24 * time.Hour),
		SameSite: http.SameSiteLaxMode,
	})
}
