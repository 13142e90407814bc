package utils

import (
	"net/url"
	"strings"
)

// OrganizationPhone is the WhatsApp number every contact link points to.
const OrganizationPhone = "5519999990000"

// WhatsAppLink opens a chat with the organization, pre-filled with text.
func WhatsAppLink(text string) string {
	link := "https://wa.me/" + OrganizationPhone
	if text == "" {
		return link
	}
	return link + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}
