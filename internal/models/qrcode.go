package models

import (
	"time"
)

const (
	DefaultURL     = "https://example.com"
	DefaultFgColor = "#000000"
	DefaultBgColor = "#ffffff"
	DefaultSize    = 256

	MinSize = 128
	MaxSize = 512
)

// Params are the draft (not saved yet) QR code parameters
type Params struct {
	URL     string
	FgColor string
	BgColor string
	Size    int
}

func DefaultParams() Params {
	return Params{
		URL:     DefaultURL,
		FgColor: DefaultFgColor,
		BgColor: DefaultBgColor,
		Size:    DefaultSize,
	}
}

// QRCode is a saved QR code configuration owned by one user
// Records are immutable once saved, they may only be deleted
type QRCode struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	URL       string    `json:"url"`
	FgColor   string    `json:"fgColor"`
	BgColor   string    `json:"bgColor"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

func (q QRCode) Params() Params {
	return Params{
		URL:     q.URL,
		FgColor: q.FgColor,
		BgColor: q.BgColor,
		Size:    q.Size,
	}
}
