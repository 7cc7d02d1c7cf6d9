package utils

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// BookingQRContent is the text staff scan at the door.
func BookingQRContent(id uint64) string { return fmt.Sprintf("BELLAVISTA-%d", id) }

// BookingQRCode renders content as a PNG QR code of size x size pixels.
func BookingQRCode(content string, size int) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, size)
}
