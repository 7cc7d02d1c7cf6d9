// Package notify emails guests when their booking is confirmed or cancelled.
package notify

import (
	"fmt"
	"html"
	"io"
	"log"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/iliyamo/restaurant-assistant/internal/config"
	"github.com/iliyamo/restaurant-assistant/internal/queue"
	"github.com/iliyamo/restaurant-assistant/internal/utils"
)

// Mailer sends booking emails over SMTP.
type Mailer struct {
	cfg        config.MailConfig
	restaurant string
	send       func(m *gomail.Message) error
}

// NewMailer returns a Mailer for cfg.  restaurant is used in subjects and as
// the display name of the sender.
func NewMailer(cfg config.MailConfig, restaurant string) *Mailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &Mailer{cfg: cfg, restaurant: restaurant, send: func(m *gomail.Message) error { return d.DialAndSend(m) }}
}

// NotifyBooking implements queue.Notifier.
func (m *Mailer) NotifyBooking(ev queue.BookingEvent) error {
	if ev.Email == "" {
		return nil
	}
	msg := m.Compose(ev)
	if err := m.send(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", ev.Email, err)
	}
	log.Printf("notify: sent %s email for booking %d", ev.Type, ev.BookingID)
	return nil
}

// Compose builds the email for ev.  Confirmations embed a QR code of the
// reservation id that staff can scan at the door.
func (m *Mailer) Compose(ev queue.BookingEvent) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.From, m.restaurant)
	msg.SetHeader("To", ev.Email)

	var body strings.Builder
	fmt.Fprintf(&body, "<p>Dear %s,</p>", html.EscapeString(ev.CustomerName))
	if ev.Type == queue.EventBookingCancelled {
		msg.SetHeader("Subject", fmt.Sprintf("%s: reservation #%d cancelled", m.restaurant, ev.BookingID))
		fmt.Fprintf(&body, "<p>Your reservation #%d for %d on %s at %s has been cancelled.</p>",
			ev.BookingID, ev.PartySize, ev.Date, ev.Time)
		msg.SetBody("text/html", body.String())
		return msg
	}

	msg.SetHeader("Subject", fmt.Sprintf("%s: reservation #%d confirmed", m.restaurant, ev.BookingID))
	fmt.Fprintf(&body, "<p>Your table for %d on %s at %s is confirmed. Your reservation ID is %d.</p>",
		ev.PartySize, ev.Date, ev.Time, ev.BookingID)
	png, err := utils.BookingQRCode(utils.BookingQRContent(ev.BookingID), 256)
	if err == nil {
		msg.Embed("booking_qr.png", gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(png)
			return err
		}), gomail.SetHeader(map[string][]string{
			"Content-Type":        {"image/png"},
			"Content-ID":          {"<booking_qr>"},
			"Content-Disposition": {"inline"},
		}))
		body.WriteString(`<p><img src="cid:booking_qr" alt="Reservation QR code"/></p>`)
	}
	msg.SetBody("text/html", body.String())
	return msg
}
