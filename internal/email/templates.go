package email

import (
	"bytes"
	"html/template"
)

// The German copy mirrors the storefront's transactional emails. HTML goes
// through html/template so addresses and names are escaped.

var welcomeHTML = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #18181b; background-color: #f4f4f5; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 0 auto; padding: 40px 20px;">
    <div style="background: #ffffff; border-radius: 16px; padding: 40px;">
      <h1 style="font-size: 24px; text-align: center;">Willkommen bei Südpfote!</h1>
      <p>Hallo {{.Name}}!</p>
      <p>Vielen Dank für deine Bestellung! Wir haben automatisch ein Kundenkonto für dich erstellt,
         damit du deine Bestellungen verfolgen und Treuepunkte sammeln kannst.</p>
      <div style="background: #f4f4f5; border-radius: 12px; padding: 24px; margin: 24px 0;">
        <p style="font-weight: 600;">Deine Zugangsdaten:</p>
        <p>E-Mail: <strong>{{.Email}}</strong><br>
           Passwort: <code>{{.Password}}</code></p>
      </div>
      <p style="background: #fef3c7; border-radius: 10px; padding: 14px 16px; color: #92400e;">
        <strong>Sicherheitshinweis:</strong> Bitte ändere dein Passwort nach dem ersten Login in deinem Kundenkonto.
      </p>
      <p style="text-align: center;"><a href="{{.LoginURL}}">Jetzt einloggen</a></p>
    </div>
    <p style="text-align: center; color: #a1a1aa; font-size: 13px;">Südpfote – Der Shop für die anderen 10%</p>
  </div>
</body>
</html>`))

var confirmationHTML = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #18181b; background-color: #f4f4f5; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 0 auto; padding: 40px 20px;">
    <div style="background: #ffffff; border-radius: 16px; padding: 40px;">
      <h1 style="font-size: 24px; text-align: center;">Danke für deine Bestellung!</h1>
      <p>Hallo {{.Name}}!</p>
      <p>Wir haben deine Bestellung <strong>{{.OrderID}}</strong> erhalten und machen sie jetzt versandfertig.
         Du bekommst eine weitere E-Mail, sobald dein Paket unterwegs ist.</p>
    </div>
    <p style="text-align: center; color: #a1a1aa; font-size: 13px;">Südpfote – Der Shop für die anderen 10%<br>Bei Fragen: support@suedpfote.de</p>
  </div>
</body>
</html>`))

type welcomeData struct {
	Name     string
	Email    string
	Password string
	LoginURL string
}

type confirmationData struct {
	Name    string
	OrderID string
}

func welcomeBody(email, password, firstName string) (html, text string) {
	name := firstName
	if name == "" {
		name = "Linkshänder"
	}
	var buf bytes.Buffer
	// Template is static; Execute cannot fail on this data.
	_ = welcomeHTML.Execute(&buf, welcomeData{
		Name:     name,
		Email:    email,
		Password: password,
		LoginURL: "https://suedpfote.de/login",
	})

	text = "Willkommen bei Südpfote, " + name + "!\n\n" +
		"Vielen Dank für deine Bestellung! Wir haben automatisch ein Kundenkonto für dich erstellt.\n\n" +
		"Deine Zugangsdaten:\n" +
		"E-Mail: " + email + "\n" +
		"Passwort: " + password + "\n\n" +
		"SICHERHEITSHINWEIS: Bitte ändere dein Passwort nach dem ersten Login!\n\n" +
		"Jetzt einloggen: https://suedpfote.de/login\n\n" +
		"Südpfote – Der Shop für die anderen 10%\n"
	return buf.String(), text
}

func confirmationBody(orderID, firstName string) (html, text string) {
	name := firstName
	if name == "" {
		name = "Linkshänder"
	}
	var buf bytes.Buffer
	_ = confirmationHTML.Execute(&buf, confirmationData{Name: name, OrderID: orderID})

	text = "Hallo " + name + "!\n\n" +
		"Wir haben deine Bestellung " + orderID + " erhalten und machen sie jetzt versandfertig.\n" +
		"Du bekommst eine weitere E-Mail, sobald dein Paket unterwegs ist.\n\n" +
		"Südpfote – Der Shop für die anderen 10%\n" +
		"Bei Fragen: support@suedpfote.de\n"
	return buf.String(), text
}
