package notify

import (
	"bytes"
	"html/template"
)

var ownerTemplate = template.Must(template.New("owner").Parse(`<div>
  <h1>Wiadomość z formularza kontaktowego</h1>
  <p>Od: <strong>{{.Name}}</strong> ({{.Email}})</p>
  <h2>Wiadomość:</h2>
  <p>{{.Message}}</p>
</div>`))

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<div>
  <h1>Dziękujemy za kontakt, {{.Name}}!</h1>
  <p>Otrzymaliśmy Twoją wiadomość i wkrótce się z Tobą skontaktujemy.</p>
  <p>Pozdrawiamy,<br />Zespół Cote Royale</p>
</div>`))

// Name and Message arrive entity-encoded from validation, so they are inserted as-is
// instead of being escaped a second time.
type ownerView struct {
	Name    template.HTML
	Email   string
	Message template.HTML
}

type confirmationView struct {
	Name template.HTML
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
