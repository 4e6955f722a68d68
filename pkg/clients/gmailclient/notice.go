package gmailclient

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/seatcall/seatcall/pkg/core/model"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// CallNotice builds the email telling a selected candidate they were called.
// deadline is the next scheduled call date; the zero time omits the enrolment deadline line.
func CallNotice(c *model.Candidate, deadline time.Time) (subject, body string) {
	round := 0
	if c.Round != nil {
		round = *c.Round
	}
	seat := ""
	if c.Assigned != nil {
		seat = c.Assigned.String()
	}

	subject = printer.Sprintf("Convocação - %da chamada - %s", round, c.Pool.Program)

	var b strings.Builder
	name := c.Name
	if name == "" {
		name = "candidato(a)"
	}
	b.WriteString(printer.Sprintf("Olá, %s.\n\n", name))
	b.WriteString(printer.Sprintf("Você foi convocado(a) na %da chamada para o curso %s (%s, turno %s).\n",
		round, c.Pool.Program, c.Pool.Unit, c.Pool.Shift))
	b.WriteString(printer.Sprintf("Vaga: %s\nNota final: %.2f\n", seat, c.Score))
	if !deadline.IsZero() {
		b.WriteString(printer.Sprintf("\nRealize sua matrícula até %s.\n", deadline.Format("02/01/2006")))
	}
	b.WriteString("\nEsta é uma mensagem automática.\n")

	return subject, b.String()
}
