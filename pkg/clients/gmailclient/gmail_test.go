package gmailclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/seatcall/seatcall/pkg/core/model"
	"github.com/seatcall/seatcall/pkg/core/quota"
)

func selectedCandidate() *model.Candidate {
	c := &model.Candidate{
		ExternalID: "111",
		Name:       "Ana Souza",
		Email:      "ana@example.com",
		Score:      712.5,
		Declared:   quota.LBPPI,
		Pool:       model.PoolKey{Unit: "Campus Centro", Program: "Medicina", Shift: "Integral"},
	}
	c.Select(quota.LBPPI, 2)
	return c
}

func TestCallNotice(t *testing.T) {
	deadline := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)

	subject, body := CallNotice(selectedCandidate(), deadline)

	assert.Equal(t, "Convocação - 2a chamada - Medicina", subject)
	assert.Contains(t, body, "Olá, Ana Souza.")
	assert.Contains(t, body, "2a chamada para o curso Medicina (Campus Centro, turno Integral)")
	assert.Contains(t, body, "Vaga: LB_PPI")
	assert.Contains(t, body, "712,50")
	assert.Contains(t, body, "até 09/02/2026")
}

func TestCallNotice_NoDeadline(t *testing.T) {
	c := selectedCandidate()
	c.Name = ""

	_, body := CallNotice(c, time.Time{})

	assert.Contains(t, body, "Olá, candidato(a).")
	assert.NotContains(t, body, "matrícula")
}

func TestBuildMessage(t *testing.T) {
	raw := string(buildMessage("selecao@example.edu.br", "ana@example.com", "Convocação", "linha 1\nlinha 2"))

	assert.Contains(t, raw, "From: selecao@example.edu.br\r\n")
	assert.Contains(t, raw, "To: ana@example.com\r\n")
	assert.Contains(t, raw, "Subject: =?utf-8?q?Convoca=C3=A7=C3=A3o?=\r\n")
	assert.Contains(t, raw, "charset=\"UTF-8\"")
	assert.Contains(t, raw, "\r\n\r\nlinha 1\r\nlinha 2")
}

func TestBuildMessage_NoSender(t *testing.T) {
	raw := string(buildMessage("", "ana@example.com", "Aviso", "corpo"))
	assert.NotContains(t, raw, "From:")
	assert.Contains(t, raw, "Subject: Aviso\r\n")
}
